package parser

import (
	"strings"

	"github.com/agext/levenshtein"

	"github.com/oyi-lang/phoron-asm/pkg/ast"
)

// SuggestionThreshold is the minimum similarity for a mnemonic to be offered.
const SuggestionThreshold = 0.5

// Suggest returns the opcode mnemonic closest to word. Comparison is case
// insensitive; on equal scores the later mnemonic in opcode order wins.
func Suggest(word string) (string, bool) {
	word = strings.ToLower(word)
	best := ""
	bestScore := 0.0
	for _, op := range ast.Opcodes() {
		score := levenshtein.Similarity(word, op.Mnemonic, nil)
		if score >= SuggestionThreshold && score >= bestScore {
			best, bestScore = op.Mnemonic, score
		}
	}
	return best, best != ""
}
