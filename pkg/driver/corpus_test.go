package driver

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/oyi-lang/phoron-asm/pkg/parser"
)

func TestRunCorpus(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b", "Ok.pho"), acceptedSource)
	writeFile(t, filepath.Join(root, "a", "Also.J"), acceptedSource)
	writeFile(t, filepath.Join(root, "Bad.pho"), ".class public Bad\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "not assembly")
	writeFile(t, filepath.Join(root, ".git", "Hidden.pho"), "garbage")

	report, err := RunCorpus(context.Background(), root, CorpusOptions{Workers: 2})
	require.NoError(t, err)

	var got []string
	for _, res := range report.Results {
		rel, _ := filepath.Rel(root, res.Path)
		status := "ok"
		if !res.Passed {
			status = "fail"
		}
		got = append(got, filepath.ToSlash(rel)+" "+status)
	}
	want := []string{"Bad.pho fail", "a/Also.J ok", "b/Ok.pho ok"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("results (-want +got):\n%s", diff)
	}
	if report.Passed() != 2 || report.Failed() != 1 {
		t.Fatalf("passed %d failed %d", report.Passed(), report.Failed())
	}

	var list parser.ErrorList
	if !errors.As(report.Results[0].Err, &list) {
		t.Fatalf("failed result should carry the parse errors, got %v", report.Results[0].Err)
	}
}

func TestRunCorpusExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "One.jasm"), acceptedSource)
	writeFile(t, filepath.Join(root, "Two.pho"), acceptedSource)

	report, err := RunCorpus(context.Background(), root, CorpusOptions{Extensions: []string{".jasm"}})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	require.Equal(t, "One.jasm", filepath.Base(report.Results[0].Path))
}

func TestRunCorpusCancelled(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"A.pho", "B.pho", "C.pho"} {
		writeFile(t, filepath.Join(root, name), acceptedSource)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunCorpus(ctx, root, CorpusOptions{Workers: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunCorpusMissingDir(t *testing.T) {
	_, err := RunCorpus(context.Background(), filepath.Join(t.TempDir(), "nope"), CorpusOptions{})
	if err == nil {
		t.Fatalf("expected an error for a missing directory")
	}
}
