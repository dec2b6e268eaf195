package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const hello = `.class public HelloWorld
.super java/lang/Object
.method public static main([Ljava/lang/String;)V
  .limit stack 2
  getstatic java/lang/System/out Ljava/io/PrintStream;
  ldc "Hello, world"
  invokevirtual java/io/PrintStream/println(Ljava/lang/String;)V
  return
.end method
`

func TestGrammarDriver(t *testing.T) {
	t.Chdir(t.TempDir())

	cases := []struct {
		name       string
		src        string
		wantStdout string
		wantStderr string
	}{
		{"accepted", hello, "PASSED\n", ""},
		{"syntax error", strings.Replace(hello, ".super", ".supper", 1), "", "FAILED\n"},
		{"empty input", "", "", "FAILED\n"},
		{"not assembly", "int main() { return 0; }\n", "", "FAILED\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(strings.NewReader(tc.src), &stdout, &stderr)
			if code != 0 {
				t.Fatalf("exit code %d, want 0", code)
			}
			if stdout.String() != tc.wantStdout {
				t.Fatalf("stdout = %q, want %q", stdout.String(), tc.wantStdout)
			}
			if stderr.String() != tc.wantStderr {
				t.Fatalf("stderr = %q, want %q", stderr.String(), tc.wantStderr)
			}
		})
	}
}

func TestGrammarDriverIgnoresConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "phoron.yml")
	if err := os.WriteFile(cfg, []byte("log:\n  level: debug\nmax_errors: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("PHORON_CONFIG", cfg)

	var stdout, stderr bytes.Buffer
	if code := run(strings.NewReader(hello), &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, want 0", code)
	}
	if stdout.String() != "PASSED\n" {
		t.Fatalf("stdout = %q, want %q", stdout.String(), "PASSED\n")
	}
	if stderr.Len() != 0 {
		t.Fatalf("stderr = %q, want empty", stderr.String())
	}

	stdout.Reset()
	stderr.Reset()
	run(strings.NewReader(strings.Replace(hello, ".super", ".supper", 1)), &stdout, &stderr)
	if stdout.Len() != 0 || stderr.String() != "FAILED\n" {
		t.Fatalf("rejected run wrote stdout %q stderr %q", stdout.String(), stderr.String())
	}
}
