package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cvm-lang/cvm/internal/eval"
	"github.com/cvm-lang/cvm/internal/printer"
	"github.com/gkampitakis/go-snaps/snaps"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "program.cvm")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const adderSource = `letrec (adder = lambda (x) { lambda (y) { (.add x y) } }) { (.put ((adder 10) 5)) }`

func TestASTModeSnapshot(t *testing.T) {
	root, err := parseFile(writeSource(t, adderSource))
	if err != nil {
		t.Fatal(err)
	}
	snaps.MatchSnapshot(t, root.String())
}

func TestPrintModeSnapshot(t *testing.T) {
	root, err := parseFile(writeSource(t, adderSource))
	if err != nil {
		t.Fatal(err)
	}
	snaps.MatchSnapshot(t, printer.Print(root))
}

func TestRunModeProducesExpectedValue(t *testing.T) {
	root, err := parseFile(writeSource(t, adderSource))
	if err != nil {
		t.Fatal(err)
	}
	var stdout bytes.Buffer
	v, err := eval.Run(root, eval.Options{Stdout: &stdout})
	if err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "15" {
		t.Fatalf("stdout = %q, want %q", stdout.String(), "15")
	}
	// .put returns Void, so the program's final value is <void>.
	if v.Display() != "<void>" {
		t.Fatalf("got %q, want %q", v.Display(), "<void>")
	}
}

func TestParseFileMissingFile(t *testing.T) {
	if _, err := parseFile(filepath.Join(t.TempDir(), "missing.cvm")); err == nil {
		t.Fatal("expected an error for a nonexistent source file")
	}
}
