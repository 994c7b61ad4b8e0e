package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLinesExpandsStdinAndFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.txt")
	if err := os.WriteFile(path, []byte("Engineering\n\n  Marketing  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	e := &Expander{Stdin: strings.NewReader("Sales Team\n")}

	got, err := e.Lines([]string{"All Users", "@" + path, "-"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"All Users", "Engineering", "Marketing", "Sales Team"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Lines = %q, want %q", got, want)
	}
}

func TestLinesStdinOnce(t *testing.T) {
	e := &Expander{Stdin: strings.NewReader("a\n")}
	if _, err := e.Lines([]string{"-", "-"}); !errors.Is(err, ErrStdinReused) {
		t.Errorf("err = %v, want ErrStdinReused", err)
	}
}

func TestLinesMissingFile(t *testing.T) {
	e := &Expander{Stdin: strings.NewReader("")}
	if _, err := e.Lines([]string{"@" + filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestText(t *testing.T) {
	e := &Expander{Stdin: strings.NewReader("line one\nline two\n")}
	if got, _ := e.Text("plain"); got != "plain" {
		t.Errorf("Text(plain) = %q", got)
	}
	got, err := e.Text("-")
	if err != nil {
		t.Fatal(err)
	}
	if got != "line one\nline two" {
		t.Errorf("Text(-) = %q", got)
	}
}
