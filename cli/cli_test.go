package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/clip/pkg"
)

const testManifest = `
name: calc
summary: desk calculator
patterns:
  - pattern: add <a:int> <b:int>
    description: add two integers
  - pattern: neg <a:int>
    description: negate an integer
`

func writeManifest(t *testing.T, doc string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "spec.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

// run executes the CLI with captured streams.
func run(t *testing.T, argv ...string) (int, string, string) {
	t.Helper()

	c := &CLI{
		ctx:    context.Background(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}

	c.log.scan(argv)

	s, err := c.spec()
	if err != nil {
		t.Fatalf("spec(): %v", err)
	}

	status := s.Process(append([]string{pkg.Name}, argv...))

	return status,
		c.stdout.(*bytes.Buffer).String(),
		c.stderr.(*bytes.Buffer).String()
}

func TestVersion(t *testing.T) {
	status, out, _ := run(t, "version")
	if status != 0 {
		t.Fatalf("status = %d", status)
	}

	if !strings.Contains(out, pkg.Name) || !strings.Contains(out, pkg.Version) {
		t.Errorf("output = %q", out)
	}
}

func TestCheck(t *testing.T) {
	path := writeManifest(t, testManifest)

	status, out, _ := run(t, "check", path)
	if status != 0 {
		t.Fatalf("status = %d", status)
	}

	if !strings.Contains(out, "2 patterns") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckRejectsAmbiguousManifest(t *testing.T) {
	path := writeManifest(t, `
patterns:
  - pattern: copy <a> <b>
  - pattern: copy <src> <dst>
`)

	status, _, errOut := run(t, "check", path)
	if status == 0 {
		t.Fatal("ambiguous manifest must not pass")
	}

	if !strings.Contains(errOut, "overlapping") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestCheckMissingFile(t *testing.T) {
	status, _, errOut := run(t, "check", "/no/such/manifest.yaml")
	if status == 0 {
		t.Fatal("missing manifest must fail")
	}

	if errOut == "" {
		t.Error("expected a diagnostic on stderr")
	}
}

func TestTry(t *testing.T) {
	path := writeManifest(t, testManifest)

	t.Run("match", func(t *testing.T) {
		status, out, _ := run(t, "try", path, "add", "2", "3")
		if status != 0 {
			t.Fatalf("status = %d", status)
		}

		if !strings.Contains(out, "status 0") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("no match", func(t *testing.T) {
		status, _, errOut := run(t, "try", path, "mul", "2", "3")
		if status == 0 {
			t.Fatal("unmatched arguments must fail")
		}

		if errOut == "" {
			t.Error("expected a diagnostic on stderr")
		}
	})
}

func TestUnknownCommand(t *testing.T) {
	status, _, errOut := run(t, "frobnicate")
	if status == 0 {
		t.Fatal("unknown command must fail")
	}

	if !strings.Contains(errOut, pkg.Name+":") {
		t.Errorf("stderr = %q", errOut)
	}
}
