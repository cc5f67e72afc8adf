package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadParsesKnownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pietrc.toml")
	contents := `
codel-size = 4
unknown-color-policy = "nearest"
max-iter = 100000
verbose = true
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("could not write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.CodelSize == nil || *c.CodelSize != 4 {
		t.Errorf("CodelSize = %v, want 4", c.CodelSize)
	}
	if c.UnknownColorPolicy == nil || *c.UnknownColorPolicy != "nearest" {
		t.Errorf("UnknownColorPolicy = %v, want nearest", c.UnknownColorPolicy)
	}
	if c.MaxIter == nil || *c.MaxIter != 100000 {
		t.Errorf("MaxIter = %v, want 100000", c.MaxIter)
	}
	if c.Verbose == nil || !*c.Verbose {
		t.Errorf("Verbose = %v, want true", c.Verbose)
	}
	if c.PaletteFile != nil {
		t.Errorf("PaletteFile = %v, want unset", c.PaletteFile)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load of a missing file should return an error")
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("not = valid = toml ["), 0o644); err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of a malformed file should return an error")
	}
}

func TestResolvePrecedence(t *testing.T) {
	if got := Resolve("/explicit/path.toml"); got != "/explicit/path.toml" {
		t.Errorf("Resolve with explicit path = %q, want explicit path honored", got)
	}

	t.Setenv(EnvVar, "/env/path.toml")
	if got := Resolve(""); got != "/env/path.toml" {
		t.Errorf("Resolve with env var = %q, want env path honored", got)
	}

	t.Setenv(EnvVar, "")
	if got := Resolve(""); got != "" {
		t.Errorf("Resolve with nothing set = %q, want empty", got)
	}
}

func TestApplyIntFillsOnlyZero(t *testing.T) {
	src := 7
	dest := 0
	ApplyInt(&dest, &src)
	if dest != 7 {
		t.Errorf("dest = %d, want 7", dest)
	}

	dest = 3
	ApplyInt(&dest, &src)
	if dest != 3 {
		t.Errorf("dest = %d, want unchanged 3", dest)
	}

	dest = 0
	ApplyInt(&dest, nil)
	if dest != 0 {
		t.Errorf("dest = %d, want unchanged 0 for nil src", dest)
	}
}

func TestApplyStringAndBool(t *testing.T) {
	s := "nearest"
	destS := ""
	ApplyString(&destS, &s)
	if destS != "nearest" {
		t.Errorf("destS = %q, want nearest", destS)
	}

	b := true
	destB := false
	ApplyBool(&destB, &b)
	if !destB {
		t.Errorf("destB = %v, want true", destB)
	}
}
