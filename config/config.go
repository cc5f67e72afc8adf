// Package config loads optional startup defaults from a TOML file,
// applied under whatever the command line sets explicitly.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds every setting that can be defaulted from a file.
// Fields are pointers so Load can tell "absent from the file" apart
// from "explicitly set to the zero value."
type Config struct {
	CodelSize          *int    `toml:"codel-size"`
	UnknownColorPolicy *string `toml:"unknown-color-policy"`
	MaxIter            *int    `toml:"max-iter"`
	PaletteFile        *string `toml:"palette-file"`
	Verbose            *bool   `toml:"verbose"`
}

// DefaultPath is checked when neither --config nor $PIET_CONFIG names
// a file explicitly.
const DefaultPath = ".pietrc.toml"

// EnvVar is checked before DefaultPath.
const EnvVar = "PIET_CONFIG"

// Resolve picks the config file to load: explicitPath if given,
// otherwise $PIET_CONFIG, otherwise DefaultPath if it exists in the
// current directory. An empty return means no config file applies.
func Resolve(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if p := os.Getenv(EnvVar); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// Load parses path as TOML into a Config. A missing or malformed file
// is always an error; callers that want "no config file" to be a
// non-error should check Resolve's return value first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file %q: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("could not parse config file %q: %w", path, err)
	}
	return &c, nil
}

// ApplyInt sets *dest to *src only when dest currently holds zero and
// src is set — the "config fills in what the command line left at
// its built-in default" merge rule. Zero is indistinguishable from
// "explicitly set to zero" on the command line; this is an accepted
// imprecision for these non-zero-meaningful fields (codel size and
// max-iter are never meaningfully zero).
func ApplyInt(dest *int, src *int) {
	if src != nil && *dest == 0 {
		*dest = *src
	}
}

func ApplyString(dest *string, src *string) {
	if src != nil && *dest == "" {
		*dest = *src
	}
}

func ApplyBool(dest *bool, src *bool) {
	if src != nil && !*dest {
		*dest = *src
	}
}
