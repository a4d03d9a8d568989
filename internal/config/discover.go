package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvConfig overrides config discovery with an explicit path.
	EnvConfig = "ASSETPACK_CONFIG"
	// EnvStrict makes failed publishes fail the command.
	EnvStrict = "ASSETPACK_STRICT"

	// DefaultLedgerName is the ledger file used when the config names none.
	DefaultLedgerName = "assetpack.versions"
)

// candidateNames are tried in order when discovering a config file.
var candidateNames = []string{
	"assetpack.yaml",
	"assetpack.yml",
	"assetpack.jsonc",
	"assetpack.json",
}

// Discover returns the config path to load. An explicit path wins, then
// ASSETPACK_CONFIG, then the first candidate file found in dir.
func Discover(explicit, dir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfig)); env != "" {
		return env, nil
	}
	for _, name := range candidateNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", fmt.Errorf("no config found in %s (looked for %s): %w",
		dir, strings.Join(candidateNames, ", "), os.ErrNotExist)
}

// EnvStrictEnabled returns true if ASSETPACK_STRICT is set to "1" or "true".
func EnvStrictEnabled() bool {
	return envBoolTrue(EnvStrict)
}

// envBoolTrue returns true if the env var is set to "1" or "true" (case-insensitive).
func envBoolTrue(key string) bool {
	v := os.Getenv(key)
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "1" || v == "true"
}
