// Package config handles repository and global configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents repository configuration stored in
// .bibmerge/config.json.
type Config struct {
	// ScholarAPIBase overrides the metadata API base URL.
	ScholarAPIBase string `json:"scholar_api_base,omitempty"`
	// DefaultWeight is the fold weight applied to candidates that do not
	// carry their own.
	DefaultWeight float64 `json:"default_weight,omitempty"`
	// RankSize is the default bound for the top-N ranker.
	RankSize int `json:"rank_size,omitempty"`
}

const (
	BibmergeDir    = ".bibmerge"
	ConfigFile     = "config.json"
	PapersFile     = "papers.jsonl"
	CandidatesFile = "candidates.jsonl"
	EvidenceFile   = "evidence.jsonl"
	CacheDir       = "cache"
	DBFile         = "papers.db"
)

// DefaultRankSize bounds the ranker when config leaves it unset.
const DefaultRankSize = 20

// BibmergePath returns the path to the .bibmerge directory from a root
// path.
func BibmergePath(root string) string {
	return filepath.Join(root, BibmergeDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, BibmergeDir, ConfigFile)
}

// PapersPath returns the path to papers.jsonl from a root path.
func PapersPath(root string) string {
	return filepath.Join(root, BibmergeDir, PapersFile)
}

// CandidatesPath returns the path to candidates.jsonl from a root path.
func CandidatesPath(root string) string {
	return filepath.Join(root, BibmergeDir, CandidatesFile)
}

// EvidencePath returns the path to evidence.jsonl from a root path.
func EvidencePath(root string) string {
	return filepath.Join(root, BibmergeDir, EvidenceFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, BibmergeDir, CacheDir)
}

// DBPath returns the path to papers.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, BibmergeDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a bibmerge repository.
func IsRepository(root string) bool {
	info, err := os.Stat(BibmergePath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a bibmerge
// repository. Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a bibmerge repository (no .bibmerge directory found)")
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory. Returns the
// original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
