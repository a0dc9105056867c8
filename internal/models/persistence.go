package models

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	StoreYAML   = "yaml"
	StoreSQLite = "sqlite"

	scoresFile = "high_scores.yaml"
	scoresDB   = "high_scores.db"
)

// YAMLStore keeps the high-score table in a YAML file.
type YAMLStore struct {
	path string
}

// NewYAMLStore returns a store writing high_scores.yaml under dir.
func NewYAMLStore(dir string) *YAMLStore {
	return &YAMLStore{path: filepath.Join(dir, scoresFile)}
}

// Path returns the backing file.
func (s *YAMLStore) Path() string {
	return s.path
}

func (s *YAMLStore) Load() ([]ScoreEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []ScoreEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read high scores: %w", err)
	}

	var table ScoreTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse high scores %s: %w", s.path, err)
	}

	// Re-sort in case the file was edited by hand.
	var out []ScoreEntry
	for _, e := range table.Entries {
		out = Insert(out, e)
	}
	if out == nil {
		out = []ScoreEntry{}
	}
	return out, nil
}

func (s *YAMLStore) Save(entry ScoreEntry) error {
	entries, err := s.Load()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(ScoreTable{Entries: Insert(entries, entry)})
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// OpenStore opens the high-score store of the given kind under dir.
func OpenStore(kind, dir string) (ScoreStore, error) {
	switch kind {
	case StoreYAML, "":
		return NewYAMLStore(dir), nil
	case StoreSQLite:
		return OpenSQLiteStore(filepath.Join(dir, scoresDB))
	default:
		return nil, fmt.Errorf("unknown score store %q", kind)
	}
}
