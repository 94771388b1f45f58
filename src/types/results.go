package types

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteResults serializes the tree to path as indented JSON. The write goes
// through a temp file in the same directory plus rename, so a crash mid-write
// never leaves a truncated results file behind.
func WriteResults(path string, tree *ResultTree) error {
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp results file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close results: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename results into place: %w", err)
	}
	return nil
}

// LoadResults reads a results file back into a tree, re-validating both the
// nested shape and the uniform-trial-count invariant.
func LoadResults(path string) (*ResultTree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	var tree ResultTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse results %s: %w", path, err)
	}
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("validate results %s: %w", path, err)
	}
	return &tree, nil
}
