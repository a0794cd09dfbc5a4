package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etherealgames/nexuscore/engine/codec"
)

// FileStore implements Store against the local filesystem, one JSON
// file per wallet. It backs offline play and keeps the same lossy
// payload shape as the remote service so saves round-trip identically.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) path(wallet string) string {
	return filepath.Join(f.dir, wallet+".json")
}

// Load reads the profile file for wallet, or (nil, nil) when none
// exists.
func (f *FileStore) Load(_ context.Context, wallet string) (*Snapshot, error) {
	raw, err := os.ReadFile(f.path(wallet))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var body profileBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	bag := make(codec.Bag, len(body.CustomData))
	for _, kv := range body.CustomData {
		bag[kv[0]] = kv[1]
	}
	return &Snapshot{Name: body.Name, Data: bag}, nil
}

// Save writes the payload for wallet, creating the directory on first
// use.
func (f *FileStore) Save(_ context.Context, wallet string, pairs []codec.KV) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating save dir: %w", err)
	}

	custom := make([][2]string, len(pairs))
	for i, kv := range pairs {
		custom[i] = [2]string{kv.Key, kv.Value}
	}
	raw, err := json.MarshalIndent(profileBody{CustomData: custom}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path(wallet), raw, 0o644); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	return nil
}
