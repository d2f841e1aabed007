// Package drafts writes generated character packs to disk, one directory
// per character with one markdown file per asset.
package drafts

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/packforge/packforge/pkg/pack"
)

// Store writes draft directories under a base directory.
type Store struct {
	baseDir string
}

// NewStore creates a draft store rooted at baseDir, creating it if needed.
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("draft directory cannot be empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create draft directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the root directory drafts are written under.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Save writes one character's assets as a draft directory and returns its
// path. The directory name combines the character identifier with a short
// seed hash so two characters that happen to share a name never collide.
// Files are staged in a temp directory and renamed into place, so a crash
// mid-write never leaves a partial draft at the final path.
func (s *Store) Save(seed, identifier string, assets *pack.AssetResults) (string, error) {
	if identifier == "" {
		return "", fmt.Errorf("draft identifier cannot be empty")
	}

	dirName := fmt.Sprintf("%s-%08x", identifier, seedHash(seed))
	finalPath := filepath.Join(s.baseDir, dirName)

	tmpPath, err := os.MkdirTemp(s.baseDir, "."+dirName+".tmp-")
	if err != nil {
		return "", fmt.Errorf("failed to stage draft: %w", err)
	}
	defer os.RemoveAll(tmpPath)

	for _, name := range assets.Names() {
		content, _ := assets.Get(name)
		file := filepath.Join(tmpPath, name+".md")
		if err := os.WriteFile(file, []byte(content+"\n"), 0o644); err != nil {
			return "", fmt.Errorf("failed to write asset %s: %w", name, err)
		}
	}

	// Re-running the same seed overwrites the previous draft.
	if err := os.RemoveAll(finalPath); err != nil {
		return "", fmt.Errorf("failed to replace existing draft: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("failed to finalize draft: %w", err)
	}
	return finalPath, nil
}

func seedHash(seed string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(seed))
	return h.Sum32()
}
