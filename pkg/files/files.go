// Package files stores generated images on disk as WebP, keyed by
// "{documentID}/{role}". Writing to an existing key overwrites it, which
// makes single-asset regeneration idempotent at the storage layer.
package files

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/webp"

	"crimson/pkg/utils"
)

type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string { return s.root }

// Store transcodes the payload to WebP and writes it under the key,
// returning the public path the server serves it from.
func (s *Store) Store(key string, payload []byte) (string, error) {
	img, err := png.Decode(bytes.NewReader(payload))
	if err != nil {
		// not all backends return PNG; fall back to generic decode
		var err2 error
		img, _, err2 = image.Decode(bytes.NewReader(payload))
		if err2 != nil {
			return "", fmt.Errorf("decoding image (png: %v, generic: %v)", err, err2)
		}
	}

	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, webp.Options{Lossless: false, Quality: 95}); err != nil {
		return "", fmt.Errorf("encoding webp: %w", err)
	}

	rel := s.relPath(key)
	full := filepath.Join(s.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating image dir: %w", err)
	}
	if err := os.WriteFile(full, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", full, err)
	}

	return "/images/" + filepath.ToSlash(rel), nil
}

// Delete removes every asset under the key prefix (a document's directory).
func (s *Store) Delete(prefix string) error {
	clean := utils.SanitizeFilename(strings.TrimSuffix(prefix, "/"))
	if clean == "" || clean == "." || clean == ".." {
		return fmt.Errorf("refusing to delete prefix %q", prefix)
	}
	return os.RemoveAll(filepath.Join(s.root, clean))
}

func (s *Store) relPath(key string) string {
	var parts []string
	for _, part := range strings.Split(key, "/") {
		part = utils.SanitizeFilename(part)
		// keys come from request paths; never let one climb out of root
		if part == "" || part == "." || part == ".." {
			continue
		}
		parts = append(parts, part)
	}
	return filepath.Join(parts...) + ".webp"
}
