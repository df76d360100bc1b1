package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Document is a local file selected for submission.
type Document struct {
	Path    string
	HashHex string
	Size    int64
}

type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// Collector selects documents from the local filesystem.
type Collector struct {
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> default set
	SkipHidden  bool
	logger      *slog.Logger
}

func NewCollector(allowed map[string]struct{}, skipHidden bool, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{AllowedExts: allowed, SkipHidden: skipHidden, logger: logger}
}

// Hash reads path and returns a Document with its sha256 content hash.
func (c *Collector) Hash(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			c.logger.Warn("close file error", "path", path, "error", err)
		}
	}(f)

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return Document{}, err
	}
	return Document{Path: path, HashHex: hex.EncodeToString(h.Sum(nil)), Size: n}, nil
}

// CollectDirectory walks root, skips hidden entries if requested and returns
// every file with an allowed extension, sorted by path.
func (c *Collector) CollectDirectory(root string) ([]Document, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var docs []Document
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			c.logger.Warn("ingest.walk_error", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if c.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path), c.AllowedExts) {
			return nil
		}
		stats.Matched++

		doc, err := c.Hash(path)
		if err != nil {
			c.logger.Warn("ingest.hash_error", "path", path, "error", err)
			stats.Failed++
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	c.logger.Info("ingest.directory.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"failed", stats.Failed,
	)
	return docs, stats, nil
}

// CollectPaths hashes explicit paths, keeping their order. Any unreadable
// path fails the whole call.
func (c *Collector) CollectPaths(paths []string) ([]Document, error) {
	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		doc, err := c.Hash(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
