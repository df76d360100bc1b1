package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestCollectDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.pdf":           "b",
		"a.PNG":           "a",
		"notes.md":        "skip",
		".hidden.pdf":     "skip",
		".cache/x.pdf":    "skip",
		"sub/c.docx":      "c",
		"sub/deep/d.tiff": "d",
	})

	docs, stats, err := NewCollector(nil, true, nil).CollectDirectory(root)
	if err != nil {
		t.Fatalf("CollectDirectory: %v", err)
	}
	var got []string
	for _, d := range docs {
		rel, _ := filepath.Rel(root, d.Path)
		got = append(got, filepath.ToSlash(rel))
	}
	want := []string{"a.PNG", "b.pdf", "sub/c.docx", "sub/deep/d.tiff"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("docs (-want +got):\n%s", diff)
	}
	if stats.Matched != 4 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCollectDirectoryCustomExtensions(t *testing.T) {
	root := writeTree(t, map[string]string{"a.pdf": "a", "b.csv": "b", ".c.csv": "c"})

	docs, _, err := NewCollector(ExtSet([]string{".CSV"}), false, nil).CollectDirectory(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("docs = %+v, want the two csv files", docs)
	}
}

func TestCollectDirectoryErrors(t *testing.T) {
	c := NewCollector(nil, true, nil)
	if _, _, err := c.CollectDirectory(""); err == nil {
		t.Error("empty root accepted")
	}
	if _, _, err := c.CollectDirectory(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("missing root accepted")
	}
}

func TestCollectPathsHashesInOrder(t *testing.T) {
	root := writeTree(t, map[string]string{"x.pdf": "same", "y.pdf": "same", "z.pdf": "other"})
	paths := []string{filepath.Join(root, "z.pdf"), filepath.Join(root, "x.pdf"), filepath.Join(root, "y.pdf")}

	docs, err := NewCollector(nil, true, nil).CollectPaths(paths)
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256([]byte("same"))
	if docs[1].HashHex != hex.EncodeToString(sum[:]) || docs[1].HashHex != docs[2].HashHex {
		t.Errorf("hashes = %s %s", docs[1].HashHex, docs[2].HashHex)
	}
	if docs[0].Path != paths[0] || docs[0].Size != int64(len("other")) {
		t.Errorf("first doc = %+v", docs[0])
	}

	if _, err := NewCollector(nil, true, nil).CollectPaths([]string{filepath.Join(root, "nope.pdf")}); err == nil {
		t.Error("missing path accepted")
	}
}

func TestHelpers(t *testing.T) {
	if !IsHidden("/a/.env") || IsHidden("/a/b.pdf") || IsHidden(".") {
		t.Error("IsHidden")
	}
	if !AllowedExt(".PDF", nil) || AllowedExt(".exe", nil) {
		t.Error("AllowedExt default set")
	}
	if ExtSet(nil) != nil || ExtSet([]string{" "}) != nil {
		t.Error("ExtSet of empty input should be nil")
	}
}
