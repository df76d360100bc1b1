package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/indico-client/constants"
)

// AllowedExt checks if a file extension is in the allowed set.
func AllowedExt(ext string, allowed map[string]struct{}) bool {
	if allowed == nil {
		allowed = constants.AllowedExtensions
	}
	_, ok := allowed[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}

// ExtSet builds an extension set from user input; empty input yields nil,
// which selects the default set.
func ExtSet(exts []string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, e := range exts {
		if e = constants.NormalizeExt(e); e != "" {
			out[e] = struct{}{}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
