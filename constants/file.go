package constants

import "strings"

// Upload input kinds, stored in the journal.
const (
	InputKindFile = "FILE"
	InputKindURL  = "URL"
)

// AllowedExtensions holds the default document extensions picked up when a
// directory is submitted.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"xls":  {},
	"xlsx": {},
	"ppt":  {},
	"pptx": {},
	"txt":  {},
	"rtf":  {},
	"csv":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
