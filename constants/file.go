package constants

import "strings"

// AllowedExtensions holds the file extensions the document loader accepts.
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"text": {},
	"md":   {},
}

// MaxFileSizeMBDefault caps uploaded document size unless config overrides it.
const MaxFileSizeMBDefault = 50

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
