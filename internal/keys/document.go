package keys

import (
	"fmt"
	"path"
	"strings"
)

// sanitizeKey replaces spaces with hyphens and lowercases the string.
func sanitizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", "-"))
}

// Document returns the canonical S3 key for a minified document file.
func Document(filename string) string {
	return fmt.Sprintf("minified/%s", sanitizeKey(path.Base(filename)))
}
