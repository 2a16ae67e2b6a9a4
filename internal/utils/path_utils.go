package utils

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/funvibe/tot/internal/config"
)

// ResolveIncludePath resolves an include path written inside the schema file
// ownerRel against that file's directory. Both paths are relative to the
// registry root; the result is slash-separated and cleaned. ok is false when
// the result escapes the root.
func ResolveIncludePath(ownerRel, includePath string) (string, bool) {
	includePath = filepath.ToSlash(includePath)
	joined := path.Join(path.Dir(filepath.ToSlash(ownerRel)), includePath)
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return "", false
	}
	return joined, true
}

// NormalizeRelPath returns rel in the slash-separated form used as registry key.
func NormalizeRelPath(rel string) string {
	if rel == "" {
		return ""
	}
	return path.Clean(filepath.ToSlash(rel))
}

// TypePathPrefix derives the namespace of a schema file from its relative
// path: "a/b.yaml" becomes "a::b".
func TypePathPrefix(rel string) string {
	rel = config.TrimSchemaExt(NormalizeRelPath(rel))
	return strings.ReplaceAll(rel, "/", config.NamespaceSeparator)
}

// NamespaceFilePath is the inverse of TypePathPrefix: "a::b" becomes "a/b.yaml".
func NamespaceFilePath(namespace string) string {
	return strings.ReplaceAll(namespace, config.NamespaceSeparator, "/") + config.SchemaFileExt
}
