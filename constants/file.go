package constants

import (
	"path/filepath"
	"strings"
)

// Summary chunks emitted once compilation has a terminal outcome.
const (
	CompileSucceededMessage = "✅ Compilation successful. Running..."
	CompileFailedMessage    = "❌ Compilation failed."
)

// BinaryExt is appended to the source stem to name the compiled program.
const BinaryExt = ".out"

// DefaultBinaryName is used when the source name has no usable stem.
const DefaultBinaryName = "program" + BinaryExt

// BinaryNameFor derives the output binary name from a source file name,
// e.g. "vector_add.cu" -> "vector_add.out". The result never equals the
// source name.
func BinaryNameFor(sourceFileName string) string {
	base := filepath.Base(sourceFileName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := stem + BinaryExt
	if stem == "" || stem == "." {
		name = DefaultBinaryName
	}
	if strings.EqualFold(name, base) {
		name = base + BinaryExt
	}
	return name
}

// ValidSourceFileName reports whether name is a plain file name that can be
// written directly inside a workspace.
func ValidSourceFileName(name string) bool {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." {
		return false
	}
	return filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}
