package output

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// DisplayPath shortens file to a root-relative path when it lies under root.
func DisplayPath(root, file string) string {
	if root == "" || !filepath.IsAbs(file) {
		return file
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return file
	}
	rel, err := filepath.Rel(absRoot, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return file
	}
	return rel
}
