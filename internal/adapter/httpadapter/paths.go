package httpadapter

import (
	"errors"
	"path/filepath"
	"strings"
)

// errOutsideRoot is returned for request paths that resolve outside their root.
var errOutsideRoot = errors.New("path is outside the allowed directory")

// Roots confines the paths a client may name. Inputs resolve under Input and
// output directories under Output; relative paths are joined to the root.
type Roots struct {
	Input  string
	Output string
}

// confine resolves p against root and rejects it when it escapes root,
// lexically or through a symlink.
func confine(root, p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	p = filepath.Clean(p)
	if !within(root, p) {
		return "", errOutsideRoot
	}

	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		// Not there yet; the lexical check is all that applies.
		return p, nil
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		realRoot = root
	}
	if !within(realRoot, resolved) {
		return "", errOutsideRoot
	}
	return p, nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), p)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
