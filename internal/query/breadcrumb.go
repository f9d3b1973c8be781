package query

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bwan3150/resourcer/internal/catalog"
)

// Crumb is one segment of a breadcrumb trail.
type Crumb struct {
	Name string
	Path string
}

// Breadcrumb returns the ordered path segments from sourceRoot to folder
// inclusive. folder must equal sourceRoot or lie under it.
func Breadcrumb(folder, sourceRoot string) ([]Crumb, error) {
	if folder != sourceRoot && !strings.HasPrefix(folder, sourceRoot+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s is not under source root %s", catalog.ErrInvalidInput, folder, sourceRoot)
	}

	crumbs := []Crumb{{Name: filepath.Base(sourceRoot), Path: sourceRoot}}

	rel, err := filepath.Rel(sourceRoot, folder)
	if err != nil {
		return nil, fmt.Errorf("%w: computing relative path: %v", catalog.ErrInvalidInput, err)
	}

	if rel == "." {
		return crumbs, nil
	}

	cur := sourceRoot

	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		crumbs = append(crumbs, Crumb{Name: part, Path: cur})
	}

	return crumbs, nil
}
