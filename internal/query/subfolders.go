package query

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/bwan3150/resourcer/internal/catalog"
)

// Subfolder describes one direct child directory of a browsed folder.
// Indexed is false when the child has never itself been scanned — its
// FileCount is then unknown rather than zero.
type Subfolder struct {
	Path      string
	Name      string
	FileCount int64
	Indexed   bool
}

// ListSubfolders lists the direct child directories of parent. Names come
// directly from the filesystem (hidden and configured-ignored names
// pruned, matching the scanner's walk rules) rather than from the
// folder_index table, since a directory's existence does not depend on it
// ever having been scanned. Each name is then merged with its FolderEntry
// (if one exists) for a file count, and ordered per the stable two-phase
// rule: names present in the folder's subfolder_order sort by their
// index; names absent sort alphabetically after all named entries.
func (e *Engine) ListSubfolders(ctx context.Context, parent string) ([]Subfolder, error) {
	cfg, err := e.store.GetGlobalConfig(ctx)
	if err != nil {
		return nil, err
	}

	ignored := make(map[string]bool, len(cfg.IgnoredFolders))
	for _, name := range cfg.IgnoredFolders {
		ignored[name] = true
	}

	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil, fmt.Errorf("%w: reading directory %s: %v", catalog.ErrIO, parent, err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := norm.NFC.String(entry.Name())
		if strings.HasPrefix(name, ".") || ignored[name] {
			continue
		}

		names = append(names, name)
	}

	order, err := e.store.GetSubfolderOrder(ctx, parent)
	if err != nil {
		return nil, err
	}

	sortSubfolderNames(names, order)

	out := make([]Subfolder, 0, len(names))

	for _, name := range names {
		path := filepath.Join(parent, name)

		folder, err := e.store.GetFolder(ctx, path)

		switch {
		case err == nil:
			out = append(out, Subfolder{Path: path, Name: name, FileCount: folder.FileCount, Indexed: true})
		case errors.Is(err, catalog.ErrNotFound):
			out = append(out, Subfolder{Path: path, Name: name, Indexed: false})
		default:
			return nil, err
		}
	}

	return out, nil
}

// sortSubfolderNames sorts names in place: entries present in order rank
// by their index there; entries absent from order rank after all named
// entries, sorted alphabetically among themselves.
func sortSubfolderNames(names []string, order []string) {
	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}

	sort.SliceStable(names, func(i, j int) bool {
		ri, iNamed := rank[names[i]]
		rj, jNamed := rank[names[j]]

		switch {
		case iNamed && jNamed:
			return ri < rj
		case iNamed:
			return true
		case jNamed:
			return false
		default:
			return names[i] < names[j]
		}
	})
}
