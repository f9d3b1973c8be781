package catalog

import (
	"context"
	"fmt"
)

// sortColumns maps a SortOrder to its ORDER BY clause. Default (empty
// SortOrder) behaves as SortModifiedDesc per spec §4.4.
var sortColumns = map[SortOrder]string{
	SortModifiedDesc: "modified_at DESC",
	SortModifiedAsc:  "modified_at ASC",
	SortNameAsc:      "file_name ASC",
	SortNameDesc:     "file_name DESC",
	SortSizeAsc:      "file_size ASC",
	SortSizeDesc:     "file_size DESC",
	SortCreatedAsc:   "created_at ASC",
	SortCreatedDesc:  "created_at DESC",
}

// FilePage is one page of a list_files query result.
type FilePage struct {
	Files   []*FileEntry
	Total   int
	Offset  int
	Limit   int
	HasMore bool
}

// ListFilesPage returns a paginated, sorted, optionally type-filtered page
// of files in folder. Rows with current_path IS NULL (missing files) are
// always excluded, so moved-away files never appear. limit is clamped to
// MaxPageLimit.
func (s *Store) ListFilesPage(ctx context.Context, folder string, offset, limit int, typeFilter FileType, sort SortOrder) (*FilePage, error) {
	if limit <= 0 || limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	if offset < 0 {
		offset = 0
	}

	orderBy, ok := sortColumns[sort]
	if !ok {
		orderBy = sortColumns[SortModifiedDesc]
	}

	where := `folder_path = ? AND current_path IS NOT NULL`
	args := []any{folder}

	if typeFilter != "" {
		where += ` AND file_type = ?`
		args = append(args, string(typeFilter))
	}

	var total int

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM file_index WHERE %s`, where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("catalog: counting files in %s: %w", folder, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM file_index WHERE %s ORDER BY %s LIMIT ? OFFSET ?`,
		sqlSelectFileColumns, where, orderBy)

	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("catalog: listing files in %s: %w", folder, err)
	}
	defer rows.Close()

	var files []*FileEntry

	for rows.Next() {
		f, err := s.scanFileRow(rows)
		if err != nil {
			return nil, err
		}

		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterating file rows: %w", err)
	}

	return &FilePage{
		Files:   files,
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasMore: offset+limit < total,
	}, nil
}
