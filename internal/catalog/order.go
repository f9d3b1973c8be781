package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	sqlGetSubfolderOrder = `SELECT order_list FROM subfolder_order WHERE folder_path = ?`

	sqlSetSubfolderOrder = `INSERT INTO subfolder_order (folder_path, order_list) VALUES (?, ?)
		ON CONFLICT(folder_path) DO UPDATE SET order_list = excluded.order_list`
)

// GetSubfolderOrder returns the saved child-name order override for
// folder, or an empty slice if none has been saved.
func (s *Store) GetSubfolderOrder(ctx context.Context, folder string) ([]string, error) {
	var raw string

	err := s.db.QueryRowContext(ctx, sqlGetSubfolderOrder, folder).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("catalog: fetching subfolder order for %s: %w", folder, err)
	}

	var order []string
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return nil, fmt.Errorf("catalog: decoding subfolder order for %s: %w", folder, err)
	}

	return order, nil
}

// SetSubfolderOrder saves an explicit child-name order override for folder.
func (s *Store) SetSubfolderOrder(ctx context.Context, folder string, order []string) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("catalog: encoding subfolder order for %s: %w", folder, err)
	}

	if _, err := s.db.ExecContext(ctx, sqlSetSubfolderOrder, folder, string(raw)); err != nil {
		return fmt.Errorf("catalog: saving subfolder order for %s: %w", folder, err)
	}

	return nil
}
