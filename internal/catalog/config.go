package catalog

import (
	"context"
	"encoding/json"
	"fmt"
)

const sqlGetGlobalConfig = `SELECT hidden_folders, ignored_folders, use_cookies FROM config WHERE id = 1`

// GetGlobalConfig returns the singleton config row. hidden_folders is a
// display-only filter applied by the HTTP layer (the index still contains
// those folders); ignored_folders is consulted by the Scanner to prune
// subtrees during a walk.
func (s *Store) GetGlobalConfig(ctx context.Context) (*GlobalConfig, error) {
	var (
		hiddenRaw, ignoredRaw string
		useCookies            int
	)

	err := s.db.QueryRowContext(ctx, sqlGetGlobalConfig).Scan(&hiddenRaw, &ignoredRaw, &useCookies)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetching global config: %w", err)
	}

	cfg := &GlobalConfig{UseCookies: useCookies != 0}

	if err := json.Unmarshal([]byte(hiddenRaw), &cfg.HiddenFolders); err != nil {
		return nil, fmt.Errorf("catalog: decoding hidden_folders: %w", err)
	}

	if err := json.Unmarshal([]byte(ignoredRaw), &cfg.IgnoredFolders); err != nil {
		return nil, fmt.Errorf("catalog: decoding ignored_folders: %w", err)
	}

	return cfg, nil
}

// SetHiddenFolders replaces the display-only hidden-folders list.
func (s *Store) SetHiddenFolders(ctx context.Context, folders []string) error {
	raw, err := json.Marshal(folders)
	if err != nil {
		return fmt.Errorf("catalog: encoding hidden_folders: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE config SET hidden_folders = ? WHERE id = 1`, string(raw)); err != nil {
		return fmt.Errorf("catalog: saving hidden_folders: %w", err)
	}

	return nil
}

// SetIgnoredFolders replaces the scanner-level ignored-folder-name list.
func (s *Store) SetIgnoredFolders(ctx context.Context, folders []string) error {
	raw, err := json.Marshal(folders)
	if err != nil {
		return fmt.Errorf("catalog: encoding ignored_folders: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE config SET ignored_folders = ? WHERE id = 1`, string(raw)); err != nil {
		return fmt.Errorf("catalog: saving ignored_folders: %w", err)
	}

	return nil
}

// SetUseCookies toggles the cookie-use flag consumed by the (out-of-core)
// downloader subsystem.
func (s *Store) SetUseCookies(ctx context.Context, use bool) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE config SET use_cookies = ? WHERE id = 1`, boolToInt(use)); err != nil {
		return fmt.Errorf("catalog: saving use_cookies: %w", err)
	}

	return nil
}
