package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// legacyConfig mirrors the shape of a pre-SQLite config.json file.
type legacyConfig struct {
	HiddenFolders       []string `json:"hidden_folders"`
	UseCookies          *bool    `json:"use_cookies"`
	SourceFolder        string   `json:"source_folder"`
	BackupSourceFolders []string `json:"backup_source_folders"`
}

type legacyCategoryOrder struct {
	Orders map[string][]string `json:"orders"`
}

type legacyDownloadEntry struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	Platform  string  `json:"platform"`
	Status    string  `json:"status"`
	FileName  *string `json:"file_name"`
	FilePath  *string `json:"file_path"`
	Error     *string `json:"error"`
	CreatedAt string  `json:"created_at"`
}

type legacyUploadEntry struct {
	ID           string  `json:"id"`
	FileName     string  `json:"file_name"`
	TargetFolder string  `json:"target_folder"`
	Status       string  `json:"status"`
	FileSize     int64   `json:"file_size"`
	Error        *string `json:"error"`
	CreatedAt    string  `json:"created_at"`
}

// absorbLegacyJSON migrates data from a predecessor's on-disk JSON files
// (config.json, category_order.json, download_history.json,
// upload_history.json) found next to the database into their corresponding
// tables, then deletes the JSON files. A fresh install with no such files
// is a silent no-op. This satisfies the migration contract's step 3
// (absorb-then-delete) idempotently: once a file is deleted, re-running
// finds nothing to absorb.
func (s *Store) absorbLegacyJSON(dbPath string) error {
	dir := filepath.Dir(dbPath)

	if err := s.absorbLegacyConfig(filepath.Join(dir, "config.json")); err != nil {
		return err
	}

	if err := s.absorbLegacyCategoryOrder(filepath.Join(dir, "category_order.json")); err != nil {
		return err
	}

	if err := s.absorbLegacyDownloadHistory(filepath.Join(dir, "download_history.json")); err != nil {
		return err
	}

	if err := s.absorbLegacyUploadHistory(filepath.Join(dir, "upload_history.json")); err != nil {
		return err
	}

	return nil
}

func (s *Store) absorbLegacyConfig(path string) error {
	data, ok, err := readLegacyFile(path)
	if err != nil || !ok {
		return err
	}

	var old legacyConfig
	if err := json.Unmarshal(data, &old); err != nil {
		s.logger.Warn("legacy config.json unreadable, skipping absorption", slog.String("error", err.Error()))
		return os.Remove(path)
	}

	useCookies := true
	if old.UseCookies != nil {
		useCookies = *old.UseCookies
	}

	hiddenJSON, _ := json.Marshal(old.HiddenFolders)

	const updateConfig = `UPDATE config SET hidden_folders = ?, use_cookies = ? WHERE id = 1`
	if _, err := s.db.Exec(updateConfig, string(hiddenJSON), boolToInt(useCookies)); err != nil {
		return fmt.Errorf("catalog: absorbing legacy config: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	if old.SourceFolder != "" {
		const insertSelected = `INSERT OR IGNORE INTO source_folders (folder_path, is_selected, created_at) VALUES (?, 1, ?)`
		if _, err := s.db.Exec(insertSelected, old.SourceFolder, now); err != nil {
			return fmt.Errorf("catalog: absorbing legacy selected source folder: %w", err)
		}
	}

	for _, backup := range old.BackupSourceFolders {
		const insertBackup = `INSERT OR IGNORE INTO source_folders (folder_path, is_selected, created_at) VALUES (?, 0, ?)`
		if _, err := s.db.Exec(insertBackup, backup, now); err != nil {
			return fmt.Errorf("catalog: absorbing legacy backup source folder: %w", err)
		}
	}

	s.logger.Info("absorbed legacy config.json", slog.String("path", path))

	return os.Remove(path)
}

func (s *Store) absorbLegacyCategoryOrder(path string) error {
	data, ok, err := readLegacyFile(path)
	if err != nil || !ok {
		return err
	}

	var old legacyCategoryOrder
	if err := json.Unmarshal(data, &old); err != nil {
		s.logger.Warn("legacy category_order.json unreadable, skipping absorption", slog.String("error", err.Error()))
		return os.Remove(path)
	}

	for folder, order := range old.Orders {
		orderJSON, err := json.Marshal(order)
		if err != nil {
			continue
		}

		const upsertLegacy = `INSERT OR REPLACE INTO category_order (source_folder, order_list) VALUES (?, ?)`
		if _, err := s.db.Exec(upsertLegacy, folder, string(orderJSON)); err != nil {
			return fmt.Errorf("catalog: absorbing legacy category order: %w", err)
		}

		const upsertNew = `INSERT OR REPLACE INTO subfolder_order (folder_path, order_list) VALUES (?, ?)`
		if _, err := s.db.Exec(upsertNew, folder, string(orderJSON)); err != nil {
			return fmt.Errorf("catalog: absorbing legacy category order into subfolder order: %w", err)
		}
	}

	s.logger.Info("absorbed legacy category_order.json", slog.String("path", path))

	return os.Remove(path)
}

func (s *Store) absorbLegacyDownloadHistory(path string) error {
	data, ok, err := readLegacyFile(path)
	if err != nil || !ok {
		return err
	}

	var entries []legacyDownloadEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("legacy download_history.json unreadable, skipping absorption", slog.String("error", err.Error()))
		return os.Remove(path)
	}

	const insert = `INSERT OR IGNORE INTO download_history
		(id, url, platform, status, file_name, file_path, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	for _, e := range entries {
		if _, err := s.db.Exec(insert, e.ID, e.URL, e.Platform, e.Status, e.FileName, e.FilePath, e.Error, e.CreatedAt); err != nil {
			return fmt.Errorf("catalog: absorbing legacy download history: %w", err)
		}
	}

	s.logger.Info("absorbed legacy download_history.json", slog.String("path", path), slog.Int("count", len(entries)))

	return os.Remove(path)
}

func (s *Store) absorbLegacyUploadHistory(path string) error {
	data, ok, err := readLegacyFile(path)
	if err != nil || !ok {
		return err
	}

	var entries []legacyUploadEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("legacy upload_history.json unreadable, skipping absorption", slog.String("error", err.Error()))
		return os.Remove(path)
	}

	const insert = `INSERT OR IGNORE INTO upload_history
		(id, file_name, target_folder, status, file_size, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	for _, e := range entries {
		if _, err := s.db.Exec(insert, e.ID, e.FileName, e.TargetFolder, e.Status, e.FileSize, e.Error, e.CreatedAt); err != nil {
			return fmt.Errorf("catalog: absorbing legacy upload history: %w", err)
		}
	}

	s.logger.Info("absorbed legacy upload_history.json", slog.String("path", path), slog.Int("count", len(entries)))

	return os.Remove(path)
}

// readLegacyFile returns (data, true, nil) if path exists and was read,
// (nil, false, nil) if it does not exist, or (nil, false, err) on any other
// read failure.
func readLegacyFile(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("catalog: reading legacy file %s: %w", path, err)
	}

	return data, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
