// Package catalog implements the persistent, move-tracking file index: the
// schema, connection management, and CRUD operations over the embedded
// SQLite database that backs the rest of the indexer.
package catalog

import "time"

// FileType is the closed set of media classifications a file can carry.
type FileType string

// The fixed set of file classifications. Unknown extensions classify as
// FileTypeOther rather than being excluded from the index.
const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
	FileTypeGIF   FileType = "gif"
	FileTypeAudio FileType = "audio"
	FileTypePDF   FileType = "pdf"
	FileTypeOther FileType = "other"
)

// SourceFolder is a registered root of the media library.
type SourceFolder struct {
	ID         int64
	Path       string
	IsSelected bool
	CreatedAt  time.Time
}

// FileEntry is a file ever observed under some SourceFolder. CurrentPath is
// nil when the file is currently missing from disk; the row is retained so
// a later move can reattach it by fingerprint.
type FileEntry struct {
	UUID        string
	Fingerprint string // empty means "not yet computed"
	CurrentPath *string
	FolderPath  string
	FileName    string
	FileType    FileType
	Extension   string
	FileSize    int64
	CreatedAt   time.Time
	ModifiedAt  time.Time
	IndexedAt   time.Time
	SourceURL   *string
}

// Missing reports whether the file is not currently present on disk.
func (f *FileEntry) Missing() bool {
	return f.CurrentPath == nil
}

// FolderEntry is a directory observed under some SourceFolder. A row's mere
// existence means the directory has been scanned at least once — an empty
// directory still gets a FolderEntry.
type FolderEntry struct {
	Path         string
	ParentPath   *string
	SourceFolder string
	Name         string
	Depth        int
	FileCount    int64
	IndexedAt    time.Time
}

// Tag is a user-defined label scoped to a single source folder.
type Tag struct {
	ID           int64
	SourceFolder string
	Name         string
	Color        string
	CreatedAt    time.Time
}

// SortOrder enumerates the supported list_files sort modes.
type SortOrder string

// Supported sort orders for paginated file listings. ModifiedDesc is default.
const (
	SortModifiedDesc SortOrder = "modified_desc"
	SortModifiedAsc  SortOrder = "modified_asc"
	SortNameAsc      SortOrder = "name_asc"
	SortNameDesc     SortOrder = "name_desc"
	SortSizeAsc      SortOrder = "size_asc"
	SortSizeDesc     SortOrder = "size_desc"
	SortCreatedAsc   SortOrder = "created_asc"
	SortCreatedDesc  SortOrder = "created_desc"
)

// MaxPageLimit bounds list_files page size regardless of the caller's request.
const MaxPageLimit = 200

// DownloadHistoryEntry records one completed or failed download task.
type DownloadHistoryEntry struct {
	ID        string
	URL       string
	Platform  string
	Status    string
	FileName  *string
	FilePath  *string
	Error     *string
	CreatedAt time.Time
}

// UploadHistoryEntry records one completed or failed upload task.
type UploadHistoryEntry struct {
	ID           string
	FileName     string
	TargetFolder string
	Status       string
	FileSize     int64
	Error        *string
	CreatedAt    time.Time
}

// GlobalConfig is the singleton config row: display-only hidden folders and
// the cookie-use flag consumed by the (out-of-core) downloader subsystem.
type GlobalConfig struct {
	HiddenFolders  []string
	IgnoredFolders []string
	UseCookies     bool
}
