package httpapi

import (
	"time"

	"github.com/bwan3150/resourcer/internal/catalog"
	"github.com/bwan3150/resourcer/internal/indexer"
	"github.com/bwan3150/resourcer/internal/query"
)

// fileDTO is the JSON shape of a FileEntry. CurrentPath is serialized as
// null rather than an empty string when the file is missing, so the
// front end can distinguish "moved away" from "lives at the root".
type fileDTO struct {
	UUID        string  `json:"uuid"`
	CurrentPath *string `json:"current_path"`
	FolderPath  string  `json:"folder_path"`
	FileName    string  `json:"file_name"`
	FileType    string  `json:"file_type"`
	Extension   string  `json:"extension"`
	FileSize    int64   `json:"file_size"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
	IndexedAt   time.Time `json:"indexed_at"`
	SourceURL   *string   `json:"source_url"`
}

func newFileDTO(f *catalog.FileEntry) fileDTO {
	return fileDTO{
		UUID:        f.UUID,
		CurrentPath: f.CurrentPath,
		FolderPath:  f.FolderPath,
		FileName:    f.FileName,
		FileType:    string(f.FileType),
		Extension:   f.Extension,
		FileSize:    f.FileSize,
		CreatedAt:   f.CreatedAt,
		ModifiedAt:  f.ModifiedAt,
		IndexedAt:   f.IndexedAt,
		SourceURL:   f.SourceURL,
	}
}

type filePageDTO struct {
	Files   []fileDTO `json:"files"`
	Total   int       `json:"total"`
	Offset  int       `json:"offset"`
	Limit   int       `json:"limit"`
	HasMore bool      `json:"has_more"`
}

func newFilePageDTO(p *catalog.FilePage) filePageDTO {
	files := make([]fileDTO, len(p.Files))
	for i, f := range p.Files {
		files[i] = newFileDTO(f)
	}

	return filePageDTO{Files: files, Total: p.Total, Offset: p.Offset, Limit: p.Limit, HasMore: p.HasMore}
}

// folderDTO is the JSON shape of a FolderEntry.
type folderDTO struct {
	Path         string    `json:"path"`
	ParentPath   *string   `json:"parent_path"`
	SourceFolder string    `json:"source_folder"`
	Name         string    `json:"name"`
	Depth        int       `json:"depth"`
	FileCount    int64     `json:"file_count"`
	IndexedAt    time.Time `json:"indexed_at"`
}

func newFolderDTO(f *catalog.FolderEntry) folderDTO {
	return folderDTO{
		Path: f.Path, ParentPath: f.ParentPath, SourceFolder: f.SourceFolder,
		Name: f.Name, Depth: f.Depth, FileCount: f.FileCount, IndexedAt: f.IndexedAt,
	}
}

// subfolderDTO is the JSON shape of query.Subfolder (live-browsed, with
// FileCount unknown for a never-scanned child).
type subfolderDTO struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	FileCount int64  `json:"file_count"`
	Indexed   bool   `json:"indexed"`
}

func newSubfolderDTO(s query.Subfolder) subfolderDTO {
	return subfolderDTO{Path: s.Path, Name: s.Name, FileCount: s.FileCount, Indexed: s.Indexed}
}

type crumbDTO struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func newCrumbDTOs(crumbs []query.Crumb) []crumbDTO {
	out := make([]crumbDTO, len(crumbs))
	for i, c := range crumbs {
		out[i] = crumbDTO{Name: c.Name, Path: c.Path}
	}

	return out
}

type scanStatusDTO struct {
	IsScanning     bool `json:"is_scanning"`
	IsPaused       bool `json:"is_paused"`
	ScannedFiles   int  `json:"scanned_files"`
	ScannedFolders int  `json:"scanned_folders"`
}

func newScanStatusDTO(s indexer.ScanStatus, paused bool) scanStatusDTO {
	return scanStatusDTO{
		IsScanning: s.IsScanning, IsPaused: paused,
		ScannedFiles: s.ScannedFiles, ScannedFolders: s.ScannedFolders,
	}
}

type tagDTO struct {
	ID           int64  `json:"id"`
	SourceFolder string `json:"source_folder"`
	Name         string `json:"name"`
	Color        string `json:"color"`
}

func newTagDTO(t *catalog.Tag) tagDTO {
	return tagDTO{ID: t.ID, SourceFolder: t.SourceFolder, Name: t.Name, Color: t.Color}
}

func newTagDTOs(tags []*catalog.Tag) []tagDTO {
	out := make([]tagDTO, len(tags))
	for i, t := range tags {
		out[i] = newTagDTO(t)
	}

	return out
}
