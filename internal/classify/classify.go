// Package classify maps a file extension to its media classification.
package classify

import (
	"strings"

	"github.com/bwan3150/resourcer/internal/catalog"
)

var extensionSets = map[string]catalog.FileType{
	"jpg": catalog.FileTypeImage, "jpeg": catalog.FileTypeImage, "png": catalog.FileTypeImage,
	"webp": catalog.FileTypeImage, "bmp": catalog.FileTypeImage, "tiff": catalog.FileTypeImage,
	"svg": catalog.FileTypeImage, "heic": catalog.FileTypeImage, "heif": catalog.FileTypeImage,
	"avif": catalog.FileTypeImage,

	"mp4": catalog.FileTypeVideo, "mov": catalog.FileTypeVideo, "avi": catalog.FileTypeVideo,
	"mkv": catalog.FileTypeVideo, "flv": catalog.FileTypeVideo, "wmv": catalog.FileTypeVideo,
	"m4v": catalog.FileTypeVideo, "webm": catalog.FileTypeVideo,

	"gif": catalog.FileTypeGIF,

	"mp3": catalog.FileTypeAudio, "wav": catalog.FileTypeAudio, "aac": catalog.FileTypeAudio,
	"flac": catalog.FileTypeAudio, "m4a": catalog.FileTypeAudio, "ogg": catalog.FileTypeAudio,
	"wma": catalog.FileTypeAudio,

	"pdf": catalog.FileTypePDF,

	// clip is the save format of the Clip Studio Paint illustration tool;
	// it classifies as image so it surfaces alongside other artwork.
	"clip": catalog.FileTypeImage,
}

// Classify returns the media type for a file extension (with or without a
// leading dot), matched case-insensitively against the fixed extension
// sets. Unknown extensions classify as FileTypeOther rather than being
// rejected — every file is indexable.
func Classify(ext string) catalog.FileType {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	if t, ok := extensionSets[ext]; ok {
		return t
	}

	return catalog.FileTypeOther
}
