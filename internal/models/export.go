package models

import "time"

// Format is an export format. Each format is also an independent download
// channel.
type Format string

const (
	FormatDocument Format = "document"
	FormatPage     Format = "page"
	FormatImageSet Format = "images"
	FormatVideo    Format = "video"
)

var Formats = []Format{FormatDocument, FormatPage, FormatImageSet, FormatVideo}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", ErrInvalidFormat
}

func (f Format) MimeType() string {
	switch f {
	case FormatDocument:
		return "application/pdf"
	case FormatPage:
		return "text/html"
	case FormatImageSet:
		return "application/zip"
	case FormatVideo:
		return "video/mp4"
	}
	return "application/octet-stream"
}

func (f Format) Extension() string {
	switch f {
	case FormatDocument:
		return ".pdf"
	case FormatPage:
		return ".html"
	case FormatImageSet:
		return ".zip"
	case FormatVideo:
		return ".mp4"
	}
	return ""
}

type Artifact struct {
	Format    Format
	DiskPath  string
	FileName  string
	MimeType  string
	CreatedAt time.Time
}
