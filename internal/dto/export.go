package dto

import "time"

type ExportRequest struct {
	Markdown string `json:"markdown"`
}

type ExportResponse struct {
	DownloadPageURL string `json:"downloadPageUrl"`
	FileName        string `json:"file"`
	Format          string `json:"format"`
}

type DownloadInfoResponse struct {
	FileName    string    `json:"file"`
	Format      string    `json:"format"`
	Mime        string    `json:"mime"`
	DownloadURL string    `json:"downloadUrl"`
	IssuedAt    time.Time `json:"issued"`
}
