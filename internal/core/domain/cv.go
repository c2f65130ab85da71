package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// MaxCVSize is the largest accepted CV upload (5 MiB).
const MaxCVSize int64 = 5 << 20

var allowedCVExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

// CV is the metadata of a user's uploaded curriculum vitae. The file itself
// lives in object storage under StorageLocation.
type CV struct {
	FileName        string    `json:"fileName"`
	StorageLocation string    `json:"-"`
	UploadDate      time.Time `json:"uploadDate"`
	SizeBytes       int64     `json:"fileSize"`
	MIMEType        string    `json:"fileType"`
}

// CVExtension returns the lowercased extension of name and whether it is one
// of the accepted document types.
func CVExtension(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := allowedCVExtensions[ext]
	return ext, ok
}
