package domain

import "time"

// Document is file metadata for an upload owned by a patient or doctor.
type Document struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Path         string    `json:"filepath"`
	MimeType     string    `json:"mimetype"`
	Size         int64     `json:"size"`
	Description  string    `json:"description"`
	UploadedAt   time.Time `json:"uploadDate"`
}
