package models

import (
	"fmt"
	"path"
	"strings"
)

// Attachment is the normalized metadata of one submission document.
type Attachment struct {
	DocumentID       *int   `json:"document_id"`
	FileID           *int   `json:"file_id"`
	StoredPath       string `json:"stored_path,omitempty"`
	OriginalName     string `json:"original_name"`
	DocumentTypeName string `json:"document_type_name,omitempty"`
	Size             *int64 `json:"size"`
	MimeType         string `json:"mime_type,omitempty"`
	IsPublic         bool   `json:"is_public"`
	Openable         bool   `json:"openable"`

	// Every name/path spelling found on the raw record, used by the merged-artifact filter.
	NameCandidates []string `json:"-"`
	PathCandidates []string `json:"-"`
}

// HasFileID reports whether the managed-file endpoint can serve this attachment.
func (a Attachment) HasFileID() bool {
	return a.FileID != nil && *a.FileID > 0
}

// IsOpenable reports whether the attachment can be fetched by file id or by path.
func (a Attachment) IsOpenable() bool {
	return a.HasFileID() || strings.TrimSpace(a.StoredPath) != ""
}

// DisplayName returns the best human readable name for the attachment.
func (a Attachment) DisplayName() string {
	if name := strings.TrimSpace(a.OriginalName); name != "" {
		return name
	}
	for _, candidate := range a.NameCandidates {
		if name := strings.TrimSpace(candidate); name != "" {
			return name
		}
	}
	if p := strings.TrimSpace(a.StoredPath); p != "" {
		return path.Base(strings.ReplaceAll(p, "\\", "/"))
	}
	if a.HasFileID() {
		return fmt.Sprintf("file-%d", *a.FileID)
	}
	return "-"
}

// MergeResult is the in-memory outcome of assembling attachments into one PDF.
type MergeResult struct {
	PDF     []byte   `json:"-"`
	Pages   int      `json:"pages"`
	Merged  []string `json:"merged"`
	Skipped []string `json:"skipped"`
}
