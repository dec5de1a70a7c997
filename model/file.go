package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type FileRole string

const (
	FileRoleAttachment FileRole = "ATTACHMENT"
	FileRoleInline     FileRole = "INLINE"
	FileRoleCover      FileRole = "COVER"
)

// Owner tables referenced by upload_file_links.owner_table.
const (
	OwnerNotices           = "notices"
	OwnerApplyApplications = "apply_applications"
)

type UploadFile struct {
	ID           int64     `json:"id"`
	ServerPath   string    `json:"-"`
	FileName     string    `json:"fileName"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Ext          string    `json:"ext"`
	Size         int64     `json:"size"`
	DownloadURL  string    `json:"downloadUrl"`
	CreatedBy    *int64    `json:"createdBy,omitempty"`
	UpdatedBy    *int64    `json:"updatedBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UploadFileLink struct {
	ID         int64     `json:"id"`
	FileID     int64     `json:"fileId"`
	OwnerTable string    `json:"ownerTable"`
	OwnerID    int64     `json:"ownerId"`
	Role       FileRole  `json:"role"`
	SortOrder  int       `json:"sortOrder"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LinkedFile is a file as seen through one of its links.
type LinkedFile struct {
	FileID       int64    `json:"fileId"`
	OriginalName string   `json:"originalName"`
	Ext          string   `json:"ext"`
	MimeType     string   `json:"mimeType"`
	Size         int64    `json:"size"`
	Role         FileRole `json:"role"`
	SortOrder    int      `json:"sortOrder"`
	DownloadURL  string   `json:"downloadUrl"`
}

// FileReference points at a temp upload (uuid) or an existing file (numeric
// id). The JSON key tempFileId is accepted as an alias of fileId.
type FileReference struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
}

func (f *FileReference) UnmarshalJSON(data []byte) error {
	var raw struct {
		FileID     json.RawMessage `json:"fileId"`
		TempFileID json.RawMessage `json:"tempFileId"`
		FileName   string          `json:"fileName"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id := raw.FileID
	if len(id) == 0 || string(id) == "null" {
		id = raw.TempFileID
	}
	f.FileName = raw.FileName
	f.FileID = ""
	if len(id) == 0 || string(id) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(id, &s); err == nil {
		f.FileID = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(id, &n); err != nil {
		return fmt.Errorf("fileId must be a string or number: %w", err)
	}
	f.FileID = n.String()
	return nil
}

type TempUpload struct {
	TempFileID string `json:"tempFileId"`
	FileName   string `json:"fileName"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mimeType"`
	Extension  string `json:"extension"`
	PreviewURL string `json:"previewUrl"`
}

type Base64UploadRequest struct {
	FileName string `json:"fileName" validate:"required,max=255"`
	Data     string `json:"data" validate:"required"`
}

type TempCleanupStats struct {
	TotalFiles     int   `json:"totalFiles"`
	OldFiles       int   `json:"oldFiles"`
	TotalSizeBytes int64 `json:"totalSizeBytes"`
	MaxAgeHours    int   `json:"maxAgeHours"`
}

type TempCleanupResult struct {
	DeletedFiles       int `json:"deletedFiles"`
	DeletedDirectories int `json:"deletedDirectories"`
}

// FileCounts is the number of linked files per role for one owner.
type FileCounts map[FileRole]int64
