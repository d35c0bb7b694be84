package model

import "time"

// FileRecord is the metadata of one uploaded file.
// This is a pure domain model with no database-specific dependencies or tags.
//
// StoredName is the server-generated public key of the file; StorageRef is
// where the blob backend keeps the bytes. The two are equal for every backend
// except the chat relay, which hands back its own attachment id.
type FileRecord struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	StorageRef   string    `json:"-"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
