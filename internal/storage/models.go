package storage

import "time"

// Source values recorded on a ContentItem. Display only.
const (
	SourceFile = "File"
	SourceLink = "Link"
)

type ContentItem struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Featured    bool      `json:"featured" db:"featured"`
	Thumbnail   string    `json:"thumbnail" db:"thumbnail"`
	Source      string    `json:"source" db:"source"`
	VideoURL    string    `json:"videoUrl" db:"video_url"`
	FileSize    int64     `json:"fileSize,omitempty" db:"file_size"` // bytes, 0 when unknown
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// NewContent holds the fields a caller supplies when creating a record.
// ID and CreatedAt are assigned by the store.
type NewContent struct {
	Title       string
	Description string
	Category    string
	Featured    bool
	Thumbnail   string
	Source      string
	VideoURL    string
	FileSize    int64
}
