package entity

import "time"

const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
	MediaKindAudio = "audio"
	MediaKindFile  = "file"
)

type MediaDimensions struct {
	Width  int `json:"width" firestore:"width"`
	Height int `json:"height" firestore:"height"`
}

// MediaAttachment holds a weak reference into the blob store. URL is filled
// in lazily at read time and never persisted.
type MediaAttachment struct {
	StorageRef    string           `json:"storage_ref" firestore:"storageRef"`
	Kind          string           `json:"kind" firestore:"kind"`
	FileName      string           `json:"file_name,omitempty" firestore:"fileName,omitempty"`
	FileSizeBytes int64            `json:"file_size_bytes,omitempty" firestore:"fileSizeBytes,omitempty"`
	MimeType      string           `json:"mime_type,omitempty" firestore:"mimeType,omitempty"`
	DurationMs    int64            `json:"duration_ms,omitempty" firestore:"durationMs,omitempty"`
	Dimensions    *MediaDimensions `json:"dimensions,omitempty" firestore:"dimensions,omitempty"`
	URL           string           `json:"url,omitempty" firestore:"-"`
}

// Message is immutable once created; only the parent chat's updatedAt moves.
type Message struct {
	ID        string            `json:"id" firestore:"id"`
	ChatID    string            `json:"chat_id" firestore:"chatId"`
	AuthorID  string            `json:"author_id" firestore:"authorId"`
	Text      string            `json:"text,omitempty" firestore:"text,omitempty"`
	Media     []MediaAttachment `json:"media,omitempty" firestore:"media,omitempty"`
	CreatedAt time.Time         `json:"created_at" firestore:"createdAt"`
}
