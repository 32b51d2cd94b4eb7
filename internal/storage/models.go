package storage

import "time"

// IngestionRun records one completed ingestion: a document upload or a
// full source drain. It is an audit trail, not an index; points in the
// vector store do not reference it.
type IngestionRun struct {
	ID         string    `json:"id"`         // UUID
	Source     string    `json:"source"`     // "confluence" or "developer_upload"
	Label      string    `json:"label"`      // filename for uploads, space key for drains
	Collection string    `json:"collection"` // target collection name
	Points     int       `json:"points"`     // number of points written
	CreatedAt  time.Time `json:"created_at"`
}
