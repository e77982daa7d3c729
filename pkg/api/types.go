package api

import (
	"github.com/welldata/dlis/pkg/dlis"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// FileReader defines the read operations the server needs from an open file.
type FileReader interface {
	Path() string
	Size() int64
	Label() dlis.StorageUnitLabel
	Index() *dlis.Index
	IndexAll() error
	RawRecordAt(pos int64) ([]byte, error)
	DecodeExplicitAt(pos int64) ([]*dlis.Set, error)
}

// RecordListing is the response body for the record index listing.
type RecordListing struct {
	Count    int               `json:"count"`
	Complete bool              `json:"complete"`
	Records  []dlis.IndexEntry `json:"records"`
}

// FileStats summarizes an open file for the stats endpoint.
type FileStats struct {
	Path             string `json:"path"`
	SizeBytes        int64  `json:"size_bytes"`
	StorageSetID     string `json:"storage_set_id"`
	Sequence         int    `json:"sequence"`
	Records          int    `json:"records"`
	ExplicitRecords  int    `json:"explicit_records"`
	EncryptedRecords int    `json:"encrypted_records"`
}
