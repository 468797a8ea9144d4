package models

// IngestRequest optionally narrows an ingestion pass to specific symbols.
// An empty list means the configured watchlist.
type IngestRequest struct {
	Symbols []string `json:"symbols" validate:"omitempty,max=100,dive,required"`
}
