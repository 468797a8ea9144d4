package models

import "time"

// RecordCounts holds per-kind record counts for one ingestion pass.
type RecordCounts struct {
	Companies    int `json:"companies"`
	Quotes       int `json:"quotes"`
	Fundamentals int `json:"fundamentals"`
}

// IngestionReport summarizes one ingestion pass. Ingestion is best-effort:
// the report is always produced, partial persistence included.
type IngestionReport struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Symbols    int            `json:"symbols"`
	Requests   int            `json:"requests"`
	Successes  int            `json:"successes"`
	Failures   map[string]int `json:"failures"`
	Staged     RecordCounts   `json:"staged"`
	Persisted  RecordCounts   `json:"persisted"`
	Errors     []string       `json:"errors,omitempty"`
}
