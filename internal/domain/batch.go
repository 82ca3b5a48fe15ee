package domain

import "time"

// RowBatch is a run of converted rows from one conversion, in source order,
// handed to a downstream sink.
type RowBatch struct {
	RunID       string
	StationID   string
	Location    LocationMetadata
	ConvertedAt time.Time
	Rows        []TargetRecord
}
