package models

import (
	"encoding/json"
	"time"
)

// ParsingStage identifies a step of the ingestion pipeline.
type ParsingStage string

const (
	StageUpload         ParsingStage = "upload"
	StageTextExtraction ParsingStage = "text_extraction"
	StageDateParsing    ParsingStage = "date_parsing"
	StageEventCreation  ParsingStage = "event_creation"
	StageCompleted      ParsingStage = "completed"
)

// ParsingStatus is the outcome recorded for a stage transition.
type ParsingStatus string

const (
	ParsingStarted        ParsingStatus = "started"
	ParsingStageCompleted ParsingStatus = "completed"
	ParsingStageFailed    ParsingStatus = "failed"
)

// ParsingLog is one append-only audit record of an ingestion stage transition.
// Rows are never mutated after insert.
type ParsingLog struct {
	ID            string          `db:"id" json:"id"`
	UploadID      string          `db:"upload_id" json:"upload_id"`
	Stage         ParsingStage    `db:"stage" json:"stage"`
	Status        ParsingStatus   `db:"status" json:"status"`
	Message       string          `db:"message" json:"message"`
	ErrorDetails  string          `db:"error_details" json:"error_details,omitempty"`
	DataExtracted json.RawMessage `db:"data_extracted" json:"data_extracted,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
