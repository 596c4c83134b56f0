package models

import "time"

// ProcessingStatus tracks a calendar upload through the ingestion pipeline.
type ProcessingStatus string

const (
	ProcessingPending    ProcessingStatus = "pending"
	ProcessingInProgress ProcessingStatus = "processing"
	ProcessingCompleted  ProcessingStatus = "completed"
	ProcessingFailed     ProcessingStatus = "failed"
)

// EventType classifies an extracted calendar event.
type EventType string

const (
	EventHoliday       EventType = "holiday"
	EventExamPeriod    EventType = "exam_period"
	EventRegistration  EventType = "registration"
	EventOrientation   EventType = "orientation"
	EventSemesterStart EventType = "semester_start"
	EventSemesterEnd   EventType = "semester_end"
	EventGraduation    EventType = "graduation"
	EventAcademic      EventType = "academic_event"
)

// RecurringType marks known annually repeating holidays.
type RecurringType string

const (
	RecurringNone          RecurringType = "none"
	RecurringNational      RecurringType = "national_holiday"
	RecurringReligious     RecurringType = "religious_holiday"
	RecurringInternational RecurringType = "international"
)

// PriorityLevel ranks an event's operational importance.
type PriorityLevel string

const (
	PriorityHigh   PriorityLevel = "high"
	PriorityMedium PriorityLevel = "medium"
)

// CalendarUpload is one ingested calendar document. At most one upload per
// academic year is active; only the active, completed upload's events are
// authoritative for availability checks.
type CalendarUpload struct {
	ID               string           `db:"id" json:"id"`
	FileName         string           `db:"file_name" json:"file_name"`
	FilePath         string           `db:"file_path" json:"file_path"`
	FileType         string           `db:"file_type" json:"file_type"`
	FileSize         int64            `db:"file_size" json:"file_size"`
	AcademicYear     string           `db:"academic_year" json:"academic_year"`
	UploadedBy       string           `db:"uploaded_by" json:"uploaded_by"`
	UploadedAt       time.Time        `db:"uploaded_at" json:"uploaded_at"`
	ProcessingStatus ProcessingStatus `db:"processing_status" json:"processing_status"`
	ProcessingNotes  string           `db:"processing_notes" json:"processing_notes"`
	IsActive         bool             `db:"is_active" json:"is_active"`
}

// CalendarEvent is a structured date range extracted from a calendar document.
type CalendarEvent struct {
	ID                     string        `db:"id" json:"id"`
	UploadID               string        `db:"upload_id" json:"upload_id"`
	EventType              EventType     `db:"event_type" json:"event_type"`
	EventName              string        `db:"event_name" json:"event_name"`
	StartDate              time.Time     `db:"start_date" json:"start_date"`
	EndDate                time.Time     `db:"end_date" json:"end_date"`
	IsRecurring            bool          `db:"is_recurring" json:"is_recurring"`
	RecurringType          RecurringType `db:"recurring_type" json:"recurring_type"`
	AffectsRequestCreation bool          `db:"affects_request_creation" json:"affects_request_creation"`
	Description            string        `db:"description" json:"description"`
	PriorityLevel          PriorityLevel `db:"priority_level" json:"priority_level"`
	SourceLine             string        `db:"source_line" json:"source_line"`
	ExtractionMethod       string        `db:"extraction_method" json:"extraction_method"`
	CreatedAt              time.Time     `db:"created_at" json:"created_at"`
}

// EventFilter narrows down calendar event queries. Date filtering uses overlap
// semantics: an event matches when its range intersects [From, To].
type EventFilter struct {
	AcademicYear string
	UploadID     string
	From         *time.Time
	To           *time.Time
	EventTypes   []EventType
	AffectsOnly  bool
	ActiveOnly   bool
	Limit        int
}

// UploadFilter narrows down upload history queries.
type UploadFilter struct {
	AcademicYear string
	Page         int
	PageSize     int
}
