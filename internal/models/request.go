package models

import "time"

// RequestStatus tracks the triage state of a student request.
type RequestStatus string

const (
	RequestOpen     RequestStatus = "open"
	RequestResolved RequestStatus = "resolved"
	RequestRejected RequestStatus = "rejected"
)

// StudentRequest is a departmental request submitted by a student. Creation is
// gated by the availability oracle; triage itself is handled elsewhere.
type StudentRequest struct {
	ID         string        `db:"id" json:"id"`
	StudentID  string        `db:"student_id" json:"student_id"`
	Department string        `db:"department" json:"department"`
	Subject    string        `db:"subject" json:"subject"`
	Body       string        `db:"body" json:"body"`
	Status     RequestStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}
