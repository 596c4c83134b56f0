package models

import "time"

// Setting keys persisted in the calendar_settings table.
const (
	SettingCalendarEnabled     = "academic_calendar_enabled"
	SettingHolidayBufferHours  = "holiday_buffer_hours"
	SettingCurrentAcademicYear = "current_academic_year"
)

// CalendarSetting is one persisted key/value settings entry.
type CalendarSetting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedBy *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CalendarSettings is the typed snapshot handed to the oracle and pipeline at
// call time. Mutation only happens through the settings service's validated
// update path.
type CalendarSettings struct {
	Enabled             bool   `json:"academic_calendar_enabled"`
	BufferHours         int    `json:"holiday_buffer_hours"`
	CurrentAcademicYear string `json:"current_academic_year"`
}
