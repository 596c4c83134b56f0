package ical

import (
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/noah-isme/campus-request-api/internal/models"
)

// Feed renders calendar events as an iCalendar (RFC 5545) document. Dates are
// emitted as all-day values; DTEND is exclusive per the RFC, so the inclusive
// end date is shifted by one day.
func Feed(events []models.CalendarEvent, academicYear string) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//campus-request-api//academic-calendar//EN")
	if academicYear != "" {
		cal.SetName("Academic Calendar " + academicYear)
	}

	now := time.Now().UTC()
	for _, event := range events {
		ev := cal.AddEvent(event.ID)
		ev.SetDtStampTime(now)
		ev.SetAllDayStartAt(event.StartDate)
		ev.SetAllDayEndAt(event.EndDate.AddDate(0, 0, 1))
		ev.SetSummary(event.EventName)
		if event.Description != "" {
			ev.SetDescription(event.Description)
		}
		ev.SetProperty(ics.ComponentProperty(ics.PropertyCategories), string(event.EventType))
	}

	return cal.Serialize()
}
