// Package extract recognizes dated calendar entries in free-text institutional
// calendar documents and classifies them into structured events.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/noah-isme/campus-request-api/internal/models"
)

// Extraction method labels recorded on each event.
const (
	MethodSameMonthRange = "same_month_range"
	MethodSingleDate     = "single_date"
	MethodCrossRange     = "cross_month_range"
)

var (
	academicYearRe = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

	// Date patterns, attempted in strict priority order; first match wins
	// and patterns are never combined on one line.
	sameMonthRangeRe = regexp.MustCompile(`(^|[^\d])(\d{1,2})\s*[-–]\s*(\d{1,2})\s+(\p{L}+)\s+(\d{4})`)
	singleDateRe     = regexp.MustCompile(`(^|[^\d])(\d{1,2})\s+(\p{L}+)\s+(\d{4})`)
	crossRangeRe     = regexp.MustCompile(`(^|[^\d])(\d{1,2})\s+(\p{L}+)\s+(\d{4})\s*[-–]\s*(\d{1,2})\s+(\p{L}+)\s+(\d{4})`)
)

// Summary is derived diagnostic output; it is logged but never persisted.
type Summary struct {
	TotalEvents   int                      `json:"total_events"`
	CountsByType  map[models.EventType]int `json:"counts_by_type"`
	BlockingCount int                      `json:"blocking_count"`
	NonBlocking   int                      `json:"non_blocking_count"`
	FirstDate     *time.Time               `json:"first_date,omitempty"`
	LastDate      *time.Time               `json:"last_date,omitempty"`
}

// Extractor scans document text line by line. It holds no state: extraction
// is a pure function of (text, academicYear) and re-running it on identical
// input yields an identical event list in encounter order.
type Extractor struct{}

// New constructs an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// ParseAcademicYear validates the "YYYY-YYYY" contiguous form and returns the
// two calendar years it spans.
func ParseAcademicYear(academicYear string) (int, int, error) {
	m := academicYearRe.FindStringSubmatch(academicYear)
	if m == nil {
		return 0, 0, fmt.Errorf("academic year must match YYYY-YYYY: %q", academicYear)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if end != start+1 {
		return 0, 0, fmt.Errorf("academic year must span consecutive years: %q", academicYear)
	}
	return start, end, nil
}

// Extract scans text for dated calendar entries within the supplied academic
// year and classifies each into a CalendarEvent. Events without IDs or an
// owning upload are returned in the order they were encountered.
func (e *Extractor) Extract(text, academicYear string) ([]models.CalendarEvent, Summary, error) {
	startYear, endYear, err := ParseAcademicYear(academicYear)
	if err != nil {
		return nil, Summary{}, err
	}

	summary := Summary{CountsByType: make(map[models.EventType]int)}
	var events []models.CalendarEvent

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if isDecorativeLine(line) {
			continue
		}

		match, ok := recognizeDate(line)
		if !ok {
			continue
		}
		if match.start.Year() < startYear || match.start.Year() > endYear ||
			match.end.Year() < startYear || match.end.Year() > endYear {
			continue
		}

		name := cleanEventName(line, match.text)
		if len([]rune(name)) <= 3 {
			continue
		}

		folded := fold(line)
		eventType := classifyType(folded)
		isRecurring, recurringType := classifyRecurring(folded)

		event := models.CalendarEvent{
			EventType:              eventType,
			EventName:              name,
			StartDate:              match.start,
			EndDate:                match.end,
			IsRecurring:            isRecurring,
			RecurringType:          recurringType,
			AffectsRequestCreation: classifyBlocking(folded),
			PriorityLevel:          classifyPriority(eventType),
			SourceLine:             line,
			ExtractionMethod:       match.method,
		}
		events = append(events, event)

		summary.TotalEvents++
		summary.CountsByType[eventType]++
		if event.AffectsRequestCreation {
			summary.BlockingCount++
		} else {
			summary.NonBlocking++
		}
		if summary.FirstDate == nil || event.StartDate.Before(*summary.FirstDate) {
			start := event.StartDate
			summary.FirstDate = &start
		}
		if summary.LastDate == nil || event.EndDate.After(*summary.LastDate) {
			end := event.EndDate
			summary.LastDate = &end
		}
	}

	return events, summary, nil
}

type dateMatch struct {
	start  time.Time
	end    time.Time
	text   string
	method string
}

// recognizeDate tries the three date patterns in priority order. The single
// date pattern skips candidates that are one half of a cross-month range so
// those fall through to the dedicated pattern.
func recognizeDate(line string) (dateMatch, bool) {
	if m, ok := matchSameMonthRange(line); ok {
		return m, true
	}
	if m, ok := matchSingleDate(line); ok {
		return m, true
	}
	if m, ok := matchCrossRange(line); ok {
		return m, true
	}
	return dateMatch{}, false
}

func matchSameMonthRange(line string) (dateMatch, bool) {
	m := sameMonthRangeRe.FindStringSubmatchIndex(line)
	if m == nil {
		return dateMatch{}, false
	}
	sub := submatches(line, m)
	month, ok := resolveMonth(sub[4])
	if !ok {
		return dateMatch{}, false
	}
	year, _ := strconv.Atoi(sub[5])
	fromDay, _ := strconv.Atoi(sub[2])
	toDay, _ := strconv.Atoi(sub[3])

	start, ok := makeDate(year, month, fromDay)
	if !ok {
		return dateMatch{}, false
	}
	end, ok := makeDate(year, month, toDay)
	if !ok || end.Before(start) {
		return dateMatch{}, false
	}
	return dateMatch{start: start, end: end, text: matchedText(line, m), method: MethodSameMonthRange}, true
}

func matchSingleDate(line string) (dateMatch, bool) {
	for _, m := range singleDateRe.FindAllStringSubmatchIndex(line, -1) {
		sub := submatches(line, m)
		month, ok := resolveMonth(sub[3])
		if !ok {
			continue
		}
		if partOfCrossRange(line, m) {
			continue
		}
		year, _ := strconv.Atoi(sub[4])
		day, _ := strconv.Atoi(sub[2])
		date, ok := makeDate(year, month, day)
		if !ok {
			continue
		}
		return dateMatch{start: date, end: date, text: matchedText(line, m), method: MethodSingleDate}, true
	}
	return dateMatch{}, false
}

func matchCrossRange(line string) (dateMatch, bool) {
	m := crossRangeRe.FindStringSubmatchIndex(line)
	if m == nil {
		return dateMatch{}, false
	}
	sub := submatches(line, m)
	fromMonth, ok := resolveMonth(sub[3])
	if !ok {
		return dateMatch{}, false
	}
	toMonth, ok := resolveMonth(sub[6])
	if !ok {
		return dateMatch{}, false
	}
	fromYear, _ := strconv.Atoi(sub[4])
	toYear, _ := strconv.Atoi(sub[7])
	fromDay, _ := strconv.Atoi(sub[2])
	toDay, _ := strconv.Atoi(sub[5])

	start, ok := makeDate(fromYear, fromMonth, fromDay)
	if !ok {
		return dateMatch{}, false
	}
	end, ok := makeDate(toYear, toMonth, toDay)
	if !ok || end.Before(start) {
		return dateMatch{}, false
	}
	return dateMatch{start: start, end: end, text: matchedText(line, m), method: MethodCrossRange}, true
}

// partOfCrossRange reports whether a single-date candidate is either half of a
// "D Month YYYY - D Month YYYY" range. RE2 has no lookahead, so the adjacency
// check is done on the raw line.
func partOfCrossRange(line string, m []int) bool {
	after := strings.TrimLeft(line[m[1]:], " \t")
	if len(after) > 0 && (after[0] == '-' || strings.HasPrefix(after, "–")) {
		rest := strings.TrimLeft(strings.TrimPrefix(strings.TrimPrefix(after, "–"), "-"), " \t")
		if len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
			return true
		}
	}
	before := strings.TrimRight(line[:matchStart(line, m)], " \t")
	if strings.HasSuffix(before, "-") || strings.HasSuffix(before, "–") {
		return true
	}
	return false
}

// matchStart returns the index where the date portion begins, skipping the
// leading non-digit guard group.
func matchStart(line string, m []int) int {
	if m[3] > m[2] {
		return m[3]
	}
	return m[2]
}

func matchedText(line string, m []int) string {
	return line[matchStart(line, m):m[1]]
}

// submatches extracts capture group texts; index 1 is the boundary guard.
func submatches(line string, m []int) []string {
	out := make([]string, len(m)/2)
	for i := 0; i < len(m)/2; i++ {
		if m[2*i] < 0 {
			continue
		}
		out[i] = line[m[2*i]:m[2*i+1]]
	}
	return out
}

// makeDate builds a UTC midnight date and rejects day numbers the month does
// not have (time.Date would silently normalize them).
func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != month || d.Year() != year {
		return time.Time{}, false
	}
	return d, true
}

// cleanEventName removes the matched date substring from the line and trims
// decorative residue.
func cleanEventName(line, dateText string) string {
	name := strings.Replace(line, dateText, " ", 1)
	name = strings.Join(strings.Fields(name), " ")
	return strings.Trim(name, " \t-–*:.")
}

// isDecorativeLine filters banner borders, table rules and all-caps section
// titles; these never produce events.
func isDecorativeLine(line string) bool {
	if line == "" {
		return false // empty lines simply fail date recognition
	}

	letters := 0
	digits := 0
	upper := 0
	decoration := 0
	for _, r := range line {
		switch {
		case unicode.IsLetter(r):
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune("=-–*_|+#~.─═", r):
			decoration++
		}
	}

	// Banner borders and table rule rows: decoration with no letters.
	if letters == 0 && digits == 0 && decoration > 0 {
		return true
	}
	// All-caps section titles without any digits cannot carry a date.
	if letters > 0 && digits == 0 && upper == letters {
		return true
	}
	return false
}
