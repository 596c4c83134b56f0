package extract

import (
	"strings"

	"github.com/noah-isme/campus-request-api/internal/models"
)

// Classification is driven by ordered rule tables evaluated against the
// diacritic-folded line: the first matching rule wins and the priority order
// is explicit in the slice order. Keywords are stored pre-folded.

type typeRule struct {
	keywords []string
	result   models.EventType
}

var typeRules = []typeRule{
	{keywords: []string{"bayram", "tatil", "yilbasi", "holiday"}, result: models.EventHoliday},
	{keywords: []string{"sinav", "final", "vize", "butunleme", "exam"}, result: models.EventExamPeriod},
	{keywords: []string{"kayit", "basvuru", "registration"}, result: models.EventRegistration},
	{keywords: []string{"oryantasyon", "orientation"}, result: models.EventOrientation},
	{keywords: []string{"derslerin baslangici", "ders baslangici", "derslerin baslamasi", "classes begin"}, result: models.EventSemesterStart},
	{keywords: []string{"derslerin sonu", "derslerin bitisi", "son ders gunu", "last day of classes"}, result: models.EventSemesterEnd},
	{keywords: []string{"mezuniyet", "graduation"}, result: models.EventGraduation},
}

// classifyType returns the event type for a folded line.
func classifyType(folded string) models.EventType {
	for _, rule := range typeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(folded, kw) {
				return rule.result
			}
		}
	}
	return models.EventAcademic
}

// Negation phrases are evaluated before any positive keyword: a line that
// mentions attendance, applications or announcements never blocks request
// creation even when it also carries a holiday word.
var negationPhrases = []string{
	"yoklama",
	"resmi tatil degildir",
	"basvuru",
	"teslim",
	" ilan",
	"duyuru",
	"attendance will be taken",
	"not an official holiday",
	"application",
	"submission",
	"announcement",
}

var blockingKeywords = []string{
	"bayram",
	"tatil",
	"yilbasi",
	"holiday",
}

// classifyBlocking decides affects_request_creation for a folded line.
func classifyBlocking(folded string) bool {
	for _, phrase := range negationPhrases {
		if strings.Contains(folded, phrase) {
			return false
		}
	}
	for _, kw := range blockingKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

type recurringRule struct {
	names  []string
	result models.RecurringType
}

// Known annually repeating holidays, matched by name.
var recurringRules = []recurringRule{
	{names: []string{
		"cumhuriyet bayrami",
		"zafer bayrami",
		"ulusal egemenlik",
		"genclik ve spor",
		"ataturk'u anma",
		"demokrasi ve milli birlik",
		"15 temmuz",
		"30 agustos",
	}, result: models.RecurringNational},
	{names: []string{
		"ramazan bayrami",
		"kurban bayrami",
		"seker bayrami",
		"arefe",
		"arife",
	}, result: models.RecurringReligious},
	{names: []string{
		"yilbasi",
		"new year",
		"emek ve dayanisma",
		"isci bayrami",
	}, result: models.RecurringInternational},
}

// classifyRecurring reports whether the folded line names a known recurring
// holiday and which family it belongs to.
func classifyRecurring(folded string) (bool, models.RecurringType) {
	for _, rule := range recurringRules {
		for _, name := range rule.names {
			if strings.Contains(folded, name) {
				return true, rule.result
			}
		}
	}
	return false, models.RecurringNone
}

// classifyPriority ranks the event for triage visibility.
func classifyPriority(eventType models.EventType) models.PriorityLevel {
	switch eventType {
	case models.EventHoliday, models.EventExamPeriod, models.EventSemesterStart, models.EventSemesterEnd:
		return models.PriorityHigh
	default:
		return models.PriorityMedium
	}
}
