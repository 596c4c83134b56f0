package extract

import (
	"strings"
	"time"
)

// Turkish month names keyed by their diacritic-folded lowercase form. The
// table carries full names and the common three-letter abbreviations; folding
// makes "Eylül", "EYLÜL" and "Eylul" all resolve to September.
var monthTable = map[string]time.Month{
	"ocak":    time.January,
	"subat":   time.February,
	"mart":    time.March,
	"nisan":   time.April,
	"mayis":   time.May,
	"haziran": time.June,
	"temmuz":  time.July,
	"agustos": time.August,
	"eylul":   time.September,
	"ekim":    time.October,
	"kasim":   time.November,
	"aralik":  time.December,

	"oca": time.January,
	"sub": time.February,
	"mar": time.March,
	"nis": time.April,
	"may": time.May,
	"haz": time.June,
	"tem": time.July,
	"agu": time.August,
	"eyl": time.September,
	"eki": time.October,
	"kas": time.November,
	"ara": time.December,
}

// resolveMonth returns the month for a raw token from the document, or false
// when the token is not a known month name.
func resolveMonth(token string) (time.Month, bool) {
	m, ok := monthTable[fold(token)]
	return m, ok
}

var foldReplacer = strings.NewReplacer(
	"İ", "i", "I", "i", "ı", "i",
	"Ş", "s", "ş", "s",
	"Ğ", "g", "ğ", "g",
	"Ü", "u", "ü", "u",
	"Ö", "o", "ö", "o",
	"Ç", "c", "ç", "c",
)

// fold lowercases a string with Turkish dotted/dotless I handling and strips
// diacritics, so keyword matching is insensitive to both case and spelling.
func fold(s string) string {
	return strings.ToLower(foldReplacer.Replace(s))
}
