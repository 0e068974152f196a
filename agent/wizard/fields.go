package wizard

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	nonDigitPattern = regexp.MustCompile(`\D`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	intTokenPattern = regexp.MustCompile(`\d+`)
)

// NormalizePhone validates a Turkish mobile number and returns it in
// +90XXXXXXXXXX form. Accepted inputs: 11 digits starting with 0, or 10
// digits starting with 5 (a leading 0 is supplied).
func NormalizePhone(text string) (string, bool) {
	digits := nonDigitPattern.ReplaceAllString(text, "")
	switch {
	case len(digits) == 11 && digits[0] == '0':
		return "+90" + digits[1:], true
	case len(digits) == 10 && digits[0] == '5':
		return "+90" + digits, true
	}
	return "", false
}

// NormalizeEmail lowercases and validates a local@domain.tld address.
func NormalizeEmail(text string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(text))
	if !emailPattern.MatchString(email) {
		return "", false
	}
	return email, true
}

// ParseName splits free text into first and last name. Both parts must be at
// least two runes; everything after the first token joins the last name.
func ParseName(text string) (first, last string, ok bool) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) < 2 {
		return "", "", false
	}
	first = titleCase(parts[0])
	last = titleCase(strings.Join(parts[1:], " "))
	if utf8.RuneCountInString(first) < 2 || utf8.RuneCountInString(last) < 2 {
		return "", "", false
	}
	return first, last, true
}

// ParseCity validates a city name (at least two runes).
func ParseCity(text string) (string, bool) {
	city := titleCase(strings.TrimSpace(text))
	if utf8.RuneCountInString(city) < 2 {
		return "", false
	}
	return city, true
}

// ParseSelection finds the 1-based index the user picked from a candidate
// list of size n. Numeric tokens are tried in order of appearance and the
// first in-range one wins, so "ikinci paketi istiyorum, 2 numara" resolves
// to 2 while "99 yanlış fatura" against 3 candidates resolves to nothing.
func ParseSelection(text string, n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	for _, tok := range intTokenPattern.FindAllString(text, -1) {
		if len(tok) > 2 {
			continue
		}
		value := 0
		for _, r := range tok {
			value = value*10 + int(r-'0')
		}
		if value >= 1 && value <= n {
			return value, true
		}
	}
	return 0, false
}

// IsConfirmation reports whether the input is an affirmative confirmation
// token (EVET / YES / TAMAM / ONAY, case-insensitive).
func IsConfirmation(text string) bool {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "EVET", "YES", "TAMAM", "ONAY":
		return true
	}
	return false
}

// titleCase capitalizes each word with Turkish case rules, so dotless and
// dotted i map correctly ("istanbul" becomes "İstanbul", "YILMAZ" becomes
// "Yılmaz").
func titleCase(s string) string {
	words := strings.Fields(strings.ToLowerSpecial(unicode.TurkishCase, s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.TurkishCase.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
