// File: validationx.go
// Title: Value Validation Primitives
// Description: Value level checks and conversions used by the built-in
//              capabilities: emails, URLs, UUIDs, usernames, phone and card
//              numbers, numbers, dates, booleans, patterns and membership.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-25
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with comprehensive validation utilities
// - 2025-01-26 v0.2.0: Refactored to use core validation framework with standardized error codes
// - 2026-10-17 v0.3.0: Plain predicates and parsers for plan capabilities

package validationx

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DateLayouts are tried in order when no layout is given
var DateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ErrNotANumber is returned by ToNumber for non-numeric values
var ErrNotANumber = errors.New("not a number")

// Regex cache for compiled patterns to avoid recompilation
var (
	regexCache = make(map[string]*regexp.Regexp)
	regexMu    sync.RWMutex
)

// getCompiledRegex returns a cached compiled regex or compiles and caches it
func getCompiledRegex(pattern string) (*regexp.Regexp, error) {
	regexMu.RLock()
	if regex, exists := regexCache[pattern]; exists {
		regexMu.RUnlock()
		return regex, nil
	}
	regexMu.RUnlock()

	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	regexMu.Lock()
	regexCache[pattern] = regex
	regexMu.Unlock()

	return regex, nil
}

// MatchPattern reports whether the whole of s matches pattern
func MatchPattern(pattern, s string) (bool, error) {
	regex, err := getCompiledRegex(`^(?:` + pattern + `)$`)
	if err != nil {
		return false, err
	}
	return regex.MatchString(s), nil
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]{2,31}$`)

// IsValidUsername checks 3-32 characters, a leading letter and only
// letters, digits, '.', '_' and '-'
func IsValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// NormalizeEmail validates a bare RFC 5322 address and returns it lower
// cased. Display names ("Bob <bob@example.com>") are rejected.
func NormalizeEmail(s string) (string, bool) {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return "", false
	}
	at := strings.LastIndex(addr.Address, "@")
	if at <= 0 || !strings.Contains(addr.Address[at:], ".") {
		return "", false
	}
	return strings.ToLower(addr.Address), true
}

// IsValidURL accepts absolute http and https URLs with a host
func IsValidURL(urlStr string) bool {
	if strings.TrimSpace(urlStr) == "" {
		return false
	}
	parsedURL, err := url.ParseRequestURI(urlStr)
	if err != nil || parsedURL.Host == "" {
		return false
	}
	return parsedURL.Scheme == "http" || parsedURL.Scheme == "https"
}

// ParseUUID accepts the canonical 36 character form only
func ParseUUID(s string) (uuid.UUID, bool) {
	if len(s) != 36 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CleanPhone strips formatting characters and reports whether 7 to 15
// digits remain
func CleanPhone(phone string) (string, bool) {
	var b strings.Builder
	for _, r := range phone {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.' || r == '/':
		case r == '+' && b.Len() == 0:
		default:
			return "", false
		}
	}
	digits := b.String()
	return digits, len(digits) >= 7 && len(digits) <= 15
}

// IsValidPhone is a convenience function for phone validation
func IsValidPhone(phone string) bool {
	_, ok := CleanPhone(phone)
	return ok
}

// CleanCreditCard strips spaces and dashes and validates 13-19 digits
// with the Luhn checksum
func CleanCreditCard(number string) (string, bool) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(number, " ", ""), "-", "")
	if len(cleaned) < 13 || len(cleaned) > 19 {
		return "", false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return cleaned, luhnCheck(cleaned)
}

// luhnCheck implements the Luhn algorithm for credit card validation
func luhnCheck(number string) bool {
	var sum int
	alternate := false

	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')
		if alternate {
			digit *= 2
			if digit > 9 {
				digit = (digit % 10) + 1
			}
		}
		sum += digit
		alternate = !alternate
	}

	return sum%10 == 0
}

// ToNumber converts numeric values and numeric strings to float64. NaN and
// infinities are not numbers here, whatever their source type.
func ToNumber(value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, ErrNotANumber
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, ErrNotANumber
		}
		f = n
	default:
		return 0, ErrNotANumber
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotANumber
	}
	return f, nil
}

// NormalizeNumber returns integral values as int and everything else as
// float64
func NormalizeNumber(f float64) any {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int(f)
	}
	return f
}

// ParseDate parses s with the given layouts, or DateLayouts when none are
// given
func ParseDate(s string, layouts ...string) (time.Time, error) {
	if len(layouts) == 0 {
		layouts = DateLayouts
	}
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a valid date", s)
}

// ToDate accepts time.Time values and date strings
func ToDate(value any, layouts ...string) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		t, err := ParseDate(v, layouts...)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

// ParseBool interprets checkbox and yes/no style values
func ParseBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on", "checked":
			return true, true
		case "0", "false", "no", "n", "off", "":
			return false, true
		}
		return false, false
	default:
		f, err := ToNumber(value)
		if err != nil || (f != 0 && f != 1) {
			return false, false
		}
		return f == 1, true
	}
}

// In reports whether value equals one of allowed. Numbers compare by
// value, so 1, int64(1) and 1.0 are equal; a string matches a number with
// the same printed form ("1" matches 1).
func In(value any, allowed []any) bool {
	for _, candidate := range allowed {
		if equalValues(value, candidate) {
			return true
		}
	}
	return false
}

func equalValues(a, b any) bool {
	if _, isString := a.(string); !isString {
		if fa, err := ToNumber(a); err == nil {
			if _, bIsString := b.(string); !bIsString {
				if fb, err := ToNumber(b); err == nil {
					return fa == fb
				}
			}
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// RuneLength returns the number of characters in s
func RuneLength(s string) int {
	return utf8.RuneCountInString(s)
}
