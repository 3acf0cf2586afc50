// File: validationx_test.go
// Title: Validation Primitive Tests
// Description: Tests for the value level predicates and parsers.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-25
// Modified: 2026-10-17

package validationx

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestIsValidUsername(t *testing.T) {
	tests := map[string]bool{
		"alice":       true,
		"a.b_c-d":     true,
		"ab":          false,
		"1alice":      false,
		"alice smith": false,
		"":            false,
		"a234567890123456789012345678901x": true,
		"a234567890123456789012345678901xy": false,
	}
	for in, want := range tests {
		if got := IsValidUsername(in); got != want {
			t.Errorf("IsValidUsername(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Bob@Example.COM", "bob@example.com", true},
		{"  user@example.org ", "user@example.org", true},
		{"Bob <bob@example.com>", "", false},
		{"not-an-email", "", false},
		{"user@localhost", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeEmail(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestIsValidURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/path?q=1": true,
		"http://localhost:8080":        true,
		"ftp://example.com":            false,
		"/relative":                    false,
		"example.com":                  false,
		"":                             false,
	}
	for in, want := range tests {
		if got := IsValidURL(in); got != want {
			t.Errorf("IsValidURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseUUID(t *testing.T) {
	if _, ok := ParseUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"); !ok {
		t.Error("canonical UUID rejected")
	}
	if _, ok := ParseUUID("{6ba7b810-9dad-11d1-80b4-00c04fd430c8}"); ok {
		t.Error("braced UUID accepted")
	}
	if _, ok := ParseUUID("6ba7b810"); ok {
		t.Error("short UUID accepted")
	}
}

func TestCleanPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+49 (30) 123-4567", "49301234567", true},
		{"030/1234567", "0301234567", true},
		{"12345", "12345", false},
		{"555-CALL-NOW", "", false},
		{"1+2345678", "", false},
	}
	for _, tt := range tests {
		got, ok := CleanPhone(tt.in)
		if ok != tt.ok || (tt.ok && got != tt.want) {
			t.Errorf("CleanPhone(%q) = %q, %v", tt.in, got, ok)
		}
	}
}

func TestCleanCreditCard(t *testing.T) {
	if digits, ok := CleanCreditCard("4111 1111 1111 1111"); !ok || digits != "4111111111111111" {
		t.Errorf("valid card rejected: %q %v", digits, ok)
	}
	if _, ok := CleanCreditCard("4111 1111 1111 1112"); ok {
		t.Error("bad checksum accepted")
	}
	if _, ok := CleanCreditCard("4111"); ok {
		t.Error("short number accepted")
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		in      any
		want    float64
		wantErr bool
	}{
		{500, 500, false},
		{int64(-3), -3, false},
		{uint8(7), 7, false},
		{2.5, 2.5, false},
		{" 42 ", 42, false},
		{json.Number("12"), 12, false},
		{"NaN", 0, true},
		{math.NaN(), 0, true},
		{float32(math.NaN()), 0, true},
		{math.Inf(1), 0, true},
		{json.Number("NaN"), 0, true},
		{"-Inf", 0, true},
		{"abc", 0, true},
		{true, 0, true},
		{nil, 0, true},
	}
	for _, tt := range tests {
		got, err := ToNumber(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ToNumber(%#v) = %v, %v", tt.in, got, err)
		}
	}
}

func TestNormalizeNumber(t *testing.T) {
	if got := NormalizeNumber(500); got != 500 {
		t.Errorf("integral value = %#v", got)
	}
	if _, isInt := NormalizeNumber(500).(int); !isInt {
		t.Error("integral value should be int")
	}
	if got := NormalizeNumber(2.5); got != 2.5 {
		t.Errorf("fraction = %#v", got)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2026-10-17", "17.10.2026", "10/17/2026"} {
		got, err := ParseDate(in)
		if err != nil || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDate("2026-13-01"); err == nil {
		t.Error("invalid month accepted")
	}
	if _, err := ParseDate("17.10.2026", "2006-01-02"); err == nil {
		t.Error("explicit layout ignored")
	}
	if got, ok := ToDate(want); !ok || !got.Equal(want) {
		t.Error("time.Time not accepted")
	}
	if _, ok := ToDate(20261017); ok {
		t.Error("int accepted as date")
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
		ok   bool
	}{
		{true, true, true},
		{"on", true, true},
		{"Yes", true, true},
		{"0", false, true},
		{"", false, true},
		{1, true, true},
		{0.0, false, true},
		{2, false, false},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		got, ok := ParseBool(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseBool(%#v) = %v, %v", tt.in, got, ok)
		}
	}
}

func TestIn(t *testing.T) {
	allowed := []any{"admin", "user", 1, 2.5}
	tests := []struct {
		in   any
		want bool
	}{
		{"admin", true},
		{"guest", false},
		{1.0, true},
		{int64(1), true},
		{2.5, true},
		{"1", true},
		{"3", false},
	}
	for _, tt := range tests {
		if got := In(tt.in, allowed); got != tt.want {
			t.Errorf("In(%#v) = %v", tt.in, got)
		}
	}
}

func TestMatchPattern(t *testing.T) {
	ok, err := MatchPattern(`[A-Z]{2}\d{3}`, "AB123")
	if err != nil || !ok {
		t.Errorf("full match failed: %v %v", ok, err)
	}
	ok, _ = MatchPattern(`[A-Z]{2}\d{3}`, "xAB123x")
	if ok {
		t.Error("partial match accepted")
	}
	ok, _ = MatchPattern(`a|b`, "ab")
	if ok {
		t.Error("alternation must be anchored as a whole")
	}
	if _, err := MatchPattern(`(`, "x"); err == nil {
		t.Error("invalid pattern accepted")
	}
}
