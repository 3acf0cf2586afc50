// File: capabilities.go
// Title: Built-in Validation Capabilities
// Description: The standard capability table registered by formplan. Every
//              capability follows the plan calling convention, tolerates
//              nil values and resolves its messages through the catalog.
// Author: msto63
// Version: v0.3.0
// Created: 2026-10-17
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-17 v0.3.0: Initial capability table

package validationx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/msto63/formplan/foundation/core/i18n"
	"github.com/msto63/formplan/foundation/core/validation"
)

// Capability ids of the standard table
const (
	CapRequiredField   = validation.CapRequiredField
	CapString          validation.CapabilityID = "validateString"
	CapUsername        validation.CapabilityID = "validateUsername"
	CapEmail           validation.CapabilityID = "validateEmail"
	CapURL             validation.CapabilityID = "validateURL"
	CapUUID            validation.CapabilityID = "validateUUID"
	CapNumberInRange   validation.CapabilityID = "validateNumberInRange"
	CapInSet           validation.CapabilityID = "validateInSet"
	CapPattern         validation.CapabilityID = "validatePattern"
	CapDate            validation.CapabilityID = "validateDate"
	CapDateRange       validation.CapabilityID = "validateDateRange"
	CapMatch           validation.CapabilityID = "validateMatch"
	CapBool            validation.CapabilityID = "validateBool"
	CapPhone           validation.CapabilityID = "validatePhone"
	CapCreditCard      validation.CapabilityID = "validateCreditCard"
	CapOptional        validation.CapabilityID = "validateOptional"
)

// Message keys and their English fallbacks
const (
	MsgStringType      = "validation.string.type"
	MsgStringTooShort  = "validation.string.too_short"
	MsgStringTooLong   = "validation.string.too_long"
	MsgUsernameInvalid = "validation.username.invalid"
	MsgEmailInvalid    = "validation.email.invalid"
	MsgURLInvalid      = "validation.url.invalid"
	MsgUUIDInvalid     = "validation.uuid.invalid"
	MsgNumberInvalid   = "validation.number.invalid"
	MsgNumberRange     = "validation.number.range"
	MsgSetInvalid      = "validation.set.invalid"
	MsgPatternMismatch = "validation.pattern.mismatch"
	MsgDateInvalid     = "validation.date.invalid"
	MsgDateRangeOrder  = "validation.date_range.order"
	MsgDateRangeLength = "validation.date_range.too_long"
	MsgMatchMismatch   = "validation.match.mismatch"
	MsgBoolInvalid     = "validation.bool.invalid"
	MsgPhoneInvalid    = "validation.phone.invalid"
	MsgCardInvalid     = "validation.credit_card.invalid"
)

var fallbacks = map[string]string{
	MsgStringType:      "Must be text",
	MsgStringTooShort:  "Must be at least {{.min}} characters",
	MsgStringTooLong:   "Must be at most {{.max}} characters",
	MsgUsernameInvalid: "Must be 3-32 characters, start with a letter and contain only letters, digits, '.', '_' or '-'",
	MsgEmailInvalid:    "Must be a valid email address",
	MsgURLInvalid:      "Must be a valid http or https URL",
	MsgUUIDInvalid:     "Must be a valid UUID",
	MsgNumberInvalid:   "Must be a number",
	MsgNumberRange:     "Must be between {{.min}} and {{.max}}",
	MsgSetInvalid:      "Must be one of: {{.allowed}}",
	MsgPatternMismatch: "Has an invalid format",
	MsgDateInvalid:     "Must be a valid date",
	MsgDateRangeOrder:  "End date must not be before start date",
	MsgDateRangeLength: "Range must not exceed {{.max}} days",
	MsgMatchMismatch:   "Values do not match",
	MsgBoolInvalid:     "Must be yes or no",
	MsgPhoneInvalid:    "Must be a valid phone number",
	MsgCardInvalid:     "Must be a valid card number",
}

// DateRange is the value stored by validateDateRange
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the length of the range in whole days
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

type capabilities struct {
	msgs validation.Messages
}

// Standard returns the built-in capability table. A nil msgs uses the
// embedded catalogs.
func Standard(msgs validation.Messages) map[validation.CapabilityID]validation.Capability {
	if msgs == nil {
		msgs = i18n.Default()
	}
	c := &capabilities{msgs: msgs}

	return map[validation.CapabilityID]validation.Capability{
		CapRequiredField: validation.RequiredFieldCapability,
		CapString:        c.validateString,
		CapUsername:      c.validateUsername,
		CapEmail:         c.validateEmail,
		CapURL:           c.validateURL,
		CapUUID:          c.validateUUID,
		CapNumberInRange: c.validateNumberInRange,
		CapInSet:         c.validateInSet,
		CapPattern:       c.validatePattern,
		CapDate:          c.validateDate,
		CapDateRange:     c.validateDateRange,
		CapMatch:         c.validateMatch,
		CapBool:          c.validateBool,
		CapPhone:         c.validatePhone,
		CapCreditCard:    c.validateCreditCard,
		CapOptional:      validateOptional,
	}
}

// Register adds the standard table to r
func Register(r *validation.Registry, msgs validation.Messages) error {
	return r.RegisterAll(Standard(msgs))
}

func (c *capabilities) fail(ctx context.Context, res *validation.Result, field, key string, data map[string]interface{}) {
	res.AddError(field, c.msgs.Text(ctx, key, fallbacks[key], data))
}

// stringValue returns the trimmed string of call's first value. ok is
// false for nil values; a non-string value records MsgStringType.
func (c *capabilities) stringValue(ctx context.Context, res *validation.Result, call validation.Call) (string, bool) {
	v := call.Value()
	if v == nil {
		return "", false
	}
	s, isString := v.(string)
	if !isString {
		c.fail(ctx, res, call.Field, MsgStringType, nil)
		return "", false
	}
	return strings.TrimSpace(s), true
}

// Args: [min, max]; max 0 means unbounded.
func (c *capabilities) validateString(ctx context.Context, res *validation.Result, call validation.Call) {
	s, ok := c.stringValue(ctx, res, call)
	if !ok {
		return
	}

	n := RuneLength(s)
	if lo, ok := intArg(call, 0); ok && n < lo {
		c.fail(ctx, res, call.Field, MsgStringTooShort, map[string]interface{}{"min": lo})
		return
	}
	if hi, ok := intArg(call, 1); ok && hi > 0 && n > hi {
		c.fail(ctx, res, call.Field, MsgStringTooLong, map[string]interface{}{"max": hi})
		return
	}
	res.SetValue(call.Field, s)
}

func (c *capabilities) validateUsername(ctx context.Context, res *validation.Result, call validation.Call) {
	s, ok := c.stringValue(ctx, res, call)
	if !ok {
		return
	}
	if !IsValidUsername(s) {
		c.fail(ctx, res, call.Field, MsgUsernameInvalid, nil)
		return
	}
	res.SetValue(call.Field, s)
}

func (c *capabilities) validateEmail(ctx context.Context, res *validation.Result, call validation.Call) {
	s, ok := c.stringValue(ctx, res, call)
	if !ok {
		return
	}
	email, valid := NormalizeEmail(s)
	if !valid {
		c.fail(ctx, res, call.Field, MsgEmailInvalid, nil)
		return
	}
	res.SetValue(call.Field, email)
}

func (c *capabilities) validateURL(ctx context.Context, res *validation.Result, call validation.Call) {
	s, ok := c.stringValue(ctx, res, call)
	if !ok {
		return
	}
	if !IsValidURL(s) {
		c.fail(ctx, res, call.Field, MsgURLInvalid, nil)
		return
	}
	res.SetValue(call.Field, s)
}

func (c *capabilities) validateUUID(ctx context.Context, res *validation.Result, call validation.Call) {
	s, ok := c.stringValue(ctx, res, call)
	if !ok {
		return
	}
	id, valid := ParseUUID(s)
	if !valid {
		c.fail(ctx, res, call.Field, MsgUUIDInvalid, nil)
		return
	}
	res.SetValue(call.Field, id.String())
}

// Args: min, max (inclusive). Missing bounds panic as a plan defect.
func (c *capabilities) validateNumberInRange(ctx context.Context, res *validation.Result, call validation.Call) {
	lo := mustNumberArg(call, 0, CapNumberInRange)
	hi := mustNumberArg(call, 1, CapNumberInRange)

	v := call.Value()
	if v == nil {
		return
	}
	n, err := ToNumber(v)
	if err != nil {
		c.fail(ctx, res, call.Field, MsgNumberInvalid, nil)
		return
	}
	if n < lo || n > hi {
		c.fail(ctx, res, call.Field, MsgNumberRange, map[string]interface{}{
			"min": NormalizeNumber(lo),
			"max": NormalizeNumber(hi),
		})
		return
	}
	res.SetValue(call.Field, NormalizeNumber(n))
}

// Args: the allowed values, or a single slice of them.
func (c *capabilities) validateInSet(ctx context.Context, res *validation.Result, call validation.Call) {
	v := call.Value()
	if v == nil {
		return
	}

	allowed := call.Args
	if len(allowed) == 1 {
		if seq, ok := sequence(allowed[0]); ok {
			allowed = seq
		}
	}

	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
	}
	if !In(v, allowed) {
		names := make([]string, len(allowed))
		for i, a := range allowed {
			names[i] = fmt.Sprint(a)
		}
		c.fail(ctx, res, call.Field, MsgSetInvalid, map[string]interface{}{"allowed": strings.Join(names, ", ")})
		return
	}
	res.SetValue(call.Field, v)
}

// Args: pattern. The whole value must match.
func (c *capabilities) validatePattern(ctx context.Context, res *validation.Result, call validation.Call) {
	pattern, ok := stringArg(call, 0)
	if !ok {
		panic(fmt.Sprintf("%s: pattern argument is required", CapPattern))
	}

	s, ok := c.stringValue(ctx, res, call)
	if !ok {
		return
	}
	matched, err := MatchPattern(pattern, s)
	if err != nil {
		panic(fmt.Sprintf("%s: invalid pattern %q: %v", CapPattern, pattern, err))
	}
	if !matched {
		c.fail(ctx, res, call.Field, MsgPatternMismatch, nil)
		return
	}
	res.SetValue(call.Field, s)
}

// Args: [layout].
func (c *capabilities) validateDate(ctx context.Context, res *validation.Result, call validation.Call) {
	v := call.Value()
	if v == nil {
		return
	}
	t, ok := ToDate(v, layouts(call, 0)...)
	if !ok {
		c.fail(ctx, res, call.Field, MsgDateInvalid, nil)
		return
	}
	res.SetValue(call.Field, t)
}

// Values: start, end. Args: [maxDays, layout]. Parse errors are recorded
// under <field>_start and <field>_end, range errors under field.
func (c *capabilities) validateDateRange(ctx context.Context, res *validation.Result, call validation.Call) {
	if len(call.Values) < 2 || call.Values[0] == nil || call.Values[1] == nil {
		return
	}
	dateLayouts := layouts(call, 1)

	start, startOK := ToDate(call.Values[0], dateLayouts...)
	if !startOK {
		c.fail(ctx, res, call.Field+"_start", MsgDateInvalid, nil)
	}
	end, endOK := ToDate(call.Values[1], dateLayouts...)
	if !endOK {
		c.fail(ctx, res, call.Field+"_end", MsgDateInvalid, nil)
	}
	if !startOK || !endOK {
		return
	}

	if end.Before(start) {
		c.fail(ctx, res, call.Field, MsgDateRangeOrder, nil)
		return
	}
	r := DateRange{Start: start, End: end}
	if maxDays, ok := intArg(call, 0); ok && maxDays > 0 && r.Days() > maxDays {
		c.fail(ctx, res, call.Field, MsgDateRangeLength, map[string]interface{}{"max": maxDays})
		return
	}
	res.SetValue(call.Field, r)
}

// Values: value, confirmation.
func (c *capabilities) validateMatch(ctx context.Context, res *validation.Result, call validation.Call) {
	if len(call.Values) < 2 || call.Values[0] == nil {
		return
	}
	if call.Values[1] == nil || fmt.Sprint(call.Values[0]) != fmt.Sprint(call.Values[1]) {
		c.fail(ctx, res, call.Field, MsgMatchMismatch, nil)
		return
	}
	res.SetValue(call.Field, call.Values[0])
}

// An absent checkbox is false.
func (c *capabilities) validateBool(ctx context.Context, res *validation.Result, call validation.Call) {
	v := call.Value()
	if v == nil {
		res.SetValue(call.Field, false)
		return
	}
	b, ok := ParseBool(v)
	if !ok {
		c.fail(ctx, res, call.Field, MsgBoolInvalid, nil)
		return
	}
	res.SetValue(call.Field, b)
}

func (c *capabilities) validatePhone(ctx context.Context, res *validation.Result, call validation.Call) {
	s, ok := c.stringValue(ctx, res, call)
	if !ok {
		return
	}
	if !IsValidPhone(s) {
		c.fail(ctx, res, call.Field, MsgPhoneInvalid, nil)
		return
	}
	res.SetValue(call.Field, s)
}

func (c *capabilities) validateCreditCard(ctx context.Context, res *validation.Result, call validation.Call) {
	s, ok := c.stringValue(ctx, res, call)
	if !ok {
		return
	}
	digits, valid := CleanCreditCard(s)
	if !valid {
		c.fail(ctx, res, call.Field, MsgCardInvalid, nil)
		return
	}
	res.SetValue(call.Field, digits)
}

func validateOptional(_ context.Context, res *validation.Result, call validation.Call) {
	res.SetValue(call.Field, call.Value())
}

func intArg(call validation.Call, i int) (int, bool) {
	v, ok := call.Arg(i)
	if !ok || v == nil {
		return 0, false
	}
	f, err := ToNumber(v)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func stringArg(call validation.Call, i int) (string, bool) {
	v, ok := call.Arg(i)
	if !ok {
		return "", false
	}
	s, isString := v.(string)
	return s, isString && s != ""
}

func mustNumberArg(call validation.Call, i int, id validation.CapabilityID) float64 {
	v, ok := call.Arg(i)
	if !ok {
		panic(fmt.Sprintf("%s: argument %d is required", id, i))
	}
	f, err := ToNumber(v)
	if err != nil {
		panic(fmt.Sprintf("%s: argument %d must be a number, got %T", id, i, v))
	}
	return f
}

func layouts(call validation.Call, i int) []string {
	if layout, ok := stringArg(call, i); ok {
		return []string{layout}
	}
	return nil
}

// sequence converts []any and []string; other values are not sequences
func sequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	default:
		return nil, false
	}
}
