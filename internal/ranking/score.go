package ranking

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ageOffsetHours is added to the age so brand-new events do not divide by ~0.
const ageOffsetHours = 2.0

// publishedLayout is the date and time part of "YYYY-MM-DD HH:MM:SS <weekday>".
const publishedLayout = "2006-01-02 15:04:05"

var (
	errNoTimestamp   = errors.New("earliest_published is missing")
	errBadTimestamp  = errors.New("earliest_published has fewer than two fields")
	errBadImportance = errors.New("importance is not numeric")
)

// Score returns importance / (ageHours + 2) ^ gravity.
// Negative ages are treated as zero so a future timestamp never outranks a
// brand-new event of the same importance.
func Score(importance, ageHours, gravity float64) float64 {
	if ageHours < 0 {
		ageHours = 0
	}
	return importance / math.Pow(ageHours+ageOffsetHours, gravity)
}

// AgeHours returns the hours elapsed between published and now, clamped at 0.
func AgeHours(published, now time.Time) float64 {
	h := now.Sub(published).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// ParsePublished parses an upstream timestamp as UTC. Only the first two
// whitespace-separated fields (date and time) are used; a trailing weekday
// or anything after it is ignored.
func ParsePublished(s string) (time.Time, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return time.Time{}, fmt.Errorf("%w: %q", errBadTimestamp, s)
	}
	t, err := time.ParseInLocation(publishedLayout, fields[0]+" "+fields[1], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse earliest_published %q: %w", s, err)
	}
	return t, nil
}

// ParseImportance coerces the raw importance value to a float.
// An absent or null value is 0. JSON numbers and strings holding a float
// are accepted; anything else is an error.
func ParseImportance(raw json.RawMessage) (float64, error) {
	v := strings.TrimSpace(string(raw))
	if v == "" || v == "null" {
		return 0, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return checkFinite(n.Float64())
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("%w: %s", errBadImportance, v)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadImportance, s)
	}
	return checkFinite(f, nil)
}

func checkFinite(f float64, err error) (float64, error) {
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errBadImportance, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", errBadImportance, f)
	}
	return f, nil
}
