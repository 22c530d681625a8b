package main

import (
	"log/slog"
	"testing"

	"github.com/hotlist/hotlist/internal/scheduler"
)

func TestRenameCritical(t *testing.T) {
	cases := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelInfo, "INFO"},
		{slog.LevelError, "ERROR"},
		{scheduler.LevelCritical, "CRITICAL"},
	}
	for _, tc := range cases {
		got := renameCritical(nil, slog.Any(slog.LevelKey, tc.level))
		if got.Value.String() != tc.want {
			t.Errorf("level %v: got %q, want %q", tc.level, got.Value.String(), tc.want)
		}
	}
}

func TestRenameCritical_IgnoresGroupedAndOtherKeys(t *testing.T) {
	a := slog.Any(slog.LevelKey, scheduler.LevelCritical)
	if got := renameCritical([]string{"g"}, a); got.Value.String() == "CRITICAL" {
		t.Error("grouped level attr should be left alone")
	}
	msg := slog.String(slog.MessageKey, "hello")
	if got := renameCritical(nil, msg); got.Value.String() != "hello" {
		t.Errorf("message attr changed: %q", got.Value.String())
	}
}
