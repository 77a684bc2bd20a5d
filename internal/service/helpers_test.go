package service

import (
	"testing"
	"time"

	"github.com/daybook/internal/db"
)

func setupTestStores(t *testing.T) *db.Stores {
	t.Helper()
	stores, err := db.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open stores: %v", err)
	}
	return stores
}

func fixedClock(t *testing.T, date string) func() time.Time {
	t.Helper()
	now, err := time.Parse(time.DateOnly, date)
	if err != nil {
		t.Fatalf("invalid clock date %q: %v", date, err)
	}
	now = now.Add(9 * time.Hour)
	return func() time.Time { return now }
}

// tickingClock 每次调用前进一分钟，用于区分评论时间
func tickingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}
