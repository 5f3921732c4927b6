package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 14, 17, 45, 12, 999, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), StartOfDay(ts))

	// Non-UTC inputs bucket by their UTC day.
	loc := time.FixedZone("UTC+9", 9*3600)
	late := time.Date(2026, 3, 15, 3, 0, 0, 0, loc) // 18:00 UTC the day before
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), StartOfDay(late))

	// Midnight is a fixed point.
	midnight := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, midnight, StartOfDay(midnight))
}
