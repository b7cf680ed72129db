package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/drivesync/internal/stats"
)

func TestFormatRate(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0 B/s"},
		{in: -5, want: "0 B/s"},
		{in: 5, want: "5.00 B/s"},
		{in: 42, want: "42.0 B/s"},
		{in: 512, want: "512 B/s"},
		{in: 2048, want: "2.00 KB/s"},
		{in: 5 * 1024 * 1024, want: "5.00 MB/s"},
		{in: 1.5 * 1024 * 1024 * 1024, want: "1.50 GB/s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRate(tt.in))
	}
}

func TestFormatETA(t *testing.T) {
	assert.Equal(t, "--", FormatETA(0))
	assert.Equal(t, "--", FormatETA(-time.Second))
	assert.Equal(t, "30s", FormatETA(30*time.Second))
	assert.Equal(t, "2m 05s", FormatETA(125*time.Second))
	assert.Equal(t, "1h 01m 05s", FormatETA(time.Hour+65*time.Second))
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "0"},
		{in: 7, want: "7"},
		{in: 999, want: "999"},
		{in: 1000, want: "1,000"},
		{in: 1234567, want: "1,234,567"},
		{in: -4200, want: "-4,200"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCount(tt.in))
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(200*time.Millisecond))
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
	assert.Equal(t, "3m 04s", FormatDuration(184*time.Second))
	assert.Equal(t, "2h 00m 01s", FormatDuration(2*time.Hour+time.Second))
}

func TestCompletionSummary(t *testing.T) {
	snap := stats.Snapshot{
		FilesCopied:  1200,
		BytesCopied:  5 << 30,
		FilesSkipped: 34000,
		Elapsed:      90 * time.Second,
	}
	assert.Equal(t, "synced 1,200 files (5.0 GiB) in 1m 30s, skipped 34,000", CompletionSummary(snap))

	snap.FilesFailed = 3
	assert.Equal(t, "synced 1,200 files (5.0 GiB) in 1m 30s, skipped 34,000, 3 failed", CompletionSummary(snap))
}
