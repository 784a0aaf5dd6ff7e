package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	level, msg := parseLine(`time=2024-05-01T18:30:00.000Z level=WARN msg="Failed login attempt for username: ada"`)
	assert.Equal(t, "WARN", level)
	assert.Equal(t, "Failed login attempt for username: ada", msg)

	level, msg = parseLine(`time=2024-05-01T18:30:00.000Z level=INFO msg=Shutting`)
	assert.Equal(t, "INFO", level)
	assert.Equal(t, "Shutting", msg)
}

func TestAnalyzeLog(t *testing.T) {
	lines := `time=2024-05-01T18:30:00Z level=INFO msg="New user registered: ada"
time=2024-05-01T18:30:01Z level=INFO msg="User logged in: ada"
time=2024-05-01T18:30:02Z level=INFO msg="New order placed: Order ID 1, User ID 1, total 25.98 usd"
time=2024-05-01T18:30:03Z level=ERROR msg="Invalid signature on stripe webhook: missing header"
time=2024-05-01T18:30:04Z level=INFO msg="Payment recorded for order 1"
time=2024-05-01T18:30:05Z level=INFO msg="Payment pi_1 already recorded, ignoring redelivery"
time=2024-05-01T18:30:06Z level=WARN msg="Unauthorized access attempt to cancel order 1 by user 2"
`
	path := filepath.Join(t.TempDir(), "app-2024-05-01.log")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0644))

	stats := &LogStats{UserActivities: map[string]int{}, ErrorPatterns: map[string]int{}}
	require.NoError(t, analyzeLog(path, stats))

	assert.Equal(t, 7, stats.Lines)
	assert.Equal(t, 1, stats.Registrations)
	assert.Equal(t, 1, stats.LoginSuccess)
	assert.Equal(t, 1, stats.OrdersPlaced)
	assert.Equal(t, 1, stats.PaymentsRecorded)
	assert.Equal(t, 1, stats.DuplicateDeliveries)
	assert.Equal(t, 1, stats.InvalidSignatures)
	assert.Equal(t, 1, stats.ForbiddenAttempts)
	assert.Equal(t, 1, stats.TotalErrors)
	assert.Equal(t, 2, stats.UserActivities["ada"])
	assert.Equal(t, 1, stats.ErrorPatterns["Invalid signature on stripe webhook"])
}
