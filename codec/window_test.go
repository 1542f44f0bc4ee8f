package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/hiding/errors"
)

func TestCandidates(t *testing.T) {
	now := uint64(10*MinutesPerDay + 600)
	assert.Equal(t, []uint64{now - 600 + 30, now - 600 + 30 - MinutesPerDay, now - 600 + 30 - 2*MinutesPerDay}, Candidates(30, now))

	assert.Equal(t, []uint64{30}, Candidates(30, 600))
	assert.Equal(t, []uint64{MinutesPerDay + 30, 30}, Candidates(30, MinutesPerDay+5))
}

func TestWithinWindow(t *testing.T) {
	assert.True(t, WithinWindow(100, 100))
	assert.True(t, WithinWindow(100, 101))
	assert.False(t, WithinWindow(100, 102))
	assert.False(t, WithinWindow(100, 99))
	assert.True(t, WithinWindow(1439, 0))
	assert.False(t, WithinWindow(1439, 1))
	assert.False(t, WithinWindow(1438, 0))
}

func TestMinuteStamp(t *testing.T) {
	assert.Equal(t, uint64(0), MinuteStamp(Epoch))
	assert.Equal(t, uint64(0), MinuteStamp(Epoch.Add(-time.Hour)))
	assert.Equal(t, uint64(MinutesPerDay+1), MinuteStamp(Epoch.Add(24*time.Hour+time.Minute+59*time.Second)))

	local := time.Date(2026, 3, 1, 8, 0, 0, 0, time.FixedZone("CST", 8*3600))
	assert.Equal(t, MinuteStamp(local.UTC()), MinuteStamp(local))
	assert.Equal(t, uint64(0), MinuteStamp(local)%MinutesPerDay)
}

func TestMatchStamp(t *testing.T) {
	day := uint64(100 * MinutesPerDay)
	issued := day - 1 // 23:59 on the previous day
	now := day        // 00:00

	t.Run("future candidate collides", func(t *testing.T) {
		valid := func(stamp uint64) bool {
			return stamp == issued || stamp == issued+MinutesPerDay
		}
		got, err := MatchStamp(MinutesPerDay-1, now, true, valid)
		require.NoError(t, err)
		assert.Equal(t, issued, got)
	})

	t.Run("only expired match", func(t *testing.T) {
		valid := func(stamp uint64) bool { return stamp == issued-MinutesPerDay }
		_, err := MatchStamp(MinutesPerDay-1, now, true, valid)
		assert.Equal(t, errors.CodeExpired, errors.Code(err))

		got, err := MatchStamp(MinutesPerDay-1, now, false, valid)
		require.NoError(t, err)
		assert.Equal(t, issued-MinutesPerDay, got)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := MatchStamp(MinutesPerDay-1, now, true, func(uint64) bool { return false })
		assert.Equal(t, errors.CodeTampered, errors.Code(err))
	})
}
