package codec

import (
	"time"

	"github.com/kochabx/hiding/errors"
)

const (
	MinutesPerDay = 1440
	// 完整时间戳的偏移量，时间码的 MAC 输入为 stamp*StampShift + n
	StampShift uint64 = 100_000_000
)

// Epoch is the origin of full minute stamps. It falls on a UTC day boundary.
var Epoch = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

// MinuteStamp returns whole minutes since Epoch. Times before Epoch map to 0.
func MinuteStamp(t time.Time) uint64 {
	d := t.Sub(Epoch)
	if d < 0 {
		return 0
	}
	return uint64(d / time.Minute)
}

// WithinWindow reports whether cur is the origin minute of day or the one
// right after, wrapping at midnight.
func WithinWindow(origin, cur uint64) bool {
	if cur >= origin {
		return cur-origin <= 1
	}
	return cur+MinutesPerDay-origin <= 1
}

// Candidates rebuilds the full stamps a code may carry: the origin minute on
// the current day and on each of the two previous days.
func Candidates(origin, now uint64) []uint64 {
	today := now - now%MinutesPerDay + origin
	out := make([]uint64, 0, 3)
	for day := range uint64(3) {
		if today < day*MinutesPerDay {
			break
		}
		out = append(out, today-day*MinutesPerDay)
	}
	return out
}

// MatchStamp returns the first candidate stamp accepted by valid. With
// checkExpiry a candidate outside the two-minute window counts as a miss, so a
// tag collision on a later day cannot hide the real stamp.
func MatchStamp(origin, now uint64, checkExpiry bool, valid func(stamp uint64) bool) (uint64, error) {
	expired := false
	for _, stamp := range Candidates(origin, now) {
		if !valid(stamp) {
			continue
		}
		// 同一分钟在前一天签发的码同样通过分钟检查，这里按完整时间戳再判断一次
		if checkExpiry && !inWindow(stamp, now) {
			expired = true
			continue
		}
		return stamp, nil
	}
	if expired {
		return 0, errors.Expired("issued outside the validity window")
	}
	return 0, errors.Tampered("tag mismatch")
}

func inWindow(stamp, now uint64) bool {
	return stamp <= now && now-stamp <= 1
}
