package utils

import (
	"github.com/google/uuid"
)

const (
	TrackingIDMinLength = 8
	TrackingIDMaxLength = 128
)

// ValidTrackingID reports whether raw is usable as a tracking identifier:
// 8-128 characters drawn from [A-Za-z0-9_-]. Anything else is rejected
// before classification or logging can happen.
func ValidTrackingID(raw string) bool {
	if len(raw) < TrackingIDMinLength || len(raw) > TrackingIDMaxLength {
		return false
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

// GenerateTrackingID mints a fresh identifier for a new tracking pixel
func GenerateTrackingID() string {
	return uuid.NewString()
}
