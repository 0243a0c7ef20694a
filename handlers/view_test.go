package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestViewMarkerRoundTrip(t *testing.T) {
	secret := []byte("test-view-secret")
	now := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)

	marker := signViewMarker(secret, "post123", "203.0.113.7", now)

	assert.True(t, verifyViewMarker(secret, "post123", "203.0.113.7", marker, now))
	assert.True(t, verifyViewMarker(secret, "post123", "203.0.113.7", marker, now.Add(59*time.Minute)))
}

func TestViewMarkerExpiry(t *testing.T) {
	secret := []byte("test-view-secret")
	now := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)

	marker := signViewMarker(secret, "post123", "203.0.113.7", now)

	assert.False(t, verifyViewMarker(secret, "post123", "203.0.113.7", marker, now.Add(viewWindow)))
	assert.False(t, verifyViewMarker(secret, "post123", "203.0.113.7", marker, now.Add(2*time.Hour)))
}

func TestViewMarkerRejectsFutureTimestamp(t *testing.T) {
	secret := []byte("test-view-secret")
	now := time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)

	marker := signViewMarker(secret, "post123", "203.0.113.7", now.Add(10*time.Minute))
	assert.False(t, verifyViewMarker(secret, "post123", "203.0.113.7", marker, now))
}

func TestViewMarkerBinding(t *testing.T) {
	secret := []byte("test-view-secret")
	now := time.Now()
	marker := signViewMarker(secret, "post123", "203.0.113.7", now)

	assert.False(t, verifyViewMarker(secret, "otherpost", "203.0.113.7", marker, now), "marker must not transfer between posts")
	assert.False(t, verifyViewMarker(secret, "post123", "198.51.100.1", marker, now), "marker must not transfer between clients")
	assert.False(t, verifyViewMarker([]byte("wrong-secret"), "post123", "203.0.113.7", marker, now))
}

func TestViewMarkerRejectsMalformed(t *testing.T) {
	secret := []byte("test-view-secret")
	now := time.Now()

	for _, value := range []string{
		"",
		"no-dot",
		"notanumber.deadbeef",
		"1755248400.",
		"1755248400.zz",
		".deadbeef",
	} {
		assert.False(t, verifyViewMarker(secret, "post123", "203.0.113.7", value, now), "value %q", value)
	}
}
