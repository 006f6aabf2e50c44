package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func claimsExpiringIn(remaining time.Duration) Claims {
	return Claims{"exp": float64(testNow().Add(remaining).Unix())}
}

func TestClock_IsExpired(t *testing.T) {
	clock := NewClockAt(15*time.Minute, testNow)

	t.Run("missing exp fails closed", func(t *testing.T) {
		assert.True(t, clock.IsExpired(Claims{}))
	})

	t.Run("exp equal to now is expired", func(t *testing.T) {
		assert.True(t, clock.IsExpired(claimsExpiringIn(0)))
	})

	t.Run("exp one second ahead is not expired", func(t *testing.T) {
		assert.False(t, clock.IsExpired(claimsExpiringIn(time.Second)))
	})

	t.Run("past exp is expired", func(t *testing.T) {
		assert.True(t, clock.IsExpired(claimsExpiringIn(-time.Hour)))
	})
}

func TestClock_RemainingMinutes(t *testing.T) {
	clock := NewClockAt(15*time.Minute, testNow)

	assert.Equal(t, 0, clock.RemainingMinutes(Claims{}))
	assert.Equal(t, 0, clock.RemainingMinutes(claimsExpiringIn(-time.Minute)))
	assert.Equal(t, 0, clock.RemainingMinutes(claimsExpiringIn(59*time.Second)))
	assert.Equal(t, 1, clock.RemainingMinutes(claimsExpiringIn(90*time.Second)))
	assert.Equal(t, 30, clock.RemainingMinutes(claimsExpiringIn(30*time.Minute)))
}

func TestClock_ShouldRefresh_ThresholdEdges(t *testing.T) {
	clock := NewClockAt(15*time.Minute, testNow)

	t.Run("expired token never signals refresh", func(t *testing.T) {
		assert.False(t, clock.ShouldRefresh(claimsExpiringIn(0)))
		assert.False(t, clock.ShouldRefresh(claimsExpiringIn(-time.Hour)))
		assert.False(t, clock.ShouldRefresh(Claims{}))
	})

	t.Run("just above threshold stays quiet", func(t *testing.T) {
		assert.False(t, clock.ShouldRefresh(claimsExpiringIn(16*time.Minute)))
	})

	t.Run("at threshold fires", func(t *testing.T) {
		assert.True(t, clock.ShouldRefresh(claimsExpiringIn(15*time.Minute)))
	})

	t.Run("one minute left fires", func(t *testing.T) {
		assert.True(t, clock.ShouldRefresh(claimsExpiringIn(time.Minute)))
	})
}

func TestClock_IsValid(t *testing.T) {
	clock := NewClockAt(15*time.Minute, testNow)
	live := float64(testNow().Add(time.Hour).Unix())

	t.Run("complete live claims", func(t *testing.T) {
		claims := Claims{"userId": float64(1), "email": "a@b.c", "role": "doctor", "exp": live}
		assert.True(t, clock.IsValid(claims))
	})

	t.Run("missing subject", func(t *testing.T) {
		assert.False(t, clock.IsValid(Claims{"email": "a@b.c", "role": "doctor", "exp": live}))
	})

	t.Run("missing email", func(t *testing.T) {
		assert.False(t, clock.IsValid(Claims{"userId": float64(1), "role": "doctor", "exp": live}))
	})

	t.Run("missing role", func(t *testing.T) {
		assert.False(t, clock.IsValid(Claims{"userId": float64(1), "email": "a@b.c", "exp": live}))
	})

	t.Run("expired", func(t *testing.T) {
		claims := Claims{"userId": float64(1), "email": "a@b.c", "role": "doctor", "exp": float64(testNow().Unix())}
		assert.False(t, clock.IsValid(claims))
	})
}
