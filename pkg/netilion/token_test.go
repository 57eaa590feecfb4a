package netilion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

func TestTokenFrom(t *testing.T) {
	now := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)

	t.Run("created_at and expires_in", func(t *testing.T) {
		raw := (&oauth2.Token{AccessToken: "abc", RefreshToken: "never"}).WithExtra(map[string]interface{}{
			"created_at": float64(now.Add(-time.Minute).Unix()),
			"expires_in": float64(7200),
		})

		tok := tokenFrom(raw, now)
		assert.Equal(t, "abc", tok.AccessToken)
		assert.True(t, now.Add(-time.Minute).Equal(tok.IssuedAt))
		assert.Equal(t, 2*time.Hour, tok.TTL)
		assert.True(t, now.Add(119*time.Minute).Equal(tok.Expiry()))
	})

	t.Run("local clock fallback", func(t *testing.T) {
		raw := &oauth2.Token{AccessToken: "abc", Expiry: now.Add(time.Hour)}

		tok := tokenFrom(raw, now)
		assert.True(t, now.Equal(tok.IssuedAt))
		assert.Equal(t, time.Hour, tok.TTL)
	})

	t.Run("no lifetime", func(t *testing.T) {
		tok := tokenFrom(&oauth2.Token{AccessToken: "abc"}, now)
		assert.True(t, tok.Expiry().IsZero())
		assert.False(t, tok.Expired(now.Add(1000*time.Hour)))
	})
}

func TestTokenExpired(t *testing.T) {
	issued := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	tok := Token{AccessToken: "abc", IssuedAt: issued, TTL: time.Hour}

	assert.False(t, tok.Expired(issued))
	assert.False(t, tok.Expired(issued.Add(time.Hour-time.Second)))
	assert.True(t, tok.Expired(issued.Add(time.Hour)))
	assert.True(t, tok.Expired(issued.Add(2*time.Hour)))
}

func TestTokenStringHidesToken(t *testing.T) {
	tok := Token{AccessToken: "very-secret-token", TTL: time.Hour}

	assert.NotContains(t, tok.String(), "very-secret-token")
	assert.Contains(t, tok.String(), hashOf("very-secret-token"))
}
