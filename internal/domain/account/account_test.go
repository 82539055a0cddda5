package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_LoginDemo(t *testing.T) {
	var s Session
	assert.False(t, s.Authenticated())

	s.LoginDemo()
	require.True(t, s.Authenticated())
	assert.Equal(t, "user-001", s.User.ID)
	assert.Equal(t, "Gold", s.User.Tier)
	assert.Equal(t, 12500, s.User.Points)

	s.Logout()
	assert.False(t, s.Authenticated())
}

func TestSession_LoginWithProvider(t *testing.T) {
	now := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		provider string
		wantName string
	}{
		{"google", "Google User"},
		{"line", "LINE User"},
		{"kakao", "Kakao User"},
		{"apple", "Apple User"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := ParseProvider(tt.provider)
			require.NoError(t, err)

			var s Session
			require.NoError(t, s.LoginWithProvider(p, now))
			assert.Equal(t, tt.wantName, s.User.Name)
			assert.Equal(t, "demo@"+tt.provider+".example.com", s.User.Email)
			assert.Equal(t, "2026-02-14", s.User.MemberSince)
			assert.Equal(t, "Bronze", s.User.Tier)
			assert.Equal(t, p, s.User.Provider)
		})
	}

	_, err := ParseProvider("myspace")
	require.ErrorIs(t, err, ErrUnknownProvider)

	var s Session
	require.ErrorIs(t, s.LoginWithProvider("myspace", now), ErrUnknownProvider)
	assert.False(t, s.Authenticated())
}

func TestSession_UpdateProfile(t *testing.T) {
	var s Session
	name := "Sarah J."
	require.ErrorIs(t, s.UpdateProfile(ProfileUpdate{Name: &name}), ErrNotLoggedIn)

	s.LoginDemo()
	require.NoError(t, s.UpdateProfile(ProfileUpdate{Name: &name}))
	assert.Equal(t, "Sarah J.", s.User.Name)
	assert.Equal(t, "sarah@example.com", s.User.Email, "unset fields are kept")
}
