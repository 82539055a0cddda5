// Package account holds the demo member profile. There is no credential
// check; logging in only selects a profile.
package account

import (
	"time"

	"github.com/go-faster/errors"
)

// ErrUnknownProvider is returned for an unsupported social login provider.
var ErrUnknownProvider = errors.New("unknown login provider")

// ErrNotLoggedIn is returned when a profile operation needs a session.
var ErrNotLoggedIn = errors.New("not logged in")

// Provider is a social login provider.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderLine   Provider = "line"
	ProviderKakao  Provider = "kakao"
	ProviderApple  Provider = "apple"
)

var providerNames = map[Provider]string{
	ProviderGoogle: "Google User",
	ProviderLine:   "LINE User",
	ProviderKakao:  "Kakao User",
	ProviderApple:  "Apple User",
}

// ParseProvider validates a provider identifier.
func ParseProvider(s string) (Provider, error) {
	p := Provider(s)
	if _, ok := providerNames[p]; !ok {
		return "", errors.Wrapf(ErrUnknownProvider, "%q", s)
	}
	return p, nil
}

// User is a member profile.
type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Avatar      string   `json:"avatar"`
	Country     string   `json:"country"`
	CountryCode string   `json:"countryCode"`
	MemberSince string   `json:"memberSince"`
	Tier        string   `json:"tier"`
	Points      int      `json:"points"`
	Bookings    int      `json:"bookings"`
	Reviews     int      `json:"reviews"`
	Provider    Provider `json:"provider,omitempty"`
}

// ProfileUpdate is a partial profile; nil fields keep their value.
type ProfileUpdate struct {
	Name        *string
	Email       *string
	Avatar      *string
	Country     *string
	CountryCode *string
}

// Session is the persisted login state of one client.
type Session struct {
	User *User `json:"user"`
}

// Authenticated reports whether a profile is selected.
func (s *Session) Authenticated() bool {
	return s.User != nil
}

// Login selects u as the current profile.
func (s *Session) Login(u User) {
	s.User = &u
}

// LoginDemo selects the built-in demo member.
func (s *Session) LoginDemo() {
	s.Login(User{
		ID:          "user-001",
		Name:        "Sarah Johnson",
		Email:       "sarah@example.com",
		Avatar:      "https://picsum.photos/seed/user1/200/200",
		Country:     "US",
		CountryCode: "US",
		MemberSince: "2025-06-15",
		Tier:        "Gold",
		Points:      12500,
		Bookings:    3,
		Reviews:     2,
	})
}

// LoginWithProvider selects a fresh Bronze profile for the provider.
func (s *Session) LoginWithProvider(p Provider, now time.Time) error {
	name, ok := providerNames[p]
	if !ok {
		return errors.Wrapf(ErrUnknownProvider, "%q", p)
	}
	s.Login(User{
		ID:          "user-social-001",
		Name:        name,
		Email:       "demo@" + string(p) + ".example.com",
		Avatar:      "https://picsum.photos/seed/" + string(p) + "/200/200",
		Country:     "US",
		CountryCode: "US",
		MemberSince: now.Format(time.DateOnly),
		Tier:        "Bronze",
		Provider:    p,
	})
	return nil
}

// Logout clears the current profile.
func (s *Session) Logout() {
	s.User = nil
}

// UpdateProfile merges the non-nil fields of u into the current profile.
func (s *Session) UpdateProfile(u ProfileUpdate) error {
	if s.User == nil {
		return ErrNotLoggedIn
	}
	merge(&s.User.Name, u.Name)
	merge(&s.User.Email, u.Email)
	merge(&s.User.Avatar, u.Avatar)
	merge(&s.User.Country, u.Country)
	merge(&s.User.CountryCode, u.CountryCode)
	return nil
}

func merge(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}
