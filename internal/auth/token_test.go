package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// fakeClock is a settable time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")

	tests := []struct {
		name   string
		userID string
	}{
		{"uuid user", "3f2b1c9e-8d7a-4e6b-9c5d-1a2b3c4d5e6f"},
		{"object id user", "65a1f0c2b3d4e5f601234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Issue(tt.userID)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}
			if token == "" {
				t.Fatal("Issue() returned empty token")
			}

			got, err := svc.Verify(token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got != tt.userID {
				t.Errorf("Verify() = %q, want %q", got, tt.userID)
			}
		})
	}
}

func TestIssueRejectsEmptyUser(t *testing.T) {
	if _, err := NewTokenService("test-secret").Issue(""); err == nil {
		t.Error("Issue(\"\") should fail")
	}
}

func TestTokenExpiresAfterOneHour(t *testing.T) {
	issueTimes := []struct {
		name string
		at   time.Time
	}{
		{"whole second", newTestClock().t},
		{"sub-second", time.Date(2026, 1, 2, 12, 0, 0, 900*int(time.Millisecond), time.UTC)},
	}

	tests := []struct {
		name    string
		elapsed time.Duration
		wantErr error
	}{
		{"immediately", 0, nil},
		{"after 30 minutes", 30 * time.Minute, nil},
		{"one second before expiry", time.Hour - time.Second, nil},
		{"half a second before expiry", time.Hour - 500*time.Millisecond, nil},
		{"one second after expiry", time.Hour + time.Second, ErrTokenExpired},
		{"next day", 24 * time.Hour, ErrTokenExpired},
	}

	for _, it := range issueTimes {
		clock := &fakeClock{t: it.at}
		svc := NewTokenService("test-secret", WithClock(clock.Now))
		token, err := svc.Issue("user-1")
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		for _, tt := range tests {
			t.Run(it.name+"/"+tt.name, func(t *testing.T) {
				clock.t = it.at.Add(tt.elapsed)
				_, err := svc.Verify(token)
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
				}
			})
		}
	}
}

func TestTokenEmbedsIssueAndExpiry(t *testing.T) {
	clock := newTestClock()
	svc := NewTokenService("test-secret", WithClock(clock.Now))

	token, err := svc.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}

	var claims Claims
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		t.Fatalf("ParseUnverified() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Subject != "user-1" {
		t.Errorf("claims user = %q / %q", claims.UserID, claims.Subject)
	}
	if !claims.IssuedAt.Time.Equal(clock.t) {
		t.Errorf("iat = %v, want %v", claims.IssuedAt.Time, clock.t)
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("exp - iat = %v, want 1h", got)
	}
}

func TestTamperedPayloadFailsSignature(t *testing.T) {
	svc := NewTokenService("test-secret")
	token, err := svc.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(token, ".")

	for i := range parts[1] {
		payload := []byte(parts[1])
		if payload[i] == 'A' {
			payload[i] = 'B'
		} else {
			payload[i] = 'A'
		}
		tampered := parts[0] + "." + string(payload) + "." + parts[2]

		if _, err := svc.Verify(tampered); !errors.Is(err, ErrTokenSignatureInvalid) {
			t.Fatalf("byte %d: Verify() error = %v, want ErrTokenSignatureInvalid", i, err)
		}
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	other := NewTokenService("other-secret")
	token, err := other.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewTokenService("test-secret").Verify(token)
	if !errors.Is(err, ErrTokenSignatureInvalid) {
		t.Errorf("Verify() error = %v, want ErrTokenSignatureInvalid", err)
	}
}

func TestVerifyRejectsExpiredTokenFromForeignSecret(t *testing.T) {
	clock := newTestClock()
	other := NewTokenService("other-secret", WithClock(clock.Now))
	token, err := other.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}
	clock.t = clock.t.Add(2 * time.Hour)

	_, err = NewTokenService("test-secret", WithClock(clock.Now)).Verify(token)
	if err == nil {
		t.Fatal("Verify() should fail")
	}
	if !errors.Is(err, ErrTokenSignatureInvalid) {
		t.Errorf("Verify() error = %v, want signature failure before expiry is considered", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	svc := NewTokenService("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"single segment", "abc"},
		{"two segments", "abc.def"},
		{"four segments", "a.b.c.d"},
		{"empty payload", "eyJhbGciOiJIUzI1NiJ9..c2ln"},
		{"bad signature encoding", "eyJhbGciOiJIUzI1NiJ9.e30.!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			if !errors.Is(err, ErrTokenMalformed) {
				t.Errorf("Verify() error = %v, want ErrTokenMalformed", err)
			}
		})
	}
}

func TestVerifyRejectsSignedTokenWithoutUser(t *testing.T) {
	svc := NewTokenService("test-secret")
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("Verify() error = %v, want ErrTokenMalformed", err)
	}
}

func TestVerifyRejectsSignedTokenWithoutExpiry(t *testing.T) {
	svc := NewTokenService("test-secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-1"}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("Verify() error = %v, want ErrTokenMalformed", err)
	}
}
