package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSessionJwtRoundTrip(t *testing.T) {
	manager := NewJwtManager([]byte("test-secret"), time.Hour)

	for _, identity := range []Identity{
		{Kind: KindAdmin, ID: 1},
		{Kind: KindCollaborator, ID: 42},
	} {
		token, err := manager.CreateSessionJwt(identity)
		if err != nil {
			t.Fatal(err)
		}

		decoded, err := manager.DecodeToken(token)
		if err != nil {
			t.Fatal(err)
		}
		if decoded != identity {
			t.Fatalf("expected identity %v, got %v", identity, decoded)
		}
	}
}

func TestExpiredToken(t *testing.T) {
	manager := NewJwtManager([]byte("test-secret"), -time.Minute)

	token, err := manager.CreateSessionJwt(Identity{Kind: KindAdmin, ID: 7})
	if err != nil {
		t.Fatal(err)
	}

	_, err = manager.DecodeToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestTokenFromWrongSecret(t *testing.T) {
	manager := NewJwtManager([]byte("secret-a"), time.Hour)
	other := NewJwtManager([]byte("secret-b"), time.Hour)

	token, err := manager.CreateSessionJwt(Identity{Kind: KindCollaborator, ID: 3})
	if err != nil {
		t.Fatal(err)
	}

	_, err = other.DecodeToken(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestMalformedSubject(t *testing.T) {
	for _, subject := range []string{"", "12", "abc_1", "1_abc", "1_9", "1_0"} {
		_, err := identityFromSubject(subject)
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("subject %q should be rejected, got %v", subject, err)
		}
	}

	identity, err := identityFromSubject("15_2")
	if err != nil {
		t.Fatal(err)
	}
	if identity.Kind != KindCollaborator || identity.ID != 15 {
		t.Fatalf("unexpected identity %v", identity)
	}
}
