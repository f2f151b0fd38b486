package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/store"
)

var testSigningKey = []byte("test-signing-key-0123456789abcdef")

func newTestSessions(t *testing.T, delay time.Duration, seed bool) (SessionService, *store.Store) {
	t.Helper()
	st := store.New(time.Hour, nil)
	auth := NewAuthService(zerolog.Nop(), delay)
	return NewSessionService(zerolog.Nop(), st, auth, "taskflow-test", testSigningKey, seed), st
}

func TestStartAndResolve(t *testing.T) {
	sessions, _ := newTestSessions(t, 0, true)
	ctx := context.Background()

	res, err := sessions.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if res.Session.Authenticated() {
		t.Error("Expected new session to be unauthenticated")
	}

	got, err := sessions.Resolve(ctx, res.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != res.Session.ID {
		t.Errorf("Expected session %s, got %s", res.Session.ID, got.ID)
	}
}

func TestResolveRejectsForgedToken(t *testing.T) {
	sessions, st := newTestSessions(t, 0, true)
	ctx := context.Background()

	res, err := sessions.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	other := NewSessionService(zerolog.Nop(), st, NewAuthService(zerolog.Nop(), 0), "taskflow-test", []byte("another-key"), true)
	if _, err := other.Resolve(ctx, res.Token); !errors.Is(err, ErrInvalidSessionJWT) {
		t.Errorf("Expected ErrInvalidSessionJWT for wrong key, got %v", err)
	}

	tampered := res.Token[:len(res.Token)-2] + "xx"
	if strings.HasSuffix(res.Token, "xx") {
		tampered = res.Token[:len(res.Token)-2] + "yy"
	}
	if _, err := sessions.Resolve(ctx, tampered); !errors.Is(err, ErrInvalidSessionJWT) {
		t.Errorf("Expected ErrInvalidSessionJWT for tampered token, got %v", err)
	}
	if _, err := sessions.Resolve(ctx, "garbage"); !errors.Is(err, ErrInvalidSessionJWT) {
		t.Errorf("Expected ErrInvalidSessionJWT for garbage, got %v", err)
	}
}

func TestResolveRemovedSession(t *testing.T) {
	sessions, st := newTestSessions(t, 0, true)
	ctx := context.Background()

	res, _ := sessions.Start(ctx)
	st.Remove(res.Session.ID)

	if _, err := sessions.Resolve(ctx, res.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestLoginLogoutTransitions(t *testing.T) {
	sessions, _ := newTestSessions(t, 0, true)
	ctx := context.Background()
	res, _ := sessions.Start(ctx)
	id := res.Session.ID

	user, err := sessions.Login(ctx, id, AuthParams{Mode: AuthModeLogin, Email: "john@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Name != "john" {
		t.Errorf("Expected name john, got %s", user.Name)
	}

	got, _ := sessions.Resolve(ctx, res.Token)
	if !got.Authenticated() || got.User.Email != "john@example.com" {
		t.Fatalf("Expected authenticated session, got %+v", got)
	}

	_, err = sessions.Login(ctx, id, AuthParams{Mode: AuthModeLogin, Email: "john@example.com", Password: "secret1"})
	if !errors.Is(err, ErrAlreadySignedIn) {
		t.Errorf("Expected ErrAlreadySignedIn, got %v", err)
	}

	if err := sessions.Logout(ctx, id); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	got, _ = sessions.Resolve(ctx, res.Token)
	if got.Authenticated() {
		t.Error("Expected unauthenticated session after logout")
	}
	if err := sessions.Logout(ctx, id); err != nil {
		t.Errorf("Expected second logout to succeed, got %v", err)
	}
}

func TestLoginValidationKeepsUnauthenticated(t *testing.T) {
	sessions, _ := newTestSessions(t, 0, true)
	ctx := context.Background()
	res, _ := sessions.Start(ctx)

	_, err := sessions.Login(ctx, res.Session.ID, AuthParams{Mode: AuthModeLogin, Email: "a@b.c", Password: "123"})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("Expected ErrPasswordTooShort, got %v", err)
	}

	got, _ := sessions.Resolve(ctx, res.Token)
	if got.Authenticated() || got.Pending {
		t.Errorf("Expected idle unauthenticated session, got %+v", got)
	}
}

func TestLoginRejectsConcurrentSubmission(t *testing.T) {
	sessions, _ := newTestSessions(t, time.Hour, true)
	res, _ := sessions.Start(context.Background())
	id := res.Session.ID

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := sessions.Login(ctx, id, AuthParams{Mode: AuthModeLogin, Email: "a@b.c", Password: "secret1"})
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		s, _ := sessions.Resolve(context.Background(), res.Token)
		if s.Pending {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("session never became pending")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := sessions.Login(context.Background(), id, AuthParams{Mode: AuthModeLogin, Email: "a@b.c", Password: "secret1"})
	if !errors.Is(err, ErrAuthPending) {
		t.Errorf("Expected ErrAuthPending, got %v", err)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	s, _ := sessions.Resolve(context.Background(), res.Token)
	if s.Pending || s.Authenticated() {
		t.Errorf("Expected cancelled login to leave session idle, got %+v", s)
	}
}

func TestLogoutWinsOverPendingLogin(t *testing.T) {
	sessions, _ := newTestSessions(t, 200*time.Millisecond, true)
	ctx := context.Background()
	res, _ := sessions.Start(ctx)
	id := res.Session.ID

	done := make(chan error, 1)
	go func() {
		_, err := sessions.Login(ctx, id, AuthParams{Mode: AuthModeLogin, Email: "a@b.c", Password: "secret1"})
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		s, _ := sessions.Resolve(ctx, res.Token)
		if s.Pending {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("session never became pending")
		}
		time.Sleep(time.Millisecond)
	}

	if err := sessions.Logout(ctx, id); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if err := <-done; !errors.Is(err, ErrAuthSuperseded) {
		t.Errorf("Expected ErrAuthSuperseded, got %v", err)
	}

	s, _ := sessions.Resolve(ctx, res.Token)
	if s.Authenticated() || s.Pending {
		t.Errorf("Expected logged out idle session, got %+v", s)
	}

	if _, err := sessions.Login(ctx, id, AuthParams{Mode: AuthModeLogin, Email: "a@b.c", Password: "secret1"}); err != nil {
		t.Fatalf("Expected a later login to succeed, got %v", err)
	}
	s, _ = sessions.Resolve(ctx, res.Token)
	if !s.Authenticated() {
		t.Error("Expected authenticated session after a fresh login")
	}
}

func TestNotices(t *testing.T) {
	sessions, _ := newTestSessions(t, 0, true)
	ctx := context.Background()
	res, _ := sessions.Start(ctx)
	id := res.Session.ID

	n1 := models.Notice{Kind: models.NoticeSuccess, Title: "one"}
	n2 := models.Notice{Kind: models.NoticeDestructive, Title: "two"}
	if err := sessions.Notify(ctx, id, n1, n2); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	got, err := sessions.TakeNotices(ctx, id)
	if err != nil {
		t.Fatalf("TakeNotices failed: %v", err)
	}
	if len(got) != 2 || got[0] != n1 || got[1] != n2 {
		t.Errorf("Expected [%v %v], got %v", n1, n2, got)
	}

	got, _ = sessions.TakeNotices(ctx, id)
	if len(got) != 0 {
		t.Errorf("Expected notices drained, got %v", got)
	}

	if err := sessions.Notify(ctx, "missing", n1); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}
