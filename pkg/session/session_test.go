package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ordersync/ordersync/pkg/api"
	"github.com/ordersync/ordersync/pkg/session"
)

func authServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"token":"tok-abc","user":{"id":1,"name":"Admin","email":"admin@example.com"}}`))
		case "/orders":
			if r.Header.Get("Authorization") != "Bearer tok-abc" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message":"invalid or expired token"}`))
				return
			}
			w.Write([]byte(`{"data":[],"pagination":{"page":1,"limit":10,"total":0,"pages":0}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestLoginEstablishesSession(t *testing.T) {
	srv := authServer(t)
	defer srv.Close()

	tokens := &session.MemoryTokenStore{}
	client := api.New(srv.URL)
	sess := session.New(client, tokens)

	if sess.State() != session.Anonymous {
		t.Fatalf("initial state = %v", sess.State())
	}

	err := sess.Login(context.Background(), session.Credentials{
		Email: "admin@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if sess.State() != session.Authenticated {
		t.Errorf("state = %v, want Authenticated", sess.State())
	}
	if sess.Token() != "tok-abc" {
		t.Errorf("token = %q", sess.Token())
	}
	if sess.User()["name"] != "Admin" {
		t.Errorf("user = %v", sess.User())
	}

	// Token persisted for the next process.
	if stored, _ := tokens.Load(); stored != "tok-abc" {
		t.Errorf("persisted token = %q", stored)
	}
}

func TestLoginFailureOverwritesError(t *testing.T) {
	var messages = []string{"Invalid credentials", "account locked"}
	var call int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		msg := messages[call]
		call++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"` + msg + `"}`))
	}))
	defer srv.Close()

	client := api.New(srv.URL)
	sess := session.New(client, &session.MemoryTokenStore{})

	creds := session.Credentials{Email: "a@example.com", Password: "wrongpass"}
	if err := sess.Login(context.Background(), creds); err == nil {
		t.Fatal("expected first login to fail")
	}
	if sess.Err() != "Invalid credentials" {
		t.Errorf("err = %q", sess.Err())
	}

	if err := sess.Login(context.Background(), creds); err == nil {
		t.Fatal("expected second login to fail")
	}
	if sess.Err() != "account locked" {
		t.Errorf("second failure must overwrite the first: %q", sess.Err())
	}
	if sess.State() != session.Anonymous {
		t.Errorf("state = %v, want Anonymous after failure", sess.State())
	}
	if sess.IsAuthenticated() {
		t.Error("failed login must not authenticate")
	}
}

func TestLoginValidatesBeforeNetwork(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	sess := session.New(api.New(srv.URL), &session.MemoryTokenStore{})
	if err := sess.Login(context.Background(), session.Credentials{Email: "nope"}); err == nil {
		t.Fatal("expected validation error")
	}
	if calls != 0 {
		t.Error("invalid credentials must not reach the network")
	}
}

func TestRehydrateFromTokenStore(t *testing.T) {
	tokens := &session.MemoryTokenStore{}
	if err := tokens.Save("tok-abc"); err != nil {
		t.Fatal(err)
	}

	srv := authServer(t)
	defer srv.Close()

	client := api.New(srv.URL)
	sess := session.New(client, tokens)

	if !sess.IsAuthenticated() {
		t.Fatal("stored token must rehydrate the session")
	}
	if sess.User() != nil {
		t.Error("rehydrated session has no user descriptor until next login")
	}

	// The rehydrated token is attached to outgoing requests.
	if _, err := client.Get("/orders").Send(); err != nil {
		t.Errorf("authenticated call failed: %v", err)
	}
}

func TestUnauthorizedResponseClearsSession(t *testing.T) {
	tokens := &session.MemoryTokenStore{}
	_ = tokens.Save("tok-stale")

	srv := authServer(t)
	defer srv.Close()

	client := api.New(srv.URL)
	sess := session.New(client, tokens)
	if !sess.IsAuthenticated() {
		t.Fatal("precondition: session rehydrated")
	}

	// The stale token is rejected by the backend; the 401 must clear
	// both the in-memory session and the persisted token.
	if _, err := client.Get("/orders").Send(); !api.IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}

	if sess.IsAuthenticated() {
		t.Error("401 must clear the session")
	}
	if sess.State() != session.Anonymous {
		t.Errorf("state = %v", sess.State())
	}
	if stored, _ := tokens.Load(); stored != "" {
		t.Errorf("persisted token survived a 401: %q", stored)
	}
}

func TestLogoutIsLocal(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"token":"tok-abc","user":{}}`))
	}))
	defer srv.Close()

	tokens := &session.MemoryTokenStore{}
	sess := session.New(api.New(srv.URL), tokens)

	err := sess.Login(context.Background(), session.Credentials{
		Email: "admin@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	callsAfterLogin := calls

	sess.Logout()
	if calls != callsAfterLogin {
		t.Error("logout must not issue a network call")
	}
	if sess.IsAuthenticated() || sess.Token() != "" {
		t.Error("logout must drop the token")
	}
	if stored, _ := tokens.Load(); stored != "" {
		t.Errorf("logout must clear the persisted token")
	}
}
