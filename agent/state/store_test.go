package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestUpstashRedisStoreRedisKey(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{keyPrefix: defaultStoreKeyPrefix}
	got, err := store.redisKey("abc")
	if err != nil {
		t.Fatalf("redisKey() error = %v", err)
	}
	if got != "telassist:session:abc" {
		t.Fatalf("redisKey() = %q, want %q", got, "telassist:session:abc")
	}
}

func TestUpstashRedisStoreRedisKeyEmptySession(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{keyPrefix: defaultStoreKeyPrefix}
	_, err := store.redisKey("   ")
	if !errors.Is(err, ErrEmptySessionID) {
		t.Fatalf("redisKey() error = %v, want ErrEmptySessionID", err)
	}
}

func TestUpstashRedisStoreSaveUsesPrefixedKey(t *testing.T) {
	t.Parallel()

	const wantKey = "telassist:session:session-1"
	var gotCommand []any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":"OK"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
		WithTTL(0),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	st := NewSessionState("session-1", time.Now().UTC())
	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(gotCommand) != 3 {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[0] != "SET" {
		t.Fatalf("command[0] = %v, want SET", gotCommand[0])
	}
	if gotCommand[1] != wantKey {
		t.Fatalf("command[1] = %v, want %s", gotCommand[1], wantKey)
	}
}

func TestUpstashRedisStoreSaveAppendsExpiry(t *testing.T) {
	t.Parallel()

	var gotCommand []any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":"OK"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
		WithTTL(90*time.Second),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	st := NewSessionState("session-ttl", time.Now().UTC())
	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(gotCommand) != 5 {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[3] != "EX" {
		t.Fatalf("command[3] = %v, want EX", gotCommand[3])
	}
	// JSON numbers decode into any as float64.
	if seconds, ok := gotCommand[4].(float64); !ok || seconds != 90 {
		t.Fatalf("command[4] = %v, want 90", gotCommand[4])
	}
}

func TestUpstashRedisStoreLoadRoundTrip(t *testing.T) {
	t.Parallel()

	const wantKey = "telassist:session:session-2"
	var gotCommand []any

	seed := NewSessionState("session-2", time.Now().UTC())
	seed.AppendTurn(SpeakerCustomer, "faturamı görmek istiyorum", time.Now().UTC())
	payload, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	encoded, err := json.Marshal(string(payload))
	if err != nil {
		t.Fatalf("marshal encoded seed: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		fmt.Fprintf(w, `{"result":%s}`, encoded)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	st, err := store.Load(context.Background(), "session-2")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st.SessionID != "session-2" {
		t.Fatalf("Load().SessionID = %q, want %q", st.SessionID, "session-2")
	}
	if len(st.Transcript) != 1 || st.Transcript[0].Speaker != SpeakerCustomer {
		t.Fatalf("Load().Transcript = %#v, want one customer turn", st.Transcript)
	}

	if len(gotCommand) < 2 {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[0] != "GET" {
		t.Fatalf("command[0] = %v, want GET", gotCommand[0])
	}
	if gotCommand[1] != wantKey {
		t.Fatalf("command[1] = %v, want %s", gotCommand[1], wantKey)
	}
}

func TestUpstashRedisStoreLoadMissing(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		fmt.Fprint(w, `{"result":null}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if _, err := store.Load(context.Background(), "missing"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() error = %v, want ErrStateNotFound", err)
	}
}

func TestUpstashRedisStoreLoadRejectsCorruptState(t *testing.T) {
	t.Parallel()

	seed := NewSessionState("session-bad", time.Now().UTC())
	seed.StepCursor = Step("teleport")
	payload, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	encoded, err := json.Marshal(string(payload))
	if err != nil {
		t.Fatalf("marshal encoded seed: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		fmt.Fprintf(w, `{"result":%s}`, encoded)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if _, err := store.Load(context.Background(), "session-bad"); !errors.Is(err, ErrCorruptState) {
		t.Fatalf("Load() error = %v, want ErrCorruptState", err)
	}
}

func TestUpstashRedisStoreDeleteUsesPrefixedKey(t *testing.T) {
	t.Parallel()

	const wantKey = "telassist:session:session-3"
	var gotCommand []any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":1}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if err := store.Delete(context.Background(), "session-3"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(gotCommand) < 2 {
		t.Fatalf("unexpected command: %#v", gotCommand)
	}
	if gotCommand[0] != "DEL" {
		t.Fatalf("command[0] = %v, want DEL", gotCommand[0])
	}
	if gotCommand[1] != wantKey {
		t.Fatalf("command[1] = %v, want %s", gotCommand[1], wantKey)
	}
}

func TestUpstashRedisStoreSurfacesRedisError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		fmt.Fprint(w, `{"error":"WRONGPASS invalid token"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{
			URL:   server.URL,
			Token: "token",
		},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if _, err := store.Load(context.Background(), "session-4"); err == nil {
		t.Fatal("Load() error = nil, want redis error")
	}
}
