package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alexanderramin/coach/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []CallEvent
}

func (o *recordingObserver) OnCallComplete(e CallEvent) {
	o.mu.Lock()
	o.events = append(o.events, e)
	o.mu.Unlock()
}

func loggedIn(t *testing.T, token string) *session.MemoryStore {
	t.Helper()
	s := session.NewMemoryStore()
	require.NoError(t, s.SetToken(context.Background(), token))
	return s
}

func TestDo_AttachesBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		assert.NoError(t, err, "request id should be a uuid")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, loggedIn(t, "abc"))
	resp, err := c.Do(context.Background(), http.MethodGet, "/users/myInfo")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.True(t, resp.IsObject())
	assert.False(t, resp.IsArray())
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, session.NewMemoryStore())
	resp, err := c.Do(context.Background(), http.MethodGet, "/goals")
	require.NoError(t, err)
	assert.True(t, resp.IsArray())
}

func TestDo_SkipAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, loggedIn(t, "abc"))
	_, err := c.Do(context.Background(), http.MethodPost, "/auth/login", SkipAuth())
	require.NoError(t, err)
}

func TestDo_ExplicitBearerWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer otp-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, loggedIn(t, "session-token"))
	_, err := c.Do(context.Background(), http.MethodPost, "/users/reset-password", SkipAuth(), WithBearer("otp-token"))
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodPost, "/users/reset-password", WithBearer("otp-token"))
	require.NoError(t, err)
}

func TestDo_QueryAndJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gemini/plan", r.URL.Path)
		assert.Equal(t, "learn Go & SQL", r.URL.Query().Get("target"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "x", body["cvAnalysis"])
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, session.NewMemoryStore())
	_, err := c.Do(context.Background(), http.MethodPost, "/gemini/plan",
		WithQuery("target", "learn Go & SQL"),
		WithJSON(map[string]string{"cvAnalysis": "x"}),
	)
	require.NoError(t, err)
}

func TestDo_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "42", r.FormValue("userId"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "cv.pdf", hdr.Filename)
		assert.Equal(t, "%PDF-1.4", string(data))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, session.NewMemoryStore())
	_, err := c.Do(context.Background(), http.MethodPost, "/gemini/analyze",
		WithMultipart(map[string]string{"userId": "42"}, "file", "cv.pdf", strings.NewReader("%PDF-1.4")))
	require.NoError(t, err)
}

func TestDo_401ClearsStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Token expired"}`))
	}))
	defer srv.Close()

	store := loggedIn(t, "stale")
	c := New(srv.URL, store)
	_, err := c.Do(context.Background(), http.MethodGet, "/goals")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Token expired", UserMessage(err, "fallback"))

	tok, _ := store.Token(context.Background())
	assert.Empty(t, tok, "any 401 empties the store")
}

func TestDo_401OnSkipAuthCallStillClears(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := loggedIn(t, "abc")
	c := New(srv.URL, store)
	_, err := c.Do(context.Background(), http.MethodPost, "/auth/login", SkipAuth())
	require.Error(t, err)

	tok, _ := store.Token(context.Background())
	assert.Empty(t, tok)
}

func TestDo_OtherErrorsKeepToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Username already exists"}`))
	}))
	defer srv.Close()

	store := loggedIn(t, "abc")
	c := New(srv.URL, store)
	_, err := c.Do(context.Background(), http.MethodPost, "/users/createUser")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Username already exists", apiErr.Message)
	assert.JSONEq(t, `{"error":"Username already exists"}`, string(apiErr.Body))

	tok, _ := store.Token(context.Background())
	assert.Equal(t, "abc", tok)
}

func TestUserMessage_Fallback(t *testing.T) {
	assert.Equal(t, "Registration failed", UserMessage(errors.New("boom"), "Registration failed"))
	assert.Equal(t, "Registration failed", UserMessage(&APIError{Status: 500, Body: []byte("oops")}, "Registration failed"))
}

func TestDo_Unavailable(t *testing.T) {
	c := New("http://127.0.0.1:1", session.NewMemoryStore())
	_, err := c.Do(context.Background(), http.MethodGet, "/goals")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDo_ObserverSeesEveryCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := New(srv.URL, session.NewMemoryStore(), WithObserver(obs))
	_, _ = c.Do(context.Background(), http.MethodGet, "/good")
	_, _ = c.Do(context.Background(), http.MethodDelete, "/bad")

	require.Len(t, obs.events, 2)
	assert.Equal(t, "/good", obs.events[0].Path)
	assert.Equal(t, http.StatusOK, obs.events[0].Status)
	assert.NoError(t, obs.events[0].Err)
	assert.Equal(t, http.MethodDelete, obs.events[1].Method)
	assert.Equal(t, http.StatusInternalServerError, obs.events[1].Status)
	assert.Error(t, obs.events[1].Err)
	assert.NotEqual(t, obs.events[0].RequestID, obs.events[1].RequestID)
}

func TestDo_InvalidJSONBody(t *testing.T) {
	c := New("http://unused", session.NewMemoryStore())
	_, err := c.Do(context.Background(), http.MethodPost, "/x", WithJSON(make(chan int)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding request body")
}
