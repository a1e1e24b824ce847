// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// newTestClient returns a client pointed at srv with logging discarded.
func newTestClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL).WithHTTPClient(srv.Client()).WithLogger(quietLogger())
}

// =============================================================================
// REQUEST ENCODING
// =============================================================================

func TestNewRequest_ThreadIDNull(t *testing.T) {
	data, err := json.Marshal(NewRequest("hi", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"hi","threadId":null}`, string(data))

	data, err = json.Marshal(NewRequest("hi", "abc"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"hi","threadId":"abc"}`, string(data))
}

func TestReply_Text(t *testing.T) {
	assert.Equal(t, "r", (&Reply{Response: "r", Message: "m"}).Text())
	assert.Equal(t, "m", (&Reply{Message: "m"}).Text())
	assert.Equal(t, "", (&Reply{}).Text())
}

// =============================================================================
// SEND
// =============================================================================

func TestClient_Send(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, ChatPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"response":"**hi** there","threadId":"t-1"}`)
	}))
	defer srv.Close()

	reply, err := newTestClient(srv).Send(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "**hi** there", reply.Text())
	assert.Equal(t, "t-1", reply.ThreadID)
	assert.Equal(t, "hello", got.Message)
	assert.Nil(t, got.ThreadID)
}

func TestClient_Send_MessageField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":"from message field"}`)
	}))
	defer srv.Close()

	reply, err := newTestClient(srv).Send(context.Background(), "x", "t")
	require.NoError(t, err)
	assert.Equal(t, "from message field", reply.Text())
	assert.Empty(t, reply.ThreadID)
}

func TestClient_Send_NotConfigured(t *testing.T) {
	_, err := NewClient("  ").Send(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_Send_TrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://example.com/")
	assert.Equal(t, "http://example.com/api/chat", c.Endpoint())
}

func TestClient_Send_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad input", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).WithMaxRetries(3).Send(context.Background(), "x", "")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "bad input")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Send_RetriesServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"response":"ok"}`)
	}))
	defer srv.Close()

	reply, err := newTestClient(srv).WithMaxRetries(2).Send(context.Background(), "x", "")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Text())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Send_RetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).WithMaxRetries(2).Send(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	var statusErr *StatusError
	assert.ErrorAs(t, err, &statusErr)
}

func TestClient_Send_EmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"threadId":"t"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Send(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestClient_Send_InvalidJSON(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		io.WriteString(w, `<html>not json</html>`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Send(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Send_ContextCanceled(t *testing.T) {
	// The handler holds the request until the test ends. Closing release
	// before srv.Close keeps Close from waiting on an active handler.
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv).Send(ctx, "x", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "deadline"))
}

func TestClient_Send_ResponseTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"response":"`)
		io.WriteString(w, strings.Repeat("a", MaxResponseSize))
		io.WriteString(w, `"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Send(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestClient_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"response":"ok"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv).WithRateLimit(1, 1)
	_, err := c.Send(context.Background(), "x", "")
	require.NoError(t, err)

	// The second call must wait about a second for a token; a short deadline
	// makes the limiter give up.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Send(ctx, "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

// =============================================================================
// RETRY HELPERS
// =============================================================================

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, time.Second},
		{3, 2 * time.Second},
		{10, retryMaxDelay},
	}
	for _, tc := range tests {
		if got := calculateBackoff(tc.attempt); got != tc.want {
			t.Errorf("calculateBackoff(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &StatusError{StatusCode: 502}, true},
		{"rate limited", &StatusError{StatusCode: 429}, true},
		{"not found", &StatusError{StatusCode: 404}, false},
		{"canceled", context.Canceled, false},
		{"empty reply", ErrEmptyReply, false},
		{"transport", errors.New("connection refused"), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isRetryable(ctx, tc.err))
		})
	}
}
