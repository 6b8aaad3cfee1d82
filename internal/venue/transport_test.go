package venue

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_SuccessDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		w.Write([]byte(`{"txid":"abc123"}`))
	}))
	defer srv.Close()

	tr := NewTransport(srv.URL, WithAPIKey("secret"))

	var out struct {
		TxID string `json:"txid"`
	}
	err := tr.Do(context.Background(), http.MethodPost, "/confirm", map[string]string{"a": "b"}, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc123", out.TxID)
}

func TestTransport_BusinessFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"missing runeName"}}`))
	}))
	defer srv.Close()

	tr := NewTransport(srv.URL, WithRetryDelay(time.Millisecond))

	err := tr.Do(context.Background(), http.MethodPost, "/quote", map[string]string{}, nil, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation), "got %v", err)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestTransport_ServerErrorRetriedThenUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"maintenance"}`))
	}))
	defer srv.Close()

	tr := NewTransport(srv.URL, WithMaxRetries(2), WithRetryDelay(time.Millisecond))

	err := tr.Do(context.Background(), http.MethodGet, "/quote", nil, nil, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnavailable), "got %v", err)
	assert.Equal(t, int32(3), calls.Load(), "expected initial call plus retry budget")
}

func TestTransport_ServerErrorRecovers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tr := NewTransport(srv.URL, WithRetryDelay(time.Millisecond))

	err := tr.Do(context.Background(), http.MethodGet, "/", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTransport_MalformedBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	tr := NewTransport(srv.URL)

	var out struct{}
	err := tr.Do(context.Background(), http.MethodGet, "/", nil, &out, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnavailable), "got %v", err)
}

func TestTransport_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	tr := NewTransport(srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tr.Do(ctx, http.MethodGet, "/", nil, nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
