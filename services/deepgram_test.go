package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribeParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "nova-2", r.URL.Query().Get("model"))
		assert.Equal(t, "es", r.URL.Query().Get("language"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"hola mundo"}]}]}}`))
	}))
	defer server.Close()

	svc := NewTranscriptionService("test-key")
	svc.url = server.URL

	transcript, err := svc.Transcribe(context.Background(), []byte("fake-audio"), "es")
	require.NoError(t, err)
	assert.Equal(t, "hola mundo", transcript)
}

func TestTranscribeReportsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"err_msg":"bad audio"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	svc := NewTranscriptionService("test-key")
	svc.url = server.URL

	_, err := svc.Transcribe(context.Background(), []byte("fake-audio"), "")
	assert.Error(t, err)
}

func TestTranscribeEmptyChannels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"channels":[]}}`))
	}))
	defer server.Close()

	svc := NewTranscriptionService("test-key")
	svc.url = server.URL

	transcript, err := svc.Transcribe(context.Background(), []byte("fake-audio"), "en")
	require.NoError(t, err)
	assert.Empty(t, transcript)
}
