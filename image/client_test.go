package image

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "test-key", r.FormValue("access_token"))
		assert.Equal(t, "model-123", r.FormValue("model_id"))
		assert.Equal(t, "a beach at sunset", r.FormValue("prompt"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"images":["https://cdn.example.com/out/1.png"]}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Endpoint: server.URL,
		APIKey:   "test-key",
		ModelID:  "model-123",
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)

	url, err := client.Generate(context.Background(), "a beach at sunset", Params{})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/out/1.png", url)
}

func TestClientGenerateParamsOverrideModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "model-override", r.FormValue("model_id"))
		assert.Equal(t, "512", r.FormValue("width"))
		w.Write([]byte(`{"images":["https://cdn.example.com/out/2.png"]}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL, APIKey: "k", ModelID: "model-default"})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "portrait", Params{ModelID: "model-override", Width: 512})
	require.NoError(t, err)
}

func TestClientGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL, APIKey: "k", ModelID: "m"})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "anything", Params{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClientGenerateEmptyImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"images":[]}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL, APIKey: "k", ModelID: "m"})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "anything", Params{})
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestClientGenerateValidation(t *testing.T) {
	client, err := NewClient(Config{Endpoint: "http://localhost", APIKey: "k", ModelID: "m"})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "   ", Params{})
	assert.Error(t, err)

	_, err = NewClient(Config{Endpoint: "http://localhost"})
	assert.Error(t, err)
}
