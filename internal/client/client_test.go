package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListAndCreate(t *testing.T) {
	var created CreateContentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/content":
			w.Write([]byte(`[{"id":"a","title":"Sintel","category":"movies","featured":true,"videoUrl":"https://cdn/s.mp4"}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/content":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"b","title":"Sintel - Part 1"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil)

	items, err := c.ListContent(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Sintel", items[0].Title)
	assert.True(t, items[0].Featured)

	item, err := c.CreateContent(context.Background(), CreateContentRequest{Title: "Sintel - Part 1", Category: "movies", FileName: "s1.mp4"})
	require.NoError(t, err)
	assert.Equal(t, "b", item.ID)
	assert.Equal(t, "s1.mp4", created.FileName)
}

func TestClient_EmptyListIsNotNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer srv.Close()

	items, err := New(srv.URL, nil).ListContent(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/content/a%2Fb", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"CONTENT_NOT_FOUND","message":"Content not found"}}`))
	}))
	defer srv.Close()

	err := New(srv.URL, nil).DeleteContent(context.Background(), "a/b")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "CONTENT_NOT_FOUND", apiErr.Code)
	assert.Equal(t, "Content not found", apiErr.Message)
}

func TestClient_PlainErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).RequestUploadTarget(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "bad gateway", apiErr.Message)
	assert.False(t, IsNotFound(err))
}

func TestClient_Analytics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analytics", r.URL.Path)
		w.Write([]byte(`{"totalVideos":3,"storageUsed":"1.5 GB"}`))
	}))
	defer srv.Close()

	stats, err := New(srv.URL, nil).Analytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Analytics{TotalVideos: 3, StorageUsed: "1.5 GB"}, stats)
}

func TestClient_GetContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() == "/api/v1/content/a%20b" {
			w.Write([]byte(`{"id":"a b","title":"Sintel"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"CONTENT_NOT_FOUND","message":"Content not found"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	item, err := c.GetContent(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, "Sintel", item.Title)

	_, err = c.GetContent(context.Background(), "zz")
	assert.True(t, IsNotFound(err))
}
