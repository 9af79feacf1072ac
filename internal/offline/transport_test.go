package offline

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyeserver/internal/cache"
	"skyeserver/internal/client"
)

func newAssetServer(t *testing.T, hits *int32) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Path {
		case "/api/v1/content":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		case "/missing.png":
			http.NotFound(w, r)
		default:
			w.Header().Set("Content-Type", "text/css")
			w.Write([]byte("body{}"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, c *http.Client, url string) (*http.Response, string) {
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestTransport_CacheFirstForStaticGets(t *testing.T) {
	var hits int32
	srv := newAssetServer(t, &hits)
	tr := NewTransport(nil, cache.New(16, 1<<20), "v1", "/api/", zerolog.Nop())
	c := &http.Client{Transport: tr}

	_, body := get(t, c, srv.URL+"/app.css")
	assert.Equal(t, "body{}", body)
	resp, body := get(t, c, srv.URL+"/app.css")
	assert.Equal(t, "body{}", body)
	assert.Equal(t, "text/css", resp.Header.Get("Content-Type"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	// errors are not cached
	get(t, c, srv.URL+"/missing.png")
	get(t, c, srv.URL+"/missing.png")
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestTransport_NetworkFirstForAPI(t *testing.T) {
	var hits int32
	srv := newAssetServer(t, &hits)
	tr := NewTransport(nil, cache.New(16, 1<<20), "v1", "/api/", zerolog.Nop())
	c := &http.Client{Transport: tr}

	get(t, c, srv.URL+"/api/v1/content")
	get(t, c, srv.URL+"/api/v1/content")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	url := srv.URL + "/api/v1/content"
	srv.Close()

	resp, body := get(t, c, url)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var envelope struct {
		Error struct{ Code string } `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &envelope))
	assert.Equal(t, "OFFLINE", envelope.Error.Code)
}

func TestTransport_ServesPrecachedAssetsOffline(t *testing.T) {
	var hits int32
	srv := newAssetServer(t, &hits)
	store := cache.New(16, 1<<20)
	tr := NewTransport(nil, store, "v1", "/api/", zerolog.Nop())

	require.NoError(t, tr.Install(context.Background(), []string{srv.URL + "/index.css"}))
	url := srv.URL + "/index.css"
	srv.Close()

	_, body := get(t, &http.Client{Transport: tr}, url)
	assert.Equal(t, "body{}", body)
}

func TestTransport_InstallFailureLeavesNothingBehind(t *testing.T) {
	var hits int32
	srv := newAssetServer(t, &hits)
	store := cache.New(16, 1<<20)
	tr := NewTransport(nil, store, "v1", "/api/", zerolog.Nop())

	err := tr.Install(context.Background(), []string{srv.URL + "/a.css", srv.URL + "/missing.png"})
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestTransport_ActivateNewVersion(t *testing.T) {
	var hits int32
	srv := newAssetServer(t, &hits)
	store := cache.New(16, 1<<20)
	tr := NewTransport(nil, store, "v1", "/api/", zerolog.Nop())
	c := &http.Client{Transport: tr}

	get(t, c, srv.URL+"/app.css")
	assert.Equal(t, 1, tr.Activate("v2"))
	assert.Equal(t, "v2", tr.Version())

	get(t, c, srv.URL+"/app.css")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Equal(t, []string{"v2"}, store.Versions())
}

func TestTransport_ClientAssetsSurviveOutage(t *testing.T) {
	var hits int32
	srv := newAssetServer(t, &hits)
	tr := NewTransport(nil, cache.New(16, 1<<20), "v1", "/api/", zerolog.Nop())
	api := client.New(srv.URL, &http.Client{Transport: tr})
	ctx := context.Background()

	data, err := api.FetchAsset(ctx, srv.URL+"/thumbs/dune-thumb.jpg")
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))
	_, err = api.ListContent(ctx)
	require.NoError(t, err)

	srv.Close()

	data, err = api.FetchAsset(ctx, srv.URL+"/thumbs/dune-thumb.jpg")
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))

	_, err = api.ListContent(ctx)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "OFFLINE", apiErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}
