package jackett

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbitmaster/qbitmaster-api/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.JackettConfig{
		URL:           server.URL,
		APIKey:        "test-key",
		SearchTimeout: 2 * time.Second,
	}, nil)
}

func TestClientSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2.0/indexers/all/results", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "ubuntu", r.URL.Query().Get("Query"))
		assert.Equal(t, "2000", r.URL.Query().Get("Category[]"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Results":[{"Title":"Ubuntu 24.04","Size":4500000000,"Seeders":120,"Peers":10,"MagnetUri":"magnet:?xt=urn:btih:abc","Tracker":"linuxtracker","PublishDate":"2024-04-25T00:00:00Z"}]}`))
	})

	results, err := client.Search(context.Background(), "ubuntu", "2000")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ubuntu 24.04", results[0].Title)
	assert.Equal(t, 120, results[0].Seeders)
	assert.Equal(t, "magnet:?xt=urn:btih:abc", results[0].MagnetURI)
}

func TestClientIndexers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2.0/indexers", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"linuxtracker","name":"LinuxTracker","configured":true}]`))
	})

	indexers, err := client.Indexers(context.Background())
	require.NoError(t, err)
	require.Len(t, indexers, 1)
	assert.True(t, indexers[0].Configured)
}

func TestClientSearchUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "ubuntu", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestClientConfigured(t *testing.T) {
	assert.False(t, NewClient(config.JackettConfig{URL: "http://localhost:9117"}, nil).Configured())
	assert.True(t, NewClient(config.JackettConfig{URL: "http://localhost:9117", APIKey: "k"}, nil).Configured())
}
