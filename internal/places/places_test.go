package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverhouse-belgrade/riverhouse/config"
)

func TestReviewsUnconfiguredReturnsSamples(t *testing.T) {
	c := NewClient(config.PlacesConfig{}, time.Hour)
	reviews := c.Reviews(context.Background())
	require.Len(t, reviews, 3)
	assert.Equal(t, "Marko Petrović", reviews[0].AuthorName)
}

func TestReviewsFromPlacesAPI(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "place-1", r.URL.Query().Get("place_id"))
		assert.Equal(t, "key-1", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","result":{"name":"River House","rating":4.9,"reviews":[
			{"author_name":"Jelena","rating":5,"text":"Divno","time":1700000000,"relative_time_description":"a month ago"}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient(config.PlacesConfig{PlaceID: "place-1", ApiKey: "key-1", Endpoint: srv.URL}, time.Hour)
	reviews := c.Reviews(context.Background())
	require.Len(t, reviews, 1)
	assert.Equal(t, "Jelena", reviews[0].AuthorName)
	assert.Equal(t, int64(1700000000000), reviews[0].Time)
	assert.Equal(t, "a month ago", reviews[0].RelativeTimeDescription)

	// cached
	_ = c.Reviews(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestReviewsFallbackOnDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"billing"}`))
	}))
	defer srv.Close()

	c := NewClient(config.PlacesConfig{PlaceID: "p", ApiKey: "k", Endpoint: srv.URL}, time.Hour)
	reviews := c.Reviews(context.Background())
	assert.Len(t, reviews, 3)
}
