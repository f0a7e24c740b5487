package publish

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaignflow/internal/domain"
)

func newTestPublisher(t *testing.T, srv *httptest.Server) *Publisher {
	t.Helper()
	p, err := NewPublisher(Options{
		BaseURL:     srv.URL,
		AccessToken: "token",
		HTTPClient:  srv.Client(),
		Logger:      zerolog.New(io.Discard),
	})
	require.NoError(t, err)
	return p
}

func drain(ch <-chan Outcome) []Outcome {
	var outcomes []Outcome
	for o := range ch {
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func TestPublishAllReturnsResultPerAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload publishPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":        "content-" + payload.Caption,
			"permalink": "https://social.test/p/" + payload.Caption,
		})
	}))
	defer srv.Close()

	assets := []Asset{
		{ID: 0, Kind: domain.AssetKindVideo, URL: "https://cdn.test/v.mp4", Caption: "v"},
		{ID: 1, Kind: domain.AssetKindImage, URL: "https://cdn.test/1.png", Caption: "a"},
		{ID: 2, Kind: domain.AssetKindImage, URL: "https://cdn.test/2.png", Caption: "b"},
		{ID: 3, Kind: domain.AssetKindImage, URL: "https://cdn.test/3.png", Caption: "c"},
	}
	outcomes := drain(newTestPublisher(t, srv).PublishAll(context.Background(), assets))
	require.Len(t, outcomes, 4)

	summary := Summarize(outcomes)
	assert.True(t, summary.Success)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 4, summary.Completed)
	assert.Len(t, summary.Posts, 4)
}

func TestPublishAllNeverInventsResults(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var payload publishPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		switch payload.Caption {
		case "no-permalink":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "abc"})
		case "no-id":
			_ = json.NewEncoder(w).Encode(map[string]string{"permalink": "https://social.test/p/x"})
		default:
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "ok", "permalink": "https://social.test/p/ok"})
		}
	}))
	defer srv.Close()

	assets := []Asset{
		{ID: 1, Kind: domain.AssetKindImage, URL: "https://cdn.test/1.png", Caption: "no-permalink"},
		{ID: 2, Kind: domain.AssetKindImage, URL: "https://cdn.test/2.png", Caption: "no-id"},
		{ID: 3, Kind: domain.AssetKindImage, URL: "https://cdn.test/3.png", Caption: "fine"},
	}
	outcomes := drain(newTestPublisher(t, srv).PublishAll(context.Background(), assets))
	require.Len(t, outcomes, 3)

	summary := Summarize(outcomes)
	assert.False(t, summary.Success)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Completed)
	require.Len(t, summary.Posts, 1)
	assert.Equal(t, 3, summary.Posts[0].AssetID)
}

func TestPublishAllEmitsInCompletionOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload publishPayload
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload.Caption == "slow" {
			time.Sleep(100 * time.Millisecond)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":        "content-" + payload.Caption,
			"permalink": "https://social.test/p/" + payload.Caption,
		})
	}))
	defer srv.Close()

	assets := []Asset{
		{ID: 1, Kind: domain.AssetKindImage, URL: "https://cdn.test/1.png", Caption: "slow"},
		{ID: 2, Kind: domain.AssetKindImage, URL: "https://cdn.test/2.png", Caption: "fast"},
	}
	outcomes := drain(newTestPublisher(t, srv).PublishAll(context.Background(), assets))
	require.Len(t, outcomes, 2)
	// The slow asset was submitted first but must settle last; consumers key
	// on asset id, not position.
	assert.Equal(t, 2, outcomes[0].Asset.ID)
	assert.Equal(t, 1, outcomes[1].Asset.ID)
}

func TestPublishAllHandlesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	outcomes := drain(newTestPublisher(t, srv).PublishAll(context.Background(), []Asset{
		{ID: 1, Kind: domain.AssetKindImage, URL: "https://cdn.test/1.png", Caption: "x"},
	}))
	require.Len(t, outcomes, 1)
	require.Error(t, outcomes[0].Err)
	assert.Nil(t, outcomes[0].Result)
}

func TestSummarizeEmptySet(t *testing.T) {
	summary := Summarize(nil)
	assert.False(t, summary.Success)
	assert.Zero(t, summary.Total)
	assert.Zero(t, summary.Completed)
}

func TestNewPublisherRequiresBaseURL(t *testing.T) {
	_, err := NewPublisher(Options{})
	require.Error(t, err)
}
