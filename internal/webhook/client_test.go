package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/webhook"
)

func TestNotify_PostsPayload(t *testing.T) {
	var got webhook.Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	at := time.Date(2025, time.March, 2, 9, 0, 0, 0, time.UTC)
	events := []models.Event{
		{Kind: models.EventHoldStarted, Section: models.SectionPreGame, At: at},
		{Kind: models.EventMilestone, Section: models.SectionPreGame, Milestone: "hold_3d", At: at},
	}
	err := webhook.New(srv.URL).Notify(context.Background(), 9, events)
	require.NoError(t, err)

	assert.Equal(t, int64(9), got.ProfileID)
	require.Len(t, got.Events, 2)
	assert.Equal(t, models.EventMilestone, got.Events[1].Kind)
	assert.True(t, got.Events[0].At.Equal(at))
	assert.False(t, got.SentAt.IsZero())
}

func TestNotify_SkipsEmptyBatch(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	require.NoError(t, webhook.New(srv.URL).Notify(context.Background(), 1, nil))
	assert.False(t, called)
}

func TestNotify_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := webhook.New(srv.URL).Notify(context.Background(), 1, []models.Event{{Kind: models.EventDemotionForced}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "nope")
}
