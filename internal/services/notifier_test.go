package services

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cheatcodes/internal/logger"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/testutil/mocks"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.DEBUG))
	ctx := logger.NewContext(context.Background(), log)
	deadline := time.Date(2025, time.June, 3, 12, 0, 0, 0, time.UTC)

	err := NewLogNotifier().Notify(ctx, 4, []models.Event{
		{Kind: models.EventColorChanged, Section: models.SectionInGame, OldColor: models.ColorYellow, NewColor: models.ColorGreen},
		{Kind: models.EventGraceWarning, Section: models.SectionInGame, Deadline: &deadline},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "section color yellow -> green")
	assert.Contains(t, out, "log a technique before 2025-06-03 12:00 to keep green")
	assert.Contains(t, out, "profile_id=4")
	assert.Contains(t, out, "section=in_game")
}

func TestFanoutNotifier_DeliversToAll(t *testing.T) {
	ctx := context.Background()
	events := []models.Event{{Kind: models.EventDailyCapReached, Section: models.SectionPostGame}}
	boom := stderrors.New("boom")

	first := new(mocks.MockNotifier)
	first.On("Notify", ctx, int64(2), events).Return(boom)
	second := new(mocks.MockNotifier)
	second.On("Notify", ctx, int64(2), events).Return(nil)

	err := NewFanoutNotifier(first, second).Notify(ctx, 2, events)
	assert.ErrorIs(t, err, boom)
	first.AssertExpectations(t)
	second.AssertExpectations(t)
}
