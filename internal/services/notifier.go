package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/cheatcodes/internal/logger"
	"github.com/vytor/cheatcodes/internal/models"
)

// Notifier delivers engine events to the user. Delivery failures never undo
// the state change that produced the events.
type Notifier interface {
	Notify(ctx context.Context, profileID int64, events []models.Event) error
}

type logNotifier struct{}

// NewLogNotifier returns a Notifier that writes every event to the log.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) Notify(ctx context.Context, profileID int64, events []models.Event) error {
	log := logger.FromContext(ctx).WithPrefix("notifier").WithField("profile_id", profileID)
	for _, e := range events {
		l := log.WithField("kind", string(e.Kind))
		if e.Section != "" {
			l = l.WithField("section", string(e.Section))
		}
		switch e.Kind {
		case models.EventColorChanged:
			l.Info("section color %s -> %s", e.OldColor, e.NewColor)
		case models.EventMilestone:
			l.Info("milestone %s reached", e.Milestone)
		case models.EventHoldStopped:
			l.Info("green hold ended after %v", e.Duration)
		case models.EventGraceWarning:
			if e.Deadline != nil {
				l.Warn("log a technique before %s to keep green", e.Deadline.Format("2006-01-02 15:04"))
			}
		case models.EventDemotionForced:
			l.Warn("section demoted to yellow")
		default:
			l.Info("event")
		}
	}
	return nil
}

type fanoutNotifier []Notifier

// NewFanoutNotifier delivers every batch to each of ns in order. One failing
// notifier does not stop the others; their errors are joined.
func NewFanoutNotifier(ns ...Notifier) Notifier {
	return fanoutNotifier(ns)
}

func (f fanoutNotifier) Notify(ctx context.Context, profileID int64, events []models.Event) error {
	var errs []error
	for _, n := range f {
		if err := n.Notify(ctx, profileID, events); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
