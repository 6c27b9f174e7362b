package schedule

import (
	"context"
	"fmt"
	"time"
)

// PostEventScheduler re-derives the next reminder right after a care
// event is recorded. This is what keeps smart reminders honest: every new
// data point may shift the predicted date, and a config that resolves to
// disabled clears the outstanding reminder.
type PostEventScheduler struct {
	Configs    ConfigStore
	Reconciler *Reconciler
}

func NewPostEventScheduler(configs ConfigStore, rec *Reconciler) *PostEventScheduler {
	return &PostEventScheduler{Configs: configs, Reconciler: rec}
}

// EventRecorded runs resolve-then-reconcile for exactly one
// (plant, event type) pair, always recomputing from the fresh history.
// Callers treat a failure here as non-fatal to the event recording
// itself.
func (p *PostEventScheduler) EventRecorded(ctx context.Context, userID, plantID, eventTypeID string, loc *time.Location) error {
	cfg, err := p.Configs.PlantReminderConfig(ctx, plantID, eventTypeID)
	if err != nil {
		return fmt.Errorf("load plant config: %w", err)
	}
	def, err := p.Configs.ReminderDefault(ctx, userID, eventTypeID)
	if err != nil {
		return fmt.Errorf("load reminder default: %w", err)
	}
	eff := Resolve(cfg, def)
	if _, err := p.Reconciler.Reconcile(ctx, userID, plantID, eventTypeID, eff, nil, loc); err != nil {
		return fmt.Errorf("reconcile after event: %w", err)
	}
	return nil
}
