package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fischervincent/grow-journal-sub000/internal/models"
)

// reminderHour is the fixed local time-of-day for reminders created from
// an explicit user-picked date.
const reminderHour = 9

// HistorySource returns the most recent care event timestamps for a
// (plant, event type) pair, newest first, at most limit entries.
type HistorySource interface {
	RecentCareEventTimes(ctx context.Context, plantID, eventTypeID string, limit int) ([]time.Time, error)
}

// ReminderStore is the persistence surface the reconciler needs.
// OutstandingReminder returns nil when no outstanding instance exists.
type ReminderStore interface {
	OutstandingReminder(ctx context.Context, plantID, eventTypeID string) (*models.Reminder, error)
	CreateReminder(ctx context.Context, rem models.Reminder) (string, error)
	RescheduleReminder(ctx context.Context, id string, at time.Time) error
	DeleteReminder(ctx context.Context, id string) error
}

// Reconciler makes the persisted reminder instance match an effective
// configuration: at most one outstanding reminder per (plant, event type),
// no duplicates, no orphans, no stale dates. Reconciliation is
// delete-then-update-or-create, never additive, so re-running it always
// converges.
type Reconciler struct {
	History   HistorySource
	Reminders ReminderStore
	Now       func() time.Time
}

func NewReconciler(history HistorySource, reminders ReminderStore) *Reconciler {
	return &Reconciler{History: history, Reminders: reminders, Now: time.Now}
}

// Reconcile applies eff to the (plant, event type) pair and returns the
// surviving reminder, or nil when the pair ends up without one. An
// explicit date (from the bulk settings flow) short-circuits scheduling
// and lands at 09:00 in loc.
func (rc *Reconciler) Reconcile(ctx context.Context, userID, plantID, eventTypeID string, eff EffectiveConfig, explicitDate *time.Time, loc *time.Location) (*models.Reminder, error) {
	existing, err := rc.Reminders.OutstandingReminder(ctx, plantID, eventTypeID)
	if err != nil {
		return nil, fmt.Errorf("load outstanding reminder: %w", err)
	}

	if !eff.Enabled {
		if existing != nil {
			if err := rc.Reminders.DeleteReminder(ctx, existing.ID); err != nil {
				return nil, fmt.Errorf("delete reminder: %w", err)
			}
		}
		return nil, nil
	}

	var at time.Time
	if explicitDate != nil {
		if loc == nil {
			loc = time.Local
		}
		// Read the calendar day in the value's own zone. Date-only input
		// arrives as midnight UTC, and converting it into a west-of-UTC
		// location first would shift the picked day back by one.
		y, m, d := explicitDate.Date()
		at = time.Date(y, m, d, reminderHour, 0, 0, 0, loc)
	} else {
		at, err = rc.nextScheduledAt(ctx, plantID, eventTypeID, eff)
		if err != nil {
			return nil, err
		}
	}

	if existing != nil {
		if err := rc.Reminders.RescheduleReminder(ctx, existing.ID, at); err != nil {
			return nil, fmt.Errorf("reschedule reminder: %w", err)
		}
		updated := *existing
		updated.ScheduledAt = at
		return &updated, nil
	}

	rem := models.Reminder{
		UserID:      userID,
		PlantID:     plantID,
		EventTypeID: eventTypeID,
		ScheduledAt: at,
	}
	id, err := rc.Reminders.CreateReminder(ctx, rem)
	if err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	rem.ID = id
	return &rem, nil
}

func (rc *Reconciler) nextScheduledAt(ctx context.Context, plantID, eventTypeID string, eff EffectiveConfig) (time.Time, error) {
	history, err := rc.History.RecentCareEventTimes(ctx, plantID, eventTypeID, historyCap)
	if err != nil {
		return time.Time{}, fmt.Errorf("load event history: %w", err)
	}

	var lastEvent *time.Time
	if len(history) > 0 {
		lastEvent = &history[0]
	}

	if eff.Strategy == models.StrategySmart {
		inferred, err := InferInterval(history)
		switch {
		case err == nil:
			// Inference needs two events, so lastEvent is set here.
			return inferred.AddTo(*lastEvent), nil
		case errors.Is(err, ErrInsufficientHistory):
			// Expected steady state for young plants; fall back to the
			// configured interval, measured from the last event when
			// one exists.
			log.Printf("schedule: no usable history for plant=%s type=%s, using fixed fallback", plantID, eventTypeID)
			ref := rc.Now()
			if lastEvent != nil {
				ref = *lastEvent
			}
			return eff.Interval.AddTo(ref), nil
		default:
			return time.Time{}, err
		}
	}

	// Fixed strategy: from the last recorded event, or tomorrow when the
	// pair has no history yet.
	ref := rc.Now().AddDate(0, 0, 1)
	if lastEvent != nil {
		ref = *lastEvent
	}
	return eff.Interval.AddTo(ref), nil
}
