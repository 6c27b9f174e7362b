package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/fischervincent/grow-journal-sub000/internal/models"
)

// PlantSetting is one entry of a bulk settings batch. Strategy and
// interval fields are read only when UseDefault is false. ExplicitDate,
// when set, overrides scheduling with a user-picked date.
type PlantSetting struct {
	PlantID       string
	Enabled       bool
	UseDefault    bool
	Strategy      models.ReminderStrategy
	IntervalValue int
	IntervalUnit  models.IntervalUnit
	ExplicitDate  *time.Time
}

// ConfigChange is one planned write against plant_reminder_configs.
// Remove tombstones an existing live row; a nil Upsert with Remove false
// is a no-op entry.
type ConfigChange struct {
	PlantID     string
	EventTypeID string
	Remove      bool
	Upsert      *models.PlantReminderConfig
}

// ConfigStore is the persistence surface for reminder configuration.
// Lookups return nil when no (live) row exists. ApplyConfigChanges must
// apply the whole batch atomically.
type ConfigStore interface {
	ReminderDefault(ctx context.Context, userID, eventTypeID string) (*models.ReminderDefault, error)
	PlantReminderConfig(ctx context.Context, plantID, eventTypeID string) (*models.PlantReminderConfig, error)
	ApplyConfigChanges(ctx context.Context, changes []ConfigChange) error
}

// Applicator applies a multi-plant settings batch: one atomic pass over
// the config rows, then resolve-and-reconcile per plant in input order.
// Re-running the same batch converges to the same state, so the UI may
// retry on network failure.
type Applicator struct {
	Configs    ConfigStore
	Reconciler *Reconciler
}

func NewApplicator(configs ConfigStore, rec *Reconciler) *Applicator {
	return &Applicator{Configs: configs, Reconciler: rec}
}

// Apply validates the whole batch, commits the config writes in one
// transaction, then reconciles each plant's reminder against the freshly
// committed state. Reminder side effects are per plant and are not rolled
// back if a later plant fails.
func (a *Applicator) Apply(ctx context.Context, userID, eventTypeID string, settings []PlantSetting, loc *time.Location) error {
	for _, s := range settings {
		if s.UseDefault {
			continue
		}
		if s.Strategy != models.StrategyFixed && s.Strategy != models.StrategySmart {
			return fmt.Errorf("plant %s: unknown strategy %q: %w", s.PlantID, s.Strategy, ErrInvalidInterval)
		}
		iv := Interval{Value: s.IntervalValue, Unit: s.IntervalUnit}
		if err := iv.Validate(); err != nil {
			return fmt.Errorf("plant %s: %w", s.PlantID, err)
		}
	}

	def, err := a.Configs.ReminderDefault(ctx, userID, eventTypeID)
	if err != nil {
		return fmt.Errorf("load reminder default: %w", err)
	}

	changes := make([]ConfigChange, 0, len(settings))
	for _, s := range settings {
		existing, err := a.Configs.PlantReminderConfig(ctx, s.PlantID, eventTypeID)
		if err != nil {
			return fmt.Errorf("load plant config %s: %w", s.PlantID, err)
		}
		changes = append(changes, planChange(userID, eventTypeID, s, existing, def))
	}
	if err := a.Configs.ApplyConfigChanges(ctx, changes); err != nil {
		return fmt.Errorf("apply config changes: %w", err)
	}

	// The config write above is committed before each reconciliation
	// read, so no plant reconciles against a stale effective config.
	for _, s := range settings {
		cfg, err := a.Configs.PlantReminderConfig(ctx, s.PlantID, eventTypeID)
		if err != nil {
			return fmt.Errorf("reload plant config %s: %w", s.PlantID, err)
		}
		eff := Resolve(cfg, def)
		if _, err := a.Reconciler.Reconcile(ctx, userID, s.PlantID, eventTypeID, eff, s.ExplicitDate, loc); err != nil {
			return fmt.Errorf("reconcile plant %s: %w", s.PlantID, err)
		}
	}
	return nil
}

// planChange decides whether a setting materializes as a row. A row is
// written only when the desired state resolves differently from row
// absence; otherwise an existing live row is tombstoned, or nothing is
// written at all. This keeps the table free of rows for the common
// "leave at default, disabled" case.
func planChange(userID, eventTypeID string, s PlantSetting, existing *models.PlantReminderConfig, def *models.ReminderDefault) ConfigChange {
	if !s.UseDefault {
		return ConfigChange{PlantID: s.PlantID, EventTypeID: eventTypeID, Upsert: &models.PlantReminderConfig{
			UserID:        userID,
			PlantID:       s.PlantID,
			EventTypeID:   eventTypeID,
			Enabled:       s.Enabled,
			UseDefault:    false,
			Strategy:      s.Strategy,
			IntervalValue: s.IntervalValue,
			IntervalUnit:  s.IntervalUnit,
		}}
	}

	// Deferring to the default: absence already means "the default
	// verbatim", so a row is needed only when the plant's enabled flag
	// disagrees with what absence would resolve to.
	absentEnabled := def != nil && def.Enabled
	if s.Enabled == absentEnabled {
		if existing != nil {
			return ConfigChange{PlantID: s.PlantID, EventTypeID: eventTypeID, Remove: true}
		}
		return ConfigChange{PlantID: s.PlantID, EventTypeID: eventTypeID}
	}
	return ConfigChange{PlantID: s.PlantID, EventTypeID: eventTypeID, Upsert: &models.PlantReminderConfig{
		UserID:        userID,
		PlantID:       s.PlantID,
		EventTypeID:   eventTypeID,
		Enabled:       s.Enabled,
		UseDefault:    true,
		Strategy:      models.StrategyFixed,
		IntervalValue: 1,
		IntervalUnit:  models.UnitDays,
	}}
}
