package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fischervincent/grow-journal-sub000/internal/models"
)

func newApplicator(store *fakeStore) *Applicator {
	return NewApplicator(store, NewReconciler(store, store))
}

func TestApply_InvalidIntervalRejectsWholeBatch(t *testing.T) {
	store := newFakeStore()
	a := newApplicator(store)

	settings := []PlantSetting{
		{PlantID: "p1", Enabled: true, UseDefault: false, Strategy: models.StrategyFixed, IntervalValue: 3, IntervalUnit: models.UnitDays},
		{PlantID: "p2", Enabled: true, UseDefault: false, Strategy: models.StrategyFixed, IntervalValue: 0, IntervalUnit: models.UnitDays},
	}
	err := a.Apply(context.Background(), testUser, testType, settings, time.UTC)
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	if len(store.configs) != 0 || len(store.reminders) != 0 {
		t.Fatal("nothing may be persisted when validation fails")
	}
}

func TestApply_UnknownStrategyRejected(t *testing.T) {
	store := newFakeStore()
	a := newApplicator(store)

	settings := []PlantSetting{
		{PlantID: "p1", Enabled: true, UseDefault: false, Strategy: "weekly", IntervalValue: 1, IntervalUnit: models.UnitDays},
	}
	if err := a.Apply(context.Background(), testUser, testType, settings, time.UTC); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestApply_CustomSettingCreatesConfigAndReminder(t *testing.T) {
	store := newFakeStore()
	store.setHistory("p1", testType, day(2025, time.January, 10))
	a := newApplicator(store)

	settings := []PlantSetting{
		{PlantID: "p1", Enabled: true, UseDefault: false, Strategy: models.StrategyFixed, IntervalValue: 3, IntervalUnit: models.UnitDays},
	}
	if err := a.Apply(context.Background(), testUser, testType, settings, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := store.configs[pairKey("p1", testType)]
	if cfg == nil || cfg.UseDefault || !cfg.Enabled || cfg.IntervalValue != 3 {
		t.Fatalf("expected materialized custom config, got %+v", cfg)
	}
	rem := store.reminders[pairKey("p1", testType)]
	if rem == nil {
		t.Fatal("expected an outstanding reminder")
	}
	if want := day(2025, time.January, 13); !rem.ScheduledAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, rem.ScheduledAt)
	}
}

func TestApply_Idempotent(t *testing.T) {
	store := newFakeStore()
	store.setHistory("p1", testType, day(2025, time.January, 10))
	a := newApplicator(store)

	settings := []PlantSetting{
		{PlantID: "p1", Enabled: true, UseDefault: false, Strategy: models.StrategyFixed, IntervalValue: 3, IntervalUnit: models.UnitDays},
	}
	ctx := context.Background()
	if err := a.Apply(ctx, testUser, testType, settings, time.UTC); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	firstRem := *store.reminders[pairKey("p1", testType)]

	if err := a.Apply(ctx, testUser, testType, settings, time.UTC); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if len(store.reminders) != 1 {
		t.Fatalf("expected one reminder after retry, got %d", len(store.reminders))
	}
	secondRem := *store.reminders[pairKey("p1", testType)]
	if secondRem.ID != firstRem.ID || !secondRem.ScheduledAt.Equal(firstRem.ScheduledAt) {
		t.Fatalf("retry must converge to the same instance: %+v vs %+v", firstRem, secondRem)
	}
}

func TestApply_DisableRemovesOutstandingReminder(t *testing.T) {
	store := newFakeStore()
	store.setDefault(testUser, testType, models.ReminderDefault{
		Enabled: true, Strategy: models.StrategyFixed, IntervalValue: 1, IntervalUnit: models.UnitWeeks,
	})
	store.setHistory("p1", testType, day(2025, time.January, 10))
	a := newApplicator(store)
	ctx := context.Background()

	// Seed an outstanding reminder via an enabled pass.
	enable := []PlantSetting{{PlantID: "p1", Enabled: true, UseDefault: true}}
	if err := a.Apply(ctx, testUser, testType, enable, time.UTC); err != nil {
		t.Fatalf("enable apply: %v", err)
	}
	if len(store.reminders) != 1 {
		t.Fatal("expected a reminder before disabling")
	}

	disable := []PlantSetting{{PlantID: "p1", Enabled: false, UseDefault: true}}
	if err := a.Apply(ctx, testUser, testType, disable, time.UTC); err != nil {
		t.Fatalf("disable apply: %v", err)
	}
	if len(store.reminders) != 0 {
		t.Fatal("expected the outstanding reminder deleted")
	}
	cfg := store.configs[pairKey("p1", testType)]
	if cfg == nil || cfg.Enabled || !cfg.UseDefault {
		t.Fatalf("disabling against an enabled default must materialize, got %+v", cfg)
	}
}

func TestApply_DefaultDisabledCaseWritesNoRow(t *testing.T) {
	store := newFakeStore()
	a := newApplicator(store)

	// No default at all: "leave at default, disabled" must not bloat
	// the table with rows.
	settings := []PlantSetting{{PlantID: "p1", Enabled: false, UseDefault: true}}
	if err := a.Apply(context.Background(), testUser, testType, settings, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.configs) != 0 {
		t.Fatalf("expected no config rows, got %d", len(store.configs))
	}
	if len(store.reminders) != 0 {
		t.Fatalf("expected no reminders, got %d", len(store.reminders))
	}
}

func TestApply_RevertToDefaultTombstonesOverride(t *testing.T) {
	store := newFakeStore()
	store.setDefault(testUser, testType, models.ReminderDefault{
		Enabled: true, Strategy: models.StrategyFixed, IntervalValue: 2, IntervalUnit: models.UnitDays,
	})
	store.setHistory("p1", testType, day(2025, time.January, 10))
	a := newApplicator(store)
	ctx := context.Background()

	custom := []PlantSetting{{PlantID: "p1", Enabled: true, UseDefault: false, Strategy: models.StrategyFixed, IntervalValue: 10, IntervalUnit: models.UnitDays}}
	if err := a.Apply(ctx, testUser, testType, custom, time.UTC); err != nil {
		t.Fatalf("custom apply: %v", err)
	}

	// Back to "follow the default, enabled": absence already resolves
	// to the enabled default, so the override row goes away.
	revert := []PlantSetting{{PlantID: "p1", Enabled: true, UseDefault: true}}
	if err := a.Apply(ctx, testUser, testType, revert, time.UTC); err != nil {
		t.Fatalf("revert apply: %v", err)
	}
	if _, ok := store.configs[pairKey("p1", testType)]; ok {
		t.Fatal("expected the override row removed")
	}
	rem := store.reminders[pairKey("p1", testType)]
	if rem == nil {
		t.Fatal("expected a reminder from the default config")
	}
	if want := day(2025, time.January, 12); !rem.ScheduledAt.Equal(want) {
		t.Fatalf("expected default timing %v, got %v", want, rem.ScheduledAt)
	}
}

func TestApply_ExplicitDateShortCircuitsScheduling(t *testing.T) {
	store := newFakeStore()
	store.setHistory("p1", testType, day(2025, time.January, 10))
	a := newApplicator(store)

	picked := day(2025, time.March, 15)
	settings := []PlantSetting{{
		PlantID: "p1", Enabled: true, UseDefault: false,
		Strategy: models.StrategyFixed, IntervalValue: 3, IntervalUnit: models.UnitDays,
		ExplicitDate: &picked,
	}}
	if err := a.Apply(context.Background(), testUser, testType, settings, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rem := store.reminders[pairKey("p1", testType)]
	if rem == nil {
		t.Fatal("expected a reminder")
	}
	want := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)
	if !rem.ScheduledAt.Equal(want) {
		t.Fatalf("expected explicit date at 09:00, got %v", rem.ScheduledAt)
	}
}

func TestApply_MixedBatchProcessedPerPlant(t *testing.T) {
	store := newFakeStore()
	store.setDefault(testUser, testType, models.ReminderDefault{
		Enabled: true, Strategy: models.StrategyFixed, IntervalValue: 1, IntervalUnit: models.UnitDays,
	})
	store.setHistory("p1", testType, day(2025, time.January, 10))
	store.setHistory("p2", testType, day(2025, time.January, 10))
	a := newApplicator(store)

	settings := []PlantSetting{
		{PlantID: "p1", Enabled: true, UseDefault: true},
		{PlantID: "p2", Enabled: false, UseDefault: true},
		{PlantID: "p3", Enabled: true, UseDefault: false, Strategy: models.StrategySmart, IntervalValue: 4, IntervalUnit: models.UnitDays},
	}
	if err := a.Apply(context.Background(), testUser, testType, settings, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.reminders[pairKey("p1", testType)] == nil {
		t.Fatal("p1 should have a reminder")
	}
	if store.reminders[pairKey("p2", testType)] != nil {
		t.Fatal("p2 was disabled and must have none")
	}
	// p3 has no history: smart falls back to its fixed interval.
	if store.reminders[pairKey("p3", testType)] == nil {
		t.Fatal("p3 should have a fallback reminder")
	}
}
