package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/fischervincent/grow-journal-sub000/internal/models"
)

func newPostEventScheduler(store *fakeStore) *PostEventScheduler {
	return NewPostEventScheduler(store, NewReconciler(store, store))
}

func TestEventRecorded_AdvancesFixedReminder(t *testing.T) {
	store := newFakeStore()
	store.configs[pairKey(testPlant, testType)] = &models.PlantReminderConfig{
		UserID: testUser, PlantID: testPlant, EventTypeID: testType,
		Enabled: true, Strategy: models.StrategyFixed,
		IntervalValue: 5, IntervalUnit: models.UnitDays,
	}
	store.setHistory(testPlant, testType, day(2025, time.January, 10))
	store.reminders[pairKey(testPlant, testType)] = &models.Reminder{
		ID: "rem-old", UserID: testUser, PlantID: testPlant, EventTypeID: testType,
		ScheduledAt: day(2025, time.January, 10),
	}
	p := newPostEventScheduler(store)

	// A new watering lands; history now leads with Jan 20.
	store.setHistory(testPlant, testType,
		day(2025, time.January, 20), day(2025, time.January, 10))
	if err := p.EventRecorded(context.Background(), testUser, testPlant, testType, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rem := store.reminders[pairKey(testPlant, testType)]
	if rem == nil || rem.ID != "rem-old" {
		t.Fatalf("expected the existing reminder rescheduled, got %+v", rem)
	}
	if want := day(2025, time.January, 25); !rem.ScheduledAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, rem.ScheduledAt)
	}
}

func TestEventRecorded_SmartRefinesPrediction(t *testing.T) {
	store := newFakeStore()
	store.configs[pairKey(testPlant, testType)] = &models.PlantReminderConfig{
		UserID: testUser, PlantID: testPlant, EventTypeID: testType,
		Enabled: true, Strategy: models.StrategySmart,
		IntervalValue: 7, IntervalUnit: models.UnitDays,
	}
	store.setHistory(testPlant, testType,
		day(2025, time.January, 19),
		day(2025, time.January, 13),
		day(2025, time.January, 7),
		day(2025, time.January, 1),
	)
	p := newPostEventScheduler(store)

	if err := p.EventRecorded(context.Background(), testUser, testPlant, testType, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rem := store.reminders[pairKey(testPlant, testType)]
	if rem == nil {
		t.Fatal("expected a reminder")
	}
	// Steady 6-day rhythm: next due Jan 25.
	if want := day(2025, time.January, 25); !rem.ScheduledAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, rem.ScheduledAt)
	}
}

func TestEventRecorded_FirstEventFallsBackToConfiguredInterval(t *testing.T) {
	store := newFakeStore()
	store.configs[pairKey(testPlant, testType)] = &models.PlantReminderConfig{
		UserID: testUser, PlantID: testPlant, EventTypeID: testType,
		Enabled: true, Strategy: models.StrategySmart,
		IntervalValue: 1, IntervalUnit: models.UnitWeeks,
	}
	store.setHistory(testPlant, testType, day(2025, time.January, 10))
	p := newPostEventScheduler(store)

	if err := p.EventRecorded(context.Background(), testUser, testPlant, testType, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rem := store.reminders[pairKey(testPlant, testType)]
	if rem == nil {
		t.Fatal("expected a fallback reminder")
	}
	if want := day(2025, time.January, 17); !rem.ScheduledAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, rem.ScheduledAt)
	}
}

func TestEventRecorded_DisabledConfigClearsReminder(t *testing.T) {
	store := newFakeStore()
	store.configs[pairKey(testPlant, testType)] = &models.PlantReminderConfig{
		UserID: testUser, PlantID: testPlant, EventTypeID: testType,
		Enabled: false, Strategy: models.StrategyFixed,
		IntervalValue: 3, IntervalUnit: models.UnitDays,
	}
	store.reminders[pairKey(testPlant, testType)] = &models.Reminder{
		ID: "rem-stale", UserID: testUser, PlantID: testPlant, EventTypeID: testType,
		ScheduledAt: day(2025, time.January, 10),
	}
	p := newPostEventScheduler(store)

	if err := p.EventRecorded(context.Background(), testUser, testPlant, testType, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.reminders) != 0 {
		t.Fatal("expected stale reminder cleared for disabled config")
	}
}

func TestEventRecorded_NoConfigNoDefaultDoesNothing(t *testing.T) {
	store := newFakeStore()
	p := newPostEventScheduler(store)

	if err := p.EventRecorded(context.Background(), testUser, testPlant, testType, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.reminders) != 0 {
		t.Fatal("expected no reminder without config or default")
	}
}

func TestEventRecorded_DefaultOnlyPairSchedules(t *testing.T) {
	store := newFakeStore()
	store.setDefault(testUser, testType, models.ReminderDefault{
		Enabled: true, Strategy: models.StrategyFixed,
		IntervalValue: 2, IntervalUnit: models.UnitWeeks,
	})
	store.setHistory(testPlant, testType, day(2025, time.January, 1))
	p := newPostEventScheduler(store)

	if err := p.EventRecorded(context.Background(), testUser, testPlant, testType, time.UTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rem := store.reminders[pairKey(testPlant, testType)]
	if rem == nil {
		t.Fatal("expected a reminder from the user default")
	}
	if want := day(2025, time.January, 15); !rem.ScheduledAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, rem.ScheduledAt)
	}
}
