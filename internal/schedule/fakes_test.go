package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fischervincent/grow-journal-sub000/internal/models"
)

// fakeStore is an in-memory stand-in for the repo, implementing
// HistorySource, ReminderStore and ConfigStore.
type fakeStore struct {
	history   map[string][]time.Time
	defaults  map[string]*models.ReminderDefault
	configs   map[string]*models.PlantReminderConfig
	reminders map[string]*models.Reminder
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		history:   map[string][]time.Time{},
		defaults:  map[string]*models.ReminderDefault{},
		configs:   map[string]*models.PlantReminderConfig{},
		reminders: map[string]*models.Reminder{},
	}
}

func pairKey(plantID, eventTypeID string) string {
	return plantID + "|" + eventTypeID
}

func (f *fakeStore) RecentCareEventTimes(_ context.Context, plantID, eventTypeID string, limit int) ([]time.Time, error) {
	h := f.history[pairKey(plantID, eventTypeID)]
	if len(h) > limit {
		h = h[:limit]
	}
	return h, nil
}

func (f *fakeStore) OutstandingReminder(_ context.Context, plantID, eventTypeID string) (*models.Reminder, error) {
	if rem, ok := f.reminders[pairKey(plantID, eventTypeID)]; ok {
		cp := *rem
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) CreateReminder(_ context.Context, rem models.Reminder) (string, error) {
	key := pairKey(rem.PlantID, rem.EventTypeID)
	if _, ok := f.reminders[key]; ok {
		// Mirrors the partial unique index on outstanding reminders.
		return "", errors.New("duplicate outstanding reminder")
	}
	f.nextID++
	rem.ID = fmt.Sprintf("rem-%d", f.nextID)
	f.reminders[key] = &rem
	return rem.ID, nil
}

func (f *fakeStore) RescheduleReminder(_ context.Context, id string, at time.Time) error {
	for _, rem := range f.reminders {
		if rem.ID == id {
			rem.ScheduledAt = at
			rem.IsSnoozed = false
			rem.SnoozedUntil = nil
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) DeleteReminder(_ context.Context, id string) error {
	for key, rem := range f.reminders {
		if rem.ID == id {
			delete(f.reminders, key)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeStore) ReminderDefault(_ context.Context, userID, eventTypeID string) (*models.ReminderDefault, error) {
	if d, ok := f.defaults[userID+"|"+eventTypeID]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) PlantReminderConfig(_ context.Context, plantID, eventTypeID string) (*models.PlantReminderConfig, error) {
	if c, ok := f.configs[pairKey(plantID, eventTypeID)]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) ApplyConfigChanges(_ context.Context, changes []ConfigChange) error {
	for _, ch := range changes {
		key := pairKey(ch.PlantID, ch.EventTypeID)
		switch {
		case ch.Remove:
			delete(f.configs, key)
		case ch.Upsert != nil:
			cp := *ch.Upsert
			f.configs[key] = &cp
		}
	}
	return nil
}

func (f *fakeStore) setDefault(userID, eventTypeID string, d models.ReminderDefault) {
	d.UserID = userID
	d.EventTypeID = eventTypeID
	f.defaults[userID+"|"+eventTypeID] = &d
}

func (f *fakeStore) setHistory(plantID, eventTypeID string, newestFirst ...time.Time) {
	f.history[pairKey(plantID, eventTypeID)] = newestFirst
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
