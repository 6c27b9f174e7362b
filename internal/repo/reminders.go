package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fischervincent/grow-journal-sub000/internal/models"
	"github.com/fischervincent/grow-journal-sub000/internal/schedule"
)

// ReminderDefault implements part of schedule.ConfigStore. It returns
// nil, nil when the (user, event type) pair has no default row.
func (r *Repo) ReminderDefault(ctx context.Context, userID, eventTypeID string) (*models.ReminderDefault, error) {
	var d models.ReminderDefault
	err := r.Pool.QueryRow(ctx, `SELECT id, user_id, event_type_id, enabled, strategy, interval_value, interval_unit, created_at, updated_at
		FROM reminder_defaults WHERE user_id=$1 AND event_type_id=$2`, userID, eventTypeID).
		Scan(&d.ID, &d.UserID, &d.EventTypeID, &d.Enabled, &d.Strategy, &d.IntervalValue, &d.IntervalUnit, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repo) UpsertReminderDefault(ctx context.Context, d models.ReminderDefault) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO reminder_defaults (user_id, event_type_id, enabled, strategy, interval_value, interval_unit)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id, event_type_id) DO UPDATE SET
			enabled=EXCLUDED.enabled, strategy=EXCLUDED.strategy,
			interval_value=EXCLUDED.interval_value, interval_unit=EXCLUDED.interval_unit,
			updated_at=now()
		RETURNING id`,
		d.UserID, d.EventTypeID, d.Enabled, d.Strategy, d.IntervalValue, d.IntervalUnit).Scan(&id)
	return id, err
}

func (r *Repo) DeleteReminderDefault(ctx context.Context, userID, eventTypeID string) error {
	cmd, err := r.Pool.Exec(ctx, `DELETE FROM reminder_defaults WHERE user_id=$1 AND event_type_id=$2`, userID, eventTypeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PlantReminderConfig implements part of schedule.ConfigStore: the live
// row for the pair, or nil when absent or tombstoned.
func (r *Repo) PlantReminderConfig(ctx context.Context, plantID, eventTypeID string) (*models.PlantReminderConfig, error) {
	var c models.PlantReminderConfig
	err := r.Pool.QueryRow(ctx, `SELECT id, user_id, plant_id, event_type_id, enabled, use_default, strategy, interval_value, interval_unit, created_at, updated_at
		FROM plant_reminder_configs WHERE plant_id=$1 AND event_type_id=$2 AND deleted_at IS NULL`, plantID, eventTypeID).
		Scan(&c.ID, &c.UserID, &c.PlantID, &c.EventTypeID, &c.Enabled, &c.UseDefault, &c.Strategy, &c.IntervalValue, &c.IntervalUnit, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) PlantReminderConfigsByEventType(ctx context.Context, userID, eventTypeID string) ([]models.PlantReminderConfig, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, plant_id, enabled, use_default, strategy, interval_value, interval_unit, created_at, updated_at
		FROM plant_reminder_configs WHERE user_id=$1 AND event_type_id=$2 AND deleted_at IS NULL`, userID, eventTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.PlantReminderConfig
	for rows.Next() {
		c := models.PlantReminderConfig{UserID: userID, EventTypeID: eventTypeID}
		if err := rows.Scan(&c.ID, &c.PlantID, &c.Enabled, &c.UseDefault, &c.Strategy, &c.IntervalValue, &c.IntervalUnit, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// ApplyConfigChanges implements schedule.ConfigStore: the whole batch of
// plant config writes commits in one transaction.
func (r *Repo) ApplyConfigChanges(ctx context.Context, changes []schedule.ConfigChange) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, ch := range changes {
		switch {
		case ch.Remove:
			if _, err := tx.Exec(ctx, `UPDATE plant_reminder_configs SET deleted_at=now(), updated_at=now()
				WHERE plant_id=$1 AND event_type_id=$2 AND deleted_at IS NULL`, ch.PlantID, ch.EventTypeID); err != nil {
				return err
			}
		case ch.Upsert != nil:
			c := ch.Upsert
			if _, err := tx.Exec(ctx, `INSERT INTO plant_reminder_configs (user_id, plant_id, event_type_id, enabled, use_default, strategy, interval_value, interval_unit)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
				ON CONFLICT (plant_id, event_type_id) WHERE deleted_at IS NULL DO UPDATE SET
					enabled=EXCLUDED.enabled, use_default=EXCLUDED.use_default,
					strategy=EXCLUDED.strategy, interval_value=EXCLUDED.interval_value,
					interval_unit=EXCLUDED.interval_unit, updated_at=now()`,
				c.UserID, c.PlantID, c.EventTypeID, c.Enabled, c.UseDefault, c.Strategy, c.IntervalValue, c.IntervalUnit); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

// OutstandingReminder implements part of schedule.ReminderStore: the one
// non-completed reminder for the pair, or nil.
func (r *Repo) OutstandingReminder(ctx context.Context, plantID, eventTypeID string) (*models.Reminder, error) {
	var rem models.Reminder
	err := r.Pool.QueryRow(ctx, `SELECT id, user_id, plant_id, event_type_id, scheduled_at, is_completed, completed_at, is_snoozed, snoozed_until, created_at, updated_at
		FROM reminders WHERE plant_id=$1 AND event_type_id=$2 AND NOT is_completed`, plantID, eventTypeID).
		Scan(&rem.ID, &rem.UserID, &rem.PlantID, &rem.EventTypeID, &rem.ScheduledAt, &rem.IsCompleted, &rem.CompletedAt, &rem.IsSnoozed, &rem.SnoozedUntil, &rem.CreatedAt, &rem.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *Repo) CreateReminder(ctx context.Context, rem models.Reminder) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO reminders (user_id, plant_id, event_type_id, scheduled_at) VALUES ($1,$2,$3,$4) RETURNING id`,
		rem.UserID, rem.PlantID, rem.EventTypeID, rem.ScheduledAt).Scan(&id)
	return id, err
}

// RescheduleReminder moves an outstanding reminder and clears any snooze,
// since a recomputed date supersedes the user's postponement.
func (r *Repo) RescheduleReminder(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE reminders SET scheduled_at=$1, is_snoozed=false, snoozed_until=NULL, updated_at=now()
		WHERE id=$2 AND NOT is_completed`, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteReminder(ctx context.Context, id string) error {
	cmd, err := r.Pool.Exec(ctx, `DELETE FROM reminders WHERE id=$1 AND NOT is_completed`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) CompleteReminder(ctx context.Context, id, userID string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE reminders SET is_completed=true, completed_at=now(), is_snoozed=false, updated_at=now()
		WHERE id=$1 AND user_id=$2 AND NOT is_completed`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) SnoozeReminder(ctx context.Context, id, userID string, until time.Time) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE reminders SET is_snoozed=true, snoozed_until=$1, updated_at=now()
		WHERE id=$2 AND user_id=$3 AND NOT is_completed`, until, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// OutstandingRemindersByEventType backs the settings dialog: every
// outstanding reminder for the event type across the user's plants.
func (r *Repo) OutstandingRemindersByEventType(ctx context.Context, userID, eventTypeID string) ([]models.Reminder, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, plant_id, scheduled_at, is_snoozed, snoozed_until, created_at, updated_at
		FROM reminders WHERE user_id=$1 AND event_type_id=$2 AND NOT is_completed`, userID, eventTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.Reminder
	for rows.Next() {
		rem := models.Reminder{UserID: userID, EventTypeID: eventTypeID}
		if err := rows.Scan(&rem.ID, &rem.PlantID, &rem.ScheduledAt, &rem.IsSnoozed, &rem.SnoozedUntil, &rem.CreatedAt, &rem.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, rem)
	}
	return res, rows.Err()
}

// RemindersInRange backs the day-bucketed reminders view.
func (r *Repo) RemindersInRange(ctx context.Context, userID string, from, to time.Time) ([]models.Reminder, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, plant_id, event_type_id, scheduled_at, is_completed, completed_at, is_snoozed, snoozed_until, created_at, updated_at
		FROM reminders WHERE user_id=$1 AND scheduled_at >= $2 AND scheduled_at < $3 ORDER BY scheduled_at`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.Reminder
	for rows.Next() {
		rem := models.Reminder{UserID: userID}
		if err := rows.Scan(&rem.ID, &rem.PlantID, &rem.EventTypeID, &rem.ScheduledAt, &rem.IsCompleted, &rem.CompletedAt, &rem.IsSnoozed, &rem.SnoozedUntil, &rem.CreatedAt, &rem.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, rem)
	}
	return res, rows.Err()
}
