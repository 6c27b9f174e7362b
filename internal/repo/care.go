package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fischervincent/grow-journal-sub000/internal/models"
)

func (r *Repo) CreateEventType(ctx context.Context, userID, name string, icon *string) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO care_event_types (user_id, name, icon) VALUES ($1,$2,$3) RETURNING id`, userID, name, icon).Scan(&id)
	return id, err
}

func (r *Repo) ListEventTypes(ctx context.Context, userID string) ([]models.CareEventType, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, name, icon, created_at FROM care_event_types WHERE user_id=$1 AND deleted_at IS NULL ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.CareEventType
	for rows.Next() {
		et := models.CareEventType{UserID: userID}
		if err := rows.Scan(&et.ID, &et.Name, &et.Icon, &et.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, et)
	}
	return res, rows.Err()
}

func (r *Repo) GetEventType(ctx context.Context, id, userID string) (models.CareEventType, error) {
	et := models.CareEventType{UserID: userID}
	err := r.Pool.QueryRow(ctx, `SELECT id, name, icon, created_at FROM care_event_types WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`, id, userID).
		Scan(&et.ID, &et.Name, &et.Icon, &et.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.CareEventType{}, ErrNotFound
	}
	return et, err
}

func (r *Repo) RenameEventType(ctx context.Context, id, userID, name string, icon *string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE care_event_types SET name=$1, icon=$2 WHERE id=$3 AND user_id=$4 AND deleted_at IS NULL`, name, icon, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEventType tombstones the type and tears down everything that
// hangs off it: the reminder default, plant overrides and outstanding
// reminders, all in one transaction.
func (r *Repo) DeleteEventType(ctx context.Context, id, userID string) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE care_event_types SET deleted_at=now() WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM reminder_defaults WHERE event_type_id=$1 AND user_id=$2`, id, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE plant_reminder_configs SET deleted_at=now(), updated_at=now() WHERE event_type_id=$1 AND deleted_at IS NULL`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM reminders WHERE event_type_id=$1 AND NOT is_completed`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) CreateCareEvent(ctx context.Context, userID, plantID, eventTypeID string, happenedAt time.Time, note *string) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO care_events (user_id, plant_id, event_type_id, happened_at, note) VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		userID, plantID, eventTypeID, happenedAt, note).Scan(&id)
	return id, err
}

func (r *Repo) ListCareEvents(ctx context.Context, plantID string, limit int) ([]models.CareEvent, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, user_id, event_type_id, happened_at, note, created_at FROM care_events WHERE plant_id=$1 ORDER BY happened_at DESC LIMIT $2`, plantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.CareEvent
	for rows.Next() {
		e := models.CareEvent{PlantID: plantID}
		if err := rows.Scan(&e.ID, &e.UserID, &e.EventTypeID, &e.HappenedAt, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r *Repo) DeleteCareEvent(ctx context.Context, id, userID string) error {
	cmd, err := r.Pool.Exec(ctx, `DELETE FROM care_events WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecentCareEventTimes implements schedule.HistorySource: the newest
// timestamps first, capped at limit.
func (r *Repo) RecentCareEventTimes(ctx context.Context, plantID, eventTypeID string, limit int) ([]time.Time, error) {
	rows, err := r.Pool.Query(ctx, `SELECT happened_at FROM care_events WHERE plant_id=$1 AND event_type_id=$2 ORDER BY happened_at DESC LIMIT $3`,
		plantID, eventTypeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}
