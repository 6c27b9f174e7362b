package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fischervincent/grow-journal-sub000/internal/models"
)

func (r *Repo) CreateLocation(ctx context.Context, userID, name string) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO locations (user_id, name) VALUES ($1, $2) RETURNING id`, userID, name).Scan(&id)
	return id, err
}

func (r *Repo) UpdateLocation(ctx context.Context, id, userID, name string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE locations SET name=$1, updated_at=now() WHERE id=$2 AND user_id=$3 AND deleted_at IS NULL`, name, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteLocation(ctx context.Context, id, userID string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE locations SET deleted_at=now(), updated_at=now() WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListLocations(ctx context.Context, userID string) ([]models.Location, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM locations WHERE user_id=$1 AND deleted_at IS NULL ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.Location
	for rows.Next() {
		l := models.Location{UserID: userID}
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

func (r *Repo) CreatePlant(ctx context.Context, userID, name string, species, locationID *string) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO plants (user_id, name, species, location_id) VALUES ($1,$2,$3,$4) RETURNING id`,
		userID, name, species, locationID).Scan(&id)
	return id, err
}

func (r *Repo) UpdatePlant(ctx context.Context, id, userID, name string, species, locationID *string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE plants SET name=$1, species=$2, location_id=$3, updated_at=now() WHERE id=$4 AND user_id=$5 AND deleted_at IS NULL`,
		name, species, locationID, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePlant tombstones the plant and removes its outstanding reminders
// in the same transaction, so no reminder can fire for a deleted plant.
func (r *Repo) DeletePlant(ctx context.Context, id, userID string) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE plants SET deleted_at=now(), updated_at=now() WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM reminders WHERE plant_id=$1 AND NOT is_completed`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE plant_reminder_configs SET deleted_at=now(), updated_at=now() WHERE plant_id=$1 AND deleted_at IS NULL`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repo) GetPlant(ctx context.Context, id, userID string) (models.Plant, error) {
	p := models.Plant{UserID: userID}
	err := r.Pool.QueryRow(ctx, `SELECT id, name, species, location_id, created_at, updated_at FROM plants WHERE id=$1 AND user_id=$2 AND deleted_at IS NULL`, id, userID).
		Scan(&p.ID, &p.Name, &p.Species, &p.LocationID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Plant{}, ErrNotFound
	}
	return p, err
}

func (r *Repo) ListPlants(ctx context.Context, userID string) ([]models.Plant, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, name, species, location_id, created_at, updated_at FROM plants WHERE user_id=$1 AND deleted_at IS NULL ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.Plant
	for rows.Next() {
		p := models.Plant{UserID: userID}
		if err := rows.Scan(&p.ID, &p.Name, &p.Species, &p.LocationID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *Repo) AddPlantPhoto(ctx context.Context, plantID, url string, caption *string, takenAt *time.Time) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO plant_photos (plant_id, url, caption, taken_at) VALUES ($1,$2,$3,$4) RETURNING id`,
		plantID, url, caption, takenAt).Scan(&id)
	return id, err
}

func (r *Repo) ListPlantPhotos(ctx context.Context, plantID string) ([]models.PlantPhoto, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, url, caption, taken_at, created_at FROM plant_photos WHERE plant_id=$1 ORDER BY created_at DESC`, plantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.PlantPhoto
	for rows.Next() {
		p := models.PlantPhoto{PlantID: plantID}
		if err := rows.Scan(&p.ID, &p.URL, &p.Caption, &p.TakenAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *Repo) DeletePlantPhoto(ctx context.Context, id, plantID string) error {
	cmd, err := r.Pool.Exec(ctx, `DELETE FROM plant_photos WHERE id=$1 AND plant_id=$2`, id, plantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) AddPlantNote(ctx context.Context, plantID, body string) (string, error) {
	var id string
	err := r.Pool.QueryRow(ctx, `INSERT INTO plant_notes (plant_id, body) VALUES ($1,$2) RETURNING id`, plantID, body).Scan(&id)
	return id, err
}

func (r *Repo) UpdatePlantNote(ctx context.Context, id, plantID, body string) error {
	cmd, err := r.Pool.Exec(ctx, `UPDATE plant_notes SET body=$1, updated_at=now() WHERE id=$2 AND plant_id=$3`, body, id, plantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) DeletePlantNote(ctx context.Context, id, plantID string) error {
	cmd, err := r.Pool.Exec(ctx, `DELETE FROM plant_notes WHERE id=$1 AND plant_id=$2`, id, plantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListPlantNotes(ctx context.Context, plantID string) ([]models.PlantNote, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, body, created_at, updated_at FROM plant_notes WHERE plant_id=$1 ORDER BY created_at DESC`, plantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []models.PlantNote
	for rows.Next() {
		n := models.PlantNote{PlantID: plantID}
		if err := rows.Scan(&n.ID, &n.Body, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, rows.Err()
}
