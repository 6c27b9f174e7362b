package models

import "time"

// ReminderStrategy selects how the next reminder date is derived.
type ReminderStrategy string

const (
	StrategyFixed ReminderStrategy = "fixed"
	StrategySmart ReminderStrategy = "smart"
)

// IntervalUnit is the unit of a reminder recurrence interval.
type IntervalUnit string

const (
	UnitDays   IntervalUnit = "days"
	UnitWeeks  IntervalUnit = "weeks"
	UnitMonths IntervalUnit = "months"
	UnitYears  IntervalUnit = "years"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Timezone     string    `json:"timezone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Invite struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	CreatedBy string     `json:"created_by_user_id"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

type Location struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

type Plant struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Species    *string    `json:"species"`
	LocationID *string    `json:"location_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at"`
}

type PlantPhoto struct {
	ID        string     `json:"id"`
	PlantID   string     `json:"plant_id"`
	URL       string     `json:"url"`
	Caption   *string    `json:"caption"`
	TakenAt   *time.Time `json:"taken_at"`
	CreatedAt time.Time  `json:"created_at"`
}

type PlantNote struct {
	ID        string    `json:"id"`
	PlantID   string    `json:"plant_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CareEventType is a per-user category of care (watering, fertilizing, ...).
type CareEventType struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Icon      *string    `json:"icon"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

type CareEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	PlantID     string    `json:"plant_id"`
	EventTypeID string    `json:"event_type_id"`
	HappenedAt  time.Time `json:"happened_at"`
	Note        *string   `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReminderDefault is the per-(user, event type) default reminder
// configuration. At most one row per pair.
type ReminderDefault struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	EventTypeID   string           `json:"event_type_id"`
	Enabled       bool             `json:"enabled"`
	Strategy      ReminderStrategy `json:"strategy"`
	IntervalValue int              `json:"interval_value"`
	IntervalUnit  IntervalUnit     `json:"interval_unit"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// PlantReminderConfig is a per-plant override of the event type default.
// Strategy and interval fields are meaningful only when UseDefault is false.
// Rows are soft-deleted; a tombstoned row reads as absent.
type PlantReminderConfig struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	PlantID       string           `json:"plant_id"`
	EventTypeID   string           `json:"event_type_id"`
	Enabled       bool             `json:"enabled"`
	UseDefault    bool             `json:"use_default"`
	Strategy      ReminderStrategy `json:"strategy"`
	IntervalValue int              `json:"interval_value"`
	IntervalUnit  IntervalUnit     `json:"interval_unit"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     *time.Time       `json:"deleted_at"`
}

// Reminder is a materialized reminder instance. At most one non-completed
// row may exist per (plant, event type); completed rows are kept as history.
type Reminder struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	PlantID      string     `json:"plant_id"`
	EventTypeID  string     `json:"event_type_id"`
	ScheduledAt  time.Time  `json:"scheduled_at"`
	IsCompleted  bool       `json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at"`
	IsSnoozed    bool       `json:"is_snoozed"`
	SnoozedUntil *time.Time `json:"snoozed_until"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
