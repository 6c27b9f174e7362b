package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fischervincent/grow-journal-sub000/internal/models"
	"github.com/fischervincent/grow-journal-sub000/internal/schedule"
)

type reminderDefaultRequest struct {
	Enabled       bool                    `json:"enabled"`
	Strategy      models.ReminderStrategy `json:"strategy"`
	IntervalValue int                     `json:"interval_value"`
	IntervalUnit  models.IntervalUnit     `json:"interval_unit"`
}

type plantSettingRequest struct {
	PlantID       string                  `json:"plant_id"`
	Enabled       bool                    `json:"enabled"`
	UseDefault    bool                    `json:"use_default"`
	Strategy      models.ReminderStrategy `json:"strategy"`
	IntervalValue int                     `json:"interval_value"`
	IntervalUnit  models.IntervalUnit     `json:"interval_unit"`
	ExplicitDate  *FlexTime               `json:"explicit_date"`
}

type bulkSettingsRequest struct {
	Plants []plantSettingRequest `json:"plants"`
}

type plantSettingsView struct {
	Plant     models.Plant                `json:"plant"`
	Config    *models.PlantReminderConfig `json:"config"`
	Effective schedule.EffectiveConfig    `json:"effective"`
	Reminder  *models.Reminder            `json:"reminder"`
}

type settingsViewResponse struct {
	Default *models.ReminderDefault `json:"default"`
	Plants  []plantSettingsView     `json:"plants"`
}

type snoozeRequest struct {
	Until FlexTime `json:"until"`
}

// ownEventType confirms the event type belongs to the caller.
func (a *API) ownEventType(w http.ResponseWriter, r *http.Request, userID string) (string, bool) {
	eventTypeID := chi.URLParam(r, "id")
	if _, err := a.Repo.GetEventType(r.Context(), eventTypeID, userID); err != nil {
		respondRepoError(w, err, "Failed to load event type")
		return "", false
	}
	return eventTypeID, true
}

func (a *API) handleGetReminderDefault(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	eventTypeID, ok := a.ownEventType(w, r, userID)
	if !ok {
		return
	}
	def, err := a.Repo.ReminderDefault(r.Context(), userID, eventTypeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load default")
		return
	}
	if def == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "No default configured")
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (a *API) handleUpsertReminderDefault(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	eventTypeID, ok := a.ownEventType(w, r, userID)
	if !ok {
		return
	}
	var req reminderDefaultRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Strategy != models.StrategyFixed && req.Strategy != models.StrategySmart {
		writeError(w, http.StatusBadRequest, "INVALID_INTERVAL", "Unknown strategy")
		return
	}
	iv := schedule.Interval{Value: req.IntervalValue, Unit: req.IntervalUnit}
	if err := iv.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INTERVAL", "Interval value must be >= 1 with a known unit")
		return
	}
	id, err := a.Repo.UpsertReminderDefault(r.Context(), models.ReminderDefault{
		UserID:        userID,
		EventTypeID:   eventTypeID,
		Enabled:       req.Enabled,
		Strategy:      req.Strategy,
		IntervalValue: req.IntervalValue,
		IntervalUnit:  req.IntervalUnit,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save default")
		return
	}

	// A default edit changes the effective config of every plant that
	// follows it; re-derive their reminders right away.
	if err := a.reconcileEventType(r, userID, eventTypeID); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Default saved but rescheduling failed")
		return
	}
	writeJSON(w, http.StatusOK, entityResponse{ID: id})
}

func (a *API) handleDeleteReminderDefault(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	eventTypeID, ok := a.ownEventType(w, r, userID)
	if !ok {
		return
	}
	if err := a.Repo.DeleteReminderDefault(r.Context(), userID, eventTypeID); err != nil {
		respondRepoError(w, err, "Failed to delete default")
		return
	}
	// Default-following plants now resolve to disabled, which clears
	// their reminders; custom plants are left to their own configs.
	if err := a.reconcileEventType(r, userID, eventTypeID); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Default deleted but rescheduling failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// reconcileEventType re-runs resolve-and-reconcile for every plant the
// user owns against the current default of one event type.
func (a *API) reconcileEventType(r *http.Request, userID, eventTypeID string) error {
	ctx := r.Context()
	def, err := a.Repo.ReminderDefault(ctx, userID, eventTypeID)
	if err != nil {
		return err
	}
	plants, err := a.Repo.ListPlants(ctx, userID)
	if err != nil {
		return err
	}
	loc := a.userLocation(r, userID)
	for _, p := range plants {
		cfg, err := a.Repo.PlantReminderConfig(ctx, p.ID, eventTypeID)
		if err != nil {
			return err
		}
		eff := schedule.Resolve(cfg, def)
		if _, err := a.Reconciler.Reconcile(ctx, userID, p.ID, eventTypeID, eff, nil, loc); err != nil {
			return err
		}
	}
	return nil
}

func (a *API) handleGetReminderSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	eventTypeID, ok := a.ownEventType(w, r, userID)
	if !ok {
		return
	}
	view, err := a.settingsView(r, userID, eventTypeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) settingsView(r *http.Request, userID, eventTypeID string) (settingsViewResponse, error) {
	ctx := r.Context()
	def, err := a.Repo.ReminderDefault(ctx, userID, eventTypeID)
	if err != nil {
		return settingsViewResponse{}, err
	}
	plants, err := a.Repo.ListPlants(ctx, userID)
	if err != nil {
		return settingsViewResponse{}, err
	}
	configs, err := a.Repo.PlantReminderConfigsByEventType(ctx, userID, eventTypeID)
	if err != nil {
		return settingsViewResponse{}, err
	}
	reminders, err := a.Repo.OutstandingRemindersByEventType(ctx, userID, eventTypeID)
	if err != nil {
		return settingsViewResponse{}, err
	}

	configByPlant := make(map[string]*models.PlantReminderConfig, len(configs))
	for i := range configs {
		configByPlant[configs[i].PlantID] = &configs[i]
	}
	reminderByPlant := make(map[string]*models.Reminder, len(reminders))
	for i := range reminders {
		reminderByPlant[reminders[i].PlantID] = &reminders[i]
	}

	view := settingsViewResponse{Default: def, Plants: make([]plantSettingsView, 0, len(plants))}
	for _, p := range plants {
		cfg := configByPlant[p.ID]
		view.Plants = append(view.Plants, plantSettingsView{
			Plant:     p,
			Config:    cfg,
			Effective: schedule.Resolve(cfg, def),
			Reminder:  reminderByPlant[p.ID],
		})
	}
	return view, nil
}

func (a *API) handleBulkApplySettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	eventTypeID, ok := a.ownEventType(w, r, userID)
	if !ok {
		return
	}
	var req bulkSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings := make([]schedule.PlantSetting, 0, len(req.Plants))
	for _, p := range req.Plants {
		if _, err := a.Repo.GetPlant(r.Context(), p.PlantID, userID); err != nil {
			respondRepoError(w, err, "Failed to load plant")
			return
		}
		settings = append(settings, schedule.PlantSetting{
			PlantID:       p.PlantID,
			Enabled:       p.Enabled,
			UseDefault:    p.UseDefault,
			Strategy:      p.Strategy,
			IntervalValue: p.IntervalValue,
			IntervalUnit:  p.IntervalUnit,
			ExplicitDate:  p.ExplicitDate.ToTimePtr(),
		})
	}

	loc := a.userLocation(r, userID)
	if err := a.Applicator.Apply(r.Context(), userID, eventTypeID, settings, loc); err != nil {
		if errors.Is(err, schedule.ErrInvalidInterval) {
			writeError(w, http.StatusBadRequest, "INVALID_INTERVAL", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to apply settings")
		return
	}

	view, err := a.settingsView(r, userID, eventTypeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Settings applied but reload failed")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleListReminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	loc := a.userLocation(r, userID)
	now := time.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 7)
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid from date")
			return
		}
		from = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid to date")
			return
		}
		to = t.AddDate(0, 0, 1)
	}

	reminders, err := a.Repo.RemindersInRange(r.Context(), userID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reminders")
		return
	}

	// Bucket by the user's local calendar day.
	buckets := make(map[string][]models.Reminder)
	for _, rem := range reminders {
		day := rem.ScheduledAt.In(loc).Format("2006-01-02")
		buckets[day] = append(buckets[day], rem)
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (a *API) handleCompleteReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.Repo.CompleteReminder(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondRepoError(w, err, "Failed to complete reminder")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleSnoozeReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req snoozeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	until := req.Until.ToTimePtr()
	if until == nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Snooze date required")
		return
	}
	if err := a.Repo.SnoozeReminder(r.Context(), chi.URLParam(r, "id"), userID, *until); err != nil {
		respondRepoError(w, err, "Failed to snooze reminder")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
