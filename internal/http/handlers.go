package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fischervincent/grow-journal-sub000/internal/auth"
	"github.com/fischervincent/grow-journal-sub000/internal/repo"
)

const maxBodyBytes = 1 << 20

type FlexTime struct {
	time.Time
}

func (ft *FlexTime) UnmarshalJSON(b []byte) error {
	// null
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// Accept YYYY-MM-DD from <input type="date">
	if t, err := time.Parse("2006-01-02", s); err == nil {
		ft.Time = t
		return nil
	}
	// Accept RFC3339 timestamps
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		ft.Time = t
		return nil
	}
	// Accept RFC3339 without timezone (rare)
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		ft.Time = t
		return nil
	}
	return errors.New("invalid date/time format")
}

func (ft *FlexTime) ToTimePtr() *time.Time {
	if ft == nil || ft.Time.IsZero() {
		return nil
	}
	t := ft.Time
	return &t
}

type registerRequest struct {
	InviteCode string `json:"invite_code"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Timezone   string `json:"timezone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type entityResponse struct {
	ID string `json:"id"`
}

type locationRequest struct {
	Name string `json:"name"`
}

type plantRequest struct {
	Name       string  `json:"name"`
	Species    *string `json:"species"`
	LocationID *string `json:"location_id"`
}

type photoRequest struct {
	URL     string    `json:"url"`
	Caption *string   `json:"caption"`
	TakenAt *FlexTime `json:"taken_at"`
}

type noteRequest struct {
	Body string `json:"body"`
}

type eventTypeRequest struct {
	Name string  `json:"name"`
	Icon *string `json:"icon"`
}

type careEventRequest struct {
	EventTypeID string    `json:"event_type_id"`
	HappenedAt  *FlexTime `json:"happened_at"`
	Note        *string   `json:"note"`
}

type timezoneRequest struct {
	Timezone string `json:"timezone"`
}

func (a *API) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing user")
	}
	return userID, ok
}

// userLocation loads the user's stored IANA timezone; scheduling never
// fails on a bad value, it just runs in UTC.
func (a *API) userLocation(r *http.Request, userID string) *time.Location {
	u, err := a.Repo.GetUserByID(r.Context(), userID)
	if err != nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" || req.InviteCode == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invite code, email and password required")
		return
	}
	userID, err := a.Service.Register(r.Context(), req.InviteCode, req.Email, req.Password, req.Timezone)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrInviteUsed), errors.Is(err, repo.ErrInviteExpired), errors.Is(err, repo.ErrNotFound):
			writeError(w, http.StatusForbidden, "INVITE_REJECTED", "Invite code is invalid, used or expired")
		case errors.Is(err, repo.ErrEmailTaken):
			writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
		default:
			writeError(w, http.StatusBadRequest, "REGISTRATION_FAILED", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, entityResponse{ID: userID})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	accessToken, refreshToken, err := a.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	u, err := a.Repo.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) handleUpdateTimezone(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req timezoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown timezone")
		return
	}
	if err := a.Repo.UpdateUserTimezone(r.Context(), userID, req.Timezone); err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update timezone")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	code, err := a.Service.IssueInvite(r.Context(), &userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create invite")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"code": code})
}

func (a *API) handleListLocations(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	locations, err := a.Repo.ListLocations(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list locations")
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

func (a *API) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req locationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name required")
		return
	}
	id, err := a.Repo.CreateLocation(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create location")
		return
	}
	writeJSON(w, http.StatusCreated, entityResponse{ID: id})
}

func (a *API) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req locationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.Repo.UpdateLocation(r.Context(), chi.URLParam(r, "id"), userID, req.Name); err != nil {
		respondRepoError(w, err, "Failed to update location")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.Repo.DeleteLocation(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondRepoError(w, err, "Failed to delete location")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleListPlants(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	plants, err := a.Repo.ListPlants(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list plants")
		return
	}
	writeJSON(w, http.StatusOK, plants)
}

func (a *API) handleCreatePlant(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req plantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name required")
		return
	}
	id, err := a.Repo.CreatePlant(r.Context(), userID, req.Name, req.Species, req.LocationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create plant")
		return
	}
	writeJSON(w, http.StatusCreated, entityResponse{ID: id})
}

func (a *API) handleGetPlant(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	p, err := a.Repo.GetPlant(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		respondRepoError(w, err, "Failed to load plant")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) handleUpdatePlant(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req plantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.Repo.UpdatePlant(r.Context(), chi.URLParam(r, "id"), userID, req.Name, req.Species, req.LocationID); err != nil {
		respondRepoError(w, err, "Failed to update plant")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleDeletePlant(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.Repo.DeletePlant(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondRepoError(w, err, "Failed to delete plant")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ownPlant confirms the plant belongs to the caller before touching its
// sub-resources.
func (a *API) ownPlant(w http.ResponseWriter, r *http.Request, userID string) (string, bool) {
	plantID := chi.URLParam(r, "id")
	if _, err := a.Repo.GetPlant(r.Context(), plantID, userID); err != nil {
		respondRepoError(w, err, "Failed to load plant")
		return "", false
	}
	return plantID, true
}

func (a *API) handleListPlantPhotos(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	plantID, ok := a.ownPlant(w, r, userID)
	if !ok {
		return
	}
	photos, err := a.Repo.ListPlantPhotos(r.Context(), plantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list photos")
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

func (a *API) handleAddPlantPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	plantID, ok := a.ownPlant(w, r, userID)
	if !ok {
		return
	}
	var req photoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "URL required")
		return
	}
	id, err := a.Repo.AddPlantPhoto(r.Context(), plantID, req.URL, req.Caption, req.TakenAt.ToTimePtr())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add photo")
		return
	}
	writeJSON(w, http.StatusCreated, entityResponse{ID: id})
}

func (a *API) handleDeletePlantPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	plantID, ok := a.ownPlant(w, r, userID)
	if !ok {
		return
	}
	if err := a.Repo.DeletePlantPhoto(r.Context(), chi.URLParam(r, "photoID"), plantID); err != nil {
		respondRepoError(w, err, "Failed to delete photo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleListPlantNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	plantID, ok := a.ownPlant(w, r, userID)
	if !ok {
		return
	}
	notes, err := a.Repo.ListPlantNotes(r.Context(), plantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list notes")
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (a *API) handleAddPlantNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	plantID, ok := a.ownPlant(w, r, userID)
	if !ok {
		return
	}
	var req noteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Body == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Body required")
		return
	}
	id, err := a.Repo.AddPlantNote(r.Context(), plantID, req.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add note")
		return
	}
	writeJSON(w, http.StatusCreated, entityResponse{ID: id})
}

func (a *API) handleUpdatePlantNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	plantID, ok := a.ownPlant(w, r, userID)
	if !ok {
		return
	}
	var req noteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.Repo.UpdatePlantNote(r.Context(), chi.URLParam(r, "noteID"), plantID, req.Body); err != nil {
		respondRepoError(w, err, "Failed to update note")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleDeletePlantNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	plantID, ok := a.ownPlant(w, r, userID)
	if !ok {
		return
	}
	if err := a.Repo.DeletePlantNote(r.Context(), chi.URLParam(r, "noteID"), plantID); err != nil {
		respondRepoError(w, err, "Failed to delete note")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleListEventTypes(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	types, err := a.Repo.ListEventTypes(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list event types")
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (a *API) handleCreateEventType(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req eventTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name required")
		return
	}
	id, err := a.Repo.CreateEventType(r.Context(), userID, req.Name, req.Icon)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create event type")
		return
	}
	writeJSON(w, http.StatusCreated, entityResponse{ID: id})
}

func (a *API) handleRenameEventType(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req eventTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := a.Repo.RenameEventType(r.Context(), chi.URLParam(r, "id"), userID, req.Name, req.Icon); err != nil {
		respondRepoError(w, err, "Failed to rename event type")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleDeleteEventType(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.Repo.DeleteEventType(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondRepoError(w, err, "Failed to delete event type")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleListCareEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	plantID, ok := a.ownPlant(w, r, userID)
	if !ok {
		return
	}
	events, err := a.Repo.ListCareEvents(r.Context(), plantID, 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (a *API) handleRecordCareEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	plantID, ok := a.ownPlant(w, r, userID)
	if !ok {
		return
	}
	var req careEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := a.Repo.GetEventType(r.Context(), req.EventTypeID, userID); err != nil {
		respondRepoError(w, err, "Failed to load event type")
		return
	}
	happenedAt := time.Now()
	if t := req.HappenedAt.ToTimePtr(); t != nil {
		happenedAt = *t
	}
	id, err := a.Repo.CreateCareEvent(r.Context(), userID, plantID, req.EventTypeID, happenedAt, req.Note)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record event")
		return
	}

	// Recording the event must succeed even if rescheduling fails; a
	// failed reschedule is logged and picked up on the next event or
	// settings edit.
	loc := a.userLocation(r, userID)
	if err := a.PostEvent.EventRecorded(r.Context(), userID, plantID, req.EventTypeID, loc); err != nil {
		log.Printf("post-event scheduling failed for plant=%s type=%s: %v", plantID, req.EventTypeID, err)
	}
	writeJSON(w, http.StatusCreated, entityResponse{ID: id})
}

func (a *API) handleDeleteCareEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	if err := a.Repo.DeleteCareEvent(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondRepoError(w, err, "Failed to delete event")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondRepoError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}
