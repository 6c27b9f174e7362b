package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fischervincent/grow-journal-sub000/internal/auth"
	"github.com/fischervincent/grow-journal-sub000/internal/repo"
	"github.com/fischervincent/grow-journal-sub000/internal/schedule"
	"github.com/fischervincent/grow-journal-sub000/internal/service"
)

type API struct {
	Repo       *repo.Repo
	Service    *service.Service
	Auth       *auth.Manager
	Applicator *schedule.Applicator
	PostEvent  *schedule.PostEventScheduler
	Reconciler *schedule.Reconciler
	Origins    []string
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(loggingMiddleware)
	r.Use(a.corsMiddleware)

	r.Get("/health", a.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", a.handleRegister)
		r.Post("/login", a.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(a.authMiddleware)
		r.Get("/me", a.handleMe)
		r.Put("/me/timezone", a.handleUpdateTimezone)
		r.Post("/invites", a.handleCreateInvite)

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", a.handleListLocations)
			r.Post("/", a.handleCreateLocation)
			r.Put("/{id}", a.handleUpdateLocation)
			r.Delete("/{id}", a.handleDeleteLocation)
		})

		r.Route("/plants", func(r chi.Router) {
			r.Get("/", a.handleListPlants)
			r.Post("/", a.handleCreatePlant)
			r.Get("/{id}", a.handleGetPlant)
			r.Put("/{id}", a.handleUpdatePlant)
			r.Delete("/{id}", a.handleDeletePlant)

			r.Get("/{id}/photos", a.handleListPlantPhotos)
			r.Post("/{id}/photos", a.handleAddPlantPhoto)
			r.Delete("/{id}/photos/{photoID}", a.handleDeletePlantPhoto)

			r.Get("/{id}/notes", a.handleListPlantNotes)
			r.Post("/{id}/notes", a.handleAddPlantNote)
			r.Put("/{id}/notes/{noteID}", a.handleUpdatePlantNote)
			r.Delete("/{id}/notes/{noteID}", a.handleDeletePlantNote)

			r.Get("/{id}/events", a.handleListCareEvents)
			r.Post("/{id}/events", a.handleRecordCareEvent)
		})

		r.Route("/event-types", func(r chi.Router) {
			r.Get("/", a.handleListEventTypes)
			r.Post("/", a.handleCreateEventType)
			r.Put("/{id}", a.handleRenameEventType)
			r.Delete("/{id}", a.handleDeleteEventType)

			r.Get("/{id}/reminder-default", a.handleGetReminderDefault)
			r.Put("/{id}/reminder-default", a.handleUpsertReminderDefault)
			r.Delete("/{id}/reminder-default", a.handleDeleteReminderDefault)

			r.Get("/{id}/reminder-settings", a.handleGetReminderSettings)
			r.Put("/{id}/reminder-settings", a.handleBulkApplySettings)
		})

		r.Delete("/events/{id}", a.handleDeleteCareEvent)

		r.Route("/reminders", func(r chi.Router) {
			r.Get("/", a.handleListReminders)
			r.Post("/{id}/complete", a.handleCompleteReminder)
			r.Post("/{id}/snooze", a.handleSnoozeReminder)
		})
	})

	return r
}
