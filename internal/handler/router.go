package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/discount-grid-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса скидочных акций.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Route("/records", func(r chi.Router) {
			r.Get("/", h.GetRecords)
			r.Post("/load", h.LoadRecords)
			r.Get("/values", h.GetUniqueValues)

			r.Put("/{clientID}", h.UpdateRecord)
			r.Delete("/{clientID}", h.DeleteRecord)
		})

		r.Route("/filters", func(r chi.Router) {
			r.Put("/", h.SetFilter)
			r.Delete("/", h.ClearFilters)
		})

		r.Route("/bulk", func(r chi.Router) {
			r.Post("/update", h.BulkUpdate)
			r.Post("/delete", h.BulkDelete)
			r.Post("/export", h.ExportCSV)
			r.Get("/status", h.BulkStatus)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
