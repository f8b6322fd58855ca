package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jyelen1110/Alfies-sub000/internal/config"
	"github.com/jyelen1110/Alfies-sub000/internal/middleware"
	"github.com/jyelen1110/Alfies-sub000/internal/pipeline"
	"github.com/jyelen1110/Alfies-sub000/internal/storage"
)

// NewRouter wires the HTTP surface the mobile-app backend talks to. Order
// matters: recover -> requestID -> logging.
func NewRouter(db *storage.DB, cfg config.Config, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))

	s := &server{
		db:       db,
		cfg:      cfg,
		log:      logger,
		importer: pipeline.NewImportService(db, cfg, logger),
		sessions: map[string]*sessionEntry{},
	}

	r.Get("/health", s.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/orders/import", s.importOrder)
		r.Get("/orders/{orderID}/unmatched", s.listUnmatched)
		r.Post("/orders/{orderID}/resolve", s.resolve)
	})

	return r
}
