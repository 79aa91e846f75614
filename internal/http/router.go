package http

import (
	"net/http"

	"gptwrapped/internal/auth"
	"gptwrapped/internal/config"
	"gptwrapped/internal/export"
	"gptwrapped/internal/http/handler"
	mw "gptwrapped/internal/http/middleware"
	"gptwrapped/internal/stats"
	"gptwrapped/internal/wrapped"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, statsSvc *stats.Service, gen *wrapped.Generator) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	importH := &handler.ImportHandler{Svc: &export.Service{DB: db}}
	statsH := &handler.StatsHandler{Svc: statsSvc}
	cardsH := &handler.CardsHandler{Gen: gen}

	// public share links
	r.Get("/shared/{token}", cardsH.Shared)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/import/conversations", importH.Import)
		r.Get("/conversations", importH.List)

		r.Route("/stats/{year}", func(r chi.Router) {
			r.Post("/generate", statsH.Generate)
			r.Get("/status", statsH.Status)
			r.Get("/", statsH.Get)
		})

		r.Route("/wrapped/{year}/cards", func(r chi.Router) {
			r.Post("/", cardsH.Generate)
			r.Get("/", cardsH.List)
		})

		r.Post("/cards/{id}/share", cardsH.Share)
		r.Patch("/cards/{id}/image", cardsH.SetImage)
	})

	return r
}
