package http

import (
	"net/http"
	"time"

	"yeardiary/internal/auth"
	"yeardiary/internal/config"
	"yeardiary/internal/diary"
	"yeardiary/internal/http/handler"
	mw "yeardiary/internal/http/middleware"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Gate  *auth.Gate
	Store diary.Store
	Log   *log.Logger
}

func NewRouter(cfg config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLog(deps.Log))
	r.Use(mw.Recover(deps.Log))

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","timestamp":"` + time.Now().UTC().Format(time.RFC3339) + `"}` + "\n"))
	})

	validate := handler.NewValidator()
	ah := &handler.AuthHandler{Gate: deps.Gate, Log: deps.Log}
	eh := &handler.EntryHandler{Store: deps.Store, Validate: validate, Log: deps.Log}
	me := &handler.MeHandler{}

	limiter := mw.NewKeyedLimiter(cfg.LoginRatePerMinute, time.Minute, cfg.LoginRateBurst)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(limiter, deps.Log))
			for provider := range deps.Gate.Verifiers {
				login := ah.Login(provider)
				r.Post("/auth/"+provider, login)
				r.Post("/auth/"+provider+"Login", login)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(deps.Gate))

			r.Get("/me", me.Me)

			r.Get("/entries", eh.List)
			r.Post("/entries", eh.Save)
			r.Get("/entries/{date}", eh.Get)
			r.Delete("/entries/{date}", eh.Delete)

			r.Get("/stats", eh.Stats)
		})
	})

	return r
}
