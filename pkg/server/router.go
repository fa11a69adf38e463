package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/heightcompare/pkg/errors"
)

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody(errors.ErrCodeUnsupported, "method not allowed"))
	})

	r.Get("/health/live", s.handleLive)
	r.Get("/health/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.Token))

		r.Post("/boards", s.handleCreateBoard)
		r.Route("/boards/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetBoard)
			r.Delete("/", s.handleDeleteBoard)

			r.Post("/people", s.handleAddPerson)
			r.Delete("/people", s.handleClearPeople)
			r.Patch("/people/{pid}", s.handleUpdatePerson)
			r.Delete("/people/{pid}", s.handleRemovePerson)

			r.Put("/mode", s.handleSetMode)

			r.Get("/chart", s.handleChart)
			r.Get("/chart.{format}", s.handleChartArtifact)

			r.Post("/characters/{cid}", s.handleAddCharacter)
			r.Post("/sample", s.handleSample)
		})

		r.Get("/characters", s.handleListCharacters)
		r.Get("/characters/random", s.handleRandomCharacters)
		r.Get("/characters/{cid}", s.handleGetCharacter)
		r.Get("/categories", s.handleCategories)
		r.Get("/stats", s.handleStats)

		r.Get("/scale", s.handleScale)
	})

	return r
}

// AuthMiddleware requires "Authorization: Bearer <token>" on every request.
// An empty token disables the check.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			got := strings.TrimPrefix(auth, "Bearer ")
			if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorBody(errors.ErrCodeUnauthorized, "missing or invalid bearer token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request at debug level, or at warn level
// for server errors.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				fields := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				}
				if ww.Status() >= http.StatusInternalServerError {
					logger.Warn("request", fields...)
					return
				}
				logger.Debug("request", fields...)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
