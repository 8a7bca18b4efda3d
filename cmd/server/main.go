package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/liamcoop/healthrisk/advice"
	"github.com/liamcoop/healthrisk/config"
	"github.com/liamcoop/healthrisk/form"
	"github.com/liamcoop/healthrisk/internal/logger"
	"github.com/liamcoop/healthrisk/predict"
	"github.com/liamcoop/healthrisk/session"
	_ "github.com/lib/pq"
)

const predictionFailedMessage = "Prediction failed, please retry."

type Server struct {
	db        *sql.DB
	pipeline  *predict.Pipeline
	results   session.ResultStore
	storeKind string
	cookie    cookieConfig
	pages     map[string]*template.Template
	router    *chi.Mux
}

// NewServer loads the artifacts and opens the session store described by cfg.
// Any failure here is fatal to startup.
func NewServer(cfg *config.Config) (*Server, error) {
	artifacts, err := predict.LoadArtifacts(cfg.Artifacts.ScalerPath, cfg.Artifacts.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}

	sessCfg := session.Config{TTL: cfg.Session.TTL}
	cookie := cookieConfig{
		Name:   cfg.Session.CookieName,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.SecureCookie,
	}
	pipeline := predict.NewPipelineFromArtifacts(artifacts)

	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory session store")
		return NewServerWithStore(pipeline, session.NewInMemoryResultStore(sessCfg), "memory", cookie)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("using postgres session store")
	s, err := NewServerWithStore(pipeline, session.NewPostgresResultStore(db, sessCfg), "postgres", cookie)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.db = db
	return s, nil
}

// NewServerWithStore wires a server around an existing pipeline and store
func NewServerWithStore(pipeline *predict.Pipeline, results session.ResultStore, storeKind string, cookie cookieConfig) (*Server, error) {
	pages, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		pipeline:  pipeline,
		results:   results,
		storeKind: storeKind,
		cookie:    cookie,
		pages:     pages,
	}

	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware(s.cookie))

		r.Get("/", s.handleHome)
		r.Post("/predict", s.handlePredictForm)
		r.Get("/precautions", s.handlePrecautions)
		r.Get("/about", s.handleAbout)
	})

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware(s.cookie))

			r.Get("/form", s.handleForm)
			r.Post("/predict", s.handlePredict)
			r.Get("/advice", s.handleAdvice)
			r.Get("/about", s.handleAboutJSON)
			r.Delete("/session", s.handleEndSession)
		})
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:       "healthy",
		Scaler:       s.pipeline.ScalerKind(),
		Classifier:   s.pipeline.ClassifierKind(),
		SessionStore: s.storeKind,
		Counters:     logger.Counters(),
	}

	if err := s.results.Ping(r.Context()); err != nil {
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// predict runs the pipeline and records the label under a freshly issued
// session ID. The caller's previous ID is dropped, so an ID the client chose
// itself never holds a result.
func (s *Server) predict(w http.ResponseWriter, r *http.Request, in predict.PatientInput) (predict.Label, error) {
	label, err := s.pipeline.Predict(in)
	if err != nil {
		return "", err
	}

	previous := sessionID(r)
	id := uuid.NewString()
	if err := s.results.Set(r.Context(), id, label); err != nil {
		return "", fmt.Errorf("failed to store result: %w", err)
	}
	if err := s.results.Delete(r.Context(), previous); err != nil {
		logger.Warn("failed to drop previous session result", "session", previous, "error", err)
	}
	http.SetCookie(w, newSessionCookie(s.cookie, id))

	logger.TotalPredictions.Add(1)
	logger.Debug("prediction stored", "session", id, "label", label)
	return label, nil
}

// Home page handler
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, "home", pageData{
		Active: "home",
		Home:   newHomeView(form.Defaults()),
	})
}

// Form submission handler
func (s *Server) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logger.WarnHttp4xx(http.StatusBadRequest)
		view := newHomeView(form.Defaults())
		view.Error = "Could not read the submitted form."
		s.renderPage(w, http.StatusBadRequest, "home", pageData{Active: "home", Home: view})
		return
	}

	in, err := form.Parse(r.PostForm)
	if err != nil {
		logger.WarnHttp4xx(http.StatusBadRequest)
		view := newSubmittedView(r.PostForm)
		view.Error = err.Error()
		s.renderPage(w, http.StatusBadRequest, "home", pageData{Active: "home", Home: view})
		return
	}

	view := newHomeView(in)

	label, err := s.predict(w, r, in)
	if err != nil {
		logger.ErrorHttp5xx()
		logger.Error("prediction failed", "session", sessionID(r), "error", err)
		view.Error = predictionFailedMessage
		s.renderPage(w, http.StatusInternalServerError, "home", pageData{Active: "home", Home: view})
		return
	}

	view.Result = &resultView{Label: label, Message: advice.ResultMessage(label)}
	s.renderPage(w, http.StatusOK, "home", pageData{Active: "home", Home: view})
}

// Precautions page handler
func (s *Server) handlePrecautions(w http.ResponseWriter, r *http.Request) {
	page, err := s.advicePage(r)
	if err != nil {
		logger.ErrorHttp5xx()
		logger.Error("failed to read session result", "session", sessionID(r), "error", err)
		http.Error(w, "could not load your result, please retry", http.StatusInternalServerError)
		return
	}

	s.renderPage(w, http.StatusOK, "precautions", pageData{Active: "precautions", Advice: &page})
}

// About page handler
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	about := advice.About()
	s.renderPage(w, http.StatusOK, "about", pageData{Active: "about", About: &about})
}

func (s *Server) advicePage(r *http.Request) (advice.Page, error) {
	label, found, err := s.results.Get(r.Context(), sessionID(r))
	if err != nil {
		return advice.Page{}, err
	}
	return advice.Render(label, found), nil
}

// Form description handler
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, FormResponse{Fields: form.Fields})
}

// JSON prediction handler
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	in, err := form.FromMap(req.Values())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid input", err)
		return
	}

	label, err := s.predict(w, r, in)
	if err != nil {
		logger.Error("prediction failed", "session", sessionID(r), "error", err)
		respondError(w, http.StatusInternalServerError, predictionFailedMessage, nil)
		return
	}

	respondJSON(w, http.StatusOK, PredictResponse{
		Label:   label,
		Message: advice.ResultMessage(label),
		Input:   in,
	})
}

// JSON advice handler
func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	page, err := s.advicePage(r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read session result", err)
		return
	}
	respondJSON(w, http.StatusOK, AdviceResponse{Page: page})
}

// JSON about handler
func (s *Server) handleAboutJSON(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, advice.About())
}

// End session handler
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.results.Delete(r.Context(), sessionID(r)); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to end session", err)
		return
	}

	http.SetCookie(w, expiredSessionCookie(s.cookie))
	w.WriteHeader(http.StatusNoContent)
}

// sweep periodically drops expired session results until ctx is done
func (s *Server) sweep(ctx context.Context, interval time.Duration) {
	sweeper, ok := s.results.(session.Sweeper)
	if !ok {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sweeper.Sweep(ctx)
			if err != nil {
				logger.Warn("session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Debug("expired session results removed", "count", removed)
			}
		}
	}
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	switch {
	case status >= 500:
		logger.ErrorHttp5xx()
	case status >= 400:
		logger.WarnHttp4xx(status)
	}

	response := ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}
	respondJSON(w, status, response)
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	// Artifacts are required; refuse to start without them
	server, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}
	if server.db != nil {
		defer server.db.Close()
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go server.sweep(sweepCtx, cfg.Session.SweepInterval)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("server starting", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
