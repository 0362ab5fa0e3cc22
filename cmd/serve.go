package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bazario-group/pricing-cli/internal/ensemble"
	"github.com/bazario-group/pricing-cli/internal/extract"
	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/predict"
	"github.com/bazario-group/pricing-cli/internal/validate"
)

var servePort int

// serveEnv bundles the long-lived dependencies of the HTTP API.
type serveEnv struct {
	reg      *ensemble.Registry
	svc      *predict.Service
	ex       *extract.Extractor
	val      *validate.Validator
	modelDir string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		pats, err := loadPatterns()
		if err != nil {
			return err
		}

		reg := ensemble.NewRegistry()
		n, err := reg.LoadDir(cfg.Models.Dir)
		if err != nil {
			return err
		}
		zap.L().Info("models loaded", zap.Int("count", n), zap.String("dir", cfg.Models.Dir))

		env := &serveEnv{
			reg:      reg,
			svc:      predict.NewService(pats, reg),
			ex:       extract.New(pats),
			val:      validate.New(pats),
			modelDir: cfg.Models.Dir,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env, cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *serveEnv, rps float64, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/models", env.handleModels)
		r.Post("/models/reload", env.handleReload)

		r.Group(func(r chi.Router) {
			if rps > 0 {
				r.Use(perClientLimiter(rate.Limit(rps), burst))
			}
			r.Post("/predict", env.handlePredict)
			r.Post("/validate", env.handleValidate)
			r.Post("/extract", env.handleExtract)
		})
	})

	return r
}

// perClientLimiter enforces a token-bucket rate limit per client IP.
func perClientLimiter(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = map[string]*rate.Limiter{}
	)
	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(limit, burst)
			limiters[ip] = l
		}
		return l
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !limiterFor(ip).Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type listingRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Condition   string  `json:"condition"`
	Category    string  `json:"category"`
	AskingPrice float64 `json:"asking_price"`
}

func (lr listingRequest) toListing() (model.Listing, error) {
	if lr.Title == "" {
		return model.Listing{}, eris.New("title is required")
	}
	c, ok := model.ParseCategory(lr.Category)
	if !ok {
		return model.Listing{}, eris.Errorf("unknown category %q", lr.Category)
	}
	return model.Listing{
		Title:       lr.Title,
		Description: lr.Description,
		Condition:   lr.Condition,
		Category:    c,
		AskingPrice: lr.AskingPrice,
	}, nil
}

func (env *serveEnv) handlePredict(w http.ResponseWriter, r *http.Request) {
	l, ok := decodeListing(w, r)
	if !ok {
		return
	}

	res, report, err := env.svc.Predict(l, predict.Options{})
	if err != nil {
		// Missing model is a service-side condition, not a bad request.
		zap.L().Error("predict failed", zap.String("category", string(l.Category)), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no model available for category"})
		return
	}
	if !res.Success {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"result":    res,
			"rejection": report,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": res})
}

func (env *serveEnv) handleValidate(w http.ResponseWriter, r *http.Request) {
	l, ok := decodeListing(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, env.val.ValidateListing(l))
}

func (env *serveEnv) handleExtract(w http.ResponseWriter, r *http.Request) {
	l, ok := decodeListing(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, env.ex.ExtractListing(l))
}

func (env *serveEnv) handleModels(w http.ResponseWriter, _ *http.Request) {
	type modelInfo struct {
		Category string             `json:"category"`
		RunID    string             `json:"run_id"`
		Examples int                `json:"examples"`
		Metrics  map[string]float64 `json:"metrics,omitempty"`
	}
	var out []modelInfo
	for _, c := range env.reg.Loaded() {
		m, _ := env.reg.Get(c)
		out = append(out, modelInfo{
			Category: string(c),
			RunID:    m.Meta.RunID,
			Examples: m.Meta.Examples,
			Metrics:  m.Meta.Metrics,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": out})
}

func (env *serveEnv) handleReload(w http.ResponseWriter, r *http.Request) {
	n, err := env.reg.LoadDir(env.modelDir)
	if err != nil {
		zap.L().Error("model reload failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "reload failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reloaded": n})
}

func decodeListing(w http.ResponseWriter, r *http.Request) (model.Listing, bool) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return model.Listing{}, false
	}
	l, err := req.toListing()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return model.Listing{}, false
	}
	return l, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
