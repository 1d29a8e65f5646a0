package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/raysh454/ziva/docs/swagger" // registers the API docs
	"github.com/raysh454/ziva/internal/engine"
	"github.com/raysh454/ziva/internal/logging"
	"github.com/raysh454/ziva/internal/scan"
	"github.com/raysh454/ziva/internal/store"
	"github.com/raysh454/ziva/internal/utils"
)

// Banner is the body of GET /.
const Banner = "Ziva Brain is Running! 🧠"

// Scanner evaluates one link.
type Scanner interface {
	Scan(ctx context.Context, link string) (*scan.ScanResponse, error)
}

// Ledger is the read side of the store.
type Ledger interface {
	Stats(ctx context.Context, productKey string) (*store.Stats, error)
	Observations(ctx context.Context, productKey string, limit int) ([]store.Observation, error)
	RecentScans(ctx context.Context, limit int) ([]store.ScanRecord, error)
}

// Deps are the server's collaborators.
type Deps struct {
	// Scanner answers POST /scan. Required.
	Scanner Scanner

	// Client backs the /app page and /ws/scan. Nil means Scanner, in process.
	Client scan.Client

	// Ledger answers /scans and /history. Nil disables both.
	Ledger Ledger

	Logger logging.Logger
}

// Server is the HTTP + WebSocket API surface for Ziva.
type Server struct {
	cfg      Config
	deps     Deps
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer builds the router over deps.
func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.Scanner == nil {
		return nil, errors.New("server: nil scanner")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewStdoutLogger("server")
	}
	if deps.Client == nil {
		deps.Client = scan.ClientFunc(func(ctx context.Context, req *scan.ScanRequest) (*scan.ScanResponse, error) {
			return deps.Scanner.Scan(ctx, req.URL)
		})
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultConfig().HistoryLimit
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		router: chi.NewRouter(),
		logger: deps.Logger.With(logging.Field{Key: "component", Value: "server"}),
		upgrader: websocket.Upgrader{
			// The scan panel is embedded by browser extensions on any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/scan", s.optionsHandler("POST"))
	r.Options("/scans", s.optionsHandler("GET"))
	r.Options("/history", s.optionsHandler("GET"))
	r.Options("/ws/scan", s.optionsHandler("GET"))

	r.Get("/", s.handleHome)
	r.Post("/scan", s.handleScan)
	r.Get("/scans", s.handleListScans)
	r.Get("/history", s.handleHistory)

	// Server-rendered scan page
	r.Get("/app", s.handleAppPage)
	r.Post("/app", s.handleAppScan)

	// Live panel events
	r.Get("/ws/scan", s.handleScanWS)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

// handleHome godoc
// @Summary Liveness banner
// @Produce plain
// @Success 200 {string} string "Ziva Brain is Running! 🧠"
// @Router / [get]
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, Banner)
}

// handleScan godoc
// @Summary Scan a product link
// @Accept json
// @Produce json
// @Param body body ScanRequestBody true "Link to scan"
// @Success 200 {object} scan.ScanResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /scan [post]
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var body ScanRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.URL) == "" {
		writeError(w, http.StatusBadRequest, "No URL provided")
		return
	}

	resp, err := s.deps.Scanner.Scan(r.Context(), body.URL)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidLink) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Warn("scanning link", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("scanned link", logging.Field{Key: "url", Value: body.URL}, logging.Field{Key: "verdict", Value: resp.Verdict})
	writeJSON(w, http.StatusOK, resp)
}

// handleListScans godoc
// @Summary Recent scans
// @Produce json
// @Param limit query int false "Maximum entries" default(20)
// @Success 200 {array} store.ScanRecord
// @Failure 503 {object} ErrorResponse
// @Router /scans [get]
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ledger == nil {
		writeError(w, http.StatusServiceUnavailable, "scan log is disabled")
		return
	}
	limit := 20
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	recs, err := s.deps.Ledger.RecentScans(r.Context(), limit)
	if err != nil {
		s.logger.Warn("listing scans", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleHistory godoc
// @Summary Stored prices for a link
// @Produce json
// @Param url query string true "Product link"
// @Success 200 {object} HistoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /history [get]
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ledger == nil {
		writeError(w, http.StatusServiceUnavailable, "price history is disabled")
		return
	}
	link := r.URL.Query().Get("url")
	if strings.TrimSpace(link) == "" {
		writeError(w, http.StatusBadRequest, "missing url query parameter")
		return
	}
	key, err := utils.ProductKey(link)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := s.deps.Ledger.Stats(r.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no price history for this link")
		return
	}
	if err != nil {
		s.logger.Warn("reading stats", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	obs, err := s.deps.Ledger.Observations(r.Context(), key, s.cfg.HistoryLimit)
	if err != nil {
		s.logger.Warn("reading observations", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{ProductKey: key, Stats: stats, Observations: obs})
}
