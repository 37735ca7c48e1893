package leaderboard

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Handler serves the leaderboard HTTP API.
//
//	GET  /healthz          -> "ok"
//	GET  /api/leaderboard  -> {"items": [...]}
//	POST /api/submit       -> {"entered": bool, "rank": n, "leaderboard": [...]}
//	GET  /ws               -> websocket stream of Update messages
//
// Until a store is attached the data endpoints answer 503 db_unavailable
// while /healthz keeps reporting ok.
type Handler struct {
	logger *log.Logger
	hub    *Hub
	size   int
	mux    *http.ServeMux

	mu    sync.RWMutex
	store Store
}

// NewHandler creates the API. A size below one uses DefaultSize.
func NewHandler(logger *log.Logger, hub *Hub, size int) *Handler {
	if size < 1 {
		size = DefaultSize
	}
	h := &Handler{
		logger: logger.WithPrefix("api"),
		hub:    hub,
		size:   size,
		mux:    http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /healthz", h.handleHealth)
	h.mux.HandleFunc("GET /api/leaderboard", h.handleTop)
	h.mux.HandleFunc("POST /api/submit", h.handleSubmit)
	h.mux.HandleFunc("GET /ws", h.handleWatch)
	return h
}

// SetStore attaches the backing store and makes the API available.
func (h *Handler) SetStore(store Store) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.store = store
}

func (h *Handler) currentStore() Store {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.store
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type errorResponse struct {
	Error string `json:"error"`
}

type topResponse struct {
	Items []Entry `json:"items"`
}

type submitRequest struct {
	Player string          `json:"player"`
	Score  json.RawMessage `json:"score"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok")) // Ignore write errors for health check
}

func (h *Handler) handleTop(w http.ResponseWriter, r *http.Request) {
	store := h.currentStore()
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, ErrUnavailable.Error())
		return
	}

	items, err := store.Top(r.Context(), h.size)
	if err != nil {
		h.logger.Error("Failed to load leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "failed_to_load")
		return
	}
	writeJSON(w, http.StatusOK, topResponse{Items: nonNil(items)})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	store := h.currentStore()
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, ErrUnavailable.Error())
		return
	}

	var req submitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrBadPlayer.Error())
		return
	}
	player, err := NormalizePlayer(req.Player)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrBadPlayer.Error())
		return
	}
	score, err := parseScore(req.Score)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrBadScore.Error())
		return
	}

	res, err := store.Submit(r.Context(), player, score, h.size)
	if err != nil {
		if errors.Is(err, ErrBadPlayer) {
			writeError(w, http.StatusBadRequest, ErrBadPlayer.Error())
			return
		}
		h.logger.Error("Failed to submit score", "player", player, "error", err)
		writeError(w, http.StatusInternalServerError, "failed_to_submit")
		return
	}

	h.logger.Info("Score submitted", "player", player, "score", score, "entered", res.Entered, "rank", res.Rank)
	if h.hub != nil {
		h.hub.Broadcast(res.Leaderboard)
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleWatch(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		http.NotFound(w, r)
		return
	}
	var initial []Entry
	if store := h.currentStore(); store != nil {
		items, err := store.Top(r.Context(), h.size)
		if err != nil {
			h.logger.Warn("Failed to load leaderboard for watcher", "error", err)
		}
		initial = items
	}
	h.hub.ServeWS(w, r, initial)
}

// parseScore accepts a finite number, or a string holding one, and floors it.
// A blank string is zero.
func parseScore(raw json.RawMessage) (int64, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, ErrBadScore
	}
	var f float64
	switch v := v.(type) {
	case float64:
		f = v
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			// a blank string counts as zero, like Number("")
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, ErrBadScore
		}
		f = parsed
	default:
		return 0, ErrBadScore
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrBadScore
	}
	f = math.Floor(f)
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, ErrBadScore
	}
	return int64(f), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Error: code})
}
