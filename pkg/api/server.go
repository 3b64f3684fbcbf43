// Package api exposes the simulated book over REST and WebSocket. This is
// the boundary surface for dashboards and manual traders; everything here is
// a thin, read-mostly shell over the engine.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"booksim/pkg/engine"
)

// Server handles REST requests and WebSocket connections against one book.
type Server struct {
	book   *engine.Book
	router *mux.Router
	hub    *Hub
	cors   *cors.Cors
	logger *zap.SugaredLogger
}

// NewServer wires the routes. allowedOrigins feeds the CORS policy for
// browser dashboards.
func NewServer(book *engine.Book, allowedOrigins []string, logger *zap.SugaredLogger) *Server {
	s := &Server{
		book:   book,
		router: mux.NewRouter(),
		hub:    NewHub(logger),
		logger: logger,
		cors: cors.New(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/book", s.handleGetBook).Methods("GET")
	api.HandleFunc("/trades", s.handleGetTrades).Methods("GET")
	api.HandleFunc("/mid", s.handleGetMid).Methods("GET")
	api.HandleFunc("/candles", s.handleGetCandles).Methods("GET")

	api.HandleFunc("/orders", s.handleSubmitOrder).Methods("POST")
	api.HandleFunc("/orders/cancel", s.handleCancelOrder).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the full middleware-wrapped handler (also used by tests).
func (s *Server) Handler() http.Handler {
	return s.cors.Handler(s.router)
}

// Start runs the hub and serves until the listener fails.
func (s *Server) Start(addr string) error {
	go s.hub.Run()
	s.logger.Infow("api_server_starting", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// ==============================
// REST handlers
// ==============================

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.bookSnapshot())
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit", v)
			return
		}
		limit = n
	}

	trades := s.book.Trades()
	if len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}

	out := make([]TradeInfo, len(trades))
	for i, t := range trades {
		out[i] = TradeInfo{
			Price:     t.Price,
			Qty:       t.Qty,
			Side:      t.Side.String(),
			Timestamp: t.Time.UnixMilli(),
		}
	}
	respondJSON(w, out)
}

func (s *Server) handleGetMid(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, MidPriceResponse{Mid: s.book.MidPrice()})
}

func (s *Server) handleGetCandles(w http.ResponseWriter, r *http.Request) {
	interval := time.Minute
	if v := r.URL.Query().Get("interval"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			respondError(w, http.StatusBadRequest, "invalid interval", v)
			return
		}
		interval = d
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit", v)
			return
		}
		limit = n
	}

	candles := aggregateCandles(s.book.Trades(), interval)
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	respondJSON(w, candles)
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	side, ok := parseSide(req.Side)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid side", req.Side)
		return
	}
	kind, ok := parseKind(req.Type)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order type", req.Type)
		return
	}
	owner := req.Owner
	if owner == "" {
		owner = "api"
	}

	id, err := s.book.Submit(side, kind, req.Price, req.Quantity, owner)
	switch {
	case errors.Is(err, engine.ErrNoLiquidity):
		// A business outcome, not a protocol error.
		respondJSON(w, SubmitOrderResponse{Accepted: false, Message: err.Error()})
		return
	case err != nil:
		respondError(w, http.StatusBadRequest, "invalid order", err.Error())
		return
	}

	s.logger.Infow("order_submitted",
		"id", id, "side", side.String(), "type", kind.String(),
		"price", req.Price, "qty", req.Quantity, "owner", owner)
	respondJSON(w, SubmitOrderResponse{Accepted: true, OrderID: id})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.OrderID == 0 {
		respondError(w, http.StatusBadRequest, "missing orderId", "")
		return
	}

	accepted := s.book.Cancel(req.OrderID)
	if accepted {
		s.logger.Infow("order_cancelled", "id", req.OrderID)
	}
	respondJSON(w, CancelOrderResponse{Accepted: accepted})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Broadcast methods (called from the sim loop and the engine's trade hook)
// ==============================

// BroadcastBook pushes the current depth to all "book" subscribers.
func (s *Server) BroadcastBook() {
	snap := s.bookSnapshot()
	s.hub.BroadcastToChannel("book", BookUpdate{
		Type:      "book",
		Bids:      snap.Bids,
		Asks:      snap.Asks,
		Mid:       snap.Mid,
		Timestamp: snap.Timestamp,
	})
}

// BroadcastTrade pushes one execution to all "trades" subscribers.
func (s *Server) BroadcastTrade(t engine.Trade) {
	s.hub.BroadcastToChannel("trades", TradeUpdate{
		Type:      "trade",
		Price:     t.Price,
		Qty:       t.Qty,
		Side:      t.Side.String(),
		Timestamp: t.Time.UnixMilli(),
	})
}

// ==============================
// Helpers
// ==============================

func (s *Server) bookSnapshot() BookSnapshot {
	return BookSnapshot{
		Bids:      toPriceLevels(s.book.BidLevels()),
		Asks:      toPriceLevels(s.book.AskLevels()),
		Mid:       s.book.MidPrice(),
		Timestamp: time.Now().UnixMilli(),
	}
}

func toPriceLevels(levels []engine.Level) []PriceLevel {
	out := make([]PriceLevel, len(levels))
	for i, lv := range levels {
		out[i] = PriceLevel{Price: lv.Price, Qty: lv.Qty}
	}
	return out
}

func parseSide(s string) (engine.Side, bool) {
	switch strings.ToUpper(s) {
	case "BUY":
		return engine.Buy, true
	case "SELL":
		return engine.Sell, true
	default:
		return 0, false
	}
}

func parseKind(s string) (engine.Kind, bool) {
	switch strings.ToUpper(s) {
	case "LIMIT":
		return engine.Limit, true
	case "MARKET":
		return engine.Market, true
	default:
		return 0, false
	}
}

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, errMsg, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: errMsg, Message: detail})
}
