package ingest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/leads-agent/internal/extract"
	"github.com/sells-group/leads-agent/internal/model"
)

// LeadHandler processes one extracted lead. It runs on its own goroutine
// after the event has been acknowledged.
type LeadHandler func(ctx context.Context, lead model.Lead, ev extract.RawEvent)

// Server terminates the Slack Events API: it authenticates requests,
// answers the URL verification handshake, filters events down to lead
// notifications, and dispatches extraction hits asynchronously so the
// transport always gets a fast acknowledgment.
type Server struct {
	signingSecret string
	channelID     string
	extractor     *extract.Extractor
	handler       LeadHandler

	clock func() time.Time

	baseCtx context.Context
	wg      sync.WaitGroup
}

// Option customizes server construction.
type Option func(*Server)

// WithClock allows tests to control signature freshness.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer builds an event server. channelID may be empty to accept lead
// notifications from any channel.
func NewServer(ctx context.Context, signingSecret, channelID string, extractor *extract.Extractor, handler LeadHandler, opts ...Option) *Server {
	s := &Server{
		signingSecret: signingSecret,
		channelID:     channelID,
		extractor:     extractor,
		handler:       handler,
		clock:         func() time.Time { return time.Now().UTC() },
		baseCtx:       ctx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/slack/events", s.handleEvents)
	return r
}

// Wait blocks until all dispatched leads have finished processing.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// envelope is the outer Events API payload.
type envelope struct {
	Type      string            `json:"type"`
	Challenge string            `json:"challenge"`
	Event     *extract.RawEvent `json:"event"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	// Authentication comes before any parsing or filtering.
	if err := VerifySignature(
		s.signingSecret,
		r.Header.Get("X-Slack-Request-Timestamp"),
		r.Header.Get("X-Slack-Signature"),
		body,
		s.clock(),
	); err != nil {
		zap.L().Warn("event rejected", zap.Error(err))
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	switch env.Type {
	case "url_verification":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"challenge": env.Challenge})
		return
	case "event_callback":
		// fall through
	default:
		w.WriteHeader(http.StatusOK)
		return
	}

	if env.Event != nil {
		s.dispatch(*env.Event)
	}
	// Always acknowledge: a rejected or unusable event is a normal no-op,
	// and slow handling here would trigger transport retries.
	w.WriteHeader(http.StatusOK)
}

func (s *Server) dispatch(ev extract.RawEvent) {
	if s.channelID != "" && ev.Channel != s.channelID {
		return
	}
	if !s.extractor.Match(ev) {
		return
	}

	lead, ok := s.extractor.FromEvent(ev)
	if !ok {
		zap.L().Warn("lead notification had no usable fields",
			zap.String("channel", ev.Channel),
			zap.String("ts", ev.TS),
		)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.handler(s.baseCtx, *lead, ev)
	}()
}
