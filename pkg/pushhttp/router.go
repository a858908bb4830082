package pushhttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/pushkit/pkg/push"
)

// Pipeline is the part of push.Service the transport drives.
type Pipeline interface {
	Dispatch(ctx context.Context, p push.Payload) error
	OnNewToken(ctx context.Context, token string)
	OnDeletedMessages(ctx context.Context)
}

// Receiver handles a click or dismiss callback.
type Receiver interface {
	Receive(ctx context.Context, ev push.Event) error
}

// Handlers lists the collaborators behind the routes. Nil fields leave their
// routes unmounted, except Pipeline which is required.
type Handlers struct {
	Pipeline     Pipeline
	Click        Receiver
	Dismiss      Receiver
	Stream       *push.StreamSurface
	Metrics      http.Handler
	HealthChecks []func(context.Context) error
	Logger       *slog.Logger
}

// NewRouter mounts:
//
//	POST /messages             inbound push payload, processed in the background
//	POST /messages/deleted     transport dropped pending messages
//	POST /tokens               new or rotated device token
//	GET|POST /callbacks/click  click callback
//	GET|POST /callbacks/dismiss dismiss callback
//	GET  /notifications/stream SSE feed of the stream surface
//	GET  /healthz              liveness, or readiness when checks are given
//	GET  /metrics              Prometheus exposition
func NewRouter(h Handlers) chi.Router {
	if h.Pipeline == nil {
		panic("pushhttp: pipeline cannot be nil")
	}
	log := h.Logger
	if log == nil {
		log = slog.Default()
	}
	a := &api{h: h, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler(log, h.HealthChecks...))
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/messages", func(r chi.Router) {
		r.Post("/", a.handleMessage)
		r.Post("/deleted", a.handleDeleted)
	})
	r.Post("/tokens", a.handleToken)

	r.Route("/callbacks", func(r chi.Router) {
		if h.Click != nil {
			r.Get("/click", a.callback(push.EventClick, h.Click))
			r.Post("/click", a.callback(push.EventClick, h.Click))
		}
		if h.Dismiss != nil {
			r.Get("/dismiss", a.callback(push.EventDismiss, h.Dismiss))
			r.Post("/dismiss", a.callback(push.EventDismiss, h.Dismiss))
		}
	})

	if h.Stream != nil {
		r.Get("/notifications/stream", a.stream)
	}

	return r
}
