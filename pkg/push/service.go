package push

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/pushkit/pkg/async"
	"github.com/dmitrymomot/pushkit/pkg/imageloader"
	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/status"
)

// Service turns inbound push payloads into rendered notifications.
// All methods are safe for concurrent use; every message is processed
// independently with no shared state besides the collaborators.
type Service struct {
	reporter     status.Reporter
	loader       imageloader.Loader
	builder      *Builder
	loop         *async.Loop
	ownsLoop     bool
	logger       *slog.Logger
	metrics      *Metrics
	fetchTimeout time.Duration
	onDeleted    func(ctx context.Context)

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// NewService wires the pipeline. A nil reporter reports nothing; a nil loader
// falls back to a plain HTTP loader.
func NewService(reporter status.Reporter, loader imageloader.Loader, builder *Builder, opts ...Option) (*Service, error) {
	if builder == nil {
		return nil, ErrNilBuilder
	}

	s := &Service{
		reporter:     reporter,
		loader:       loader,
		builder:      builder,
		logger:       slog.Default(),
		fetchTimeout: 30 * time.Second,
		ownsLoop:     true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.reporter == nil {
		s.reporter = status.NopReporter{Logger: s.logger}
	}
	if s.loader == nil {
		s.loader = imageloader.NewHTTPLoader()
	}
	if s.loop == nil {
		s.loop = async.NewLoop(64)
		s.ownsLoop = true
	}
	s.logger = s.logger.With(logger.Component("push"))

	return s, nil
}

// HandleMessage runs the whole pipeline for one payload and returns once the
// notification was handed to the surface. Image failures never surface here;
// only render failures do, and a context that ends before the render is
// reached, in which case nothing is shown. An empty payload is ignored.
func (s *Service) HandleMessage(ctx context.Context, p Payload) error {
	if p.IsEmpty() {
		s.metrics.message("empty")
		s.logger.LogAttrs(ctx, slog.LevelDebug, "empty push payload ignored")
		return nil
	}

	start := time.Now()
	id := p.ID()

	if id != "" {
		reportStatus(ctx, s.logger, s.reporter, s.metrics, id, status.Delivered)
	}

	plan := SelectStyle(p.LargeIcon(), p.BigPicture(), p.Body())
	icon, picture := s.fetchImages(ctx, plan)
	style, thumbnail := plan.Finalize(icon, picture)

	n := s.builder.Build(id, p.Title(), p.Body(), p.ClickAction(), thumbnail, style)

	var handle Handle
	err := s.loop.Do(ctx, func(ctx context.Context) error {
		var err error
		handle, err = s.builder.Render(ctx, n)
		return err
	})
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		// The loop skipped the render; nothing was shown.
		s.metrics.message("canceled")
		s.logger.LogAttrs(ctx, slog.LevelWarn, "notification not rendered before context ended",
			logger.NotificationID(id),
			logger.Error(err),
		)
		return fmt.Errorf("push: render notification: %w", err)
	}
	if err != nil {
		s.metrics.message("failed")
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to render notification",
			logger.NotificationID(id),
			logger.Style(style.Kind().String()),
			logger.Error(err),
		)
		return fmt.Errorf("push: render notification: %w", err)
	}

	elapsed := time.Since(start)
	s.metrics.message("rendered")
	s.metrics.rendered(style.Kind(), elapsed)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "notification rendered",
		logger.NotificationID(id),
		logger.Handle(int64(handle)),
		logger.Style(style.Kind().String()),
		logger.Duration(elapsed),
	)

	return nil
}

// Dispatch runs HandleMessage in the background. The work outlives ctx
// cancellation but keeps its values. Close waits for dispatched messages.
func (s *Service) Dispatch(ctx context.Context, p Payload) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrServiceClosed
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		// Errors are already logged by HandleMessage.
		_ = s.HandleMessage(context.WithoutCancel(ctx), p)
	}()

	return nil
}

// Close rejects new dispatches, waits for in-flight ones and stops the render
// loop when the service owns it.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if s.ownsLoop {
		return s.loop.Close(ctx)
	}
	return nil
}

// fetchImages loads the planned images concurrently and waits for all of them.
// A failed fetch yields a nil image.
func (s *Service) fetchImages(ctx context.Context, plan Plan) (icon, picture image.Image) {
	urls := plan.Fetches()
	if len(urls) == 0 {
		return nil, nil
	}

	futures := make([]*async.Future[image.Image], len(urls))
	for i, u := range urls {
		futures[i] = async.Async(ctx, u, s.fetch)
	}
	results := async.Settle(futures...)

	i := 0
	if plan.LargeIconURL != "" {
		icon = results[i].Value
		i++
	}
	if plan.BigPictureURL != "" {
		picture = results[i].Value
	}
	return icon, picture
}

func (s *Service) fetch(ctx context.Context, url string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	img, err := s.loader.Load(ctx, url)
	if err != nil || img == nil {
		s.metrics.fetch(false)
		s.logger.LogAttrs(ctx, slog.LevelWarn, "image fetch failed, rendering without it",
			logger.URL(url),
			logger.Error(err),
		)
		return nil, err
	}

	s.metrics.fetch(true)
	return img, nil
}
