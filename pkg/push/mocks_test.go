package push_test

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/pushkit/pkg/push"
	"github.com/dmitrymomot/pushkit/pkg/status"
)

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) UpdateStatus(ctx context.Context, notificationID string, s status.Status) error {
	args := m.Called(ctx, notificationID, s)
	return args.Error(0)
}

func (m *MockReporter) SetDeviceToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockLauncher struct {
	mock.Mock
}

func (m *MockLauncher) Launch(ctx context.Context, in push.Intent) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

type MockSurface struct {
	mock.Mock
}

func (m *MockSurface) EnsureChannel(ctx context.Context, ch push.Channel) error {
	args := m.Called(ctx, ch)
	return args.Error(0)
}

func (m *MockSurface) Show(ctx context.Context, n push.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

var errFetch = errors.New("fetch failed")

// fakeLoader serves images by URL and records every requested URL.
type fakeLoader struct {
	mu     sync.Mutex
	images map[string]image.Image
	calls  []string
	gate   chan struct{}
}

func newFakeLoader(images map[string]image.Image) *fakeLoader {
	return &fakeLoader{images: images}
}

func (f *fakeLoader) Load(ctx context.Context, url string) (image.Image, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if img, ok := f.images[url]; ok {
		return img, nil
	}
	return nil, errFetch
}

func (f *fakeLoader) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func testImage(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}
