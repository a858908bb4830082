package push

import "errors"

var (
	ErrNilSurface     = errors.New("push: surface cannot be nil")
	ErrNilBuilder     = errors.New("push: builder cannot be nil")
	ErrSurfaceClosed  = errors.New("push: surface is closed")
	ErrServiceClosed  = errors.New("push: service is closed")
	ErrRenderFailed   = errors.New("push: render failed")
	ErrChannelSetup   = errors.New("push: notification channel setup failed")
	ErrLaunchFailed   = errors.New("push: deep link launch failed")
	ErrTokenSource    = errors.New("push: token source failed")
	ErrInvalidChannel = errors.New("push: invalid notification channel")
)
