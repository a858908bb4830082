// Package pushhttp exposes the notification pipeline over HTTP.
//
// NewRouter builds a chi router that accepts push payloads and device tokens
// from the transport, receives click and dismiss callbacks from clients,
// streams rendered notifications as server-sent events and serves health and
// Prometheus endpoints. Server runs any handler with graceful shutdown.
//
//	r := pushhttp.NewRouter(pushhttp.Handlers{
//		Pipeline: svc,
//		Click:    push.NewClickReceiver(reporter, surface),
//		Dismiss:  push.NewDismissReceiver(reporter),
//		Stream:   surface,
//		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
//	})
//	err := pushhttp.New(pushhttp.WithAddr(":8080")).Run(ctx, r)
package pushhttp
