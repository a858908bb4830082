// Package status reports notification lifecycle stages and device push tokens
// to a remote status service.
//
// Reporter is the narrow contract the notification pipeline depends on.
// HTTPReporter implements it over JSON/HTTP with retries, exponential backoff,
// an optional circuit breaker and HMAC request signing. AsyncReporter wraps any
// Reporter so calls never block the pipeline; they run in order on a single
// background worker.
//
// Device tokens are persisted through a TokenStore: MemoryTokenStore for a
// single process, RedisTokenStore when the token must survive restarts.
//
// Basic usage:
//
//	rep, err := status.NewHTTPReporter("https://status.example.com",
//		status.WithSigningSecret(secret),
//		status.WithCircuitBreaker(status.NewCircuitBreaker(5, 2, 30*time.Second)),
//	)
//	if err != nil {
//		return err
//	}
//	async := status.NewAsyncReporter(rep, status.AsyncOptions{})
//	defer async.Close(context.Background())
//
//	_ = async.UpdateStatus(ctx, "n-42", status.Delivered)
//
// Wire values are DELIVERED, CLICKED and DISMISSED.
package status
