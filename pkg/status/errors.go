package status

import "errors"

var (
	ErrInvalidStatus         = errors.New("status: invalid lifecycle status")
	ErrMissingNotificationID = errors.New("status: notification id is required")
	ErrEmptyToken            = errors.New("status: device token is empty")
	ErrInvalidURL            = errors.New("status: invalid service URL")
	ErrDeliveryFailed        = errors.New("status: report delivery failed")
	ErrPermanentFailure      = errors.New("status: permanent report failure")
	ErrTemporaryFailure      = errors.New("status: temporary report failure")
	ErrTimeout               = errors.New("status: report request timeout")
	ErrCircuitOpen           = errors.New("status: circuit breaker is open")
	ErrQueueFull             = errors.New("status: report queue is full")
	ErrReporterClosed        = errors.New("status: reporter is closed")
	ErrTokenStore            = errors.New("status: device token store failure")
	ErrInvalidSignature      = errors.New("status: invalid request signature")
	ErrRedisNotReady         = errors.New("status: redis did not become ready within the given time period")
)

// IsCircuitOpen checks if an error indicates the circuit breaker is open.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}
