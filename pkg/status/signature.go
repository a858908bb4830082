package status

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Header names carried by signed status requests.
const (
	HeaderSignature = "X-Pushkit-Signature"
	HeaderTimestamp = "X-Pushkit-Timestamp"
	HeaderEventID   = "X-Pushkit-Event-ID"
)

// Sign returns the hex HMAC-SHA256 of "timestamp.payload".
func Sign(secret string, timestamp int64, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%d.", timestamp)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature checks a signature produced by Sign and rejects timestamps
// older than maxAge. A zero maxAge skips the age check.
// Status services written in Go can use it to authenticate pushkit requests.
func VerifySignature(secret string, payload []byte, signature, timestamp string, maxAge time.Duration) error {
	if secret == "" || signature == "" {
		return fmt.Errorf("%w: missing secret or signature", ErrInvalidSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}

	if maxAge > 0 {
		age := time.Since(time.Unix(ts, 0))
		if age > maxAge || age < -time.Minute {
			return fmt.Errorf("%w: timestamp outside window", ErrInvalidSignature)
		}
	}

	expected := Sign(secret, ts, payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("%w: signature mismatch", ErrInvalidSignature)
	}
	return nil
}
