package pushhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/dmitrymomot/pushkit/pkg/logger"
	"github.com/dmitrymomot/pushkit/pkg/push"
)

const maxBodyBytes = 64 << 10

type api struct {
	h   Handlers
	log *slog.Logger
}

type messageRequest struct {
	Data push.Payload `json:"data"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *api) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := a.h.Pipeline.Dispatch(r.Context(), req.Data); err != nil {
		a.log.LogAttrs(r.Context(), slog.LevelWarn, "push message rejected",
			logger.NotificationID(req.Data.ID()),
			logger.Error(err),
		)
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (a *api) handleDeleted(w http.ResponseWriter, r *http.Request) {
	a.h.Pipeline.OnDeletedMessages(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, errors.New("token is required"))
		return
	}

	a.h.Pipeline.OnNewToken(r.Context(), req.Token)
	w.WriteHeader(http.StatusNoContent)
}

// callback reads the event from the query string or, for JSON requests, the body.
// Receiver errors are logged by the receivers; the callback always succeeds.
func (a *api) callback(kind push.EventKind, rcv Receiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev := push.Event{
			Kind:           kind,
			NotificationID: r.URL.Query().Get(push.KeyNotificationID),
			ClickAction:    r.URL.Query().Get(push.KeyClickAction),
		}

		if r.Method == http.MethodPost && isJSON(r) {
			var body push.Event
			if err := decodeJSON(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			if body.NotificationID != "" {
				ev.NotificationID = body.NotificationID
			}
			if body.ClickAction != "" {
				ev.ClickAction = body.ClickAction
			}
		}
		if kind == push.EventDismiss {
			ev.ClickAction = ""
		}

		_ = rcv.Receive(r.Context(), ev)
		w.WriteHeader(http.StatusNoContent)
	}
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}
