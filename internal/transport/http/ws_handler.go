package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// LoadFailedMessage is shown when no question source could serve the quiz.
const LoadFailedMessage = "Failed to load questions. Please try again."

type WSHandler struct {
	service  *app.QuizService
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option *int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
	Retry   bool   `json:"retry,omitempty"`
}

// ServeWS runs one quiz session over a websocket. Closing the socket abandons the session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	difficulty, err := domain.ParseDifficulty(r.URL.Query().Get("difficulty"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(outboundMessage[any]{Type: "loading"}); err != nil {
		return
	}

	view, err := h.service.Start(r.Context(), difficulty)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: LoadFailedMessage, Retry: true}})
		return
	}
	sessionID := view.SessionID
	log := h.log.WithFields(logrus.Fields{"session": sessionID, "difficulty": difficulty})

	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Abandon(r.Context(), sessionID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// The writer goroutine is the only one touching conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- viewMessage(update):
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		var (
			view domain.SessionView
			err  error
		)
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid select payload"}}
				continue
			}
			view, err = h.service.SelectAnswer(r.Context(), sessionID, *payload.Option)
		case "skip":
			view, err = h.service.Skip(r.Context(), sessionID)
		case "next":
			view, err = h.service.Advance(r.Context(), sessionID)
		case "back":
			view, err = h.service.GoBack(r.Context(), sessionID)
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
			continue
		}

		switch {
		case err == nil:
			// Accepted commands reach the client through the subscription.
		case errors.Is(err, domain.ErrInvalidTransition):
			log.WithField("command", inbound.Type).WithError(err).Debug("command rejected")
			send <- viewMessage(view)
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func viewMessage(view domain.SessionView) outboundMessage[any] {
	if view.Status == domain.StatusFinished && view.Result != nil {
		return outboundMessage[any]{Type: "finished", Payload: view.Result}
	}
	return outboundMessage[any]{Type: "session", Payload: view}
}
