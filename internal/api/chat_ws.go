package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
	"github.com/ziadkadry99/portfolio-ai/internal/insights"
	"github.com/ziadkadry99/portfolio-ai/internal/prompts"
)

// chatMessage is the incoming websocket message.
type chatMessage struct {
	Type     string `json:"type"` // "ask" or "ping"
	ID       string `json:"id,omitempty"`
	Question string `json:"question"`
}

// chatReply is the outgoing websocket message.
type chatReply struct {
	Type          string          `json:"type"` // "response", "error" or "pong"
	ID            string          `json:"id,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
	Error         *ErrorBody      `json:"error,omitempty"`
	InteractionID string          `json:"interaction_id,omitempty"`
}

// RegisterChatSocket mounts GET /ws/chat. allowedOrigins limits the
// browser origins that may connect; empty or "*" accepts any.
func RegisterChatSocket(r chi.Router, runner Runner, allowedOrigins []string) {
	upgrader := websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)}
	r.Get("/ws/chat", handleChatSocket(runner, upgrader))
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return len(set) == 0 || origin == "" || set[origin]
	}
}

func handleChatSocket(runner Runner, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := zerolog.Ctx(r.Context())
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade")
			return
		}
		defer conn.Close()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Msg("websocket read")
				}
				return
			}

			var msg chatMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				sendReply(conn, log, errorReply("", apperr.Validation("invalid message format")))
				continue
			}

			switch msg.Type {
			case "ping":
				sendReply(conn, log, chatReply{Type: "pong", ID: msg.ID})
			case "ask", "":
				resp, err := runner.Run(r.Context(), insights.Request{UseCase: prompts.Chat, Text: msg.Question})
				if err != nil {
					reply := errorReply(msg.ID, err)
					if resp != nil {
						reply.Data = resp.Data
					}
					sendReply(conn, log, reply)
					continue
				}
				sendReply(conn, log, chatReply{Type: "response", ID: msg.ID, Data: resp.Data, InteractionID: resp.InteractionID})
			default:
				sendReply(conn, log, errorReply(msg.ID, apperr.Validation("unknown message type: %s", msg.Type)))
			}
		}
	}
}

func errorReply(id string, err error) chatReply {
	return chatReply{
		Type:  "error",
		ID:    id,
		Error: &ErrorBody{Kind: apperr.KindOf(err), Message: apperr.PublicMessage(err)},
	}
}

// writeWait bounds each socket write. It also replaces the deadline the
// HTTP server set before the connection was hijacked.
const writeWait = 10 * time.Second

func sendReply(conn *websocket.Conn, log *zerolog.Logger, reply chatReply) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(reply); err != nil {
		log.Warn().Err(err).Msg("websocket write")
	}
}
