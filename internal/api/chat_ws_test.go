package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/portfolio-ai/internal/insights"
	"github.com/ziadkadry99/portfolio-ai/internal/llm/llmtest"
	"github.com/ziadkadry99/portfolio-ai/internal/portfolio"
	"github.com/ziadkadry99/portfolio-ai/internal/portfolio/portfoliotest"
	"github.com/ziadkadry99/portfolio-ai/internal/result"
)

func dialChat(t *testing.T, provider *llmtest.MockProvider) *websocket.Conn {
	t.Helper()
	store, _ := portfoliotest.NewStore(t)
	engine, err := insights.NewEngine(provider, portfolio.NewAssembler(store, portfolio.Limits{}))
	require.NoError(t, err)

	r := chi.NewRouter()
	RegisterChatSocket(r, engine, nil)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestChatSocketAnswers(t *testing.T) {
	conn := dialChat(t, llmtest.NewMockProvider("Tudo dentro do orçamento."))

	require.NoError(t, conn.WriteJSON(chatMessage{Type: "ask", ID: "1", Question: "Como estamos?"}))
	var reply chatReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "response", reply.Type)
	assert.Equal(t, "1", reply.ID)

	var answer result.ChatAnswer
	require.NoError(t, json.Unmarshal(reply.Data, &answer))
	assert.Equal(t, "Tudo dentro do orçamento.", answer.Response)
	assert.Equal(t, "Como estamos?", answer.Question)
}

func TestChatSocketValidation(t *testing.T) {
	provider := llmtest.NewMockProvider("unused")
	conn := dialChat(t, provider)

	require.NoError(t, conn.WriteJSON(chatMessage{Type: "ask", ID: "2", Question: " "}))
	var reply chatReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply.Type)
	require.NotNil(t, reply.Error)
	assert.Equal(t, "question is required", reply.Error.Message)
	assert.Equal(t, 0, provider.CallCount())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply.Type)

	require.NoError(t, conn.WriteJSON(chatMessage{Type: "ping", ID: "3"}))
	reply = chatReply{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "pong", reply.Type)
}

func TestOriginChecker(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws/chat", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}
	assert.True(t, originChecker(nil)(req("http://evil.example")))
	assert.True(t, originChecker([]string{"*"})(req("http://evil.example")))

	check := originChecker([]string{"https://app.example.com/"})
	assert.True(t, check(req("https://app.example.com")))
	assert.True(t, check(req("")))
	assert.False(t, check(req("http://evil.example")))
}
