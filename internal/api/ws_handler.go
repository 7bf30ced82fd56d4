package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/api/middleware"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/chat"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/llm"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/metrics"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// WsHandler 为每个 WebSocket 连接维护一个对话会话。
type WsHandler struct {
	oracle         llm.Streamer
	sessionID      string
	window         int
	verbose        bool
	upgrader       websocket.Upgrader
	allowedOrigins []string
}

// NewWsHandler 构造 WebSocket 处理器。
func NewWsHandler(oracle llm.Streamer, sessionID string, window int, allowedOrigins []string, verbose bool) *WsHandler {
	h := &WsHandler{
		oracle:         oracle,
		sessionID:      sessionID,
		window:         window,
		verbose:        verbose,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if len(h.allowedOrigins) == 0 {
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			}
			for _, allowed := range h.allowedOrigins {
				if allowed == "*" || origin == allowed {
					return true
				}
			}
			return false
		},
	}
	return h
}

// HandleConnection 升级连接后按到达顺序逐条处理消息，回复按词推送。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	log := middleware.LoggerFromContext(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	done := metrics.ChatSessionOpened()
	defer done()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	log = log.With(slog.String("session_id", h.sessionID))
	log.Info("chat session opened")

	go keepAlive(ctx, conn, cancel)

	session := chat.NewSession(h.sessionID, h.oracle, h.window)
	send := func(word string) error {
		return conn.WriteMessage(websocket.TextMessage, []byte(word))
	}

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("chat connection dropped", slog.Any("error", err))
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}

		if err := session.Reply(ctx, string(payload), send); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Warn("chat reply failed", slog.Any("error", err))
			if werr := send("Error: " + chatErrorMessage(err, h.verbose)); werr != nil {
				break
			}
		}
	}

	log.Info("chat session closed", slog.Int("messages", len(session.Transcript())))
}

func chatErrorMessage(err error, verbose bool) string {
	if verbose {
		return err.Error()
	}
	return "generation service failed"
}

// keepAlive 定期发送 ping，写失败时关闭连接以结束读循环。
func keepAlive(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				cancel()
				_ = conn.Close()
				return
			}
		}
	}
}
