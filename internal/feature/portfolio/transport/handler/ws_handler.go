package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

// writeWait はWebSocketフレーム書き込みのタイムアウトです。
const writeWait = 10 * time.Second

// StateNotifier はポートフォリオ状態変更の購読を抽象化します。
type StateNotifier interface {
	// Subscribe は購読者を登録し、購読解除用の関数を返します。
	Subscribe(fn func(entity.PortfolioState)) func()
}

// WSHandler はポートフォリオ状態をWebSocketでプッシュ配信します。
// 接続直後に現在の状態を1フレーム送り、以降はデバウンス済みの変更通知を
// そのままJSONフレームとして配信します。
type WSHandler struct {
	uc       PortfolioUsecase
	notifier StateNotifier
	upgrader websocket.Upgrader
}

// NewWSHandler は指定された依存でWSHandlerの新しいインスタンスを生成します。
func NewWSHandler(uc PortfolioUsecase, notifier StateNotifier) *WSHandler {
	return &WSHandler{
		uc:       uc,
		notifier: notifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Stream はWebSocket接続を受け付け、切断されるまで状態フレームを配信します。
//
// エンドポイント例:
// GET /portfolio/ws
func (h *WSHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade失敗時はgorilla側がHTTPエラーを書き込み済み
		slog.Warn("websocket upgrade failed", "error", err, "remote_addr", c.ClientIP())
		return
	}
	defer conn.Close()

	states := make(chan entity.PortfolioState, 8)
	states <- h.uc.State()

	unsubscribe := h.notifier.Subscribe(func(state entity.PortfolioState) {
		// 配信ゴルーチンを遅いクライアントで塞がないよう、
		// 滞留した古い状態を捨てて常に最新だけを残します。
		for {
			select {
			case states <- state:
				return
			default:
				select {
				case <-states:
				default:
				}
			}
		}
	})
	defer unsubscribe()

	// クライアントからの切断検知用の読み取りポンプ
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case state := <-states:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(toStateResponse(state)); err != nil {
				slog.Debug("websocket write failed", "error", err, "remote_addr", c.ClientIP())
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
