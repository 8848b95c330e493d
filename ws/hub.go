package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"go-city/dto"
	"go-city/entities"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	snapshotWait   = 5 * time.Second
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SnapshotFunc 返回当前游戏状态，新连接建立时使用
type SnapshotFunc func(ctx context.Context) (entities.GameState, error)

// client 一个订阅状态推送的连接
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub 管理所有订阅连接，把每次状态变更广播出去
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int64
	snapshot   SnapshotFunc
	log        *zap.Logger
}

func NewHub(snapshot SnapshotFunc, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		snapshot:   snapshot,
		log:        log,
	}
}

// Run 处理注册、注销与广播，ctx 结束时关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
			// 先登记再取快照：之后的广播都排在快照之后，最后收到的一定是最新状态
			if err := h.sendSnapshot(ctx, c); err != nil {
				h.log.Warn("获取状态快照失败，关闭连接", zap.String("client", c.id), zap.Error(err))
				h.drop(c)
				continue
			}
			h.log.Info("状态订阅已连接", zap.String("client", c.id), zap.Int64("clients", h.count.Load()))
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.log.Info("状态订阅已断开", zap.String("client", c.id), zap.Int64("clients", h.count.Load()))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// 发送队列已满，移除慢连接
					h.log.Warn("推送失败，移除连接", zap.String("client", c.id))
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) sendSnapshot(ctx context.Context, c *client) error {
	snapCtx, cancel := context.WithTimeout(ctx, snapshotWait)
	defer cancel()
	state, err := h.snapshot(snapCtx)
	if err != nil {
		return err
	}
	msg, err := buildMessage(state)
	if err != nil {
		return err
	}
	// 新连接的发送队列为空，不会阻塞
	c.send <- msg
	return nil
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
}

// ClientCount 当前订阅连接数
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Broadcast 实现 service.StateListener，不阻塞调用方
func (h *Hub) Broadcast(state entities.GameState) {
	msg, err := buildMessage(state)
	if err != nil {
		h.log.Error("状态消息序列化失败", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.log.Warn("广播队列已满，丢弃本次状态推送")
	}
}

func buildMessage(state entities.GameState) ([]byte, error) {
	return json.Marshal(dto.FeedMessage{Type: dto.MessageTypeState, Payload: state})
}

// HandleWebSocket WebSocket 主入口：先推送当前状态，之后推送每次变更
func (h *Hub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}

	cl := &client{id: uuid.New().String(), conn: conn, send: make(chan []byte, sendBufferSize)}
	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writer(cl)
	h.reader(cl)
}

// reader 只用于发现连接断开，客户端发来的消息直接丢弃
func (h *Hub) reader(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writer(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("写入消息失败", zap.String("client", c.id), zap.Error(err))
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
