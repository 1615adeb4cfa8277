// Package websocket 实现样本与告警的实时推送
package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/han-fei/appmon/internal/collector"
	"github.com/han-fei/appmon/internal/config"
	"github.com/han-fei/appmon/internal/models"
)

// Message 推送消息
type Message struct {
	Type      string      `json:"type"` // sample 或 alert
	MonitorID string      `json:"monitor_id"`
	Data      interface{} `json:"data"`
}

// Client WebSocket客户端
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub WebSocket连接中心，维护客户端集合并向全部客户端广播
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	upgrader   websocket.Upgrader
	bufferSize int
	mu         sync.RWMutex
}

// NewHub 创建连接中心
func NewHub(cfg *config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, cfg.BufferSize),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		bufferSize: cfg.BufferSize,
	}
}

// Run 运行连接中心事件循环
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("WebSocket客户端已连接，当前连接数: %d", h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("WebSocket客户端已断开，当前连接数: %d", h.ClientCount())

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 发送队列已满的客户端被放弃
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket 升级HTTP连接并注册客户端
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket升级失败: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.bufferSize),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastSample 广播样本
func (h *Hub) BroadcastSample(monitorID string, sample models.Sample) {
	h.broadcastMessage(Message{Type: "sample", MonitorID: monitorID, Data: sample})
}

// BroadcastAlert 广播告警事件
func (h *Hub) BroadcastAlert(monitorID string, event models.AlertEvent) {
	h.broadcastMessage(Message{Type: "alert", MonitorID: monitorID, Data: event})
}

// SubscriberFor 返回绑定到指定监控器的样本订阅回调
func (h *Hub) SubscriberFor(monitorID string) collector.Subscriber {
	return func(s models.Sample) {
		h.BroadcastSample(monitorID, s)
	}
}

// broadcastMessage 序列化并投递到广播队列，队列满时丢弃
func (h *Hub) broadcastMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("序列化WebSocket消息失败: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}

// readPump 读取并丢弃客户端消息，连接关闭时注销
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket读取失败: %v", err)
			}
			return
		}
	}
}

// writePump 将发送队列中的消息写入连接
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
