// cmd/ops-gateway/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/bootstrap"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/logger"
	"github.com/Cory7717/ReadySetFlyWeb-sub000/internal/pkg/mq"
)

const (
	listenAddr      = ":8088"
	consumerGroupID = "ops-gateway-consumer-group"
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = 54 * time.Second
)

var (
	nodeID   = "ops-gateway-" + uuid.New().String()[:8]
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool { // 内部运维面板, 允许所有跨域
			return true
		},
	}
)

// Hub 维护所有活跃的运维面板连接, 把支付事件广播给每一个面板
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	lock       sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
	}
}

func (h *Hub) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case client := <-h.register:
			h.lock.Lock()
			h.clients[client] = true
			h.lock.Unlock()
			log.Printf("Dashboard client connected to node %s", nodeID)
		case client := <-h.unregister:
			h.lock.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.lock.Unlock()
			log.Printf("Dashboard client disconnected.")
		case message := <-h.broadcast:
			h.lock.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 写缓冲已满的慢客户端直接丢弃本条消息
				}
			}
			h.lock.RUnlock()
		}
	}
}

// Client 是一个WebSocket连接的代表
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// consumeEvents 消费支付事件流并广播给所有面板。
// 对账事件与普通落账事件走同一条流, 面板侧按 event_type 区分展示。
func consumeEvents(ctx context.Context, hub *Hub, brokers []string, topic string) error {
	reader := mq.NewKafkaReader(brokers, topic, consumerGroupID)
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Ctx(ctx).Error().Err(err).Msg("failed to read payment event")
			continue
		}
		hub.broadcast <- msg.Value
	}
}

func main() {
	bootstrap.Init()
	logger.Init("ops-gateway")
	cfg := bootstrap.GetCurrentConfig()

	hub := newHub()

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error { return hub.run(ctx) })
	g.Go(func() error {
		return consumeEvents(ctx, hub,
			strings.Split(cfg.Infra.Kafka.Brokers, ","),
			cfg.Infra.Kafka.PaymentEventsTopic)
	})
	g.Go(func() error {
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			serveWs(hub, w, r)
		})
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		log.Printf("Ops Gateway (%s) started on %s", nodeID, listenAddr)
		return http.ListenAndServe(listenAddr, mux)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("ops-gateway exited: ", err)
	}
}
