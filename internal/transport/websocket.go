// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "tuner/internal/log"
)

// WebSocketTransport broadcasts readings as JSON to all connected
// clients. Clients connect to ws://host:port/readings; each queued
// reading is written to every client, and clients that fall behind are
// disconnected rather than allowed to stall the broadcast loop.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	server    *http.Server
	done      chan struct{}
}

// NewWebSocketTransport starts an HTTP server on the given port (e.g.
// "8080") serving the /readings WebSocket endpoint.
func NewWebSocketTransport(port string) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: ":" + port,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local tool, any origin may subscribe
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 64),
		done:      make(chan struct{}),
	}

	wst.start()
	return wst
}

func (wst *WebSocketTransport) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/readings", wst.handleWebSocket)

	wst.server = &http.Server{
		Addr:    wst.addr,
		Handler: mux,
	}

	go func() {
		applog.Infof("websocket: serving readings on %s/readings", wst.addr)
		if err := wst.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("websocket: server error: %v", err)
		}
	}()

	go wst.handleBroadcasts()
}

func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("websocket: upgrade failed: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("websocket: client connected, total: %d", total)

	// Readings flow one way; the read loop only detects disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.clientsMu.Lock()
				delete(wst.clients, conn)
				total := len(wst.clients)
				wst.clientsMu.Unlock()
				conn.Close()
				applog.Infof("websocket: client disconnected, total: %d", total)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case data := <-wst.broadcast:
			wst.clientsMu.Lock()
			for client := range wst.clients {
				if err := client.WriteJSON(data); err != nil {
					applog.Debugf("websocket: dropping slow client: %v", err)
					client.Close()
					delete(wst.clients, client)
				}
			}
			wst.clientsMu.Unlock()
		case <-wst.done:
			return
		}
	}
}

// Send queues a reading for broadcast. When the queue is full the
// reading is dropped; the next one supersedes it anyway.
func (wst *WebSocketTransport) Send(data any) error {
	select {
	case wst.broadcast <- data:
	default:
	}
	return nil
}

// Close disconnects all clients and shuts down the HTTP server.
func (wst *WebSocketTransport) Close() error {
	close(wst.done)

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	if wst.server != nil {
		return wst.server.Close()
	}
	return nil
}

var _ Transport = (*WebSocketTransport)(nil)
