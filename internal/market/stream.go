package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Public ticker stream endpoints, one per environment and category
const (
	StreamURLSpot        = "wss://stream.bybit.com/v5/public/spot"
	StreamURLLinear      = "wss://stream.bybit.com/v5/public/linear"
	StreamURLSpotTestnet = "wss://stream-testnet.bybit.com/v5/public/spot"
)

// StreamURL picks the public stream endpoint for a category and
// environment. Only spot has a testnet stream worth using.
func StreamURL(category string, testnet bool) string {
	if category == "linear" {
		return StreamURLLinear
	}
	if testnet {
		return StreamURLSpotTestnet
	}
	return StreamURLSpot
}

// TickerStream maintains a websocket subscription to public tickers and
// keeps the latest traded price per symbol. It reconnects on read
// failure and resubscribes to the full symbol set.
type TickerStream struct {
	url     string
	symbols []string

	mu     sync.RWMutex
	prices map[string]float64
	conn   *websocket.Conn

	reconnectChan chan struct{}
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewTickerStream creates a stream for the given symbols. Call Start to
// connect.
func NewTickerStream(url string, symbols []string) *TickerStream {
	ctx, cancel := context.WithCancel(context.Background())
	return &TickerStream{
		url:           url,
		symbols:       symbols,
		prices:        make(map[string]float64),
		reconnectChan: make(chan struct{}, 1),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start connects, subscribes and begins the read and keepalive loops
func (s *TickerStream) Start() error {
	if err := s.connect(); err != nil {
		return err
	}
	go s.handleReconnection()
	go s.keepalive()
	return nil
}

// Stop closes the stream and stops all background loops
func (s *TickerStream) Stop() {
	s.cancel()
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
}

// LastPrice returns the latest streamed price for a symbol. ok is false
// until the first ticker message for that symbol arrives.
func (s *TickerStream) LastPrice(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	price, ok := s.prices[symbol]
	return price, ok
}

func (s *TickerStream) connect() error {
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to ticker stream: %w", err)
	}

	args := make([]string, len(s.symbols))
	for i, symbol := range s.symbols {
		args[i] = "tickers." + symbol
	}
	subscribe := map[string]interface{}{
		"op":   "subscribe",
		"args": args,
	}
	if err := conn.WriteJSON(subscribe); err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.readMessages(conn)
	return nil
}

func (s *TickerStream) readMessages(conn *websocket.Conn) {
	defer conn.Close()

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
			_, message, err := conn.ReadMessage()
			if err != nil {
				s.triggerReconnect()
				return
			}
			s.handleMessage(message)
		}
	}
}

func (s *TickerStream) handleMessage(message []byte) {
	var msg struct {
		Topic string `json:"topic"`
		Data  struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"data"`
	}
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}
	if msg.Data.Symbol == "" || msg.Data.LastPrice == "" {
		return
	}

	price, err := strconv.ParseFloat(msg.Data.LastPrice, 64)
	if err != nil || price <= 0 {
		return
	}

	s.mu.Lock()
	s.prices[msg.Data.Symbol] = price
	s.mu.Unlock()
}

func (s *TickerStream) triggerReconnect() {
	select {
	case s.reconnectChan <- struct{}{}:
	default:
	}
}

func (s *TickerStream) handleReconnection() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.reconnectChan:
			time.Sleep(5 * time.Second)
			if err := s.connect(); err != nil {
				s.triggerReconnect()
			}
		}
	}
}

// keepalive sends the Bybit application-level ping every 20s
func (s *TickerStream) keepalive() {
	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			conn := s.conn
			s.mu.RUnlock()
			if conn == nil {
				continue
			}
			conn.WriteJSON(map[string]string{"op": "ping"})
		}
	}
}
