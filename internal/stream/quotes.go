package stream

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/suitent/sui-deepbook-swap/internal/apperror"
	"github.com/suitent/sui-deepbook-swap/internal/quote"
)

const defaultPushInterval = 2 * time.Second

// Quoter prices a pair on demand; the live engine satisfies this.
type Quoter interface {
	GetQuote(ctx context.Context, tokenIn, tokenOut, amountIn string) (*quote.Quote, error)
}

// clientMessage is what subscribers send. Type is one of subscribe_quote or
// unsubscribe_quote; subscribe carries the pair under data.
type clientMessage struct {
	Type string        `json:"type"`
	Data subscribeData `json:"data"`
}

type subscribeData struct {
	TokenIn  string `json:"tokenIn"`
	TokenOut string `json:"tokenOut"`
	AmountIn string `json:"amountIn"`
}

// serverMessage is the push envelope: quote_update carries the quote under
// data, quote_error carries a client-safe error string plus its machine code.
// Every message carries an epoch-millisecond timestamp.
type serverMessage struct {
	Type      string       `json:"type"`
	Data      *quote.Quote `json:"data,omitempty"`
	Error     string       `json:"error,omitempty"`
	Code      string       `json:"code,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

type subscription struct {
	tokenIn  string
	tokenOut string
	amountIn string
}

// QuoteStream pushes live quotes to WebSocket subscribers. Each connection
// holds at most one subscription; resubscribing replaces it.
type QuoteStream struct {
	quotes   Quoter
	interval time.Duration
	logger   *logrus.Logger
}

// QuoteStreamConfig holds construction options; zero values get defaults.
type QuoteStreamConfig struct {
	Quotes   Quoter
	Interval time.Duration
	Logger   *logrus.Logger
}

// NewQuoteStream creates the quote push stream.
func NewQuoteStream(cfg QuoteStreamConfig) *QuoteStream {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultPushInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &QuoteStream{quotes: cfg.Quotes, interval: cfg.Interval, logger: cfg.Logger}
}

// session is one connection's state. The mutex serializes writes; gorilla
// connections allow a single concurrent writer.
type session struct {
	conn *websocket.Conn

	mu     sync.Mutex
	sub    *subscription
	closed bool
}

func (s *session) setSubscription(sub *subscription) {
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
}

func (s *session) subscription() (subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub == nil {
		return subscription{}, false
	}
	return *s.sub, true
}

// write sends one message unless the session is already closed. A failed
// write marks the session closed so in-flight pushes stop.
func (s *session) write(msg serverMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return websocket.ErrCloseSent
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		s.closed = true
		return err
	}
	return nil
}

func (s *session) markClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Serve runs one connection until the peer disconnects. It owns the ticker
// that re-quotes the active subscription.
func (qs *QuoteStream) Serve(ctx context.Context, conn *websocket.Conn) {
	sess := &session{conn: conn}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer conn.Close()

	go qs.readLoop(ctx, cancel, sess)

	ticker := time.NewTicker(qs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sess.markClosed()
			return
		case <-ticker.C:
			sub, ok := sess.subscription()
			if !ok {
				continue
			}
			qs.push(ctx, sess, sub)
		}
	}
}

// readLoop consumes client messages. An immediate quote is pushed on every
// subscribe so the client never waits a full tick for the first price.
func (qs *QuoteStream) readLoop(ctx context.Context, cancel context.CancelFunc, sess *session) {
	defer cancel()
	for {
		var msg clientMessage
		if err := sess.conn.ReadJSON(&msg); err != nil {
			sess.markClosed()
			return
		}

		switch msg.Type {
		case "subscribe_quote":
			sub := &subscription{tokenIn: msg.Data.TokenIn, tokenOut: msg.Data.TokenOut, amountIn: msg.Data.AmountIn}
			sess.setSubscription(sub)
			qs.push(ctx, sess, *sub)
		case "unsubscribe_quote":
			sess.setSubscription(nil)
			if err := sess.write(serverMessage{Type: "unsubscribed", Timestamp: nowMillis()}); err != nil {
				return
			}
		default:
			err := sess.write(serverMessage{
				Type:      "quote_error",
				Error:     "unknown message type",
				Code:      string(apperror.CodeInvalidRequest),
				Timestamp: nowMillis(),
			})
			if err != nil {
				return
			}
		}
	}
}

// push quotes the subscription and writes the result. Quote failures are
// pushed as quote_error messages; the subscription stays live so transient
// upstream errors self-heal on the next tick.
func (qs *QuoteStream) push(ctx context.Context, sess *session, sub subscription) {
	q, err := qs.quotes.GetQuote(ctx, sub.tokenIn, sub.tokenOut, sub.amountIn)
	if err != nil {
		writeErr := sess.write(serverMessage{
			Type:      "quote_error",
			Error:     apperror.MessageOf(err),
			Code:      string(apperror.CodeOf(err)),
			Timestamp: nowMillis(),
		})
		if writeErr != nil {
			qs.logger.WithError(writeErr).Debug("quote stream write failed")
		}
		return
	}
	if err := sess.write(serverMessage{Type: "quote_update", Data: q, Timestamp: nowMillis()}); err != nil {
		qs.logger.WithError(err).Debug("quote stream write failed")
	}
}
