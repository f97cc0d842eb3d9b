package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suitent/sui-deepbook-swap/internal/apperror"
	"github.com/suitent/sui-deepbook-swap/internal/quote"
)

type fakeQuoter struct {
	calls atomic.Int64
	err   error
}

func (f *fakeQuoter) GetQuote(_ context.Context, tokenIn, tokenOut, amountIn string) (*quote.Quote, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &quote.Quote{
		TokenIn:            tokenIn,
		TokenOut:           tokenOut,
		AmountIn:           amountIn,
		EstimatedAmountOut: "1.4",
	}, nil
}

func dialStream(t *testing.T, qs *QuoteStream) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		qs.Serve(r.Context(), conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func subscribeMessage(tokenIn, tokenOut, amountIn string) clientMessage {
	return clientMessage{
		Type: "subscribe_quote",
		Data: subscribeData{TokenIn: tokenIn, TokenOut: tokenOut, AmountIn: amountIn},
	}
}

func TestQuoteStream_SubscribePushesImmediately(t *testing.T) {
	quoter := &fakeQuoter{}
	// Long interval so only the immediate push can arrive in time.
	qs := NewQuoteStream(QuoteStreamConfig{Quotes: quoter, Interval: time.Minute})
	conn := dialStream(t, qs)

	require.NoError(t, conn.WriteJSON(subscribeMessage("SUI", "DEEP", "0.2")))

	var msg serverMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "quote_update", msg.Type)
	require.NotNil(t, msg.Data)
	assert.Equal(t, "SUI", msg.Data.TokenIn)
	assert.Equal(t, "1.4", msg.Data.EstimatedAmountOut)
	assert.Greater(t, msg.Timestamp, int64(0))
}

func TestQuoteStream_TickerRequotes(t *testing.T) {
	quoter := &fakeQuoter{}
	qs := NewQuoteStream(QuoteStreamConfig{Quotes: quoter, Interval: 20 * time.Millisecond})
	conn := dialStream(t, qs)

	require.NoError(t, conn.WriteJSON(subscribeMessage("SUI", "DEEP", "0.2")))

	for i := 0; i < 3; i++ {
		var msg serverMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "quote_update", msg.Type)
		require.NotNil(t, msg.Data)
	}
	assert.GreaterOrEqual(t, quoter.calls.Load(), int64(3))
}

func TestQuoteStream_Unsubscribe(t *testing.T) {
	quoter := &fakeQuoter{}
	qs := NewQuoteStream(QuoteStreamConfig{Quotes: quoter, Interval: 20 * time.Millisecond})
	conn := dialStream(t, qs)

	require.NoError(t, conn.WriteJSON(subscribeMessage("SUI", "DEEP", "0.2")))
	var msg serverMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "quote_update", msg.Type)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "unsubscribe_quote"}))
	deadline := time.Now().Add(time.Second)
	for {
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "unsubscribed" {
			break
		}
		require.True(t, time.Now().Before(deadline), "never saw unsubscribe confirmation")
	}
	assert.Greater(t, msg.Timestamp, int64(0))

	// No further quotes once unsubscribed.
	before := quoter.calls.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, quoter.calls.Load())
}

func TestQuoteStream_QuoteErrorKeepsSubscription(t *testing.T) {
	quoter := &fakeQuoter{err: apperror.New(apperror.CodeNoLiquidity, "no liquidity in pool DEEP_SUI")}
	qs := NewQuoteStream(QuoteStreamConfig{Quotes: quoter, Interval: 20 * time.Millisecond})
	conn := dialStream(t, qs)

	require.NoError(t, conn.WriteJSON(subscribeMessage("SUI", "DEEP", "0.2")))

	for i := 0; i < 2; i++ {
		var msg serverMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "quote_error", msg.Type)
		assert.Equal(t, "no liquidity in pool DEEP_SUI", msg.Error)
		assert.Equal(t, string(apperror.CodeNoLiquidity), msg.Code)
		assert.Greater(t, msg.Timestamp, int64(0))
	}
}

func TestQuoteStream_UnknownMessageType(t *testing.T) {
	qs := NewQuoteStream(QuoteStreamConfig{Quotes: &fakeQuoter{}, Interval: time.Minute})
	conn := dialStream(t, qs)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "ping"}))
	var msg serverMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "quote_error", msg.Type)
	assert.Equal(t, "unknown message type", msg.Error)
	assert.Equal(t, string(apperror.CodeInvalidRequest), msg.Code)
}
