package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
)

const lowPadding = "2c 2d 2h 2s 3c 3d 3h 3s 4c 4d 4h 4s"

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func advance(t *testing.T, clock *quartz.Mock, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	clock.Advance(d).MustWait(ctx)
}

// stackedShoe deals draws in the order written, followed by low padding
func stackedShoe(t *testing.T, draws string) game.SessionOption {
	t.Helper()
	pad := deck.MustParseCards(lowPadding)
	dealt := deck.MustParseCards(draws)

	cards := append([]deck.Card{}, pad...)
	for i := len(dealt) - 1; i >= 0; i-- {
		cards = append(cards, dealt[i])
	}
	shoe, err := deck.NewStackedShoe(1, randutil.New(1), cards)
	require.NoError(t, err)
	return game.WithShoe(shoe)
}

type expiryRecorder chan StateData

func (r expiryRecorder) record(state StateData) { r <- state }

func newTestTable(t *testing.T, clock quartz.Clock, opts ...game.SessionOption) (*Table, expiryRecorder) {
	t.Helper()
	cfg := config.Default()
	expired := make(expiryRecorder, 4)
	table, err := NewTable(randutil.New(7), clock, cfg.Game(), cfg.Table.Chips, cfg.Countdown(), testLogger(), expired.record, opts...)
	require.NoError(t, err)
	t.Cleanup(table.Close)
	return table, expired
}

// wsClient is a minimal JSON client for the /ws endpoint
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, ts *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(msgType MessageType, data interface{}) {
	c.t.Helper()
	msg, err := NewMessage(msgType, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *wsClient) read() *Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return &msg
}

func (c *wsClient) readState() StateData {
	c.t.Helper()
	msg := c.read()
	require.Equal(c.t, MessageTypeState, msg.Type, "payload: %s", msg.Data)
	var state StateData
	require.NoError(c.t, json.Unmarshal(msg.Data, &state))
	return state
}

func (c *wsClient) readError() ErrorData {
	c.t.Helper()
	msg := c.read()
	require.Equal(c.t, MessageTypeError, msg.Type, "payload: %s", msg.Data)
	var data ErrorData
	require.NoError(c.t, json.Unmarshal(msg.Data, &data))
	return data
}
