package listview

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastHookFiltersByList(t *testing.T) {
	hook := NewBroadcastHook()
	all, cancelAll := hook.Subscribe()
	defer cancelAll()
	chat, cancelChat := hook.SubscribeList(ListChat)
	defer cancelChat()
	assert.Equal(t, 2, hook.Subscribers())

	require.NoError(t, hook.ListUpdated(context.Background(), ListEvent{ListCode: ListInventory, Reason: "bulk"}))

	select {
	case evt := <-all:
		assert.Equal(t, ListInventory, evt.ListCode)
	case <-time.After(time.Second):
		t.Fatal("expected event on unfiltered subscription")
	}
	select {
	case evt := <-chat:
		t.Fatalf("unexpected event for chat subscriber: %+v", evt)
	default:
	}
}

func TestBroadcastHookCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	events, cancel := hook.Subscribe()
	cancel()
	cancel()
	_, ok := <-events
	assert.False(t, ok)
	assert.Equal(t, 0, hook.Subscribers())
}

func TestBroadcastHookDropsForSlowSubscribers(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	defer cancel()
	for i := 0; i < 20; i++ {
		require.NoError(t, hook.ListUpdated(context.Background(), ListEvent{ListCode: ListUsers}))
	}
}

func TestBroadcastHookWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	srv := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?list=" + ListTickets
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hook.ListUpdated(context.Background(), ListEvent{ListCode: ListInventory, Reason: "bulk"}))
	require.NoError(t, hook.ListUpdated(context.Background(), ListEvent{ListCode: ListTickets, Reason: "record_updated", RecordIDs: []string{"tkt-1"}}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt ListEvent
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, ListTickets, evt.ListCode)
	assert.Equal(t, []string{"tkt-1"}, evt.RecordIDs)
}

func TestBroadcastHookSSE(t *testing.T) {
	hook := NewBroadcastHook()
	srv := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hook.ListUpdated(context.Background(), ListEvent{ListCode: ListChat, Reason: "bulk"}))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: bulk\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"list_code":"admin.list.chat"`)
}

type stubNotificationsClient struct {
	channel string
	event   ListEvent
	err     error
}

func (c *stubNotificationsClient) PublishListEvent(_ context.Context, channel string, event ListEvent) error {
	c.channel = channel
	c.event = event
	return c.err
}

func TestNotificationsHookAndMultiNotifier(t *testing.T) {
	client := &stubNotificationsClient{}
	failing := &stubNotificationsClient{err: errors.New("queue full")}
	multi := MultiNotifier{
		&NotificationsHook{Client: client},
		nil,
		&NotificationsHook{Client: failing, Channel: "ops"},
		(*NotificationsHook)(nil),
	}

	err := multi.ListUpdated(context.Background(), ListEvent{ListCode: ListUsers, Reason: "bulk"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue full")
	assert.Equal(t, "listview", client.channel)
	assert.Equal(t, ListUsers, client.event.ListCode)
	assert.Equal(t, "ops", failing.channel)
}
