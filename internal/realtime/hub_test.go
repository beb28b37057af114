package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/stationscore/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "test-event",
			data:      "hello world",
			expected:  "event: test-event\ndata: hello world\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "stations",
			data:      "{\n\"a\": 1\n}",
			expected:  "event: stations\ndata: {\ndata: \"a\": 1\ndata: }\n\n",
		},
		{
			name:      "empty data",
			eventName: "stations-changed",
			data:      "",
			expected:  "event: stations-changed\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(formatSSEMessage(tt.eventName, tt.data)))
		})
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func receive(t *testing.T, c *Client) string {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "client channel closed")
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return ""
	}
}

func TestHubDeliversToAllClients(t *testing.T) {
	hub := startHub(t)
	a := NewClient("u1")
	b := NewClient("u2")
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.NotifyStationsChanged()

	assert.Equal(t, "event: stations-changed\ndata: \n\n", receive(t, a))
	assert.Equal(t, "event: stations-changed\ndata: \n\n", receive(t, b))
}

func TestHubUnregister(t *testing.T) {
	hub := startHub(t)
	c := NewClient("u1")
	require.True(t, hub.Register(c))
	hub.Unregister(c)

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHubSlowClientDoesNotBlockNotify(t *testing.T) {
	hub := startHub(t)
	slow := NewClient("slow")
	require.True(t, hub.Register(slow))

	done := make(chan struct{})
	go func() {
		for range sendBufferSize * 4 {
			hub.NotifyStationsChanged()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notify blocked on a slow client")
	}
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	hub := startHub(t)
	c := NewClient("u1")
	require.True(t, hub.Register(c))

	hub.Close()
	hub.Close()

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client not disconnected")
	}
	assert.False(t, hub.Register(NewClient("late")))
	hub.Unregister(c)
}

