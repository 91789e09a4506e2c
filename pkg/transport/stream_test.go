package transport

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/raywall/dispatch-console/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamNotifications(t *testing.T) {
	h := newHarness(t, nil, nil, RouterOptions{})
	srv := httptest.NewServer(h.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/notifications/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// A assinatura acontece depois do upgrade; publica até o primeiro frame chegar.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				h.center.Message(notify.TypeSuccess, "getBeer", "Dispatch properties have been updated")
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var n notify.Notification
	require.NoError(t, conn.ReadJSON(&n))

	assert.Equal(t, notify.TypeSuccess, n.Type)
	assert.Equal(t, "getBeer", n.Header)
	assert.NotEmpty(t, n.ID)
}
