package device

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFakeDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var req remoteRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			resp := remoteResponse{ID: req.ID, OK: true}
			switch req.Op {
			case "info":
				resp.Info = &Info{ScreenWidth: 1280, ScreenHeight: 800}
			case "capabilities":
				resp.Capabilities = []string{"click", "type_text", "take_screenshots"}
			case "perform":
				if req.Action == "click" {
					resp.Output = "clicked"
				} else {
					resp.OK = false
					resp.Error = "unsupported action"
				}
			case "screenshot":
				resp.Screenshot = &Screenshot{MediaType: "image/png", Data: "aGVsbG8="}
			default:
				resp.OK = false
				resp.Error = "unknown op"
			}
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func dialFakeDaemon(t *testing.T) *Remote {
	t.Helper()
	server := startFakeDaemon(t)
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	remote, err := Dial(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { remote.Close() })
	return remote
}

func TestRemoteInfo(t *testing.T) {
	remote := dialFakeDaemon(t)

	info, err := remote.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1280, info.ScreenWidth)
	assert.Equal(t, 800, info.ScreenHeight)
}

func TestRemoteCapabilities(t *testing.T) {
	remote := dialFakeDaemon(t)

	caps, err := remote.Capabilities(context.Background())
	require.NoError(t, err)
	assert.Contains(t, caps, "click")
	assert.Contains(t, caps, "take_screenshots")
}

func TestRemotePerform(t *testing.T) {
	remote := dialFakeDaemon(t)

	output, err := remote.Perform(context.Background(), "click", map[string]interface{}{
		"x": 10, "y": 20, "button": "left",
	})
	require.NoError(t, err)
	assert.Equal(t, "clicked", output)
}

func TestRemotePerformError(t *testing.T) {
	remote := dialFakeDaemon(t)

	_, err := remote.Perform(context.Background(), "scroll", map[string]interface{}{"clicks": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported action")
}

func TestRemoteScreenshot(t *testing.T) {
	remote := dialFakeDaemon(t)

	shot, err := remote.Screenshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "image/png", shot.MediaType)
	assert.NotEmpty(t, shot.Data)
}
