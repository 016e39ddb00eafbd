package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ospilot/ospilot/pkg/logger"
)

const remoteCallTimeout = 60 * time.Second

// remoteRequest is one frame sent to the device daemon.
type remoteRequest struct {
	ID     string                 `json:"id"`
	Op     string                 `json:"op"`
	Action string                 `json:"action,omitempty"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// remoteResponse is the daemon's reply, correlated by ID.
type remoteResponse struct {
	ID           string      `json:"id"`
	OK           bool        `json:"ok"`
	Error        string      `json:"error,omitempty"`
	Output       string      `json:"output,omitempty"`
	Screenshot   *Screenshot `json:"screenshot,omitempty"`
	Info         *Info       `json:"info,omitempty"`
	Capabilities []string    `json:"capabilities,omitempty"`
}

// Remote drives a desktop over a websocket connection to its device
// daemon. Calls are serialized: the daemon executes one action at a time
// and replies in order.
type Remote struct {
	url  string
	conn *websocket.Conn
	mu   sync.Mutex
}

// Dial connects to a device daemon at a ws:// or wss:// URL.
func Dial(ctx context.Context, url string) (*Remote, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial device %s: %w", url, err)
	}
	logger.InfoCF("device", "Connected to device daemon", map[string]interface{}{
		"url": url,
	})
	return &Remote{url: url, conn: conn}, nil
}

// Close shuts the connection down.
func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn.Close()
}

func (r *Remote) call(ctx context.Context, req remoteRequest) (*remoteResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req.ID = uuid.NewString()

	deadline := time.Now().Add(remoteCallTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := r.conn.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err := r.conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("send %s: %w", req.Op, err)
	}

	if err := r.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	for {
		var resp remoteResponse
		if err := r.conn.ReadJSON(&resp); err != nil {
			return nil, fmt.Errorf("read %s response: %w", req.Op, err)
		}
		if resp.ID != req.ID {
			// Stale reply from a timed-out call; skip it.
			logger.DebugCF("device", "Discarding stale response", map[string]interface{}{
				"got_id":  resp.ID,
				"want_id": req.ID,
			})
			continue
		}
		if !resp.OK {
			return nil, fmt.Errorf("device error on %s: %s", req.Op, resp.Error)
		}
		return &resp, nil
	}
}

func (r *Remote) Info(ctx context.Context) (*Info, error) {
	resp, err := r.call(ctx, remoteRequest{Op: "info"})
	if err != nil {
		return nil, err
	}
	if resp.Info == nil {
		return nil, fmt.Errorf("device returned no info")
	}
	return resp.Info, nil
}

func (r *Remote) Capabilities(ctx context.Context) ([]string, error) {
	resp, err := r.call(ctx, remoteRequest{Op: "capabilities"})
	if err != nil {
		return nil, err
	}
	return resp.Capabilities, nil
}

func (r *Remote) Perform(ctx context.Context, name string, params map[string]interface{}) (string, error) {
	resp, err := r.call(ctx, remoteRequest{Op: "perform", Action: name, Params: params})
	if err != nil {
		return "", err
	}
	return resp.Output, nil
}

func (r *Remote) Screenshot(ctx context.Context) (*Screenshot, error) {
	resp, err := r.call(ctx, remoteRequest{Op: "screenshot"})
	if err != nil {
		return nil, err
	}
	if resp.Screenshot == nil {
		return nil, fmt.Errorf("device returned no screenshot")
	}
	return resp.Screenshot, nil
}
