package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/braidcore/braid/log"
)

// Client is a plain net/http implementation of Board (spec §6). The board's
// own HTTP surface and storage are an external collaborator (spec §1); this
// client only needs to agree with whatever concrete service is configured
// at BaseURL, matching the shape of the teacher's own RPC callers
// (web3/rpc/chainlist: http.Client with a timeout, context-scoped requests,
// explicit status checks, JSON bodies).
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxRetries int
	Backoff    time.Duration
}

// NewClient returns a Client with the teacher's usual defaults: a bounded
// per-request timeout and a handful of backoff retries for transport errors
// (spec §7: "Transport / I/O error: surfaces as a retry with backoff; never
// fatal").
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		MaxRetries: 3,
		Backoff:    200 * time.Millisecond,
	}
}

type wireEnvelope struct {
	ID      uint64 `json:"id"`
	Bytes   []byte `json:"bytes"`
	Version uint32 `json:"version"`
}

type wirePage struct {
	Messages  []wireEnvelope `json:"messages"`
	Truncated bool           `json:"truncated"`
}

func toWire(envs []Envelope) []wireEnvelope {
	out := make([]wireEnvelope, len(envs))
	for i, e := range envs {
		out[i] = wireEnvelope{ID: e.ID, Bytes: e.Bytes, Version: e.Version}
	}
	return out
}

func fromWire(p wirePage) Page {
	envs := make([]Envelope, len(p.Messages))
	for i, m := range p.Messages {
		envs[i] = Envelope{ID: m.ID, Bytes: m.Bytes, Version: m.Version}
	}
	return Page{Messages: envs, Truncated: p.Truncated}
}

// GetMessages implements Board.
func (c *Client) GetMessages(ctx context.Context, name string, lastID uint64) (Page, error) {
	path := fmt.Sprintf("/boards/%s/messages?after=%d", url.PathEscape(name), lastID)
	var wp wirePage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wp); err != nil {
		return Page{}, err
	}
	return fromWire(wp), nil
}

// PutMessages implements Board.
func (c *Client) PutMessages(ctx context.Context, name string, msgs []Envelope) error {
	path := fmt.Sprintf("/boards/%s/messages", url.PathEscape(name))
	return c.doJSON(ctx, http.MethodPost, path, toWire(msgs), nil)
}

// GetBoards implements Board.
func (c *Client) GetBoards(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.doJSON(ctx, http.MethodGet, "/boards", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

type multiGetRequest struct {
	LastID map[string]uint64 `json:"last_id"`
}

// GetMessagesMulti implements Board.
func (c *Client) GetMessagesMulti(ctx context.Context, last map[string]uint64) (map[string]Page, error) {
	var wire map[string]wirePage
	if err := c.doJSON(ctx, http.MethodPost, "/boards/messages/get-multi", multiGetRequest{LastID: last}, &wire); err != nil {
		return nil, err
	}
	out := make(map[string]Page, len(wire))
	for name, p := range wire {
		out[name] = fromWire(p)
	}
	return out, nil
}

// PutMessagesMulti implements Board.
func (c *Client) PutMessagesMulti(ctx context.Context, outgoing map[string][]Envelope) error {
	wire := make(map[string][]wireEnvelope, len(outgoing))
	for name, envs := range outgoing {
		wire[name] = toWire(envs)
	}
	return c.doJSON(ctx, http.MethodPost, "/boards/messages/put-multi", wire, nil)
}

// doJSON issues one JSON request against c.BaseURL+path, retrying transport
// errors and 5xx responses with linear backoff (spec §7). A 4xx response is
// not retried: it reflects a malformed request, not a transient failure.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("board: encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.Backoff * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("board: build request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = err
			log.Debugw("board: request failed, retrying", "method", method, "path", path, "attempt", attempt, "err", err.Error())
			continue
		}

		func() {
			defer resp.Body.Close()
			if resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("board: server error: %s", resp.Status)
				return
			}
			if resp.StatusCode >= 400 {
				lastErr = fmt.Errorf("board: request rejected: %s", resp.Status)
				return
			}
			if out != nil {
				lastErr = json.NewDecoder(resp.Body).Decode(out)
				return
			}
			lastErr = nil
		}()

		if lastErr == nil {
			return nil
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return lastErr
		}
	}
	return fmt.Errorf("board: %s %s failed after %d attempts: %w", method, path, c.MaxRetries+1, lastErr)
}
