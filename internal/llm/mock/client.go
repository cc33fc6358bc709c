package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/newsquery/internal/llm"
)

type Client struct {
	Response string
	Error    error
	Delay    time.Duration

	CallCount   int
	LastRequest llm.CompletionRequest
	AllCalls    []llm.CompletionRequest

	mu sync.Mutex
}

func New() *Client {
	return &Client{
		Response: "title:(\"news\")\n{\"published_at.start\": \"NOW-7DAYS\", \"published_at.end\": \"NOW\"}",
	}
}

func (c *Client) WithResponse(response string) *Client {
	c.Response = response
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastRequest = req
	c.AllCalls = append(c.AllCalls, req)
	delay, err, response := c.Delay, c.Error, c.Response
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return "", err
	}

	return response, nil
}

// LastPrompt returns the content of the last message of the last call.
func (c *Client) LastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.LastRequest.Messages) == 0 {
		return ""
	}
	return c.LastRequest.Messages[len(c.LastRequest.Messages)-1].Content
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastRequest = llm.CompletionRequest{}
	c.AllCalls = nil
}

var _ llm.Client = (*Client)(nil)
