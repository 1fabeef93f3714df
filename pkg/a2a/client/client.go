// Package client implements the RPC Client and AgentCard Resolver,
// sections 4.2 and 4.3 of the spec: resty for unary calls and agent card
// discovery, tmaxmax/go-sse for streaming tasks/sendSubscribe and
// tasks/resubscribe responses.
package client

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/tmaxmax/go-sse"
	"resty.dev/v3"

	"github.com/micro/micro-a2a/pkg/a2a"
)

// Client talks to one A2A agent over HTTP: unary JSON-RPC calls via resty,
// streaming calls via SSE, and agent card discovery via a plain GET.
type Client struct {
	baseURL string
	rpcPath string
	http    *resty.Client
}

// New builds a Client against baseURL, the scheme+host+port an agent's
// endpoints are served from (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	o := Options{Path: "/", Timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		baseURL: baseURL,
		rpcPath: o.Path,
		http:    resty.New(),
	}
	if o.Timeout > 0 {
		c.http.SetTimeout(o.Timeout)
	}
	return c
}

// ResolveAgentCard fetches and decodes the agent card from
// baseURL/.well-known/agent.json, per section 4.2 of the spec.
func (c *Client) ResolveAgentCard(ctx context.Context) (*a2a.AgentCard, error) {
	cardURL, err := url.JoinPath(c.baseURL, ".well-known/agent.json")
	if err != nil {
		return nil, fmt.Errorf("a2a: resolving agent card: %w", err)
	}

	var card a2a.AgentCard
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&card).
		Get(cardURL)
	if err != nil {
		return nil, fmt.Errorf("a2a: resolving agent card: %w", err)
	}
	if res.IsError() {
		return nil, &a2a.A2AClientHTTPError{StatusCode: res.StatusCode(), Body: res.String()}
	}
	return &card, nil
}

// Call issues a single unary JSON-RPC call (tasks/get, tasks/send,
// tasks/cancel, tasks/pushNotification/set or tasks/pushNotification/get)
// and waits for its one response.
func (c *Client) Call(ctx context.Context, method a2a.Method, params a2a.Params) (a2a.JSONRPCResponse, error) {
	if err := a2a.ValidateMethodParams(method, params); err != nil {
		return a2a.JSONRPCResponse{}, a2a.ErrInvalidParams(err)
	}

	req := a2a.JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}

	var rpcRes a2a.JSONRPCResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&rpcRes).
		Post(c.baseURL + c.rpcPath)
	if err != nil {
		return a2a.JSONRPCResponse{}, fmt.Errorf("a2a: sending %s: %w", method, err)
	}
	if res.StatusCode() != http.StatusOK && res.StatusCode() != http.StatusBadRequest {
		return a2a.JSONRPCResponse{}, &a2a.A2AClientHTTPError{StatusCode: res.StatusCode(), Body: res.String()}
	}
	return rpcRes, nil
}

// Stream issues tasks/sendSubscribe or tasks/resubscribe and returns a lazy
// sequence of every JSONRPCResponse frame the server publishes, ending
// either when the stream closes (a Final event was delivered) or ctx is
// canceled. The iterator surfaces exactly one (zero-value, error) pair and
// stops if the request itself could not be established; after that, a
// decode failure on a single frame is yielded as an error without ending
// the sequence, since later frames may still decode cleanly.
func (c *Client) Stream(ctx context.Context, method a2a.Method, params a2a.Params) iter.Seq2[a2a.JSONRPCResponse, error] {
	return func(yield func(a2a.JSONRPCResponse, error) bool) {
		if method != a2a.MethodTasksSendSubscribe && method != a2a.MethodTasksResubscribe {
			yield(a2a.JSONRPCResponse{}, fmt.Errorf("a2a: %s is not a streaming method", method))
			return
		}
		if err := a2a.ValidateMethodParams(method, params); err != nil {
			yield(a2a.JSONRPCResponse{}, a2a.ErrInvalidParams(err))
			return
		}

		body := a2a.JSONRPCRequest{
			JSONRPC: "2.0",
			ID:      uuid.NewString(),
			Method:  method,
			Params:  params,
		}
		payload, err := body.MarshalJSON()
		if err != nil {
			yield(a2a.JSONRPCResponse{}, fmt.Errorf("a2a: encoding %s request: %w", method, err))
			return
		}

		streamCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		httpReq, err := http.NewRequestWithContext(streamCtx, http.MethodPost, c.baseURL+c.rpcPath, bytes.NewReader(payload))
		if err != nil {
			yield(a2a.JSONRPCResponse{}, fmt.Errorf("a2a: building %s request: %w", method, err))
			return
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "text/event-stream")

		conn := sse.NewConnection(httpReq)

		// stop, once called, honors the range-over-func contract: the
		// generator must not call yield again once it has returned false.
		// unsubscribe detaches this callback from the connection; cancel
		// tears down the underlying HTTP stream so Connect returns instead
		// of blocking on a server that still has more to send.
		var unsubscribe func()
		stop := func() {
			if unsubscribe != nil {
				unsubscribe()
			}
			cancel()
		}

		unsubscribe = conn.SubscribeToAll(func(event sse.Event) {
			var frame a2a.JSONRPCResponse
			if err := frame.UnmarshalJSON([]byte(event.Data)); err != nil {
				if !yield(a2a.JSONRPCResponse{}, &a2a.A2AClientJSONError{Cause: err}) {
					stop()
				}
				return
			}
			if !yield(frame, nil) {
				stop()
			}
		})

		if err := conn.Connect(); err != nil && streamCtx.Err() == nil {
			yield(a2a.JSONRPCResponse{}, fmt.Errorf("a2a: streaming %s: %w", method, err))
		}
	}
}
