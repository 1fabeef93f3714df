// Package server implements the RPC Server, section 4.7 of the spec: a
// gin router serving the agent card and dispatching JSON-RPC 2.0 requests
// to a Task Manager, replying either as a single JSON object or as an SSE
// stream.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go-micro.dev/v5/logger"

	"github.com/micro/micro-a2a/pkg/a2a"
	"github.com/micro/micro-a2a/pkg/a2a/store"
	"github.com/micro/micro-a2a/pkg/a2a/taskmanager"
)

// Server hosts one agent's A2A endpoints.
type Server struct {
	card   a2a.AgentCard
	tm     taskmanager.TaskManager
	opts   Options
	router *gin.Engine
}

// New builds a Server for the given AgentCard and TaskManager.
func New(card a2a.AgentCard, tm taskmanager.TaskManager, opts ...Option) *Server {
	o := Options{
		Addr:           ":8080",
		Path:           "/",
		RequestTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = logger.NewLogger()
	}

	s := &Server{card: card, tm: tm, opts: o}
	s.router = s.buildRouter()
	return s
}

// Router exposes the underlying gin engine, e.g. for tests that want to
// drive it with httptest without binding a real port.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// ListenAndServe runs the server on Options.Addr until the process exits
// or the router returns an error.
func (s *Server) ListenAndServe() error {
	return s.router.Run(s.opts.Addr)
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/.well-known/agent.json", s.handleAgentCard)
	router.POST(s.opts.Path, s.handleRPC)

	return router
}

func (s *Server) handleAgentCard(c *gin.Context) {
	c.JSON(http.StatusOK, s.card)
}

// handleRPC is the single JSON-RPC entry point: it dispatches by Method,
// replying with a plain JSON body for unary methods and an SSE stream for
// tasks/sendSubscribe and tasks/resubscribe. Per section 4.7, every
// JSON-RPC-level error (parse, validation, or domain) is reported as HTTP
// 400 with a JSONRPCResponse body carrying the error — the HTTP status
// never varies by error code.
func (s *Server) handleRPC(c *gin.Context) {
	var req a2a.JSONRPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, nil, a2a.ErrParse(err))
		return
	}
	if req.JSONRPC != "2.0" {
		s.writeError(c, req.ID, a2a.ErrInvalidRequest("jsonrpc must be \"2.0\""))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.RequestTimeout)
	defer cancel()

	switch req.Method {
	case a2a.MethodTasksGet:
		s.handleUnary(c, req, func() (a2a.Result, error) {
			params, ok := req.Params.(a2a.TaskQueryParams)
			if !ok {
				return nil, a2a.ErrInvalidParams(errBadParams(req.Method))
			}
			return s.tm.OnGetTask(ctx, params)
		})

	case a2a.MethodTasksSend:
		s.handleUnary(c, req, func() (a2a.Result, error) {
			params, ok := req.Params.(a2a.TaskSendParams)
			if !ok {
				return nil, a2a.ErrInvalidParams(errBadParams(req.Method))
			}
			return s.tm.OnSendTask(ctx, params)
		})

	case a2a.MethodTasksCancel:
		s.handleUnary(c, req, func() (a2a.Result, error) {
			params, ok := req.Params.(a2a.TaskIDParams)
			if !ok {
				return nil, a2a.ErrInvalidParams(errBadParams(req.Method))
			}
			return s.tm.OnCancelTask(ctx, params)
		})

	case a2a.MethodTasksPushNotificationSet:
		s.handleUnary(c, req, func() (a2a.Result, error) {
			params, ok := req.Params.(a2a.TaskPushNotificationConfig)
			if !ok {
				return nil, a2a.ErrInvalidParams(errBadParams(req.Method))
			}
			return s.tm.OnSetTaskPushNotification(ctx, params)
		})

	case a2a.MethodTasksPushNotificationGet:
		s.handleUnary(c, req, func() (a2a.Result, error) {
			params, ok := req.Params.(a2a.TaskIDParams)
			if !ok {
				return nil, a2a.ErrInvalidParams(errBadParams(req.Method))
			}
			return s.tm.OnGetTaskPushNotification(ctx, params)
		})

	case a2a.MethodTasksSendSubscribe:
		params, ok := req.Params.(a2a.TaskSendParams)
		if !ok {
			s.writeError(c, req.ID, a2a.ErrInvalidParams(errBadParams(req.Method)))
			return
		}
		sub, err := s.tm.OnSendTaskSubscribe(c.Request.Context(), params)
		s.streamOrError(c, req, sub, err)

	case a2a.MethodTasksResubscribe:
		params, ok := req.Params.(a2a.TaskIDParams)
		if !ok {
			s.writeError(c, req.ID, a2a.ErrInvalidParams(errBadParams(req.Method)))
			return
		}
		sub, err := s.tm.OnResubscribeToTask(c.Request.Context(), params)
		s.streamOrError(c, req, sub, err)

	default:
		s.writeError(c, req.ID, a2a.ErrInvalidRequest("unsupported method: "+string(req.Method)))
	}
}

// handleUnary runs call and writes its result (or error) as a single JSON
// response.
func (s *Server) handleUnary(c *gin.Context, req a2a.JSONRPCRequest, call func() (a2a.Result, error)) {
	result, err := call()
	if err != nil {
		s.writeError(c, req.ID, toJSONRPCError(err))
		return
	}
	c.JSON(http.StatusOK, a2a.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: result})
}

// streamOrError either opens an SSE stream over sub (closing it when the
// request context is canceled, detaching the subscriber so the registry
// doesn't keep delivering to a dead connection) or writes err as a
// JSON-RPC error if the Task Manager refused the subscription outright.
func (s *Server) streamOrError(c *gin.Context, req a2a.JSONRPCRequest, sub *store.Subscriber, err error) {
	if err != nil {
		s.writeError(c, req.ID, toJSONRPCError(err))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ctx := c.Request.Context()
	detached := false
	defer func() {
		if !detached {
			s.detach(sub)
		}
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			detached = true
			s.detach(sub)
			return false
		case event, ok := <-sub.Events():
			if !ok {
				return false
			}
			resp := a2a.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: event}
			c.SSEvent("message", resp)
			return true
		}
	})
}

func (s *Server) detach(sub *store.Subscriber) {
	s.tm.Detach(sub)
}

func errBadParams(method a2a.Method) error {
	return errors.New("request params do not match method " + string(method))
}

// toJSONRPCError converts a Task Manager error into a *a2a.JSONRPCError,
// passing an already-typed domain error through unchanged and wrapping
// anything else as an internal error.
func toJSONRPCError(err error) *a2a.JSONRPCError {
	var rpcErr *a2a.JSONRPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return a2a.ErrInternal(err)
}

// writeError always responds HTTP 400 for a JSON-RPC-level error, per
// section 4.7: the HTTP status code never varies by error kind.
func (s *Server) writeError(c *gin.Context, id any, rpcErr *a2a.JSONRPCError) {
	c.JSON(http.StatusBadRequest, a2a.JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: rpcErr})
}
