package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/time/rate"

	"github.com/leengari/mdtable/internal/domain/schema"
	"github.com/leengari/mdtable/internal/engine"
	"github.com/leengari/mdtable/internal/render"
)

// Options configure a Server
type Options struct {
	Addr string
	// MaxConnections bounds concurrent clients, 0 means unlimited
	MaxConnections int
	// RateLimit is the number of queries per second allowed on one connection, 0 means unlimited
	RateLimit float64
}

// Server answers FILTER queries against one loaded table over TCP.
// Each line on the wire is a JSON Request; each answer is a JSON engine.Result.
type Server struct {
	opts   Options
	eng    *engine.Engine
	table  *schema.Table
	schema *jsonschema.Schema
	pool   *ants.Pool

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// NewServer creates a server for table. Connections get their own engine
// built from eng, so observers registered on eng see every query.
func NewServer(eng *engine.Engine, table *schema.Table, opts Options) (*Server, error) {
	compiled, err := compileRequestSchema()
	if err != nil {
		return nil, fmt.Errorf("compile request schema: %w", err)
	}

	s := &Server{
		opts:   opts,
		eng:    eng,
		table:  table,
		schema: compiled,
		conns:  make(map[net.Conn]struct{}),
	}

	if opts.MaxConnections > 0 {
		pool, err := ants.NewPool(opts.MaxConnections,
			ants.WithNonblocking(true),
			ants.WithPanicHandler(func(v any) {
				slog.Error("connection handler panic", "panic", v)
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("create connection pool: %w", err)
		}
		s.pool = pool
	}
	return s, nil
}

// ListenAndServe binds opts.Addr and serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, s.shutdown)
	defer stop()

	slog.Info("Running on", "addr", listener.Addr().String(), "rows", s.table.Len())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			slog.Error("Failed to accept connection", "error", err)
			continue
		}
		s.dispatch(conn)
	}
}

// Addr returns the bound address, nil before Serve
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) dispatch(conn net.Conn) {
	s.track(conn, true)
	s.wg.Add(1)
	handle := func() {
		defer s.wg.Done()
		defer s.track(conn, false)
		s.handleConnection(conn)
	}

	if s.pool == nil {
		go handle()
		return
	}
	if err := s.pool.Submit(handle); err != nil {
		slog.Warn("rejecting connection", "remote", conn.RemoteAddr().String(), "error", err)
		_ = json.NewEncoder(conn).Encode(engine.ErrorResult(errors.New("server busy, try again later")))
		s.track(conn, false)
		s.wg.Done()
	}
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
		return
	}
	if _, ok := s.conns[conn]; ok {
		delete(s.conns, conn)
		conn.Close()
	}
}

// shutdown closes the listener and every open connection to unblock reads
func (s *Server) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	if s.pool != nil {
		s.pool.Release()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	queryEngine := s.eng.WithOptions(s.eng.Options())

	// Register logging observer for lifecycle tracing
	loggingObserver := engine.NewLoggingObserver()
	queryEngine.AddObserver(loggingObserver)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if s.opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.opts.RateLimit), int(s.opts.RateLimit)+1)
	}

	// Use Decoder instead of Scanner for network streams
	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if err == io.EOF || errors.Is(err, net.ErrClosed) {
				return // Connection closed
			}
			slog.Error("decode error", "error", err)
			_ = encoder.Encode(engine.ErrorResult(fmt.Errorf("invalid request format: %w", err)))
			return
		}

		req, err := decodeRequest(s.schema, raw)
		if err != nil {
			if encErr := encoder.Encode(engine.ErrorResult(err)); encErr != nil {
				slog.Error("encode error", "error", encErr)
				return
			}
			continue
		}

		if req.Query == "exit" || req.Query == "\\q" {
			return
		}

		if !limiter.Allow() {
			if err := encoder.Encode(engine.ErrorResult(errors.New("rate limit exceeded"))); err != nil {
				slog.Error("encode error", "error", err)
				return
			}
			continue
		}

		if err := encoder.Encode(s.answer(queryEngine, req)); err != nil {
			slog.Error("encode error", "error", err)
			return
		}
	}
}

// answer runs one request; failures come back as an error Result
func (s *Server) answer(eng *engine.Engine, req Request) *engine.Result {
	if req.Format == "markdown" {
		out, err := eng.Run(s.table, req.Query)
		if err != nil {
			return engine.ErrorResult(err)
		}
		return &engine.Result{Message: render.Markdown(out)}
	}

	result, err := eng.Query(s.table, req.Query)
	if err != nil {
		return engine.ErrorResult(err)
	}
	return result
}
