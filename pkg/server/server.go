package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/wordcraft/internal/logger"
	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/config"
	"github.com/bastiangx/wordcraft/pkg/suggest"
	"github.com/bastiangx/wordcraft/pkg/wordtools"
)

const (
	defaultTimeout = 8 * time.Second
	statsEvery     = 500
)

// Suggester is the part of the engine the server drives.
type Suggester interface {
	Suggest(ctx context.Context, req suggest.Request) suggest.Response
	Contexts(ctx context.Context) []string
}

// Options configure a Server.
type Options struct {
	Config       config.ServerConfig
	Capabilities map[string]string
	Version      string
	In           io.Reader
	Out          io.Writer
}

// Server handles msgpack IPC over a reader and writer pair, stdin and
// stdout by default.
type Server struct {
	engine Suggester
	tools  *wordtools.Tools
	opts   Options

	dec *msgpack.Decoder
	out *bufio.Writer
	enc *msgpack.Encoder

	requestCount atomic.Int64
	log          *log.Logger
}

// NewServer creates a server for engine and tools. tools may be nil, in
// which case the word tool ops answer with an error.
func NewServer(engine Suggester, tools *wordtools.Tools, opts Options) *Server {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	out := bufio.NewWriter(opts.Out)
	return &Server{
		engine: engine,
		tools:  tools,
		opts:   opts,
		dec:    msgpack.NewDecoder(bufio.NewReader(opts.In)),
		out:    out,
		enc:    msgpack.NewEncoder(out),
		log:    logger.New("server"),
	}
}

// Requests returns how many requests have been handled.
func (s *Server) Requests() int64 { return s.requestCount.Load() }

// Start serves until the input ends or ctx is done. A clean end of input
// returns nil.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting server")
	if err := s.send(ReadyMessage{Status: "ready"}); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.log.Debugf("Input closed after %d requests", s.Requests())
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return fmt.Errorf("read request: %w", err)
		}
		if err := s.send(s.handle(ctx, raw)); err != nil {
			return err
		}
	}
}

// handle decodes and answers one raw request. It always returns a
// response value.
func (s *Server) handle(ctx context.Context, raw msgpack.RawMessage) any {
	n := s.requestCount.Add(1)
	if n%statsEvery == 0 {
		s.log.Debugf("Served %d requests", n)
	}

	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.log.Debugf("Malformed request: %v", err)
		return ErrorResponse{ID: recoverID(raw), Error: "invalid request: " + err.Error()}
	}
	if strings.TrimSpace(req.ID) == "" {
		req.ID = uuid.NewString()
	}

	timeout := time.Duration(s.opts.Config.RequestTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.dispatch(rctx, req)
	if err != nil {
		s.log.Debugf("Request %s (%s) failed: %v", req.ID, req.Op, err)
		return ErrorResponse{ID: req.ID, Error: err.Error()}
	}
	elapsed := time.Since(start).Microseconds()
	switch r := resp.(type) {
	case *SuggestResponse:
		r.TimeTaken = elapsed
	case *WordResponse:
		r.TimeTaken = elapsed
	case *HealthResponse:
		r.TimeTaken = elapsed
	}
	return resp
}

func (s *Server) dispatch(ctx context.Context, req Request) (any, error) {
	op := strings.ToLower(strings.TrimSpace(req.Op))
	switch op {
	case OpSuggest:
		return s.handleSuggest(ctx, req), nil
	case OpHealth:
		return s.handleHealth(ctx, req), nil
	case OpLexical, OpOneWord, OpConstraints:
		if s.tools == nil {
			return nil, fmt.Errorf("op %q is not available", op)
		}
	case "":
		return nil, errors.New("missing op")
	default:
		return nil, fmt.Errorf("unknown op: %s", req.Op)
	}

	limit := s.limit(req.Limit)
	var res wordtools.Result
	switch op {
	case OpLexical:
		if strings.TrimSpace(req.Word) == "" {
			return nil, errors.New("missing 'word' parameter")
		}
		var err error
		res, err = s.tools.Lexical(ctx, wordtools.LexicalRequest{Word: req.Word, Task: req.Task, Context: req.Context, Limit: limit})
		if err != nil {
			return nil, err
		}
	case OpOneWord:
		res = s.tools.OneWord(ctx, wordtools.OneWordRequest{Query: req.Query, Context: req.Context, Limit: limit})
	case OpConstraints:
		res = s.tools.Constraints(ctx, wordtools.ConstraintRequest{
			Rhyme: req.Rhyme, Relation: req.Relation, Meaning: req.Meaning, Context: req.Context, Limit: limit,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s timed out: %w", op, err)
	}
	return wordResponse(req.ID, res), nil
}

// limit applies the configured ceiling to a requested limit. Zero means
// the op's default.
func (s *Server) limit(requested int) int {
	if requested <= 0 {
		return 0
	}
	if m := s.opts.Config.MaxLimit; m > 0 && requested > m {
		return m
	}
	return requested
}

func (s *Server) handleSuggest(ctx context.Context, req Request) *SuggestResponse {
	sreq := suggest.Request{
		Text:    req.Text,
		Context: req.Context,
		Mode:    req.Mode,
		Trigger: req.Trigger,
	}
	if req.Sel != nil {
		sreq.Selection = &suggest.Selection{Text: req.Sel.Text, Start: req.Sel.Start, End: req.Sel.End}
	}
	resp := s.engine.Suggest(ctx, sreq)

	out := &SuggestResponse{
		ID:          req.ID,
		Suggestions: make([]Suggestion, len(resp.Suggestions)),
		Rewrite:     resp.Rewrite,
		Rewrites:    resp.Rewrites,
		Explanation: resp.Explanation,
		Blank:       resp.DetectedBlank,
	}
	if out.Rewrites == nil {
		out.Rewrites = []string{}
	}
	ranks := utils.CreateRankList(len(resp.Suggestions))
	for i, c := range resp.Suggestions {
		out.Suggestions[i] = Suggestion{
			Word:    c.Word,
			Rank:    ranks[i],
			Score:   c.Score,
			POS:     c.POS,
			Note:    c.Note,
			Learned: c.LearnedScore,
		}
	}
	return out
}

func (s *Server) handleHealth(ctx context.Context, req Request) *HealthResponse {
	caps := make(map[string]string, len(s.opts.Capabilities))
	for k, v := range s.opts.Capabilities {
		caps[k] = v
	}
	contexts := s.engine.Contexts(ctx)
	if contexts == nil {
		contexts = []string{}
	}
	return &HealthResponse{
		ID:           req.ID,
		Status:       "ok",
		Version:      s.opts.Version,
		Capabilities: caps,
		Contexts:     contexts,
		Requests:     s.Requests(),
	}
}

func wordResponse(id string, res wordtools.Result) *WordResponse {
	out := &WordResponse{
		ID:          id,
		Suggestions: make([]Suggestion, len(res.Candidates)),
		Note:        res.Note,
		Count:       len(res.Candidates),
	}
	ranks := utils.CreateRankList(len(res.Candidates))
	for i, c := range res.Candidates {
		out.Suggestions[i] = Suggestion{
			Word:     c.Word,
			Rank:     ranks[i],
			Score:    c.Score,
			POS:      c.POS,
			Note:     c.Reason,
			Learned:  c.LearnedScore,
			Meaning:  c.Meaning,
			Rhyme:    c.Rhyme,
			Relation: c.RelationMatch,
		}
	}
	return out
}

// recoverID pulls the id out of a request that failed to decode as a
// whole, falling back to a fresh UUID.
func recoverID(raw msgpack.RawMessage) string {
	var m map[string]any
	if err := msgpack.Unmarshal(raw, &m); err == nil {
		if id, ok := m["id"].(string); ok && strings.TrimSpace(id) != "" {
			return id
		}
	}
	return uuid.NewString()
}

// send encodes one message and flushes it to the client.
func (s *Server) send(v any) error {
	if err := s.enc.Encode(v); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return fmt.Errorf("encode response: %w", err)
	}
	if err := s.out.Flush(); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
