package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/flemzord/abridge/internal/pipeline"
)

// wsReadTimeout bounds the wait for the client's request message.
const wsReadTimeout = 30 * time.Second

// WebSocket message types sent by the server.
const (
	MsgProgress = "progress"
	MsgSummary  = "summary"
	MsgError    = "error"
)

// WSMessage is one server frame on /ws/summarize.
type WSMessage struct {
	Type    string          `json:"type"`
	Event   *pipeline.Event `json:"event,omitempty"`
	Summary string          `json:"summary,omitempty"`
	Path    pipeline.Path   `json:"path,omitempty"`
	Chunks  int             `json:"chunks,omitempty"`
	Status  int             `json:"status,omitempty"`
	Detail  string          `json:"detail,omitempty"`
}

// handleSummarizeWS runs one request per connection: the client sends a
// SummarizeRequest, the server streams progress frames, then exactly one
// summary or error frame, and closes.
func (g *Gateway) handleSummarizeWS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, g.acceptOptions())
		if err != nil {
			g.logger.Warn("websocket accept failed", "request_id", requestID(r.Context()), "error", err)
			return
		}
		defer func() {
			_ = conn.Close(websocket.StatusInternalError, "unexpected close")
		}()
		conn.SetReadLimit(g.config.MaxBodyBytes)

		ctx := r.Context()
		s := &wsSender{conn: conn, g: g}

		readCtx, cancel := context.WithTimeout(ctx, wsReadTimeout)
		_, data, err := conn.Read(readCtx)
		cancel()
		if err != nil {
			g.logger.Debug("websocket read failed", "request_id", requestID(ctx), "error", err)
			return
		}

		// Clients send nothing after the request; ctx ends when they
		// disconnect or send a close frame.
		ctx = conn.CloseRead(ctx)

		req, err := decodeSummarizeRequest(bytes.NewReader(data))
		if err != nil {
			s.sendError(ctx, err)
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		}

		done := g.counters.begin()
		res, err := g.pipeline.SummarizeWithProgress(ctx, req, func(ev pipeline.Event) {
			s.send(ctx, WSMessage{Type: MsgProgress, Event: &ev})
		})
		done(err == nil)
		if err != nil && ctx.Err() != nil {
			g.logger.Debug("websocket client went away", "request_id", requestID(ctx), "error", err)
			return
		}
		if err != nil {
			s.sendError(ctx, err)
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		}

		g.logger.Info("summarized",
			"request_id", requestID(ctx),
			"backend", g.backend.Name(),
			"path", res.Path,
			"chunks", res.Chunks,
			"words", res.Words,
			"transport", "websocket",
		)
		s.send(ctx, WSMessage{Type: MsgSummary, Summary: res.Summary, Path: res.Path, Chunks: res.Chunks})
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
}

// acceptOptions derives the allowed origin hosts from the CORS config.
func (g *Gateway) acceptOptions() *websocket.AcceptOptions {
	if slices.Contains(g.config.CORSOrigins, "*") {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	hosts := make([]string, 0, len(g.config.CORSOrigins))
	for _, origin := range g.config.CORSOrigins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return &websocket.AcceptOptions{OriginPatterns: hosts}
}

// wsSender serializes frames; progress events arrive from several
// goroutines during the chunk stage.
type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
	g    *Gateway
}

func (s *wsSender) send(ctx context.Context, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.g.logger.Error("marshal websocket message failed", "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.Write(ctx, websocket.MessageText, data); err != nil {
		s.g.logger.Debug("websocket write failed", "request_id", requestID(ctx), "error", err)
	}
}

func (s *wsSender) sendError(ctx context.Context, err error) {
	status, detail := s.g.statusFor(err)
	if status >= http.StatusInternalServerError {
		s.g.logger.Error("request failed", "request_id", requestID(ctx), "transport", "websocket", "error", err)
	}
	s.send(ctx, WSMessage{Type: MsgError, Status: status, Detail: detail})
}
