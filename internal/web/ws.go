package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/board-console/internal/session"
	"github.com/park285/board-console/pkg/consoledto"
)

const writeTimeout = 5 * time.Second

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		OriginPatterns:  s.originPattern,
	})
	if err != nil {
		s.logger.Warn("ws_accept_error", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	q := r.URL.Query()
	sess, err := s.hub.Open(ctx, q.Get("session"), q.Get("path"))
	if err != nil {
		s.logger.Error("session_open_error", zap.Error(err))
		_ = s.write(ctx, conn, consoledto.ServerFrame{Kind: consoledto.FrameError, Error: "session unavailable"})
		conn.Close(websocket.StatusInternalError, "session unavailable")
		return
	}
	// transport first, then the session
	defer func() {
		cancel()
		_ = conn.CloseNow()
		s.hub.Release(sess)
	}()

	if err := s.write(ctx, conn, consoledto.ServerFrame{Kind: consoledto.FrameHello, Session: sess.ID}); err != nil {
		return
	}

	go s.readEvents(ctx, cancel, conn, sess)
	go s.pingLoop(ctx, cancel, conn, sess)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-sess.Done():
			conn.Close(websocket.StatusGoingAway, "session closed")
			return
		case batch := <-sess.Patches():
			if err := s.write(ctx, conn, consoledto.ServerFrame{Kind: consoledto.FramePatches, Patches: batch}); err != nil {
				s.logger.Debug("ws_write_error", zap.String("session", sess.ID), zap.Error(err))
				return
			}
		}
	}
}

func (s *Server) write(ctx context.Context, conn *websocket.Conn, f consoledto.ServerFrame) error {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, f)
}

func (s *Server) readEvents(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sess *session.Session) {
	defer cancel()
	for {
		var ev consoledto.ClientEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				s.logger.Debug("ws_read_error", zap.Error(err))
			}
			return
		}
		if ev.Type == "" {
			continue
		}
		if !sess.Dispatch(ev) {
			return
		}
	}
}

func (s *Server) pingLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sess *session.Session) {
	t := time.NewTicker(s.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, pcancel := context.WithTimeout(ctx, 3*time.Second)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				failures++
				if failures >= 2 {
					cancel()
					return
				}
				continue
			}
			failures = 0
			sess.Touch()
		}
	}
}
