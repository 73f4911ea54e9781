package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/keychord/internal/capture"
	"github.com/dshills/keychord/internal/logging"
	"github.com/dshills/keychord/internal/notify"
)

// session serves one websocket connection. Frames are read and applied on
// a single goroutine, so the recorder sees events in arrival order.
type session struct {
	server  *Server
	conn    *websocket.Conn
	rec     *capture.Recorder
	sub     *notify.Subscription
	gen     uint64
	emitted []string
	logger  *logging.Logger
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		s.logger.Warn("websocket upgrade failed: %v", err)
		return
	}

	s.sessions.Add(1)
	defer s.sessions.Done()

	mods, gen := s.modifiers()
	rec := capture.NewRecorder(mods, capture.WithLogger(s.logger))
	if s.cfg.Initial != "" {
		rec.WriteValue(s.cfg.Initial)
	}

	sess := &session{
		server: s,
		conn:   conn,
		gen:    gen,
		logger: s.logger.WithField("session", rec.ID()).WithField("remote", r.RemoteAddr),
	}
	sess.attach(rec)

	s.metrics.sessionsTotal.Inc()
	s.metrics.activeSessions.Inc()
	defer s.metrics.activeSessions.Dec()

	sess.logger.Info("session opened")
	err = sess.serve(r.Context())
	sess.close()
	if err != nil {
		sess.logger.Warn("session ended: %v", err)
		return
	}
	sess.logger.Info("session closed")
}

// attach makes rec the session's recorder and collects its emissions.
func (sess *session) attach(rec *capture.Recorder) {
	if sess.sub != nil {
		sess.sub.Unsubscribe()
	}
	sess.rec = rec
	sess.sub = rec.RegisterOnChange(func(v string) {
		sess.emitted = append(sess.emitted, v)
		sess.server.metrics.commitsTotal.Inc()
	})
}

// serve sends the initial snapshot and then answers every frame until the
// peer disconnects or ctx is canceled.
func (sess *session) serve(ctx context.Context) error {
	sess.conn.SetReadLimit(maxFrameSize)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = sess.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			_ = sess.conn.Close()
		case <-stop:
		}
	}()

	if err := sess.send(); err != nil {
		return err
	}

	for {
		msgType, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if msgType != websocket.TextMessage {
			continue
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			sess.server.metrics.frameErrors.WithLabelValues(frameErrorReason(err)).Inc()
			sess.logger.Debug("rejected frame: %v", err)
			if err := sess.conn.WriteMessage(websocket.TextMessage, errorFrame(err)); err != nil {
				return err
			}
			continue
		}

		sess.refreshModifiers()
		sess.emitted = nil
		frame.Apply(sess.rec)
		sess.server.metrics.framesTotal.WithLabelValues(string(frame.Type)).Inc()

		if err := sess.send(); err != nil {
			if errors.Is(err, websocket.ErrCloseSent) {
				return nil
			}
			return err
		}
	}
}

// refreshModifiers rebuilds the recorder when the server's modifier set
// changed since the session last looked.
func (sess *session) refreshModifiers() {
	mods, gen := sess.server.modifiers()
	if gen == sess.gen {
		return
	}
	old := sess.rec
	sess.attach(old.Rebuild(mods))
	old.Close()
	sess.gen = gen
}

// send writes the current snapshot.
func (sess *session) send() error {
	data, err := capture.NewSnapshot(sess.rec.State(), sess.emitted).MarshalJSON()
	if err != nil {
		return err
	}
	return sess.conn.WriteMessage(websocket.TextMessage, data)
}

func (sess *session) close() {
	sess.rec.Close()
	_ = sess.conn.Close()
}
