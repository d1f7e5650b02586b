package server

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/dkaiser/bankd/internal/observability"
	"github.com/dkaiser/bankd/internal/protocol"
	"github.com/rs/zerolog"
)

// Session is the request/response loop for one accepted connection. It
// reads one frame, dispatches it, writes one response frame, and repeats
// until the peer closes the stream or I/O fails. Requests on a connection
// are served strictly in arrival order.
type Session struct {
	conn   net.Conn
	router *Router
	log    zerolog.Logger
}

func NewSession(conn net.Conn, router *Router, logger zerolog.Logger) *Session {
	return &Session{
		conn:   conn,
		router: router,
		log:    logger.With().Str("peer", conn.RemoteAddr().String()).Logger(),
	}
}

// Run serves the connection until the peer is done. The connection is
// always released on return; an I/O fault ends only this session and never
// touches the ledger's consistency.
func (s *Session) Run() {
	defer s.conn.Close()

	observability.SessionOpened()
	defer observability.SessionClosed()

	r := protocol.NewReader(s.conn)
	w := protocol.NewWriter(s.conn)
	s.log.Debug().Msg("session open")

	for {
		req, err := r.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Warn().Err(err).Msg("read failed")
			}
			s.log.Debug().Msg("session closed")
			return
		}
		if len(req) == 0 {
			// Empty frame: the peer has no more requests.
			s.log.Debug().Msg("session closed")
			return
		}

		start := time.Now()
		resp := s.router.Dispatch(req)
		observability.RecordRequest(req[0], resp[0], time.Since(start))

		if err := w.WriteFrame(resp); err != nil {
			s.log.Warn().Err(err).Msg("write failed")
			return
		}
	}
}
