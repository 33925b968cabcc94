package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/quadgrid/quadgrid/internal/dates"
	"github.com/quadgrid/quadgrid/internal/engine"
	"github.com/quadgrid/quadgrid/internal/puzzle"
)

const qrSize = 256

// playSession is one live session plus its lock. Handlers hold the
// lock for the whole mutation so snapshots observe a consistent
// state.
type playSession struct {
	id   string
	date string

	mu   sync.Mutex
	sess *engine.Session
}

// stateView is the JSON shape of a session's observable state.
type stateView struct {
	ID           string               `json:"id"`
	Date         string               `json:"date"`
	State        engine.State         `json:"state"`
	Tiles        []puzzle.Tile        `json:"tiles"`
	Selection    []puzzle.TileID      `json:"selection"`
	Groups       []engine.PlayerGroup `json:"groups"`
	MistakesLeft int                  `json:"mistakes_left"`
	Results      *engine.Results      `json:"results,omitempty"`
}

func (ps *playSession) view() stateView {
	v := stateView{
		ID:           ps.id,
		Date:         ps.date,
		State:        ps.sess.State(),
		Tiles:        ps.sess.Tiles(),
		Selection:    ps.sess.Selection(),
		Groups:       ps.sess.Groups(),
		MistakesLeft: ps.sess.MistakesLeft(),
	}
	if ps.sess.Terminal() {
		res := ps.sess.Results()
		v.Results = &res
	}
	return v
}

// createSession loads the best document for a date and opens a fresh
// session over it, restoring any persisted progress. Loads are tagged
// with a sequence number; a load superseded by a newer one is
// discarded rather than registered.
func (s *Server) createSession() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		date := p.ByName("date")
		var doc *puzzle.Document
		if date == placeholderDate {
			doc = puzzle.Placeholder()
		} else {
			if _, err := dates.Parse(date); err != nil {
				s.writeError(w, http.StatusBadRequest, "BAD_DATE", "date must be YYYY-MM-DD")
				return
			}
			seq := s.loadSeq.Next()
			var err error
			doc, err = s.resolveDocument(date)
			if err != nil {
				s.writeError(w, http.StatusNotFound, "NO_PUZZLE", "no puzzle available for "+date)
				return
			}
			if s.loadSeq.Superseded(seq) {
				s.writeError(w, http.StatusConflict, "SUPERSEDED", "a newer load superseded this one")
				return
			}
		}

		opts := []engine.Option{}
		if s.strictLock {
			opts = append(opts, engine.WithStrictLock())
		}
		if s.store != nil {
			rec, ok, err := s.store.Get(r.Context(), doc.PrintDate)
			if err != nil {
				s.logger.Warn("read progress", "date", doc.PrintDate, "error", err)
			} else if ok {
				opts = append(opts, engine.WithProgress(rec))
			}
		}

		sess, err := engine.NewSession(doc, opts...)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "BAD_DOCUMENT", err.Error())
			return
		}

		ps := &playSession{id: uuid.NewString(), date: doc.PrintDate, sess: sess}
		s.mu.Lock()
		s.sessions[ps.id] = ps
		s.mu.Unlock()

		s.logger.Info("session created", "id", ps.id, "date", ps.date)
		s.writeJSON(w, http.StatusCreated, ps.view())
	}
}

// withSession resolves the :id parameter and runs the handler with
// the session locked.
func (s *Server) withSession(fn func(http.ResponseWriter, *http.Request, *playSession)) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		s.mu.RLock()
		ps, ok := s.sessions[p.ByName("id")]
		s.mu.RUnlock()
		if !ok {
			s.writeError(w, http.StatusNotFound, "NO_SESSION", "no such session")
			return
		}
		ps.mu.Lock()
		defer ps.mu.Unlock()
		fn(w, r, ps)
	}
}

// persist snapshots the session to the progress store. Write failures
// never fail the request; the in-memory session is authoritative.
func (s *Server) persist(r *http.Request, ps *playSession) {
	if s.store == nil {
		return
	}
	rec := ps.sess.Snapshot()
	if err := s.store.Put(r.Context(), ps.date, rec); err != nil {
		s.logger.Warn("persist progress", "date", ps.date, "error", err)
	}
}

func (s *Server) serveState(w http.ResponseWriter, r *http.Request, ps *playSession) {
	s.writeJSON(w, http.StatusOK, ps.view())
}

func (s *Server) toggleTile(w http.ResponseWriter, r *http.Request, ps *playSession) {
	var req struct {
		Tile puzzle.TileID `json:"tile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Tile == "" {
		s.writeError(w, http.StatusBadRequest, "BAD_REQUEST", "body must be {\"tile\": \"...\"}")
		return
	}
	if err := ps.sess.Toggle(req.Tile); err != nil {
		s.writePlayError(w, err)
		return
	}
	s.persist(r, ps)
	s.writeJSON(w, http.StatusOK, ps.view())
}

func (s *Server) submitGuess(w http.ResponseWriter, r *http.Request, ps *playSession) {
	result, err := ps.sess.Submit()
	if err != nil {
		s.writePlayError(w, err)
		return
	}
	s.persist(r, ps)
	s.writeJSON(w, http.StatusOK, struct {
		Result *engine.GuessResult `json:"result"`
		stateView
	}{result, ps.view()})
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request, ps *playSession) {
	ps.sess.Reset()
	if s.store != nil {
		if err := s.store.Delete(r.Context(), ps.date); err != nil {
			s.logger.Warn("clear progress", "date", ps.date, "error", err)
		}
	}
	s.writeJSON(w, http.StatusOK, ps.view())
}

func (s *Server) serveShareText(w http.ResponseWriter, r *http.Request, ps *playSession) {
	res := ps.sess.Results()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	securityHeaders(w)
	fmt.Fprintln(w, res.ShareText)
}

func (s *Server) serveShareQR(w http.ResponseWriter, r *http.Request, ps *playSession) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	url := fmt.Sprintf("%s://%s/sessions/%s/share", scheme, r.Host, ps.id)
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "QR_FAILED", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	securityHeaders(w)
	_, _ = w.Write(png)
}

// writePlayError maps engine error codes onto HTTP statuses, carrying
// the code through to the body so clients can branch on it.
func (s *Server) writePlayError(w http.ResponseWriter, err error) {
	var pe *engine.PlayError
	if !errors.As(err, &pe) {
		s.writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	status := http.StatusConflict
	switch pe.Code {
	case engine.ErrCodeUnknownTile:
		status = http.StatusBadRequest
	case engine.ErrCodeLocked:
		status = http.StatusLocked
	}
	s.writeError(w, status, string(pe.Code), pe.Message)
}
