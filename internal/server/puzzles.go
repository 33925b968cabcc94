package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/julienschmidt/httprouter"

	"github.com/quadgrid/quadgrid/internal/dates"
	"github.com/quadgrid/quadgrid/internal/puzzle"
	"github.com/quadgrid/quadgrid/internal/syncer"
)

// placeholderDate is the reserved path segment serving the embedded
// offline document.
const placeholderDate = "placeholder"

var errNoPuzzle = errors.New("no usable puzzle for date")

// readCached loads and re-validates one cached date file. A file that
// fails validation is treated as absent; the sync job may repair it on
// its next run.
func (s *Server) readCached(date string) (*puzzle.Document, error) {
	raw, err := os.ReadFile(filepath.Join(s.cacheDir, date+".json"))
	if err != nil {
		return nil, err
	}
	doc, err := puzzle.ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// resolveDocument walks the fallback chain for one requested date:
// the exact cached file, then the index manifest's best date, then
// the latest-alias. The first document that parses and validates
// wins.
func (s *Server) resolveDocument(want string) (*puzzle.Document, error) {
	if doc, err := s.readCached(want); err == nil {
		return doc, nil
	}

	if man, err := syncer.LoadIndex(filepath.Join(s.cacheDir, syncer.IndexFile)); err == nil {
		if best, err := syncer.ResolveBest(man, want); err == nil && best != want {
			if doc, err := s.readCached(best); err == nil {
				s.logger.Info("resolved fallback date", "want", want, "got", best)
				return doc, nil
			}
		}
	}

	raw, err := os.ReadFile(filepath.Join(s.cacheDir, syncer.LatestFile))
	if err != nil {
		return nil, errNoPuzzle
	}
	doc, err := puzzle.ParseDocument(raw)
	if err != nil {
		return nil, errNoPuzzle
	}
	s.logger.Info("resolved latest alias", "want", want, "got", doc.PrintDate)
	return doc, nil
}

func (s *Server) servePuzzle() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		date := p.ByName("date")
		if date == placeholderDate {
			s.writeJSON(w, http.StatusOK, puzzle.Placeholder())
			return
		}
		if _, err := dates.Parse(date); err != nil {
			s.writeError(w, http.StatusBadRequest, "BAD_DATE", "date must be YYYY-MM-DD")
			return
		}
		doc, err := s.resolveDocument(date)
		if err != nil {
			s.writeError(w, http.StatusNotFound, "NO_PUZZLE", "no puzzle available for "+date)
			return
		}
		s.writeJSON(w, http.StatusOK, doc)
	}
}

func (s *Server) serveDates() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		man, err := syncer.LoadAvailability(filepath.Join(s.cacheDir, syncer.AvailabilityFile))
		if err != nil {
			s.writeError(w, http.StatusNotFound, "NO_MANIFEST", "availability manifest not synced yet")
			return
		}
		s.writeJSON(w, http.StatusOK, man)
	}
}

func (s *Server) serveNearest() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		want := r.URL.Query().Get("date")
		if _, err := dates.Parse(want); err != nil {
			s.writeError(w, http.StatusBadRequest, "BAD_DATE", "date must be YYYY-MM-DD")
			return
		}
		man, err := syncer.LoadAvailability(filepath.Join(s.cacheDir, syncer.AvailabilityFile))
		if err != nil {
			s.writeError(w, http.StatusNotFound, "NO_MANIFEST", "availability manifest not synced yet")
			return
		}
		nearest := dates.Nearest(man.Dates, want)
		if nearest == "" {
			s.writeError(w, http.StatusNotFound, "NO_DATES", "no dates available")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"date": nearest})
	}
}
