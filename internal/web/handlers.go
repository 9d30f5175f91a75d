package web

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"daycal/internal/calmath"
	"daycal/internal/ics"
	appLog "daycal/internal/log"
	"daycal/internal/overview"
	"daycal/internal/relative"
)

const (
	defaultPastYears   = 1
	defaultFutureYears = 3
	maxExportBody      = 4 << 20
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleYearFile serves {data.dir}/{year}.json as is, so the data directory
// doubles as the source for HTTP fetchers.
func (s *Server) handleYearFile(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	path := filepath.Join(s.cfg.Data.Dir, strconv.Itoa(year)+".json")
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "no data for year")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	http.ServeFile(w, r, path)
}

// todayResponse is today's date plus the locales /api/relative accepts.
type todayResponse struct {
	overview.TodayInfo
	Locale  string   `json:"locale"`
	Locales []string `json:"locales"`
}

func (s *Server) handleToday(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, todayResponse{
		TodayInfo: s.view.TodayInfo(),
		Locale:    s.cfg.Locale,
		Locales:   relative.Locales(),
	})
}

type yearStatus struct {
	Year  int    `json:"year"`
	State string `json:"state"`
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	past := parseIntDefault(q.Get("past"), defaultPastYears)
	future := parseIntDefault(q.Get("future"), defaultFutureYears)

	years := s.view.YearWindow(past, future)
	out := make([]yearStatus, len(years))
	for i, y := range years {
		out[i] = yearStatus{Year: y, State: s.store.State(y).String()}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	d, err := calmath.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	info, err := s.view.Day(r.Context(), d)
	if err != nil {
		appLog.Error("day view failed", err, "date", d.String())
		writeError(w, http.StatusInternalServerError, "failed to build day view")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleRelative renders ?date= relative to ?ref= (default today) in
// ?locale= (default from config).
func (s *Server) handleRelative(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	target, err := calmath.ParseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ref := s.view.Today()
	if v := q.Get("ref"); v != "" {
		if ref, err = calmath.ParseDate(v); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	locale := q.Get("locale")
	if locale == "" {
		locale = s.cfg.Locale
	}

	f, err := s.formatter(locale)
	if err != nil {
		if errors.Is(err, relative.ErrUnknownLocale) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	label, err := f.Format(target, ref)
	if err != nil {
		appLog.Error("relative label failed", err, "locale", locale)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, label)
}

func (s *Server) handleWeeks(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	rows, err := s.view.WeekTable(year)
	if err != nil {
		appLog.Error("week table failed", err, "year", year)
		writeError(w, http.StatusInternalServerError, "failed to build week table")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleHolidays(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	rows, err := s.view.Holidays(r.Context(), year)
	if err != nil {
		appLog.Error("holiday list failed", err, "year", year)
		writeError(w, http.StatusInternalServerError, "failed to build holiday list")
		return
	}
	if rows == nil {
		rows = []overview.HolidayRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleMoon(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 0)
	rows, err := s.view.UpcomingMoon(r.Context(), limit)
	if err != nil {
		appLog.Error("moon list failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build moon list")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleExport answers with an .ics attachment, or 204 when the filter
// selects nothing.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxExportBody)

	req, err := s.decodeExport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Regions) == 0 {
		req.Regions = s.cfg.RegionList()
	}

	res, err := s.exporter.Export(r.Context(), req.Bundle, req.Filter, ics.ResponseSaver{W: w})
	if err != nil {
		appLog.Error("export failed", err, "request_id", RequestIDFrom(r.Context()))
		if errors.Is(err, ics.ErrVerify) {
			writeError(w, http.StatusInternalServerError, "generated calendar failed verification")
		}
		// The attachment may already be partially written otherwise.
		return
	}
	if res.Skipped {
		w.WriteHeader(http.StatusNoContent)
	}
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return 0, false
	}
	return year, true
}
