package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daycal/internal/calmath"
	"daycal/internal/config"
	"daycal/internal/daydata"
	"daycal/internal/ics"
	"daycal/internal/overview"
	"daycal/internal/relative"
)

const testYear = `{
  "2025-12-20": {"moon": {"phase": "new_moon", "name": "New moon", "time": "01:43"}},
  "2025-12-25": {"holidays": [{"name": "Christmas", "type": "public", "date": "2025-12-25"}]},
  "2025-12-27": {"moon": {"phase": "first_quarter", "name": "First quarter"}}
}`

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2025.json"), []byte(testYear), 0o600))

	cfg := config.DefaultConfig()
	cfg.Data.Dir = dir
	cfg.HTTP.MaxRequestsPerSecond = 1000
	cfg.Regions = map[string]string{"north": "Noord", "south": "Zuid"}
	if mutate != nil {
		mutate(cfg)
	}
	cfg.Normalize()

	p, err := relative.Load("en")
	require.NoError(t, err)

	store := daydata.NewStore(daydata.NewDirFetcher(dir))
	view := overview.New(store, relative.New(p),
		overview.WithLocation(time.UTC),
		overview.WithClock(func() time.Time { return time.Date(2025, time.December, 20, 9, 0, 0, 0, time.UTC) }),
		overview.WithRegions(cfg.Regions),
	)
	exporter := &ics.Exporter{Defaults: ics.Calendar{Name: "Test", Domain: "example.com"}, Verify: true}
	return NewServer(cfg, store, view, exporter)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestBasicAuth(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code)

	rec := do(t, s, http.MethodGet, "/api/today", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/today", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTodayEndpoint(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Locale = "nl" })

	rec := do(t, s, http.MethodGet, "/api/today", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body todayResponse
	decode(t, rec, &body)
	assert.Equal(t, calmath.NewDate(2025, time.December, 20), body.Date)
	assert.Equal(t, "Saturday", body.Weekday)
	assert.Equal(t, 51, body.ISOWeek)
	assert.Equal(t, "nl", body.Locale)
	assert.Equal(t, []string{"de", "en", "nl"}, body.Locales)
}

func TestDayEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/days/2025-12-25", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var info overview.DayInfo
	decode(t, rec, &info)
	assert.True(t, info.HasData)
	require.Len(t, info.Public, 1)
	assert.Equal(t, "Christmas", info.Public[0].Name)
	assert.Equal(t, "in 5 days", info.Relative.Text)

	rec = do(t, s, http.MethodGet, "/api/days/2025-13-01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelativeEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/relative?date=2026-01-15&ref=2025-12-20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var label relative.Label
	decode(t, rec, &label)
	assert.Equal(t, "in 3 weeks and 5 days", label.Text)
	assert.Equal(t, 26, label.Days)

	rec = do(t, s, http.MethodGet, "/api/relative?date=2025-12-19", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &label)
	assert.Equal(t, "yesterday", label.Text)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/relative?date=2025-12-19&locale=fr", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/relative?date=tomorrow", "").Code)
}

func TestYearViews(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/weeks/2026", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var weeks []overview.WeekRow
	decode(t, rec, &weeks)
	assert.Len(t, weeks, 53)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/weeks/abc", "").Code)

	rec = do(t, s, http.MethodGet, "/api/holidays/2025", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hols []overview.HolidayRow
	decode(t, rec, &hols)
	require.Len(t, hols, 1)
	assert.Equal(t, "Christmas", hols[0].Name)

	rec = do(t, s, http.MethodGet, "/api/holidays/1999", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = do(t, s, http.MethodGet, "/api/moon/upcoming?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var moons []overview.MoonRow
	decode(t, rec, &moons)
	require.Len(t, moons, 2)
	assert.Equal(t, "2025-12-27", moons[1].Date.String())

	do(t, s, http.MethodGet, "/api/holidays/2024", "")
	rec = do(t, s, http.MethodGet, "/api/years", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var years []yearStatus
	decode(t, rec, &years)
	require.Len(t, years, 5)
	assert.Equal(t, 2024, years[0].Year)
	assert.Equal(t, "loaded", years[1].State)
	assert.Equal(t, "unavailable", years[0].State)
	assert.Equal(t, "not_fetched", years[4].State)
}

func TestYearFile(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/data/2025.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Christmas")

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/data/1999.json", "").Code)
}

const exportBody = `{
  "holidays": [
    {"name": "Christmas", "type": "public", "date": "2025-12-25"},
    {"name": "Sinterklaas", "type": "observance", "date": "2025-12-05"}
  ],
  "school_holidays": [
    {"name": "Christmas break", "start": "2025-12-20", "end": "2026-01-04", "regions": ["north", "south"]}
  ],
  "filename": "feestdagen",
  "filter": {"include_holidays": true, "include_school_holidays": true, "regions": ["north"]}
}`

func TestExportEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/export", exportBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, ics.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="feestdagen.ics"`, rec.Header().Get("Content-Disposition"))

	body := rec.Body.String()
	assert.Contains(t, body, "UID:20251225-christmas@example.com\r\n")
	assert.Contains(t, body, "SUMMARY:Christmas break (Noord)\r\n")
	assert.Contains(t, body, "DTEND;VALUE=DATE:20260105\r\n")
	assert.NotContains(t, body, "Sinterklaas")
}

func TestExportEndpointEmptyAndInvalid(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/export", `{"holidays": [{"name": "Christmas", "type": "public", "date": "2025-12-25"}], "filter": {}}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/export", `{"holidays": [{"type": "public", "date": "2025-12-25"}], "filter": {"include_holidays": true}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name is required")

	rec = do(t, s, http.MethodPost, "/api/export", `{"holidays": [{"name": "X", "type": "bank", "date": "2025-12-25"}], "filter": {"include_holidays": true}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be one of public, observance")

	rec = do(t, s, http.MethodPost, "/api/export", `{"holidays": [{"name": "X", "type": "public", "date": "2025-02-30"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
