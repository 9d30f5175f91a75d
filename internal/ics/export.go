package ics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"daycal/internal/fsutil"
	appLog "daycal/internal/log"
	"daycal/internal/model"
)

// ContentType is the MIME type of exported documents.
const ContentType = "text/calendar;charset=utf-8"

// Download is a finished document ready to be handed to the user.
type Download struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Saver delivers a Download, e.g. to disk or as an HTTP attachment.
type Saver interface {
	Save(ctx context.Context, d Download) error
}

// Result describes what Export did.
type Result struct {
	// Skipped is true when no event matched; the saver was not called.
	Skipped  bool   `json:"skipped"`
	Events   int    `json:"events"`
	Filename string `json:"filename,omitempty"`
	Bytes    int    `json:"bytes"`
}

// Exporter builds, serializes and delivers calendars. The zero value is
// usable; the defaults apply when a bundle leaves its metadata empty.
type Exporter struct {
	Defaults Calendar
	Filename string

	// Verify re-parses each document before delivery.
	Verify bool
}

// Export builds the events selected by f. An empty selection is not an
// error: Result.Skipped is set and nothing is saved.
func (x *Exporter) Export(ctx context.Context, b model.Bundle, f Filter, s Saver) (Result, error) {
	events := BuildEvents(b, f)
	if len(events) == 0 {
		appLog.Info("ics export skipped; nothing selected")
		return Result{Skipped: true}, nil
	}

	cal := Calendar{Name: b.CalendarName, Domain: b.Domain}
	if cal.Name == "" {
		cal.Name = x.Defaults.Name
	}
	if cal.Domain == "" {
		cal.Domain = x.Defaults.Domain
	}
	body := Serialize(cal, events)

	if x.Verify {
		if _, err := Verify(body); err != nil {
			return Result{}, err
		}
	}

	d := Download{
		Filename:    x.filename(b.Filename) + ".ics",
		ContentType: ContentType,
		Content:     body,
	}
	if err := s.Save(ctx, d); err != nil {
		return Result{}, fmt.Errorf("ics: save %s: %w", d.Filename, err)
	}

	appLog.Info("ics export completed", "file", d.Filename, "events", len(events), "bytes", len(body))
	return Result{Events: len(events), Filename: d.Filename, Bytes: len(body)}, nil
}

func (x *Exporter) filename(fromBundle string) string {
	name := strings.TrimSpace(fromBundle)
	if name == "" {
		name = strings.TrimSpace(x.Filename)
	}
	name = strings.TrimSuffix(filepath.Base(name), ".ics")
	if name == "" || name == "." || name == string(filepath.Separator) {
		return DefaultFilename
	}
	return name
}

// FileSaver writes downloads into Dir atomically (temp file + rename).
type FileSaver struct {
	Dir string
}

func (fs FileSaver) Save(ctx context.Context, d Download) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.Filename == "" {
		return errors.New("ics: empty filename")
	}
	dir := fs.Dir
	if dir == "" {
		dir = "."
	}
	return fsutil.WriteFileAtomic(filepath.Join(dir, filepath.Base(d.Filename)), d.Content, 0o755, 0o644)
}

// ResponseSaver writes downloads to an HTTP response as an attachment.
type ResponseSaver struct {
	W http.ResponseWriter
}

func (rs ResponseSaver) Save(_ context.Context, d Download) error {
	h := rs.W.Header()
	h.Set("Content-Type", d.ContentType)
	h.Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(d.Filename, `"`, "")+`"`)
	h.Set("Content-Length", strconv.Itoa(len(d.Content)))
	rs.W.WriteHeader(http.StatusOK)
	_, err := rs.W.Write(d.Content)
	return err
}
