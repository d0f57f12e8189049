package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hackgods/appointment-booking/internal/appointment"
	"github.com/hackgods/appointment-booking/internal/flash"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	pageIndex        = "index.html"
	pageAppointments = "appointments.html"
)

// pages maps a page file to its template set, each parsed together with the layout.
var pages = map[string]*template.Template{
	pageIndex:        parsePage(pageIndex),
	pageAppointments: parsePage(pageAppointments),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
}

// pageData is everything a page can show. Rendering depends on nothing else.
type pageData struct {
	Notice       *flash.Message
	Date         string
	Time         string
	Appointments []appointment.Appointment
}

// renderPage executes into a buffer first so a template failure never leaves
// a half-written 200 response.
func renderPage(w http.ResponseWriter, logger *slog.Logger, status int, page string, data pageData) {
	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		internalError(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
