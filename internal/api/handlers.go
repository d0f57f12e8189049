package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hackgods/appointment-booking/internal/flash"
	"github.com/hackgods/appointment-booking/internal/metrics"
)

const flashParam = "flash"

type appointmentHandlers struct {
	svc    AppointmentService
	flash  flash.Store // nil when flash messages are disabled
	logger *slog.Logger
}

// bookingForm handles GET /.
func (h *appointmentHandlers) bookingForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, h.logger, http.StatusOK, pageIndex, pageData{
		Notice: h.takeNotice(r),
	})
}

// listAppointments handles GET /appointments.
func (h *appointmentHandlers) listAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := h.svc.List(r.Context())
	if err != nil {
		internalError(w, h.logger, err)
		return
	}

	renderPage(w, h.logger, http.StatusOK, pageAppointments, pageData{
		Notice:       h.takeNotice(r),
		Appointments: appts,
	})
}

// createAppointment handles POST /appointments.
func (h *appointmentHandlers) createAppointment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "could not parse form", http.StatusBadRequest)
		return
	}

	date := r.PostForm.Get("date")
	clock := r.PostForm.Get("time")

	result, err := h.svc.Book(r.Context(), date, clock)
	if err != nil {
		metrics.IncBooking("error")
		internalError(w, h.logger, err)
		return
	}
	metrics.IncBooking(string(result.Reason))

	h.logger.InfoContext(r.Context(), "booking attempt",
		"date", date,
		"time", clock,
		"outcome", result.Reason,
		"request_id", GetRequestID(r.Context()),
	)

	if result.Success {
		h.redirectWithNotice(w, r, "/appointments", flash.Message{Kind: flash.KindSuccess, Text: result.Message})
		return
	}

	notice := flash.Message{Kind: flash.KindError, Text: result.Message}
	if h.flash == nil {
		// no flash store: show the form again with the error and the user's input
		renderPage(w, h.logger, http.StatusUnprocessableEntity, pageIndex, pageData{
			Notice: &notice,
			Date:   date,
			Time:   clock,
		})
		return
	}
	h.redirectWithNotice(w, r, "/", notice)
}

// redirectWithNotice stores msg as a flash message and redirects to target
// carrying its token. Without a flash store, or if storing fails, the
// redirect goes out bare.
func (h *appointmentHandlers) redirectWithNotice(w http.ResponseWriter, r *http.Request, target string, msg flash.Message) {
	if h.flash != nil {
		token, err := h.flash.Put(r.Context(), msg)
		if err != nil {
			metrics.IncFlashFailure()
			h.logger.WarnContext(r.Context(), "store flash message", "error", err)
		} else {
			target += "?" + url.Values{flashParam: {token}}.Encode()
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *appointmentHandlers) takeNotice(r *http.Request) *flash.Message {
	token := r.URL.Query().Get(flashParam)
	if h.flash == nil || token == "" {
		return nil
	}

	msg, ok, err := h.flash.Take(r.Context(), token)
	if err != nil {
		metrics.IncFlashFailure()
		h.logger.WarnContext(r.Context(), "read flash message", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	return &msg
}
