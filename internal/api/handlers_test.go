package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/appointment-booking/internal/api"
	"github.com/hackgods/appointment-booking/internal/appointment"
	"github.com/hackgods/appointment-booking/internal/flash"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// mockService is a test double for api.AppointmentService.
type mockService struct {
	book func(ctx context.Context, date, time string) (appointment.Result, error)
	list func(ctx context.Context) ([]appointment.Appointment, error)
}

func (m *mockService) Book(ctx context.Context, date, time string) (appointment.Result, error) {
	return m.book(ctx, date, time)
}
func (m *mockService) List(ctx context.Context) ([]appointment.Appointment, error) {
	return m.list(ctx)
}

var _ api.AppointmentService = (*mockService)(nil)
var _ api.AppointmentService = (*appointment.Service)(nil)

// failingFlash is a flash.Store whose backend is unreachable.
type failingFlash struct{}

func (failingFlash) Put(context.Context, flash.Message) (string, error) {
	return "", errors.New("redis down")
}
func (failingFlash) Take(context.Context, string) (flash.Message, bool, error) {
	return flash.Message{}, false, errors.New("redis down")
}

// ---- helpers ---------------------------------------------------------------

func newService() *appointment.Service {
	return appointment.NewService(appointment.NewMemoryRepository(), nil,
		appointment.WithClock(func() time.Time { return testNow }))
}

func newRouter(svc api.AppointmentService, store flash.Store) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Service: svc,
		Flash:   store,
		Env:     "test",
		Version: "dev",
	})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, h http.Handler, date, clock string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"date": {date}, "time": {clock}}
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---- GET / -----------------------------------------------------------------

func TestBookingForm_200(t *testing.T) {
	rec := get(t, newRouter(newService(), nil), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "Book an Appointment")
	assert.Contains(t, body, `name="date"`)
	assert.Contains(t, body, `name="time"`)
	assert.NotContains(t, body, `class="error"`)
}

// ---- GET /appointments -----------------------------------------------------

func TestListAppointments_Empty(t *testing.T) {
	rec := get(t, newRouter(newService(), nil), "/appointments")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You have no appointments scheduled.")
	assert.NotContains(t, rec.Body.String(), "<li>")
}

func TestListAppointments_ShowsRecordsInOrder(t *testing.T) {
	svc := newService()
	_, err := svc.Book(context.Background(), "2030-04-02", "09:00")
	require.NoError(t, err)
	_, err = svc.Book(context.Background(), "2030-04-01", "14:00")
	require.NoError(t, err)

	rec := get(t, newRouter(svc, nil), "/appointments")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	first := strings.Index(body, "Date: 2030-04-02, Time: 09:00")
	second := strings.Index(body, "Date: 2030-04-01, Time: 14:00")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
	assert.NotContains(t, body, "You have no appointments scheduled.")
}

func TestListAppointments_EscapesInput(t *testing.T) {
	svc := newService()
	_, err := svc.Book(context.Background(), "<script>alert(1)</script>", "14:00")
	require.NoError(t, err)

	rec := get(t, newRouter(svc, nil), "/appointments")

	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestListAppointments_ServiceError(t *testing.T) {
	svc := &mockService{
		list: func(context.Context) ([]appointment.Appointment, error) { return nil, errors.New("db exploded") },
	}

	rec := get(t, newRouter(svc, nil), "/appointments")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db exploded")
}

// ---- POST /appointments, flash enabled --------------------------------------

func TestCreateAppointment_SuccessRedirectsToListWithNotice(t *testing.T) {
	h := newRouter(newService(), flash.NewMemoryStore(time.Minute))

	rec := postForm(t, h, "2030-04-01", "14:00")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/appointments?flash="), location)

	page := get(t, h, location)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `<p class="message">Appointment booked successfully</p>`)
	assert.Contains(t, page.Body.String(), "Date: 2030-04-01, Time: 14:00")

	// the notice is shown once
	again := get(t, h, location)
	assert.NotContains(t, again.Body.String(), "Appointment booked successfully")
}

func TestCreateAppointment_PastRedirectsToFormWithError(t *testing.T) {
	svc := newService()
	h := newRouter(svc, flash.NewMemoryStore(time.Minute))
	yesterday := testNow.AddDate(0, 0, -1).Format("2006-01-02")

	rec := postForm(t, h, yesterday, "14:00")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/?flash="), location)

	page := get(t, h, location)
	assert.Contains(t, page.Body.String(), `<p class="error">Cannot book appointments in the past</p>`)

	appts, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, appts)
}

func TestCreateAppointment_DuplicateRedirectsToFormWithError(t *testing.T) {
	svc := newService()
	_, err := svc.Book(context.Background(), "2030-04-01", "14:00")
	require.NoError(t, err)
	h := newRouter(svc, flash.NewMemoryStore(time.Minute))

	rec := postForm(t, h, "2030-04-01", "14:00")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	page := get(t, h, rec.Header().Get("Location"))
	assert.Contains(t, page.Body.String(), "The selected time is unavailable")
}

func TestCreateAppointment_FlashStoreDownStillRedirects(t *testing.T) {
	h := newRouter(newService(), failingFlash{})

	rec := postForm(t, h, "2030-04-01", "14:00")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/appointments", rec.Header().Get("Location"))

	page := get(t, h, "/appointments?flash=whatever")
	assert.Equal(t, http.StatusOK, page.Code)
}

func TestBookingForm_UnknownFlashTokenIgnored(t *testing.T) {
	h := newRouter(newService(), flash.NewMemoryStore(time.Minute))

	rec := get(t, h, "/?flash=does-not-exist")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `class="error"`)
}

// ---- POST /appointments, flash disabled -------------------------------------

func TestCreateAppointment_NoFlashSuccessRedirectsBare(t *testing.T) {
	h := newRouter(newService(), nil)

	rec := postForm(t, h, "2030-04-01", "14:00")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/appointments", rec.Header().Get("Location"))
}

func TestCreateAppointment_NoFlashFailureRerendersForm(t *testing.T) {
	svc := newService()
	_, err := svc.Book(context.Background(), "2030-04-01", "14:00")
	require.NoError(t, err)

	rec := postForm(t, newRouter(svc, nil), "2030-04-01", "14:00")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<p class="error">The selected time is unavailable</p>`)
	assert.Contains(t, body, `value="2030-04-01"`)
	assert.Contains(t, body, `value="14:00"`)
}

// ---- POST /appointments, faults ---------------------------------------------

func TestCreateAppointment_ServiceError(t *testing.T) {
	svc := &mockService{
		book: func(context.Context, string, string) (appointment.Result, error) {
			return appointment.Result{}, errors.New("db exploded")
		},
	}

	rec := postForm(t, newRouter(svc, nil), "2030-04-01", "14:00")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCreateAppointment_PassesFormFields(t *testing.T) {
	var gotDate, gotTime string
	svc := &mockService{
		book: func(_ context.Context, date, clock string) (appointment.Result, error) {
			gotDate, gotTime = date, clock
			return appointment.Result{Success: true, Reason: appointment.ReasonBooked, Message: appointment.MessageBooked}, nil
		},
	}

	postForm(t, newRouter(svc, nil), "2030-04-01", "14:00")

	assert.Equal(t, "2030-04-01", gotDate)
	assert.Equal(t, "14:00", gotTime)
}

func TestCreateAppointment_BodyTooLarge(t *testing.T) {
	h := api.NewRouter(api.RouterConfig{Service: newService(), MaxFormBytes: 32})
	form := url.Values{"date": {strings.Repeat("9", 100)}, "time": {"14:00"}}
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// ---- router extras ---------------------------------------------------------

func TestRouter_SetsRequestID(t *testing.T) {
	rec := get(t, newRouter(newService(), nil), "/")

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_KeepsIncomingRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()

	newRouter(newService(), nil).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRouter_CORSAnyOrigin(t *testing.T) {
	h := api.NewRouter(api.RouterConfig{Service: newService(), CORSOrigins: []string{"*"}})
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Metrics(t *testing.T) {
	rec := get(t, newRouter(newService(), nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
}
