package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/appointment-booking/internal/api"
	"github.com/hackgods/appointment-booking/internal/appointment"
	"github.com/hackgods/appointment-booking/internal/flash"
)

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
}

func TestRandomSlot_FutureOfficeHours(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		date, clock := randomSlot(now)

		at, err := time.Parse("2006-01-02 15:04", date+" "+clock)
		require.NoError(t, err)
		assert.True(t, at.After(now), "%s %s", date, clock)
		assert.True(t, at.Before(now.AddDate(0, 0, 61)), "%s %s", date, clock)
		assert.GreaterOrEqual(t, at.Hour(), 9)
		assert.LessOrEqual(t, at.Hour(), 16)
		assert.Contains(t, []int{0, 30}, at.Minute())
	}
}

func TestSubmit(t *testing.T) {
	for name, store := range map[string]flash.Store{
		"with flash":    flash.NewMemoryStore(time.Minute),
		"without flash": nil,
	} {
		t.Run(name, func(t *testing.T) {
			svc := appointment.NewService(appointment.NewMemoryRepository(), nil)
			srv := httptest.NewServer(api.NewRouter(api.RouterConfig{Service: svc, Flash: store}))
			defer srv.Close()
			client := noRedirectClient()
			ctx := context.Background()

			ok, err := submit(ctx, client, srv.URL, "2099-04-01", "14:00")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = submit(ctx, client, srv.URL, "2099-04-01", "14:00")
			require.NoError(t, err)
			assert.False(t, ok, "duplicate slot")

			ok, err = submit(ctx, client, srv.URL, "2001-01-01", "14:00")
			require.NoError(t, err)
			assert.False(t, ok, "past slot")

			appts, err := svc.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []appointment.Appointment{{Date: "2099-04-01", Time: "14:00"}}, appts)
		})
	}
}

func TestSubmit_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := submit(context.Background(), noRedirectClient(), srv.URL, "2099-04-01", "14:00")

	assert.ErrorContains(t, err, "unexpected status 500")
}
