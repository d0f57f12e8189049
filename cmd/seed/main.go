package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"
)

// seed books a batch of random future appointments through the public form
// endpoint, so it works against either store backend.
func main() {
	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	baseURL := strings.TrimRight(getEnv("SEED_API_BASE_URL", "http://localhost:8080"), "/")
	count, err := strconv.Atoi(getEnv("SEED_COUNT", "20"))
	if err != nil || count <= 0 {
		logger.Error("SEED_COUNT must be a positive integer", "value", os.Getenv("SEED_COUNT"))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger.Info("seed starting", "base_url", baseURL, "count", count)

	client := &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	var booked, rejected int
	for i := 0; i < count; i++ {
		date, clock := randomSlot(time.Now())
		ok, err := submit(ctx, client, baseURL, date, clock)
		if err != nil {
			logger.Error("seed request failed", "date", date, "time", clock, "error", err)
			os.Exit(1)
		}
		if ok {
			booked++
		} else {
			rejected++
		}
	}

	logger.Info("seed complete", "booked", booked, "rejected", rejected)
}

// randomSlot picks an on-the-hour or half-hour slot between tomorrow and 60
// days out, during office hours.
func randomSlot(now time.Time) (date, clock string) {
	day := gofakeit.DateRange(now.AddDate(0, 0, 1), now.AddDate(0, 0, 60))
	hour := gofakeit.Number(9, 16)
	minute := 0
	if gofakeit.Bool() {
		minute = 30
	}
	return day.Format("2006-01-02"), fmt.Sprintf("%02d:%02d", hour, minute)
}

// submit posts one booking form. It reports true when the server redirected
// to the appointment list.
func submit(ctx context.Context, client *http.Client, baseURL, date, clock string) (bool, error) {
	form := url.Values{"date": {date}, "time": {clock}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/appointments", strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusSeeOther:
		return strings.HasPrefix(resp.Header.Get("Location"), "/appointments"), nil
	case http.StatusUnprocessableEntity:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
