package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type SimConfig struct {
	APIBaseURL string
	Duration   time.Duration
	Workers    int
	Slots      int
	ReadRatio  float64
}

type Simulator struct {
	config SimConfig
	slots  [][2]string
	client *http.Client
	logger *slog.Logger

	Booking OperationStats
	List    OperationStats
}

// simulate hammers a running api-server with concurrent bookings for a small
// set of shared slots, then checks that no slot was booked twice.
func main() {
	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger.Info("simulator starting",
		"base_url", cfg.APIBaseURL,
		"duration", cfg.Duration.String(),
		"workers", cfg.Workers,
		"slots", cfg.Slots,
		"read_ratio", cfg.ReadRatio,
	)

	sim := &Simulator{
		config: cfg,
		slots:  buildSlots(time.Now(), cfg.Slots),
		client: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}

	sim.Run()
	dups, total, err := sim.Verify(context.Background())
	sim.PrintReport(dups, total, err)

	if err != nil || len(dups) > 0 {
		os.Exit(1)
	}
}

func loadConfig() SimConfig {
	return SimConfig{
		APIBaseURL: strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:   getDuration("SIM_DURATION", 10*time.Second),
		Workers:    getInt("SIM_WORKERS", 10),
		Slots:      getInt("SIM_SLOTS", 20),
		ReadRatio:  getFloat("SIM_READ_RATIO", 0.2),
	}
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Slots <= 0 {
		return fmt.Errorf("SIM_SLOTS must be > 0")
	}
	if cfg.ReadRatio < 0 || cfg.ReadRatio > 1 {
		return fmt.Errorf("SIM_READ_RATIO must be between 0 and 1")
	}
	return nil
}

// buildSlots returns n distinct slots on consecutive half hours starting a
// year from now, far enough out that none of them is in the past.
func buildSlots(now time.Time, n int) [][2]string {
	start := time.Date(now.Year()+1, now.Month(), now.Day(), 9, 0, 0, 0, time.UTC)
	slots := make([][2]string, n)
	for i := range slots {
		t := start.Add(time.Duration(i) * 30 * time.Minute)
		slots[i] = [2]string{t.Format("2006-01-02"), t.Format("15:04")}
	}
	return slots
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.logger.Info("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.logger.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if rng.Float64() < s.config.ReadRatio {
				s.doList(ctx)
			} else {
				s.doBooking(ctx, s.slots[rng.Intn(len(s.slots))])
			}
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, slot [2]string) {
	form := url.Values{"date": {slot[0]}, "time": {slot[1]}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/appointments", strings.NewReader(form.Encode()))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)

	if err != nil {
		if ctx.Err() == nil {
			s.Booking.Record(latency, outcomeError)
		}
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	s.Booking.Record(latency, classifyBooking(resp))
}

// classifyBooking maps a booking response to an outcome. Success redirects
// to the list; a rejection redirects back to the form or re-renders it.
func classifyBooking(resp *http.Response) outcome {
	switch resp.StatusCode {
	case http.StatusSeeOther:
		if strings.HasPrefix(resp.Header.Get("Location"), "/appointments") {
			return outcomeSuccess
		}
		return outcomeRejected
	case http.StatusUnprocessableEntity:
		return outcomeRejected
	default:
		return outcomeError
	}
}

func (s *Simulator) doList(ctx context.Context) {
	start := time.Now()
	_, err := s.fetchList(ctx)
	latency := time.Since(start)

	switch {
	case err == nil:
		s.List.Record(latency, outcomeSuccess)
	case ctx.Err() == nil:
		s.List.Record(latency, outcomeError)
	}
}

func (s *Simulator) fetchList(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+"/appointments", nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("list appointments: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Verify reads the final list and returns any slot booked more than once.
func (s *Simulator) Verify(ctx context.Context) (dups []string, total int, err error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	page, err := s.fetchList(ctx)
	if err != nil {
		return nil, 0, err
	}
	return duplicateSlots(page), countEntries(page), nil
}

func (s *Simulator) PrintReport(dups []string, total int, verifyErr error) {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Shared slots: %d\n", s.config.Slots)
	fmt.Println()

	s.Booking.Print("Booking")
	s.List.Print("List")

	switch {
	case verifyErr != nil:
		fmt.Printf("Verification failed: %v\n", verifyErr)
	case len(dups) > 0:
		fmt.Printf("DOUBLE BOOKINGS: %d slot(s) booked more than once: %s\n", len(dups), strings.Join(dups, "; "))
	default:
		fmt.Printf("Verification: %d appointments listed, no slot booked twice\n", total)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
