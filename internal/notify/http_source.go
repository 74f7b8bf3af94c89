package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DanielAnoka/EMS-sub000/internal/domain"
	"github.com/sony/gobreaker/v2"
)

// HTTPSource talks to the upstream notification API over JSON. All calls
// go through a circuit breaker so a flapping upstream fails fast instead
// of tying up request handlers.
type HTTPSource struct {
	client  *http.Client
	baseURL string
	breaker *gobreaker.CircuitBreaker[[]domain.Notification]
}

func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	settings := gobreaker.Settings{
		Name:    "notification-source",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &HTTPSource{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		breaker: gobreaker.NewCircuitBreaker[[]domain.Notification](settings),
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, identity string) ([]domain.Notification, error) {
	return s.breaker.Execute(func() ([]domain.Notification, error) {
		url := fmt.Sprintf("%s/notifications?user_id=%s", s.baseURL, identity)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build fetch request: %w", err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch notifications: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch notifications: unexpected status %d", resp.StatusCode)
		}

		var records []domain.Notification
		if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode notifications: %w", err)
		}
		return records, nil
	})
}

func (s *HTTPSource) MarkRead(ctx context.Context, id int64) error {
	_, err := s.breaker.Execute(func() ([]domain.Notification, error) {
		payload, err := json.Marshal(map[string]interface{}{
			"id":      id,
			"is_read": domain.NotificationRead,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal commit payload: %w", err)
		}

		url := fmt.Sprintf("%s/notifications/%d/read", s.baseURL, id)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build commit request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("commit read state: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return nil, fmt.Errorf("%w: unexpected status %d", ErrCommitFailed, resp.StatusCode)
		}
		return nil, nil
	})
	return err
}
