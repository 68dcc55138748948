// Package upstream is the HTTP client for the ticketing service that owns
// every event and ticket. Calls are fire-and-await with no retry or backoff;
// a failure surfaces to the caller and prior state stands.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"ticketdesk/internal/dto"
	"ticketdesk/internal/model"
)

var ErrUnavailable = errors.New("ticketing service unavailable")

// APIError is a non-2xx answer from the ticketing service, carrying its
// reported reason when the body had one.
type APIError struct {
	Status int
	Reason string
}

func (e *APIError) Error() string {
	return e.Reason
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zerolog.Logger
}

func New(baseURL string, log *zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		log:     log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("ticketing service call failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Error string `json:"error"`
		}
		reason := fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
		if err := json.Unmarshal(data, &failure); err == nil && failure.Error != "" {
			reason = failure.Error
		}
		return &APIError{Status: resp.StatusCode, Reason: reason}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) Events(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.do(ctx, http.MethodGet, "/api/admin/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) Event(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	if err := c.do(ctx, http.MethodGet, "/api/admin/events/"+url.PathEscape(id), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) CreateEvent(ctx context.Context, payload dto.EventPayload) (*model.Event, error) {
	var event model.Event
	if err := c.do(ctx, http.MethodPost, "/api/admin/events", payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id string, payload dto.EventPayload) (*model.Event, error) {
	var event model.Event
	if err := c.do(ctx, http.MethodPut, "/api/admin/events/"+url.PathEscape(id), payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/events/"+url.PathEscape(id), nil, nil)
}

// Tickets lists tickets, optionally scoped to one event.
func (c *Client) Tickets(ctx context.Context, eventID string) ([]model.Ticket, error) {
	path := "/api/admin/tickets"
	if eventID != "" {
		query := url.Values{}
		query.Set("eventId", eventID)
		path += "?" + query.Encode()
	}
	var tickets []model.Ticket
	if err := c.do(ctx, http.MethodGet, path, nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *Client) ValidateTicket(ctx context.Context, ticketID, validatedBy string) error {
	body := map[string]string{"validatedBy": validatedBy}
	return c.do(ctx, http.MethodPost, "/api/tickets/"+url.PathEscape(ticketID)+"/validate", body, nil)
}

func (c *Client) Statistics(ctx context.Context) (*model.Statistics, error) {
	var stats model.Statistics
	if err := c.do(ctx, http.MethodGet, "/api/admin/statistics", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
