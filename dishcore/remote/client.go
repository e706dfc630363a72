package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"cibo-compass/dishcore/domain"

	"github.com/sirupsen/logrus"
)

const NationalityHeader = "X-User-Nationality"

var (
	ErrDishNotFound        = errors.New("dish not found")
	ErrMalformedPayload    = errors.New("malformed dish payload")
	ErrFeedbackNotAccepted = errors.New("feedback not accepted")
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type dishEnvelope struct {
	Success bool         `json:"success"`
	Data    *domain.Dish `json:"data"`
}

type feedbackRequest struct {
	Feedback domain.Feedback `json:"feedback"`
}

// Client talks to the remote dish API. It owns no state beyond its
// configuration and is safe for concurrent use.
type Client struct {
	baseURL string
	client  HTTPClient
	log     logrus.FieldLogger
}

func NewClient(baseURL string, client HTTPClient, log logrus.FieldLogger) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     log,
	}
}

func (c *Client) dishURL(name string) string {
	return c.baseURL + "/dishes/" + url.PathEscape(name)
}

// GetDish fetches a dish with like/dislike counts scoped to nationality.
// A non-2xx status, success:false or a missing data object is reported as
// ErrDishNotFound.
func (c *Client) GetDish(ctx context.Context, name string, nationality domain.Nationality) (*domain.Dish, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.dishURL(name), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(NationalityHeader, string(nationality))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dish %q: %w", name, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"dish":        name,
		"nationality": nationality,
		"status":      resp.StatusCode,
	}).Debug("dish api response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrDishNotFound
	}

	var envelope dishEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, ErrDishNotFound
	}

	dish := envelope.Data
	dish.Normalize()
	return dish, nil
}

// SendFeedback posts a like/dislike vote for the dish under nationality. The
// response body is not inspected.
func (c *Client) SendFeedback(ctx context.Context, name string, nationality domain.Nationality, feedback domain.Feedback) error {
	body, err := json.Marshal(feedbackRequest{Feedback: feedback})
	if err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.dishURL(name)+"/feedback", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(NationalityHeader, string(nationality))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send feedback for %q: %w", name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrFeedbackNotAccepted, resp.StatusCode)
	}
	return nil
}
