// Package deckclient talks to a flashdeck server's deck endpoints. Client
// satisfies study.DeckSource so the terminal study loop can run against a
// remote deck store.
package deckclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
)

const DefaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for the server at baseURL. A non-empty token is sent
// as a bearer Authorization header on every request.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logger.Default().WithPrefix("deckclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type saveAnswersBody struct {
	Answers []models.Answer `json:"answers"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetDeck fetches a deck with its cards. A missing deck is (nil, nil), the
// same as the repository layer.
func (c *Client) GetDeck(ctx context.Context, id string) (*models.Deck, error) {
	var deck models.Deck
	err := c.do(ctx, http.MethodGet, "/api/decks/"+url.PathEscape(id), nil, &deck)
	if errors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).WithPrefix("deckclient").Info("fetched deck %s with %d cards", deck.ID, len(deck.Cards))
	return &deck, nil
}

// SaveAnswers sends a batch of answers. The server upserts them, so a retry
// after a lost response is safe.
func (c *Client) SaveAnswers(ctx context.Context, deckID string, answers []models.Answer) error {
	return c.do(ctx, http.MethodPost, "/api/study/save-answer/"+url.PathEscape(deckID), saveAnswersBody{Answers: answers}, nil)
}

// RestartDeck clears every card's progress on the server.
func (c *Client) RestartDeck(ctx context.Context, deckID string) error {
	return c.do(ctx, http.MethodPost, "/api/decks/restart/"+url.PathEscape(deckID), nil, nil)
}

func (c *Client) Stats(ctx context.Context, deckID string) (*models.DeckStats, error) {
	var stats models.DeckStats
	if err := c.do(ctx, http.MethodGet, "/api/decks/"+url.PathEscape(deckID)+"/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	log := logger.FromContext(ctx).WithPrefix("deckclient").WithFields(map[string]any{"method": method, "path": path})

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.NewInternalError(err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return errors.NewInternalError(err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log.Debug("sending request")
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return errors.NewUnavailableError("deck api", err)
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return errors.NewUnavailableError("deck api", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// statusError maps an error response onto the AppError the server would have produced.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var eb errorBody
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &eb) == nil && eb.Error.Message != "" {
		msg = eb.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return &errors.AppError{Code: errors.ErrCodeNotFound, Message: msg, Status: http.StatusNotFound}
	case http.StatusBadRequest:
		if eb.Error.Code == errors.ErrCodeValidation {
			return &errors.AppError{Code: errors.ErrCodeValidation, Message: msg, Status: http.StatusBadRequest}
		}
		return errors.NewBadRequestError(msg)
	case http.StatusUnprocessableEntity:
		return errors.NewUnprocessableError(msg, nil)
	default:
		return errors.NewUnavailableError("deck api", fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}
}
