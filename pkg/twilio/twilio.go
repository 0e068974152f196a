package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/kermits/telassist/agent/contract"
)

const defaultBaseURL = "https://api.twilio.com"

type Config struct {
	AccountSID string        `envconfig:"ACCOUNT_SID" split_words:"true" required:"true"`
	AuthToken  string        `envconfig:"AUTH_TOKEN" split_words:"true" required:"true"`
	FromNumber string        `envconfig:"FROM_NUMBER" split_words:"true" required:"true"`
	BaseURL    string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.twilio.com"`
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// Client sends SMS through the Twilio messages REST endpoint.
type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
}

var _ contractx.Notifier = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" {
		return nil, errors.New("twilio account sid is required")
	}
	if strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, errors.New("twilio auth token is required")
	}
	if strings.TrimSpace(cfg.FromNumber) == "" {
		return nil, errors.New("twilio from number is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		accountSID: strings.TrimSpace(cfg.AccountSID),
		authToken:  strings.TrimSpace(cfg.AuthToken),
		fromNumber: strings.TrimSpace(cfg.FromNumber),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

type messageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"message"`
}

// SendMessage posts one SMS. A non-2xx response is reported in the receipt,
// not as an error; only transport failures error out.
func (c *Client) SendMessage(ctx context.Context, destination, body string) (contractx.MessageReceipt, error) {
	form := url.Values{}
	form.Set("To", destination)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return contractx.MessageReceipt{}, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contractx.MessageReceipt{}, fmt.Errorf("twilio: send message: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return contractx.MessageReceipt{}, fmt.Errorf("twilio: read response: %w", err)
	}

	var parsed messageResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		parsed = messageResponse{ErrorMessage: strings.TrimSpace(string(payload))}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return contractx.MessageReceipt{
			Success: false,
			Error:   fmt.Sprintf("status %d: %s", resp.StatusCode, parsed.ErrorMessage),
		}, nil
	}

	return contractx.MessageReceipt{Success: true, MessageID: parsed.SID}, nil
}
