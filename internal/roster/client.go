package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/EO-DataHub/eodhp-user-sync/models"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// HTTPError is returned when the roster endpoint answers with a non-200 status.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// Client fetches the user roster from the identity service.
type Client struct {
	URL        string
	Login      string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a roster client with an explicit request timeout.
func NewClient(url, login, token string, timeout time.Duration) *Client {
	return &Client{
		URL:   url,
		Login: login,
		Token: token,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchUsers issues a single GET against the roster endpoint and decodes the entries.
func (c *Client) FetchUsers(ctx context.Context) ([]models.RosterEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.Login, c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: c.URL, Message: string(body)}
	}

	return DecodeEntries(resp.Body)
}

// DecodeEntries decodes a UTF-8 JSON array of roster entries, tolerating a leading byte-order mark.
func DecodeEntries(r io.Reader) ([]models.RosterEntry, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())

	var entries []models.RosterEntry
	if err := json.NewDecoder(transform.NewReader(r, decoder)).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode roster: %w", err)
	}
	return entries, nil
}
