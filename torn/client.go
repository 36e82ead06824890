// Package torn fetches faction membership from the Torn API.
package torn

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

	"faction-oc-bot/models"

	"github.com/rs/zerolog/log"
)

const routeFactionMembers = "/v2/faction/members"

// ErrUnavailable marks a fetch that produced no data: a transport failure,
// a non-2xx status or an error payload.
var ErrUnavailable = errors.New("torn api unavailable")

// apiError is the body Torn returns (with status 200) for a rejected request.
type apiError struct {
	Error *struct {
		Code  int    `json:"code"`
		Error string `json:"error"`
	} `json:"error"`
}

// Client calls the Torn API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for baseURL (e.g. https://api.torn.com).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchMembers returns the faction's member list for apiKey.
// The key is never included in returned errors.
func (c *Client) FetchMembers(ctx context.Context, apiKey string) ([]models.FactionMember, error) {
	query := url.Values{"key": {apiKey}}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+routeFactionMembers+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	res, err := c.http.Do(request)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read response: %v", ErrUnavailable, err)
	}
	log.Debug().Int("status", res.StatusCode).Int("bytes", len(body)).Msg("Torn API response")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d %s", ErrUnavailable, res.StatusCode, http.StatusText(res.StatusCode))
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != nil {
		return nil, fmt.Errorf("%w: code %d: %s", ErrUnavailable, apiErr.Error.Code, apiErr.Error.Error)
	}

	var decoded models.FactionMembersResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: could not decode members: %v", ErrUnavailable, err)
	}
	return decoded.Members, nil
}
