package authclient

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"bhashagen/pkg/domain"
)

// Client resolves users against the auth service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents an auth service error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs an auth service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Me returns the user for a session token.
func (c *Client) Me(token string) (domain.User, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return domain.User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.User{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return domain.User{}, &APIError{Status: resp.StatusCode, Message: msg}
	}
	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
