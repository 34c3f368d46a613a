package authclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"bhashagen/pkg/domain"
	"bhashagen/pkg/store"
)

// Client calls the auth service over HTTP.
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

func (c *Client) SignUp(email, password string) (domain.User, string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.doJSON(http.MethodPost, "/auth/signup", "", payload, &resp); err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (c *Client) Login(email, password string) (domain.User, string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.doJSON(http.MethodPost, "/auth/login", "", payload, &resp); err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (c *Client) Logout(token string) error {
	return c.doJSON(http.MethodPost, "/auth/logout", token, nil, nil)
}

func (c *Client) Me(token string) (domain.User, error) {
	var user domain.User
	if err := c.doJSON(http.MethodGet, "/auth/me", token, nil, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (c *Client) JWKS() ([]store.JWK, error) {
	var resp jwksResponse
	if err := c.doJSON(http.MethodGet, "/auth/jwks", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Keys, nil
}

func (c *Client) doJSON(method, path, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	url := c.baseURL + path
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
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
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return err
	}
	return nil
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type jwksResponse struct {
	Keys []store.JWK `json:"keys"`
}
