package genclient

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"bhashagen/pkg/domain"
)

// Client calls the generation service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents a generation service error response. Details carries
// the underlying provider failure when the service reports one.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a generation service client. The timeout is generous
// since a single LLM completion can take a while.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate produces marketing copy for the request and returns the text.
func (c *Client) Generate(token string, req domain.ContentRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/generate", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return "", &APIError{Status: resp.StatusCode, Message: msg, Details: errResp.Details}
	}
	var out struct {
		GeneratedText string `json:"generatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.GeneratedText, nil
}
