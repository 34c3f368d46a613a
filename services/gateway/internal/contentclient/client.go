package contentclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bhashagen/pkg/domain"
)

// Client calls the content service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError represents a content service error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs a content service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SaveRequest carries the generated record to persist.
type SaveRequest struct {
	domain.ContentRequest
	GeneratedText string `json:"generatedText"`
}

// ListFilter narrows the saved content listing.
type ListFilter struct {
	Language      string
	ContentType   string
	FavoritesOnly bool
	Query         string
	Limit         int
}

// UsageResponse pairs the monthly counter with the plan allowance.
type UsageResponse struct {
	Usage         domain.UsageRecord `json:"usage"`
	FreeTierLimit int                `json:"freeTierLimit"`
}

func (c *Client) Save(token string, req SaveRequest) (domain.ContentItem, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return domain.ContentItem{}, err
	}
	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/content", bytes.NewReader(data))
	if err != nil {
		return domain.ContentItem{}, err
	}
	addAuthHeader(httpReq, token)
	httpReq.Header.Set("Content-Type", "application/json")

	var item domain.ContentItem
	if err := c.do(httpReq, &item); err != nil {
		return domain.ContentItem{}, err
	}
	return item, nil
}

func (c *Client) List(token string, filter ListFilter) ([]domain.ContentItem, error) {
	q := url.Values{}
	if filter.Language != "" {
		q.Set("language", filter.Language)
	}
	if filter.ContentType != "" {
		q.Set("contentType", filter.ContentType)
	}
	if filter.FavoritesOnly {
		q.Set("favorites", "true")
	}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	if filter.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", filter.Limit))
	}
	path := c.baseURL + "/content"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	addAuthHeader(req, token)

	var resp listContentResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) SetFavorite(token, id string, favorite bool) (domain.ContentItem, error) {
	payload := map[string]bool{"isFavorite": favorite}
	data, err := json.Marshal(payload)
	if err != nil {
		return domain.ContentItem{}, err
	}
	path := fmt.Sprintf("%s/content/%s", c.baseURL, id)
	req, err := http.NewRequest(http.MethodPatch, path, bytes.NewReader(data))
	if err != nil {
		return domain.ContentItem{}, err
	}
	addAuthHeader(req, token)
	req.Header.Set("Content-Type", "application/json")

	var item domain.ContentItem
	if err := c.do(req, &item); err != nil {
		return domain.ContentItem{}, err
	}
	return item, nil
}

func (c *Client) Delete(token, id string) error {
	path := fmt.Sprintf("%s/content/%s", c.baseURL, id)
	req, err := http.NewRequest(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	addAuthHeader(req, token)
	return c.do(req, nil)
}

func (c *Client) CurrentUsage(token string) (UsageResponse, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/usage/current", nil)
	if err != nil {
		return UsageResponse{}, err
	}
	addAuthHeader(req, token)

	var resp UsageResponse
	if err := c.do(req, &resp); err != nil {
		return UsageResponse{}, err
	}
	return resp, nil
}

func (c *Client) do(req *http.Request, out any) error {
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

func addAuthHeader(req *http.Request, token string) {
	if strings.TrimSpace(token) == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

type listContentResponse struct {
	Items []domain.ContentItem `json:"items"`
}
