package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bhashagen/pkg/domain"
	"bhashagen/pkg/store"
	"bhashagen/services/content/internal/app"
	"bhashagen/services/content/internal/authclient"
)

const (
	ownerToken = "owner-token"
	otherToken = "other-token"
)

func newTestServer(t *testing.T) (*Server, *store.MemoryStore, func()) {
	t.Helper()
	authServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			http.NotFound(w, r)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer " + ownerToken:
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "user-1", "email": "owner@example.com", "role": "user", "tier": "free"})
		case "Bearer " + otherToken:
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "user-2", "email": "other@example.com", "role": "user", "tier": "free"})
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
		}
	}))

	mem := store.NewMemoryStore()
	appCore, err := app.New(app.Config{Store: mem})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv := New(Config{
		App:        appCore,
		AuthClient: authclient.NewClient(authServer.URL),
	})
	return srv, mem, authServer.Close
}

func doRequest(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func saveBody(product, text string) string {
	return fmt.Sprintf(`{"productService":%q,"contentType":"social_media_post","language":"Hindi","tone":"friendly","generatedText":%q}`, product, text)
}

func mustSave(t *testing.T, handler http.Handler, token, product, text string) domain.ContentItem {
	t.Helper()
	rec := doRequest(t, handler, http.MethodPost, "/content", token, saveBody(product, text))
	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body.String())
	}
	var item domain.ContentItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return item
}

func listItems(t *testing.T, handler http.Handler, token, query string) []domain.ContentItem {
	t.Helper()
	rec := doRequest(t, handler, http.MethodGet, "/content"+query, token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Items []domain.ContentItem `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Items
}

func TestSaveAndListContent(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()
	router := srv.Router()

	item := mustSave(t, router, ownerToken, "Silk Sarees", "रेशमी साड़ियों का शानदार संग्रह")
	if item.ID == "" {
		t.Fatal("expected generated id")
	}
	if item.UserID != "user-1" {
		t.Fatalf("owner = %q", item.UserID)
	}

	items := listItems(t, router, ownerToken, "")
	if len(items) != 1 || items[0].ID != item.ID {
		t.Fatalf("unexpected list %+v", items)
	}

	if got := listItems(t, router, otherToken, ""); len(got) != 0 {
		t.Fatalf("other user sees %d items, want 0", len(got))
	}
}

func TestSaveContentValidationStatus(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()
	router := srv.Router()

	rec := doRequest(t, router, http.MethodPost, "/content", ownerToken,
		`{"contentType":"ad_copy","language":"Hindi","tone":"urgent","generatedText":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodPost, "/content", ownerToken, "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json status = %d", rec.Code)
	}
}

func TestListContentFilters(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()
	router := srv.Router()

	mustSave(t, router, ownerToken, "Tea Stall", "chai time offer")
	fav := mustSave(t, router, ownerToken, "Sweet Shop", "laddu festive special")

	rec := doRequest(t, router, http.MethodPatch, "/content/"+fav.ID, ownerToken, `{"isFavorite":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("favorite status = %d", rec.Code)
	}

	if got := listItems(t, router, ownerToken, "?favorites=true"); len(got) != 1 || got[0].ID != fav.ID {
		t.Fatalf("favorites filter got %+v", got)
	}
	if got := listItems(t, router, ownerToken, "?q=laddu"); len(got) != 1 || got[0].ID != fav.ID {
		t.Fatalf("query filter got %+v", got)
	}
	if got := listItems(t, router, ownerToken, "?limit=1"); len(got) != 1 {
		t.Fatalf("limit filter got %d items", len(got))
	}
}

func TestFavoriteToggleAndOwnership(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()
	router := srv.Router()

	item := mustSave(t, router, ownerToken, "Boutique", "festive lehengas")

	rec := doRequest(t, router, http.MethodPatch, "/content/"+item.ID, ownerToken, `{"isFavorite":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated domain.ContentItem
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !updated.IsFavorite {
		t.Fatal("expected favorite flag set")
	}

	rec = doRequest(t, router, http.MethodPatch, "/content/"+item.ID, otherToken, `{"isFavorite":false}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("intruder status = %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodPatch, "/content/missing-id", ownerToken, `{"isFavorite":true}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing id status = %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodPatch, "/content/"+item.ID, ownerToken, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing flag status = %d", rec.Code)
	}
}

func TestDeleteContent(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()
	router := srv.Router()

	item := mustSave(t, router, ownerToken, "Bakery", "fresh cakes daily")

	rec := doRequest(t, router, http.MethodDelete, "/content/"+item.ID, otherToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("intruder delete status = %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodDelete, "/content/"+item.ID, ownerToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if got := listItems(t, router, ownerToken, ""); len(got) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(got))
	}
	rec = doRequest(t, router, http.MethodDelete, "/content/"+item.ID, ownerToken, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestCurrentUsage(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()
	router := srv.Router()

	rec := doRequest(t, router, http.MethodGet, "/usage/current", ownerToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Usage         domain.UsageRecord `json:"usage"`
		FreeTierLimit int                `json:"freeTierLimit"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Usage.GenerationCount != 0 {
		t.Fatalf("fresh count = %d", resp.Usage.GenerationCount)
	}
	if resp.FreeTierLimit != 10 {
		t.Fatalf("free tier limit = %d, want 10", resp.FreeTierLimit)
	}

	mustSave(t, router, ownerToken, "Florist", "marigold garlands")
	mustSave(t, router, ownerToken, "Florist", "rose bouquets")

	rec = doRequest(t, router, http.MethodGet, "/usage/current", ownerToken, "")
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Usage.GenerationCount != 2 {
		t.Fatalf("count = %d, want 2", resp.Usage.GenerationCount)
	}
}

func TestContentRequiresAuth(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()
	router := srv.Router()

	if rec := doRequest(t, router, http.MethodGet, "/content", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/content", "bad-token", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", rec.Code)
	}
}
