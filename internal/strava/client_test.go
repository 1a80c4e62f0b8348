package strava

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(serverURL string) *Client {
	return New(Config{
		BaseURL:      serverURL,
		AuthorizeURL: serverURL + "/oauth/authorize",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scope:        "activity:read_all",
	})
}

func TestExchangeToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/oauth/token" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("expected grant_type authorization_code, got %q", got)
		}
		if got := r.PostForm.Get("code"); got != "the-code" {
			t.Errorf("expected code the-code, got %q", got)
		}
		if got := r.PostForm.Get("client_id"); got != "client-id" {
			t.Errorf("expected client_id client-id, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "at",
			"refresh_token": "rt",
			"expires_at": 1700003600,
			"expires_in": 3600,
			"token_type": "Bearer"
		}`))
	}))
	defer server.Close()

	token, err := testClient(server.URL).ExchangeToken(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("exchange token: %v", err)
	}
	if token.AccessToken != "at" || token.RefreshToken != "rt" {
		t.Fatalf("unexpected token response: %+v", token)
	}
	if token.ExpiresAt != 1700003600 {
		t.Fatalf("expected expires_at 1700003600, got %d", token.ExpiresAt)
	}
}

func TestRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("expected grant_type refresh_token, got %q", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "old-rt" {
			t.Errorf("expected refresh_token old-rt, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-at","refresh_token":"new-rt","expires_at":1700007200,"expires_in":3600,"token_type":"Bearer"}`))
	}))
	defer server.Close()

	token, err := testClient(server.URL).RefreshToken(context.Background(), "old-rt")
	if err != nil {
		t.Fatalf("refresh token: %v", err)
	}
	if token.AccessToken != "new-at" || token.RefreshToken != "new-rt" {
		t.Fatalf("unexpected token response: %+v", token)
	}
}

func TestListActivities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/athlete/activities" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer the-token" {
			t.Errorf("expected bearer header, got %q", got)
		}
		if got := r.URL.Query().Get("after"); got != "1700000000" {
			t.Errorf("expected after 1700000000, got %q", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "200" {
			t.Errorf("expected per_page 200, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 101, "start_date_local": "2024-03-01T06:12:00Z", "moving_time": 1200},
			{"id": 102, "start_date_local": "2024-03-01T18:30:00Z", "moving_time": 2400}
		]`))
	}))
	defer server.Close()

	activities, err := testClient(server.URL).ListActivities(context.Background(), "the-token", 1700000000)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(activities))
	}
	if activities[0].ID != 101 || activities[0].MovingTime != 1200 {
		t.Fatalf("unexpected activity: %+v", activities[0])
	}
}

func TestListActivitiesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"Rate Limit Exceeded"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).ListActivities(context.Background(), "the-token", 0)

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.Status != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", upstreamErr.Status)
	}
	if upstreamErr.Body == "" {
		t.Fatalf("expected error body to be captured")
	}
}

func TestListActivitiesMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).ListActivities(context.Background(), "the-token", 0)

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError for malformed payload, got %v", err)
	}
}

func TestAuthorizeURL(t *testing.T) {
	client := New(Config{
		AuthorizeURL: "https://example.com/oauth/authorize",
		ClientID:     "client-id",
		Scope:        "activity:read_all",
	})

	got := client.AuthorizeURL("http://127.0.0.1:8723/callback")
	want := "https://example.com/oauth/authorize?client_id=client-id&redirect_uri=http%3A%2F%2F127.0.0.1%3A8723%2Fcallback&response_type=code&scope=activity%3Aread_all"
	if got != want {
		t.Fatalf("authorize url mismatch:\n got %s\nwant %s", got, want)
	}
}
