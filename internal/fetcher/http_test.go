package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/jarcoal/httpmock"

	"storesight/internal/config"
	"storesight/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(config.DefaultConfig(), testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	httpmock.ActivateNonDefault(f.client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return f
}

func TestFetchSuccess(t *testing.T) {
	f := newTestFetcher(t)

	const body = `<html><body><h1>Shop</h1></body></html>`
	httpmock.RegisterResponder("GET", "https://shop.example/products",
		httpmock.NewStringResponder(200, body))

	resp, err := f.Fetch(context.Background(), "https://shop.example/products")
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if string(resp.Body) != body {
		t.Errorf("body = %q", resp.Body)
	}
	if !resp.IsSuccess() {
		t.Error("expected success response")
	}
	if resp.URL != "https://shop.example/products" {
		t.Errorf("url = %q", resp.URL)
	}
}

func TestFetchNon2xxStatus(t *testing.T) {
	f := newTestFetcher(t)

	httpmock.RegisterResponder("GET", "https://shop.example/gone",
		httpmock.NewStringResponder(404, "not found"))

	_, err := f.Fetch(context.Background(), "https://shop.example/gone")
	if err == nil {
		t.Fatal("expected error for 404")
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fe.StatusCode != 404 {
		t.Errorf("status = %d, want 404", fe.StatusCode)
	}
}

func TestFetchEmptyBody(t *testing.T) {
	f := newTestFetcher(t)

	httpmock.RegisterResponder("GET", "https://shop.example/empty",
		httpmock.NewStringResponder(200, ""))

	_, err := f.Fetch(context.Background(), "https://shop.example/empty")
	if !errors.Is(err, types.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestFetchNetworkError(t *testing.T) {
	f := newTestFetcher(t)

	httpmock.RegisterResponder("GET", "https://down.example/",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := f.Fetch(context.Background(), "https://down.example/")
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.StatusCode != 0 {
		t.Errorf("network failures carry no status, got %d", fe.StatusCode)
	}
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	f := newTestFetcher(t)

	var gotUA, gotAccept string
	httpmock.RegisterResponder("GET", "https://shop.example/",
		func(req *http.Request) (*http.Response, error) {
			gotUA = req.Header.Get("User-Agent")
			gotAccept = req.Header.Get("Accept")
			return httpmock.NewStringResponse(200, "<html></html>"), nil
		})

	if _, err := f.Fetch(context.Background(), "https://shop.example/"); err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if gotUA == "" || gotUA == "Go-http-client/1.1" {
		t.Errorf("user agent not set, got %q", gotUA)
	}
	if gotAccept == "" {
		t.Error("accept header not set")
	}
}

func TestFetchBodySizeLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fetcher.MaxBodySize = 16

	f, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	httpmock.ActivateNonDefault(f.client)
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("GET", "https://shop.example/huge",
		httpmock.NewStringResponder(200, "0123456789abcdefOVERFLOW"))

	resp, err := f.Fetch(context.Background(), "https://shop.example/huge")
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(resp.Body) != 16 {
		t.Errorf("body length = %d, want truncation at 16", len(resp.Body))
	}
}
