package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher() *HTTPFetcher {
	return NewHTTP(Options{
		Timeout:      2 * time.Second,
		MaxRetries:   2,
		PerHostRate:  1000,
		PerHostBurst: 1000,
	})
}

func TestFetchParsesVisibleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><script>var x = 1;</script><style>p{}</style></head>
			<body><h1>会社概要</h1><p>TEL:   03-1234-5678</p></body></html>`))
	}))
	defer srv.Close()

	page, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "会社概要 TEL: 03-1234-5678", page.Text)
	assert.NotContains(t, page.Text, "var x")
	assert.Contains(t, page.HTML, "<h1>会社概要</h1>")
}

func TestFetchKeepsElementBoundariesInText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>info@example.co.jp</p><p>TEL</p><span>03-1234-5678</span></body></html>`))
	}))
	defer srv.Close()

	page, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	// Adjacent elements must not fuse into one token: a trailing label
	// would otherwise be swallowed into the email's domain.
	assert.Equal(t, "info@example.co.jp TEL 03-1234-5678", page.Text)
	assert.NotContains(t, page.Text, "info@example.co.jpTEL")
}

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTP(Options{UserAgent: "custom-agent/2.0", PerHostRate: 1000, PerHostBurst: 1000})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "custom-agent/2.0", gotUA)
}

func TestFetchRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("<html><body>recovered</body></html>"))
	}))
	defer srv.Close()

	page, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", page.Text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchFailsOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	// 4xx is not transient; no retries.
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchReturnsFinalURLAfterRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/ja/", http.StatusMovedPermanently)
			return
		}
		w.Write([]byte("<html><body>home</body></html>"))
	}))
	defer srv.Close()

	page, err := testFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/ja/", page.URL)
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	_, err := testFetcher().Fetch(context.Background(), "://not-a-url")
	assert.Error(t, err)
}
