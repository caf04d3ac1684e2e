package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaksimSorokoumov/LP-screening/internal/config"
	"github.com/MaksimSorokoumov/LP-screening/internal/logging"
)

const testPage = `<!DOCTYPE html><html><head><title>Test Page</title></head><body><h1>Hello</h1></body></html>`

func testOptions() Options {
	opts := DefaultOptions()
	opts.Timeout = 5 * time.Second
	return opts
}

func TestFetchSinglePage(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(testPage))
	}))
	defer server.Close()

	f := New(testOptions(), logging.Discard())
	res := f.Fetch(context.Background(), server.URL)

	require.True(t, res.Success(), "error: %v", res.Error.OrElse(""))
	assert.Equal(t, testPage, res.HTML.OrElse(""))
	assert.Equal(t, 200, res.StatusCode.OrElse(0))
	assert.Equal(t, server.URL, res.FinalURL.OrElse(""))
	assert.False(t, res.SSLOK, "plain http is never ssl ok")
	assert.Equal(t, "text/html; charset=utf-8", res.ContentType)
	assert.False(t, res.RobotsAllowed.IsPresent())
	assert.Equal(t, defaultUserAgent, gotUA)
}

func TestFetchTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
	defer server.Close()

	t.Run("trusted certificate", func(t *testing.T) {
		f := NewWithClient(server.Client(), testOptions(), logging.Discard())
		res := f.Fetch(context.Background(), server.URL)

		require.True(t, res.Success())
		assert.True(t, res.SSLOK)
	})

	t.Run("untrusted certificate", func(t *testing.T) {
		f := New(testOptions(), logging.Discard())
		res := f.Fetch(context.Background(), server.URL)

		assert.False(t, res.Success())
		assert.False(t, res.HTML.IsPresent())
		assert.False(t, res.SSLOK)
		msg, ok := res.Error.Get()
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(msg, "SSL error: "), msg)
	})
}

func TestFetchDowngradeRedirect(t *testing.T) {
	plain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
	defer plain.Close()

	secure := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, plain.URL+"/landing", http.StatusFound)
	}))
	defer secure.Close()

	f := NewWithClient(secure.Client(), testOptions(), logging.Discard())
	res := f.Fetch(context.Background(), secure.URL)

	require.True(t, res.Success())
	assert.False(t, res.SSLOK)
	assert.Equal(t, plain.URL+"/landing", res.FinalURL.OrElse(""))
}

func TestFetchRedirectPolicy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/loop":
			http.Redirect(w, r, "/loop", http.StatusFound)
		case "/start":
			http.Redirect(w, r, "/final", http.StatusMovedPermanently)
		case "/ftp":
			http.Redirect(w, r, "ftp://example.com/file", http.StatusFound)
		default:
			w.Write([]byte(testPage))
		}
	}))
	defer server.Close()

	t.Run("follows", func(t *testing.T) {
		res := New(testOptions(), logging.Discard()).Fetch(context.Background(), server.URL+"/start")
		require.True(t, res.Success())
		assert.Equal(t, server.URL+"/final", res.FinalURL.OrElse(""))
	})

	t.Run("does not follow", func(t *testing.T) {
		opts := testOptions()
		opts.FollowRedirects = false
		res := New(opts, logging.Discard()).Fetch(context.Background(), server.URL+"/start")
		require.True(t, res.Success())
		assert.Equal(t, http.StatusMovedPermanently, res.StatusCode.OrElse(0))
		assert.Equal(t, server.URL+"/start", res.FinalURL.OrElse(""))
	})

	t.Run("too many", func(t *testing.T) {
		opts := testOptions()
		opts.MaxRedirects = 3
		res := New(opts, logging.Discard()).Fetch(context.Background(), server.URL+"/loop")
		assert.False(t, res.Success())
		assert.Contains(t, res.Error.OrElse(""), ErrTooManyRedirects.Error())
	})

	t.Run("non http scheme", func(t *testing.T) {
		res := New(testOptions(), logging.Discard()).Fetch(context.Background(), server.URL+"/ftp")
		assert.False(t, res.Success())
		assert.Contains(t, res.Error.OrElse(""), ErrBlockedRedirect.Error())
	})
}

func TestFetchKeepsCookiesAcrossRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/start":
			http.SetCookie(w, &http.Cookie{Name: "consent", Value: "yes", Path: "/"})
			http.Redirect(w, r, "/landing", http.StatusFound)
		case "/landing":
			if _, err := r.Cookie("consent"); err != nil {
				http.Redirect(w, r, "/start", http.StatusFound)
				return
			}
			w.Write([]byte(testPage))
		case "/fresh":
			if _, err := r.Cookie("consent"); err == nil {
				w.WriteHeader(http.StatusTeapot)
				return
			}
			w.Write([]byte(testPage))
		}
	}))
	defer server.Close()

	f := New(testOptions(), logging.Discard())
	res := f.Fetch(context.Background(), server.URL+"/start")
	require.True(t, res.Success(), "error: %v", res.Error.OrElse(""))
	assert.Equal(t, server.URL+"/landing", res.FinalURL.OrElse(""))

	// A later fetch starts without the previous session's cookies.
	res = f.Fetch(context.Background(), server.URL+"/fresh")
	require.True(t, res.Success(), "error: %v", res.Error.OrElse(""))
}

func TestFetchHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	res := New(testOptions(), logging.Discard()).Fetch(context.Background(), server.URL)

	assert.False(t, res.Success())
	assert.False(t, res.HTML.IsPresent())
	assert.Equal(t, http.StatusNotFound, res.StatusCode.OrElse(0))
	assert.True(t, strings.HasPrefix(res.Error.OrElse(""), "Request error: HTTP 404"), res.Error.OrElse(""))
}

func TestFetchNetworkFailureKeepsExpectedSSL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.Listener.Addr().String()
	server.Close()

	f := New(testOptions(), logging.Discard())

	res := f.Fetch(context.Background(), "http://"+addr)
	assert.False(t, res.Success())
	assert.False(t, res.SSLOK)
	assert.True(t, strings.HasPrefix(res.Error.OrElse(""), "Request error: "))

	res = f.Fetch(context.Background(), "https://"+addr)
	assert.False(t, res.Success())
	assert.True(t, res.SSLOK, "connection refused says nothing about the certificate")
	assert.True(t, strings.HasPrefix(res.Error.OrElse(""), "Request error: "))
}

func TestFetchInvalidURL(t *testing.T) {
	res := New(testOptions(), logging.Discard()).Fetch(context.Background(), "://nope")
	assert.False(t, res.Success())
	assert.True(t, strings.HasPrefix(res.Error.OrElse(""), "Request error: "))
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	opts := testOptions()
	opts.Timeout = 100 * time.Millisecond
	res := New(opts, logging.Discard()).Fetch(context.Background(), server.URL)

	assert.False(t, res.Success())
	assert.True(t, strings.HasPrefix(res.Error.OrElse(""), "Request error: "))
}

func TestFetchDecodesCharset(t *testing.T) {
	// "Привет" in windows-1251.
	body := []byte{'<', 'p', '>', 0xCF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2, '<', '/', 'p', '>'}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		w.Write(body)
	}))
	defer server.Close()

	res := New(testOptions(), logging.Discard()).Fetch(context.Background(), server.URL)
	require.True(t, res.Success())
	assert.Equal(t, "<p>Привет</p>", res.HTML.OrElse(""))
}

func TestFetchTruncatesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(strings.Repeat("a", 1000)))
	}))
	defer server.Close()

	opts := testOptions()
	opts.MaxBodyBytes = 100
	res := New(opts, logging.Discard()).Fetch(context.Background(), server.URL)
	require.True(t, res.Success())
	assert.Len(t, res.HTML.OrElse(""), 100)
}

func TestFetchRobots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		w.Write([]byte(testPage))
	}))
	defer server.Close()

	opts := testOptions()
	opts.CheckRobotsTxt = true
	f := New(opts, logging.Discard())

	res := f.Fetch(context.Background(), server.URL+"/private/offer")
	require.True(t, res.Success())
	assert.Equal(t, false, res.RobotsAllowed.OrElse(true))

	res = f.Fetch(context.Background(), server.URL+"/offer")
	require.True(t, res.Success())
	assert.Equal(t, true, res.RobotsAllowed.OrElse(false))
}

func TestFetchBlocksPrivateNetworks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
	defer server.Close()

	opts := testOptions()
	opts.BlockPrivateNetworks = true
	res := New(opts, logging.Discard()).Fetch(context.Background(), server.URL)

	assert.False(t, res.Success())
	assert.Contains(t, res.Error.OrElse(""), ErrBlockedAddress.Error())
}

func TestIsBlockedIP(t *testing.T) {
	tests := []struct {
		addr    string
		blocked bool
	}{
		{"127.0.0.1", true},
		{"10.1.2.3", true},
		{"192.168.0.10", true},
		{"169.254.169.254", true},
		{"100.64.0.1", true},
		{"::ffff:127.0.0.1", true},
		{"::1", true},
		{"8.8.8.8", false},
		{"2606:4700:4700::1111", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.blocked, isBlockedIP(netip.MustParseAddr(tt.addr)), tt.addr)
	}
}

func TestBlockPrivateAddresses(t *testing.T) {
	err := blockPrivateAddresses("tcp", "127.0.0.1:80", nil)
	assert.True(t, errors.Is(err, ErrBlockedAddress))

	assert.NoError(t, blockPrivateAddresses("tcp", "93.184.216.34:443", nil))
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.FetcherConfig{
		Timeout:         3 * time.Second,
		FollowRedirects: false,
		CheckRobotsTxt:  true,
	})

	assert.Equal(t, 3*time.Second, opts.Timeout)
	assert.False(t, opts.FollowRedirects)
	assert.True(t, opts.CheckRobotsTxt)
	assert.Equal(t, defaultUserAgent, opts.UserAgent)
	assert.Equal(t, int64(10<<20), opts.MaxBodyBytes)
}
