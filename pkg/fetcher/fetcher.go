package fetcher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"

	"github.com/MaksimSorokoumov/LP-screening/internal/logging"
	"github.com/MaksimSorokoumov/LP-screening/internal/models"
)

const (
	defaultUserAgent = "LPScreen/1.0 (+https://github.com/MaksimSorokoumov/LP-screening)"
	acceptHeader     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

var (
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
	ErrBlockedAddress   = errors.New("request to private/reserved network address is not allowed")
)

// Fetcher downloads landing pages over HTTP(S).
type Fetcher struct {
	client *http.Client
	opts   Options
	log    *logrus.Entry
}

var _ PageFetcher = (*Fetcher)(nil)

// New creates a Fetcher with its own transport.
func New(opts Options, log *logrus.Entry) *Fetcher {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         newDialer(opts.BlockPrivateNetworks).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return NewWithClient(&http.Client{Transport: transport}, opts, log)
}

// NewWithClient creates a Fetcher on top of an existing client. The client's
// timeout and redirect policy are replaced by the ones derived from opts.
func NewWithClient(client *http.Client, opts Options, log *logrus.Entry) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultOptions().MaxBodyBytes
	}

	c := *client
	c.Timeout = opts.Timeout
	f := &Fetcher{
		client: &c,
		opts:   opts,
		log:    logging.Component(log, "fetcher"),
	}
	c.CheckRedirect = f.redirectPolicy
	return f
}

// sessionClient returns a copy of the client with a cookie jar scoped to one
// fetch.
func (f *Fetcher) sessionClient() *http.Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return f.client
	}
	c := *f.client
	c.Jar = jar
	return &c
}

// redirectPolicy stops at the configured hop count and refuses to leave http(s).
func (f *Fetcher) redirectPolicy(req *http.Request, via []*http.Request) error {
	if !f.opts.FollowRedirects {
		return http.ErrUseLastResponse
	}
	if len(via) > f.opts.MaxRedirects {
		return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, f.opts.MaxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", ErrBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// Fetch downloads rawURL once. SSLOK is true only when both the requested
// and the final URL are https. TLS failures are reported as "SSL error: ...",
// every other failure as "Request error: ...".
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) models.FetchResult {
	start := time.Now()
	log := logging.FromContext(ctx, f.log).WithField("url", rawURL)

	sslExpected := false
	if u, err := url.Parse(rawURL); err == nil {
		sslExpected = strings.EqualFold(u.Scheme, "https")
	}

	result := f.fetch(ctx, rawURL, sslExpected, log)
	result.Duration = time.Since(start)

	entry := log.WithFields(logrus.Fields{
		"ssl_ok":   result.SSLOK,
		"duration": result.Duration.String(),
	})
	if msg, failed := result.Error.Get(); failed {
		entry.WithField("error", msg).Warn("Fetch failed")
	} else {
		entry.WithField("status", result.StatusCode.OrElse(0)).Debug("Fetched page")
	}
	return result
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string, sslExpected bool, log *logrus.Entry) models.FetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return models.FetchFailed(requestError(err), models.None[int](), sslExpected)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.sessionClient().Do(req)
	if err != nil {
		if isTLSError(err) {
			return models.FetchFailed("SSL error: "+err.Error(), models.None[int](), false)
		}
		return models.FetchFailed(requestError(err), models.None[int](), sslExpected)
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL
	sslOK := sslExpected && finalURL.Scheme == "https"
	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode >= http.StatusBadRequest {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		res := models.FetchFailed(
			fmt.Sprintf("Request error: HTTP %s for url: %s", resp.Status, finalURL),
			models.Some(resp.StatusCode),
			sslOK,
		)
		res.ContentType = contentType
		return res
	}

	body, err := f.readBody(resp.Body, contentType)
	if err != nil {
		if isTLSError(err) {
			return models.FetchFailed("SSL error: "+err.Error(), models.None[int](), false)
		}
		return models.FetchFailed(requestError(err), models.None[int](), sslExpected)
	}

	res := models.FetchSucceeded(body, resp.StatusCode, finalURL.String(), sslOK)
	res.ContentType = contentType
	if f.opts.CheckRobotsTxt {
		res.RobotsAllowed = f.checkRobots(ctx, finalURL)
	}
	log.WithField("bytes", len(body)).Debug("Read body")
	return res
}

// readBody reads at most MaxBodyBytes and decodes the content to UTF-8 using
// the declared or sniffed charset.
func (f *Fetcher) readBody(body io.Reader, contentType string) (string, error) {
	limited := io.LimitReader(body, f.opts.MaxBodyBytes)
	decoded, err := charset.NewReader(limited, contentType)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	data, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

func requestError(err error) string {
	return "Request error: " + err.Error()
}

// isTLSError reports whether err stems from the TLS handshake or certificate
// verification rather than from the network or HTTP layer.
func isTLSError(err error) bool {
	var (
		verifyErr  *tls.CertificateVerificationError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
		recordErr  tls.RecordHeaderError
		alertErr   tls.AlertError
	)
	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &unknownCA),
		errors.As(err, &hostErr),
		errors.As(err, &invalidErr),
		errors.As(err, &recordErr),
		errors.As(err, &alertErr):
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "tls: ") || strings.Contains(msg, "x509: ")
}
