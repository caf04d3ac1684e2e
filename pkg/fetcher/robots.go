package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"

	"github.com/MaksimSorokoumov/LP-screening/internal/models"
)

// maxRobotsBytes bounds how much of robots.txt is read.
const maxRobotsBytes = 512 << 10

// checkRobots reports whether the fetcher's user agent may access target
// according to the host's robots.txt. It is advisory only: the page has
// already been downloaded, and any failure to obtain the file yields absent.
func (f *Fetcher) checkRobots(ctx context.Context, target *url.URL) models.Optional[bool] {
	robotsURL := &url.URL{Scheme: target.Scheme, Host: target.Host, Path: "/robots.txt"}
	log := f.log.WithField("robots_url", robotsURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		log.WithError(err).Debug("Could not build robots.txt request")
		return models.None[bool]()
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		log.WithError(err).Debug("Fetching robots.txt failed")
		return models.None[bool]()
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		log.WithError(err).Debug("Reading robots.txt failed")
		return models.None[bool]()
	}

	// 4xx means allow all, 5xx means disallow all.
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		log.WithError(err).Debug("Parsing robots.txt failed")
		return models.None[bool]()
	}

	path := target.RequestURI()
	allowed := data.TestAgent(path, f.opts.UserAgent)
	log.WithField("allowed", allowed).Debug("Checked robots.txt")
	return models.Some(allowed)
}
