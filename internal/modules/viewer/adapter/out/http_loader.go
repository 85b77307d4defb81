package out

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	viewerout "granth/internal/modules/viewer/port/out"
	apperrors "granth/internal/platform/errors"
)

const (
	defaultMaxBytes  = 200 << 20
	progressInterval = 100 * time.Millisecond
	progressCeiling  = 99
	userAgent        = "granth-reader"
)

// HTTPLoader fetches PDFs over http(s) or from disk (file:// URLs and plain
// paths) and parses them in memory.
type HTTPLoader struct {
	client   *http.Client
	maxBytes int64
	interval time.Duration
	log      *slog.Logger
}

func NewHTTPLoader(client *http.Client, maxBytes int64, log *slog.Logger) *HTTPLoader {
	if client == nil {
		client = &http.Client{}
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &HTTPLoader{client: client, maxBytes: maxBytes, interval: progressInterval, log: log.With(slog.String("component", "pdf_loader"))}
}

var _ viewerout.DocumentLoader = (*HTTPLoader)(nil)

func (l *HTTPLoader) Load(ctx context.Context, rawURL string, progress func(percent int)) (viewerout.Document, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, apperrors.NewLoadError(apperrors.LoadMissingURL, nil, "no pdf link")
	}
	report := newProgressReporter(progress, l.interval)

	var (
		data []byte
		err  error
	)
	u, parseErr := url.Parse(rawURL)
	switch {
	case parseErr == nil && (u.Scheme == "http" || u.Scheme == "https"):
		data, err = l.fetch(ctx, rawURL, report)
	case parseErr == nil && u.Scheme == "file":
		data, err = l.readFile(ctx, u.Path, report)
	case parseErr != nil || u.Scheme == "" || len(u.Scheme) == 1:
		data, err = l.readFile(ctx, rawURL, report)
	default:
		err = apperrors.NewLoadError(apperrors.LoadNetwork, nil, "unsupported link scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, err
	}

	doc, err := ParsePDF(data)
	if err != nil {
		return nil, err
	}
	report.done()
	l.log.Debug("pdf_loaded", slog.Int("bytes", len(data)), slog.Int("pages", doc.PageCount()))
	return doc, nil
}

func (l *HTTPLoader) fetch(ctx context.Context, rawURL string, report *progressReporter) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.NewLoadError(apperrors.LoadNetwork, err, "invalid link")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/pdf, */*")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, err, "could not reach %s", req.URL.Host)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewLoadError(apperrors.LoadStatus, nil, "server responded %s", resp.Status)
	}
	return l.readAll(ctx, resp.Body, resp.ContentLength, report)
}

func (l *HTTPLoader) readFile(ctx context.Context, path string, report *progressReporter) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewLoadError(apperrors.LoadStatus, err, "file %s does not exist", path)
		}
		return nil, apperrors.NewLoadError(apperrors.LoadNetwork, err, "could not open %s", path)
	}
	defer f.Close()
	size := int64(-1)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	return l.readAll(ctx, f, size, report)
}

func (l *HTTPLoader) readAll(ctx context.Context, r io.Reader, total int64, report *progressReporter) ([]byte, error) {
	if total > l.maxBytes {
		return nil, apperrors.NewLoadError(apperrors.LoadMalformed, nil, "document is larger than %d MiB", l.maxBytes>>20)
	}
	counted := &countingReader{r: io.LimitReader(r, l.maxBytes+1), total: total, report: report}
	data, err := io.ReadAll(counted)
	if err != nil {
		return nil, transportError(ctx, err, "download interrupted")
	}
	if int64(len(data)) > l.maxBytes {
		return nil, apperrors.NewLoadError(apperrors.LoadMalformed, nil, "document is larger than %d MiB", l.maxBytes>>20)
	}
	if total > 0 && int64(len(data)) < total {
		return nil, apperrors.NewLoadError(apperrors.LoadNetwork, io.ErrUnexpectedEOF, "download ended early")
	}
	return data, nil
}

func transportError(ctx context.Context, err error, format string, args ...any) error {
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		return apperrors.NewLoadError(apperrors.LoadCanceled, err, "loading was cancelled")
	}
	return apperrors.NewLoadError(apperrors.LoadNetwork, err, format, args...)
}

type countingReader struct {
	r      io.Reader
	read   int64
	total  int64
	report *progressReporter
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if n > 0 && c.total > 0 {
		c.report.update(int(c.read * 100 / c.total))
	}
	return n, err
}

// progressReporter keeps reported percentages non-decreasing, holds back 100
// until the document parsed, and rate limits intermediate updates.
type progressReporter struct {
	fn      func(int)
	limiter *rate.Limiter
	last    int
}

func newProgressReporter(fn func(int), every time.Duration) *progressReporter {
	return &progressReporter{fn: fn, limiter: rate.NewLimiter(rate.Every(every), 1), last: -1}
}

func (p *progressReporter) update(percent int) {
	if p.fn == nil {
		return
	}
	percent = min(max(percent, 0), progressCeiling)
	if percent <= p.last || !p.limiter.Allow() {
		return
	}
	p.last = percent
	p.fn(percent)
}

func (p *progressReporter) done() {
	if p.fn == nil || p.last == 100 {
		return
	}
	p.last = 100
	p.fn(100)
}
