// Package pdf downloads and validates PDF documents.
package pdf

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/helixir/paper-library-service/internal/domain"
)

// Sentinel errors for PDF handling.
var (
	// ErrNotPDF is returned when the content does not start with the PDF magic bytes.
	ErrNotPDF = errors.New("pdf: content is not a PDF")
	// ErrTooLarge is returned when the content exceeds the configured maximum size.
	ErrTooLarge = errors.New("pdf: file exceeds maximum size")
	// ErrDownloadFailed is returned for network and HTTP failures.
	ErrDownloadFailed = errors.New("pdf: download failed")
	// ErrSSRF is returned when a URL targets a private or non-HTTP destination.
	ErrSSRF = errors.New("pdf: request to private network denied")
)

// Magic is the prefix every PDF file starts with.
var Magic = []byte("%PDF-")

const (
	defaultTimeout = 60 * time.Second
	defaultMaxSize = 50 * 1024 * 1024
	maxRedirects   = 5
)

// Document is validated PDF content.
type Document struct {
	Content     []byte
	SHA256      string
	SizeBytes   int64
	ContentType string
	// SourceURL is the final URL after redirects.
	SourceURL string
}

// Reader returns a seekable reader over the content.
func (d *Document) Reader() *bytes.Reader {
	return bytes.NewReader(d.Content)
}

// Config holds downloader settings.
type Config struct {
	// Timeout bounds the whole request. Default: 60s.
	Timeout time.Duration
	// MaxSize is the largest accepted file in bytes. Default: 50MB.
	MaxSize int64
	// UserAgent is sent with every request.
	UserAgent string
	// AllowPrivateNetworks disables the private address checks. Tests only.
	AllowPrivateNetworks bool
}

// Downloader fetches PDFs over HTTP(S).
type Downloader struct {
	client               *http.Client
	maxSize              int64
	userAgent            string
	allowPrivateNetworks bool
}

// NewDownloader creates a Downloader. Every dialed address is checked against
// private ranges, so redirects and DNS rebinding cannot reach internal hosts.
func NewDownloader(cfg Config) *Downloader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = defaultMaxSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "PaperLibrary/1.0 (+https://helixir.io/bot)"
	}

	d := &Downloader{
		maxSize:              cfg.MaxSize,
		userAgent:            cfg.UserAgent,
		allowPrivateNetworks: cfg.AllowPrivateNetworks,
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if !cfg.AllowPrivateNetworks {
		dialer.Control = denyPrivateDial
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.Proxy = nil

	d.client = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: too many redirects", ErrDownloadFailed)
			}
			return checkScheme(req.URL)
		},
	}
	return d
}

// MaxSize returns the configured size limit.
func (d *Downloader) MaxSize() int64 {
	return d.maxSize
}

// Download fetches rawURL and validates the body as a PDF.
func (d *Downloader) Download(ctx context.Context, rawURL string) (*Document, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL: %w", ErrDownloadFailed, err)
	}
	if err := checkScheme(parsed); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL: %w", ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/pdf, */*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrSSRF) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, fmt.Errorf("%w: HTTP %d: %w", ErrDownloadFailed, resp.StatusCode, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrDownloadFailed, resp.StatusCode)
	}
	if resp.ContentLength > d.maxSize {
		return nil, fmt.Errorf("%w: content length %d exceeds %d bytes", ErrTooLarge, resp.ContentLength, d.maxSize)
	}

	doc, err := Read(resp.Body, d.maxSize)
	if err != nil {
		return nil, err
	}
	doc.ContentType = resp.Header.Get("Content-Type")
	doc.SourceURL = resp.Request.URL.String()
	return doc, nil
}

// Read consumes r up to maxSize bytes, checks the PDF magic and hashes the
// content. Used for both downloads and uploads.
func Read(r io.Reader, maxSize int64) (*Document, error) {
	content, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrDownloadFailed, err)
	}
	if int64(len(content)) > maxSize {
		return nil, fmt.Errorf("%w: exceeded %d bytes", ErrTooLarge, maxSize)
	}
	if !bytes.HasPrefix(content, Magic) {
		return nil, ErrNotPDF
	}

	sum := sha256.Sum256(content)
	return &Document{
		Content:     content,
		SHA256:      hex.EncodeToString(sum[:]),
		SizeBytes:   int64(len(content)),
		ContentType: "application/pdf",
	}, nil
}

// IsPermanent reports whether retrying err cannot succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrNotPDF) || errors.Is(err, ErrTooLarge) || errors.Is(err, ErrSSRF) ||
		errors.Is(err, domain.ErrNotFound)
}

func checkScheme(u *url.URL) error {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme %q is not allowed", ErrSSRF, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: missing host", ErrDownloadFailed)
	}
	return nil
}

// denyPrivateDial runs after DNS resolution, on the address actually dialed.
func denyPrivateDial(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSSRF, err)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: unparsable address %q", ErrSSRF, host)
	}
	if IsPrivateAddr(addr) {
		return fmt.Errorf("%w: %s", ErrSSRF, addr)
	}
	return nil
}

// IsPrivateAddr reports whether addr is loopback, private, link-local,
// unspecified or multicast.
func IsPrivateAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() ||
		cgnat.Contains(addr)
}

var cgnat = netip.MustParsePrefix("100.64.0.0/10")
