package tiles

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"
)

const DefaultURLTemplate = "https://{mirror}/{z}/{x}/{y}.png"

var (
	ErrInvalidTile       = errors.New("invalid tile key")
	ErrAllMirrorsFailed  = errors.New("all tile mirrors failed")
	ErrBadTileSize       = errors.New("unexpected tile size")
	errNoMirrorsProvided = errors.New("no tile mirrors configured")
)

// DefaultMirrors are the public OpenStreetMap tile hosts.
var DefaultMirrors = []string{
	"tile.openstreetmap.org",
	"a.tile.openstreetmap.org",
	"b.tile.openstreetmap.org",
	"c.tile.openstreetmap.org",
}

// Provider fetches the image for a single tile.
type Provider interface {
	Fetch(ctx context.Context, k Key) (image.Image, error)
}

// MirrorProvider downloads raster tiles, trying each mirror in order until
// one of them returns a decodable 256x256 image.
type MirrorProvider struct {
	client      *http.Client
	mirrors     []string
	urlTemplate string
	userAgent   string
}

type MirrorOptions struct {
	Mirrors     []string
	URLTemplate string
	UserAgent   string
	Timeout     time.Duration
	// Client overrides the default HTTP client; Timeout is ignored when set.
	Client *http.Client
}

func NewMirrorProvider(opts MirrorOptions) *MirrorProvider {
	p := &MirrorProvider{
		client:      opts.Client,
		mirrors:     append([]string(nil), opts.Mirrors...),
		urlTemplate: opts.URLTemplate,
		userAgent:   opts.UserAgent,
	}
	if len(p.mirrors) == 0 {
		p.mirrors = append([]string(nil), DefaultMirrors...)
	}
	if p.urlTemplate == "" {
		p.urlTemplate = DefaultURLTemplate
	}
	if p.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		p.client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 16,
				MaxConnsPerHost:     16,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	return p
}

// TileURL returns the URL of tile k on the given mirror.
func (p *MirrorProvider) TileURL(mirror string, k Key) string {
	r := strings.NewReplacer(
		"{mirror}", mirror,
		"{z}", strconv.Itoa(k.Zoom),
		"{x}", strconv.Itoa(k.X),
		"{y}", strconv.Itoa(k.Y),
	)
	return r.Replace(p.urlTemplate)
}

func (p *MirrorProvider) Fetch(ctx context.Context, k Key) (image.Image, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTile, k)
	}
	if len(p.mirrors) == 0 {
		return nil, errNoMirrorsProvided
	}

	start := time.Now()
	var errs []error
	for _, mirror := range p.mirrors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := p.fetchFrom(ctx, mirror, k)
		if err == nil {
			fetchAttempts.WithLabelValues(mirror, "ok").Inc()
			fetchDuration.Observe(time.Since(start).Seconds())
			return img, nil
		}
		fetchAttempts.WithLabelValues(mirror, "error").Inc()
		log.WithFields(log.Fields{"tile": k.String(), "mirror": mirror}).WithError(err).Debug("tile mirror failed")
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrAllMirrorsFailed, k, errors.Join(errs...))
}

func (p *MirrorProvider) fetchFrom(ctx context.Context, mirror string, k Key) (image.Image, error) {
	url := p.TileURL(mirror, k)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	req.Header.Set("Accept", "image/png,image/webp,image/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("GET %s: status %s", url, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	if b := img.Bounds(); b.Dx() != TileSize || b.Dy() != TileSize {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrBadTileSize, url, b.Dx(), b.Dy())
	}
	return img, nil
}
