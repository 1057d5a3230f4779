package tiles

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/olablt/gio-routemap/tiles/worker"
	log "github.com/sirupsen/logrus"
)

type Priority = worker.Priority

const (
	PriorityBackground = worker.Background
	PriorityVisible    = worker.High
)

type LoaderOptions struct {
	Workers   int
	QueueSize int
	// BackgroundDelay holds back buffer-ring tiles so visible ones are
	// served first.
	BackgroundDelay time.Duration
	FetchTimeout    time.Duration
	// RetryInterval is how long a placeholder is kept before the tile is
	// fetched again.
	RetryInterval time.Duration
	ReadyBuffer   int
}

func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		Workers:         15,
		QueueSize:       256,
		BackgroundDelay: 50 * time.Millisecond,
		FetchTimeout:    15 * time.Second,
		RetryInterval:   10 * time.Second,
		ReadyBuffer:     64,
	}
}

// Loader fills cache misses on a worker pool without blocking the caller.
// Every key is fetched at most once at a time; completed tiles are
// announced on Ready.
type Loader struct {
	cache    *Cache
	provider Provider
	pool     *worker.Pool
	opts     LoaderOptions

	mu      sync.Mutex
	pending map[Key]uint64
	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc

	ready chan Key
}

func NewLoader(cache *Cache, provider Provider, opts LoaderOptions) *Loader {
	def := DefaultLoaderOptions()
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = def.QueueSize
	}
	if opts.ReadyBuffer <= 0 {
		opts.ReadyBuffer = def.ReadyBuffer
	}
	if opts.BackgroundDelay < 0 {
		opts.BackgroundDelay = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		cache:    cache,
		provider: provider,
		pool:     worker.NewPool(opts.Workers, opts.QueueSize, opts.FetchTimeout),
		opts:     opts,
		pending:  make(map[Key]uint64),
		ctx:      ctx,
		cancel:   cancel,
		ready:    make(chan Key, opts.ReadyBuffer),
	}
}

func (l *Loader) Cache() *Cache {
	return l.cache
}

// Get looks the tile up in the cache without triggering a fetch.
func (l *Loader) Get(k Key) (Entry, bool) {
	return l.cache.Get(k.Wrap())
}

// Ready delivers the key of every tile written by a worker. Sends never
// block: when the consumer lags behind, events are coalesced.
func (l *Loader) Ready() <-chan Key {
	return l.ready
}

func (l *Loader) Status(k Key) State {
	k = k.Wrap()
	l.mu.Lock()
	_, busy := l.pending[k]
	l.mu.Unlock()
	if busy {
		return Loading
	}
	if e, ok := l.cache.Get(k); ok {
		return e.State
	}
	return Missing
}

// Pending returns the number of tiles queued or in flight.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Request schedules a fetch for k unless it is already cached, recently
// failed or in flight. It reports whether a new fetch was queued.
func (l *Loader) Request(k Key, prio Priority) bool {
	k = k.Wrap()
	if !k.Valid() {
		if e, ok := l.cache.Get(k); !ok || e.State != Placeholder {
			l.storePlaceholder(k)
		}
		return false
	}
	if l.fresh(k) {
		return false
	}

	l.mu.Lock()
	if _, busy := l.pending[k]; busy {
		l.mu.Unlock()
		return false
	}
	// finish writes the cache under mu, so look again before claiming k
	if l.fresh(k) {
		l.mu.Unlock()
		return false
	}
	gen, ctx := l.gen, l.ctx
	l.pending[k] = gen
	pendingTiles.Set(float64(len(l.pending)))
	l.mu.Unlock()

	task := worker.Task{
		Ctx:      ctx,
		Priority: prio,
		Work: func(ctx context.Context) error {
			return l.fetch(ctx, k, gen)
		},
	}
	if prio == PriorityVisible || l.opts.BackgroundDelay == 0 {
		l.pool.Submit(task)
	} else {
		time.AfterFunc(l.opts.BackgroundDelay, func() { l.pool.Submit(task) })
	}
	return true
}

// fresh reports whether the cache already answers k: a ready tile, or a
// placeholder younger than RetryInterval.
func (l *Loader) fresh(k Key) bool {
	e, ok := l.cache.Get(k)
	if !ok {
		return false
	}
	switch e.State {
	case Ready:
		return true
	case Placeholder:
		return time.Since(e.Updated) < l.opts.RetryInterval
	}
	return false
}

func (l *Loader) fetch(ctx context.Context, k Key, gen uint64) error {
	img, err := l.fetchImage(ctx, k)
	entry := Entry{State: Ready, Image: img}
	if err != nil {
		if errors.Is(err, context.Canceled) && l.stale(gen) {
			return nil
		}
		log.WithField("tile", k.String()).WithError(err).Debug("tile unavailable, storing placeholder")
		entry = Entry{State: Placeholder, Image: NewPlaceholder(k)}
	}
	if !l.finish(k, gen, entry) {
		return nil
	}
	if entry.State == Placeholder {
		placeholdersStored.Inc()
	}
	l.notify(k)
	return nil
}

// fetchImage calls the provider, turning a panic or a missing image into
// an error so the key still leaves the pending set.
func (l *Loader) fetchImage(ctx context.Context, k Key) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("tile provider panicked: %v", r)
		}
	}()
	img, err = l.provider.Fetch(ctx, k)
	if err == nil && img == nil {
		err = errors.New("tile provider returned no image")
	}
	return img, err
}

// finish stores the result unless Reset ran since the request was made.
// Holding mu while writing keeps Reset and the write ordered.
func (l *Loader) finish(k Key, gen uint64, e Entry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	l.cache.Put(k, e)
	delete(l.pending, k)
	pendingTiles.Set(float64(len(l.pending)))
	return true
}

func (l *Loader) stale(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return gen != l.gen
}

func (l *Loader) storePlaceholder(k Key) {
	l.cache.Put(k, Entry{State: Placeholder, Image: NewPlaceholder(k)})
	placeholdersStored.Inc()
}

func (l *Loader) notify(k Key) {
	select {
	case l.ready <- k:
	default:
	}
}

// EvictZoomLevel drops the cached tiles of zoom.
func (l *Loader) EvictZoomLevel(zoom int) int {
	return l.cache.EvictZoomLevel(zoom)
}

// Reset cancels every in-flight fetch and forgets the pending set. Results
// of cancelled fetches are discarded.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancel()
	l.gen++
	l.ctx, l.cancel = context.WithCancel(context.Background())
	clear(l.pending)
	pendingTiles.Set(0)
}

// Close stops the workers. The loader must not be used afterwards.
func (l *Loader) Close() {
	l.mu.Lock()
	l.cancel()
	l.gen++
	l.mu.Unlock()
	l.pool.Shutdown()
}
