package greenroom

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// SourceState describes where a Source is in its lifecycle. States only move
// forward: a Source is initialized at most once per process and its identity
// is fixed by that first initialization.
type SourceState uint8

const (
	SourceUninitialized SourceState = iota // no Init/InitURL call yet
	SourceInitializing                     // manifest fetch/parse in flight
	SourceReady                            // bundles may be loaded
	SourceFailed                           // initialization failed; loads are unusable
)

// Load is a one-shot future for an asynchronous loading operation.
type Load struct {
	done chan struct{}
	err  error
}

func newLoad() *Load {
	return &Load{done: make(chan struct{})}
}

// settle records the outcome and releases waiters. Called exactly once.
func (l *Load) settle(err error) {
	l.err = err
	close(l.done)
}

// Done returns a channel that is closed once the operation has finished.
func (l *Load) Done() <-chan struct{} {
	return l.done
}

// Err returns the operation's outcome. Before Done is closed it returns nil.
func (l *Load) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

// Wait blocks until the operation finishes and returns its outcome.
func (l *Load) Wait() error {
	<-l.done
	return l.err
}

// InitError wraps a failure to initialize a Source: the manifest could not be
// fetched, parsed, or validated. Initialization failure is fatal to the
// loading subsystem — every subsequent scene transition fails with this error.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return "greenroom: initialization failed: " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// AssetError reports the failure of a single asset download or decode. A
// failed bundle load surfaces the first AssetError encountered.
type AssetError struct {
	Key string
	URL string
	Err error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("greenroom: asset %q (%s): %v", e.Key, e.URL, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// Source resolves, downloads, decodes, and caches assets by key. All loading
// goes through named bundles declared in a manifest; every asset is fetched
// and decoded at most once per process no matter how many bundles reference
// it or how many loads request it concurrently.
//
// The zero value is not usable; create Sources with NewSource. Methods are
// safe for concurrent use except where noted.
type Source struct {
	fetcher     Fetcher
	decoders    map[string]DecodeFunc
	sampleRate  int
	concurrency int

	mu       sync.Mutex
	state    SourceState
	init     *Load
	manifest *Manifest
	byName   map[string]*Bundle
	cache    map[string]any

	flight singleflight.Group
}

const (
	defaultSampleRate  = 44100
	defaultConcurrency = 8
)

// NewSource creates an asset source that fetches through f.
func NewSource(f Fetcher) *Source {
	if f == nil {
		panic("greenroom: NewSource: nil fetcher")
	}
	return &Source{
		fetcher:     f,
		decoders:    make(map[string]DecodeFunc),
		sampleRate:  defaultSampleRate,
		concurrency: defaultConcurrency,
		cache:       make(map[string]any),
	}
}

// SetSampleRate sets the rate audio assets are decoded at (default 44100).
// Must be called before any loading begins.
func (s *Source) SetSampleRate(rate int) {
	s.sampleRate = rate
}

// SetConcurrency caps the number of simultaneous fetches per LoadBundles call
// (default 8). Must be called before any loading begins.
func (s *Source) SetConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	s.concurrency = n
}

// RegisterDecoder installs fn for locators with the given extension (e.g.
// ".csv"), overriding the built-in decoder for that extension if one exists.
// Must be called before any loading begins.
func (s *Source) RegisterDecoder(ext string, fn DecodeFunc) {
	s.decoders[strings.ToLower(ext)] = fn
}

// State reports the source's lifecycle state.
func (s *Source) State() SourceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Init validates the manifest and readies the source. The first Init or
// InitURL call decides the source's identity for the rest of the process;
// every later call — including calls racing an in-flight InitURL — returns
// the first call's Load unchanged and has no side effects.
//
// The manifest must not be modified after this call.
func (s *Source) Init(m *Manifest) *Load {
	if m == nil {
		panic("greenroom: Init: nil manifest")
	}
	s.mu.Lock()
	if s.init != nil {
		l := s.init
		s.mu.Unlock()
		return l
	}
	l := newLoad()
	s.init = l
	if err := m.validate(); err != nil {
		s.state = SourceFailed
		s.mu.Unlock()
		l.settle(&InitError{Err: err})
		return l
	}
	s.adopt(m)
	s.mu.Unlock()
	l.settle(nil)
	return l
}

// InitURL fetches manifest JSON from url and then initializes like Init. The
// returned Load settles once the manifest has been fetched and validated;
// loading bundles before then is a usage error.
func (s *Source) InitURL(url string) *Load {
	s.mu.Lock()
	if s.init != nil {
		l := s.init
		s.mu.Unlock()
		return l
	}
	l := newLoad()
	s.init = l
	s.state = SourceInitializing
	s.mu.Unlock()
	go func() {
		data, err := s.fetcher.Fetch(url)
		if err != nil {
			s.failInit(l, err)
			return
		}
		m, err := ParseManifest(data)
		if err != nil {
			s.failInit(l, err)
			return
		}
		s.mu.Lock()
		s.adopt(m)
		s.mu.Unlock()
		l.settle(nil)
	}()
	return l
}

func (s *Source) failInit(l *Load, err error) {
	s.mu.Lock()
	s.state = SourceFailed
	s.mu.Unlock()
	l.settle(&InitError{Err: err})
}

// adopt installs a validated manifest. The caller holds s.mu.
func (s *Source) adopt(m *Manifest) {
	s.manifest = m
	s.byName = make(map[string]*Bundle, len(m.Bundles))
	for i := range m.Bundles {
		s.byName[m.Bundles[i].Name] = &m.Bundles[i]
	}
	s.state = SourceReady
}

// requireReady panics when a load operation is attempted out of order.
// These are programmer errors, not runtime faults: sequence loads after the
// Load returned by Init/InitURL has settled.
func (s *Source) requireReady(op string) {
	switch s.State() {
	case SourceReady:
	case SourceFailed:
		panic("greenroom: " + op + " after initialization failed")
	default:
		panic("greenroom: " + op + " before initialization completed")
	}
}

// BundleNames returns the name of every bundle in the manifest, in manifest
// order. Only valid once the source is ready.
func (s *Source) BundleNames() []string {
	s.requireReady("BundleNames")
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.manifest.Bundles))
	for i, b := range s.manifest.Bundles {
		names[i] = b.Name
	}
	return names
}

// assetRef is one asset to resolve: its cache key and source locator.
type assetRef struct {
	key string
	url string
}

// assetsFor expands bundle names into the deduplicated set of assets they
// reference, in deterministic (key-sorted) order.
func (s *Source) assetsFor(names []string) ([]assetRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var refs []assetRef
	for _, name := range names {
		b, ok := s.byName[name]
		if !ok {
			return nil, fmt.Errorf("greenroom: unknown bundle %q", name)
		}
		for key, url := range b.Assets {
			if !seen[key] {
				seen[key] = true
				refs = append(refs, assetRef{key: key, url: url})
			}
		}
	}
	slices.SortFunc(refs, func(a, b assetRef) int {
		return strings.Compare(a.key, b.key)
	})
	return refs, nil
}

// LoadBundles downloads and decodes every asset of the named bundles,
// returning once all of them are cached. Assets shared between the named
// bundles, or already loaded (or loading) through any other call, are
// fetched exactly once process-wide.
//
// onProgress, when non-nil, receives a monotonically non-decreasing
// completion ratio in [0, 1] over this call's asset set, with a final call
// at 1.0 before LoadBundles returns. It is invoked from loader goroutines,
// one call at a time; keep it fast.
//
// Calling LoadBundles before the source is ready is a usage error and
// panics. Asset failures surface as an *AssetError in the returned error,
// are not cached, and are not retried until the next explicit load.
func (s *Source) LoadBundles(names []string, onProgress func(ratio float64)) error {
	s.requireReady("LoadBundles")
	refs, err := s.assetsFor(names)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		if onProgress != nil {
			onProgress(1)
		}
		return nil
	}

	var (
		pmu  sync.Mutex
		done int
	)
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, ref := range refs {
		g.Go(func() error {
			if _, err := s.resolve(ref.key, ref.url); err != nil {
				return err
			}
			pmu.Lock()
			done++
			ratio := float64(done) / float64(len(refs))
			if onProgress != nil {
				onProgress(ratio)
			}
			pmu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// BackgroundLoadBundles begins downloading the named bundles without anyone
// waiting on them. Assets resolve one at a time so speculative work stays
// out of the way of foreground loads; a later LoadBundles naming a bundle
// already fully or partially background-loaded reuses that work instead of
// restarting it and resolves as soon as the remainder completes.
//
// Individual failures do not stop the pass: the failed asset is skipped (a
// later foreground load will surface the error to a caller that can handle
// it) and the first failure is recorded in the returned Load.
func (s *Source) BackgroundLoadBundles(names []string) *Load {
	s.requireReady("BackgroundLoadBundles")
	l := newLoad()
	refs, err := s.assetsFor(names)
	if err != nil {
		l.settle(err)
		return l
	}
	go func() {
		var firstErr error
		for _, ref := range refs {
			if _, err := s.resolve(ref.key, ref.url); err != nil {
				debugf("background load: %v", err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		l.settle(firstErr)
	}()
	return l
}

// resolve returns the decoded value for key, fetching and decoding at most
// once process-wide. Concurrent callers for the same key join the in-flight
// fetch and observe the same decoded value.
func (s *Source) resolve(key, url string) (any, error) {
	s.mu.Lock()
	v, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		return v, nil
	}
	v, err, _ := s.flight.Do(key, func() (any, error) {
		// Re-check: this flight may have been entered just as a previous
		// execution for the key completed.
		s.mu.Lock()
		v, ok := s.cache[key]
		s.mu.Unlock()
		if ok {
			return v, nil
		}
		data, err := s.fetcher.Fetch(url)
		if err != nil {
			return nil, &AssetError{Key: key, URL: url, Err: err}
		}
		val, err := s.decodeAsset(url, data)
		if err != nil {
			return nil, &AssetError{Key: key, URL: url, Err: err}
		}
		s.mu.Lock()
		s.cache[key] = val
		s.mu.Unlock()
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Get returns the cached value for key, or false if the asset has not
// finished loading. Get never blocks; call it only for assets whose bundle
// a load has already resolved.
func (s *Source) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache[key]
	return v, ok
}

// Image returns the cached image for key. If the key is missing or not an
// image it logs in debug mode and returns a 1×1 magenta placeholder, so the
// mistake shows up on screen instead of crashing the frame. Call Image from
// the game loop goroutine.
func (s *Source) Image(key string) *ebiten.Image {
	if v, ok := s.Get(key); ok {
		if img, ok := v.(*ebiten.Image); ok {
			return img
		}
	}
	debugf("image %q not loaded, using magenta placeholder", key)
	return ensureMagentaImage()
}

// Sound returns the cached sound for key, or nil if the key is missing or
// not an audio asset.
func (s *Source) Sound(key string) *Sound {
	if v, ok := s.Get(key); ok {
		if snd, ok := v.(*Sound); ok {
			return snd
		}
	}
	debugf("sound %q not loaded", key)
	return nil
}

// Font returns the cached font for key, or nil if the key is missing or not
// a font asset.
func (s *Source) Font(key string) *truetype.Font {
	if v, ok := s.Get(key); ok {
		if f, ok := v.(*truetype.Font); ok {
			return f
		}
	}
	debugf("font %q not loaded", key)
	return nil
}

// Face creates a font.Face of the given point size from the cached font for
// key, or returns nil if the font is missing.
func (s *Source) Face(key string, size float64) font.Face {
	f := s.Font(key)
	if f == nil {
		return nil
	}
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

// JSON returns the decoded JSON value cached for key, or nil.
func (s *Source) JSON(key string) any {
	v, ok := s.Get(key)
	if !ok {
		debugf("JSON %q not loaded", key)
		return nil
	}
	return v
}

// Bytes returns the cached raw bytes for key, or nil. Useful for assets
// whose extension has no registered decoder.
func (s *Source) Bytes(key string) []byte {
	if v, ok := s.Get(key); ok {
		if b, ok := v.([]byte); ok {
			return b
		}
	}
	debugf("bytes %q not loaded", key)
	return nil
}
