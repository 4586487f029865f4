package greenroom

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	defaultWidth  = 640
	defaultHeight = 480
)

// Config configures a Manager. Exactly one of Manifest and ManifestURL must
// be set; everything else has a usable zero value.
type Config struct {
	// Manifest initializes the asset source from an in-memory manifest.
	Manifest *Manifest

	// ManifestURL initializes the asset source by fetching manifest JSON
	// from this locator. The fetch runs in the background; scene
	// transitions requested before it completes simply wait for it.
	ManifestURL string

	// Fetcher resolves asset locators. Defaults to an HTTPFetcher with
	// default settings.
	Fetcher Fetcher

	// Width and Height are the logical screen size returned by Layout.
	// Defaults are 640 by 480.
	Width  int
	Height int

	// ClearColor fills the screen before each frame. Default black.
	ClearColor Color

	// FadeIn, in seconds, fades every newly attached scene in from
	// ClearColor. Zero disables the fade.
	FadeIn float64

	// ShowProgress draws a built-in progress bar while a scene is loading
	// and no scene is attached yet (typically the first load of the
	// process). Once a scene is attached, later loads happen behind it
	// and the bar is not drawn.
	ShowProgress bool

	// BackgroundLoadAll starts a sequential background load of every
	// bundle in the manifest as soon as initialization completes. Scene
	// transitions reuse whatever it has already pulled in.
	BackgroundLoadAll bool

	// SampleRate for decoded audio assets. Default 44100.
	SampleRate int

	// OnProgress observes the progress ratio of every scene transition.
	// It is called from loader goroutines, one call at a time.
	OnProgress func(ratio float64)
}

// Transition tracks one ChangeScene request from the call until its scene is
// attached (or the attempt fails). It is a handle: callers may ignore it
// entirely, poll Err, select on Done, or block in Wait.
type Transition struct {
	load  *Load
	scene Scene

	pmu      sync.Mutex
	progress float64
}

// Scene returns the scene this transition is bringing in.
func (t *Transition) Scene() Scene {
	return t.scene
}

// Done returns a channel that is closed once the transition has settled,
// with the scene attached or the attempt abandoned.
func (t *Transition) Done() <-chan struct{} {
	return t.load.Done()
}

// Err returns the transition outcome. Before Done is closed it returns nil.
func (t *Transition) Err() error {
	return t.load.Err()
}

// Wait blocks until the transition settles and returns its outcome. Never
// call Wait from a scene method; those run on the game loop the transition
// needs.
func (t *Transition) Wait() error {
	return t.load.Wait()
}

// Progress returns the transition's loading ratio in [0, 1]. It only moves
// forward.
func (t *Transition) Progress() float64 {
	t.pmu.Lock()
	defer t.pmu.Unlock()
	return t.progress
}

func (t *Transition) setProgress(r float64) {
	t.pmu.Lock()
	if r > t.progress {
		t.progress = r
	}
	t.pmu.Unlock()
}

// Manager owns the current scene and coordinates asset loading around scene
// changes. It implements ebiten.Game, so it is handed straight to
// ebiten.RunGame (or to Run in this package).
//
// All scene lifecycle methods run on the game loop goroutine. Loading runs
// on background goroutines owned by the manager's Source; the two sides meet
// in Update, which applies finished transitions before ticking the scene.
type Manager struct {
	source   *Source
	initLoad *Load
	cfg      Config

	mu      sync.Mutex
	pending []func()
	current Scene
	states  map[Scene]SceneState
	tail    *Transition
	active  *Transition

	// Game loop goroutine only.
	overlay   *progressOverlay
	fade      *gween.Tween
	fadeAlpha float64
}

// NewManager creates a Manager and starts initializing its asset source.
// Initialization runs in the background; the manager is usable immediately
// and the first ChangeScene waits for it.
func NewManager(cfg Config) *Manager {
	if (cfg.Manifest == nil) == (cfg.ManifestURL == "") {
		panic("greenroom: NewManager: set exactly one of Config.Manifest and Config.ManifestURL")
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = &HTTPFetcher{}
	}
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}

	src := NewSource(cfg.Fetcher)
	if cfg.SampleRate > 0 {
		src.SetSampleRate(cfg.SampleRate)
	}

	m := &Manager{
		source:  src,
		cfg:     cfg,
		states:  make(map[Scene]SceneState),
		overlay: newProgressOverlay(),
	}

	if cfg.Manifest != nil {
		m.initLoad = src.Init(cfg.Manifest)
	} else {
		m.initLoad = src.InitURL(cfg.ManifestURL)
	}

	if cfg.BackgroundLoadAll {
		go func() {
			if m.initLoad.Wait() != nil {
				return
			}
			src.BackgroundLoadBundles(src.BundleNames())
		}()
	}

	return m
}

// Source returns the manager's asset source, for scenes to pull loaded
// assets from.
func (m *Manager) Source() *Source {
	return m.source
}

// Scene returns the currently attached scene, or nil before the first
// transition completes.
func (m *Manager) Scene() Scene {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SceneState reports the lifecycle state of s. The second result is false
// for a scene the manager has never seen.
func (m *Manager) SceneState(s Scene) (SceneState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[s]
	return st, ok
}

// Progress returns the loading ratio of the transition currently in flight,
// or 1 when no load is in progress.
func (m *Manager) Progress() float64 {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()
	if active == nil {
		return 1
	}
	return active.Progress()
}

// ChangeScene requests that next become the current scene once its asset
// bundles are loaded and FinishConstruction has run. It returns immediately;
// the current scene (if any) keeps updating and drawing until the swap.
//
// Concurrent and repeated calls are serialized: transitions complete in
// ChangeScene call order, each waiting for the one before it to settle.
// Every call needs a fresh Scene instance; passing nil, or a scene that was
// already handed to ChangeScene, is a usage error and panics.
func (m *Manager) ChangeScene(next Scene) *Transition {
	if next == nil {
		panic("greenroom: ChangeScene: nil scene")
	}
	bundles := next.AssetBundles()

	m.mu.Lock()
	if _, used := m.states[next]; used {
		m.mu.Unlock()
		panic("greenroom: ChangeScene: scene instance already used; construct a fresh scene per transition")
	}
	t := &Transition{load: newLoad(), scene: next}
	m.states[next] = SceneConstructed
	prev := m.tail
	m.tail = t
	m.mu.Unlock()

	go m.transition(t, prev, bundles)
	return t
}

// transition drives one scene change on a background goroutine: wait for
// the previous transition and for source initialization, load the bundles,
// then hand the actual swap to the game loop.
func (m *Manager) transition(t *Transition, prev *Transition, bundles []string) {
	if prev != nil {
		// A failed predecessor does not block us; order is all we need.
		prev.Wait()
	}
	if err := m.initLoad.Wait(); err != nil {
		m.fail(t, err)
		return
	}

	m.mu.Lock()
	m.active = t
	m.mu.Unlock()

	onProgress := func(r float64) {
		t.setProgress(r)
		if m.cfg.OnProgress != nil {
			m.cfg.OnProgress(r)
		}
	}
	if err := m.source.LoadBundles(bundles, onProgress); err != nil {
		m.fail(t, err)
		return
	}

	m.mu.Lock()
	m.states[t.scene] = SceneAssetReady
	m.mu.Unlock()

	m.run(func() {
		next := t.scene
		if err := next.FinishConstruction(); err != nil {
			next.Dispose()
			m.mu.Lock()
			m.states[next] = SceneDetached
			if m.active == t {
				m.active = nil
			}
			m.mu.Unlock()
			t.load.settle(fmt.Errorf("greenroom: finish construction: %w", err))
			return
		}

		m.mu.Lock()
		old := m.current
		m.current = next
		m.states[next] = SceneAttached
		if old != nil {
			m.states[old] = SceneDetached
		}
		if m.active == t {
			m.active = nil
		}
		m.mu.Unlock()

		if old != nil {
			old.Dispose()
		}
		m.startFade()
		t.load.settle(nil)
	})
}

// fail abandons a transition. The incoming scene is disposed on the game
// loop like every other lifecycle call; the current scene stays attached.
func (m *Manager) fail(t *Transition, err error) {
	next := t.scene
	m.mu.Lock()
	m.states[next] = SceneDetached
	if m.active == t {
		m.active = nil
	}
	m.mu.Unlock()
	m.run(func() { next.Dispose() })
	t.load.settle(err)
}

// run queues fn to execute on the game loop at the start of the next Update.
func (m *Manager) run(fn func()) {
	m.mu.Lock()
	m.pending = append(m.pending, fn)
	m.mu.Unlock()
}

func (m *Manager) startFade() {
	if m.cfg.FadeIn <= 0 {
		return
	}
	m.fade = gween.New(1, 0, float32(m.cfg.FadeIn), ease.OutQuad)
	m.fadeAlpha = 1
}

// Update applies finished transitions, advances overlays, and ticks the
// current scene. It is part of the ebiten.Game interface.
func (m *Manager) Update() error {
	// Apply queued lifecycle work first so a freshly attached scene gets
	// its first Update on the same tick.
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, fn := range pending {
		fn()
	}

	dt := 1.0 / float64(ebiten.TPS())

	m.mu.Lock()
	current := m.current
	active := m.active
	m.mu.Unlock()

	if active != nil {
		m.overlay.setTarget(active.Progress())
	}
	m.overlay.update(dt)

	if m.fade != nil {
		alpha, finished := m.fade.Update(float32(dt))
		m.fadeAlpha = float64(alpha)
		if finished {
			m.fade = nil
		}
	}

	if current != nil {
		if err := current.Update(dt); err != nil {
			return err
		}
	}
	return nil
}

// Draw clears the screen, draws the current scene (or the loading overlay
// before the first scene arrives), and applies the fade-in. It is part of
// the ebiten.Game interface.
func (m *Manager) Draw(screen *ebiten.Image) {
	screen.Fill(m.cfg.ClearColor.toRGBA())

	m.mu.Lock()
	current := m.current
	active := m.active
	m.mu.Unlock()

	if current != nil {
		current.Draw(screen)
	} else if m.cfg.ShowProgress && active != nil {
		m.overlay.draw(screen)
	}

	if m.fadeAlpha > 0 {
		fillScreen(screen, m.cfg.ClearColor, m.fadeAlpha)
	}
}

// Layout reports the fixed logical screen size. It is part of the
// ebiten.Game interface.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	return m.cfg.Width, m.cfg.Height
}
