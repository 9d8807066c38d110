package canvas

import (
	"sync"

	"github.com/google/uuid"
	"github.com/playsync/playsync/media"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Shown records one ShowFrame call.
type Shown struct {
	Frame    int  `json:"frame"`
	Finalize bool `json:"finalize,omitempty"`
}

// Memory is a Canvas kept entirely in memory. Setters emit the matching notifications
// synchronously on the calling goroutine.
type Memory struct {
	id ID

	mu        sync.Mutex
	state     PlaybackState
	displayed int
	volume    float64
	media     mo.Option[media.Ref]
	animation *MemoryAnimation
	shown     []Shown
	onShow    func(Shown)

	listeners map[int]Listener
	nextID    int
}

// MemoryAnimation is the animation interface of a Memory canvas.
type MemoryAnimation struct {
	mu       sync.Mutex
	fps      int
	active   Range
	document Range
}

func (a *MemoryAnimation) FrameRate() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fps
}

func (a *MemoryAnimation) ActiveRange() Range {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *MemoryAnimation) DocumentRange() Range {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.document
}

// NewMemory creates a stopped canvas at full volume showing frame 0, with an animation of
// the given frame rate spanning document, which is also the active range.
func NewMemory(fps int, document Range) *Memory {
	return &Memory{
		id:        ID(uuid.NewString()),
		volume:    1,
		media:     mo.None[media.Ref](),
		animation: &MemoryAnimation{fps: fps, active: document, document: document},
		listeners: make(map[int]Listener),
	}
}

// WithoutAnimation drops the animation interface, leaving a canvas that cannot host playback.
func (m *Memory) WithoutAnimation() *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.animation = nil
	return m
}

func (m *Memory) ID() ID { return m.id }

func (m *Memory) PlaybackState() PlaybackState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Memory) DisplayedFrame() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.displayed
}

func (m *Memory) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Memory) Media() mo.Option[media.Ref] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.media
}

func (m *Memory) Animation() mo.Option[Animation] {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.animation == nil {
		return mo.None[Animation]()
	}
	return mo.Some[Animation](m.animation)
}

func (m *Memory) ShowFrame(frame int, finalize bool) {
	m.mu.Lock()
	m.displayed = frame
	s := Shown{Frame: frame, Finalize: finalize}
	m.shown = append(m.shown, s)
	onShow := m.onShow
	m.mu.Unlock()

	if onShow != nil {
		onShow(s)
	}
}

// OnShow installs a hook invoked after every ShowFrame.
func (m *Memory) OnShow(fn func(Shown)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onShow = fn
}

// Shown returns a copy of every ShowFrame call so far.
func (m *Memory) Shown() []Shown {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Shown(nil), m.shown...)
}

func (m *Memory) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = l

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Subscribers is the number of attached listeners.
func (m *Memory) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

func (m *Memory) snapshot() []Listener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Values(m.listeners)
}

// SetPlaybackState changes the transport state.
func (m *Memory) SetPlaybackState(s PlaybackState) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()

	for _, l := range m.snapshot() {
		if l.PlaybackStateChanged != nil {
			l.PlaybackStateChanged(s)
		}
	}
}

// SetDisplayedFrame moves the displayed frame without notifying anyone.
func (m *Memory) SetDisplayedFrame(frame int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.displayed = frame
}

// SetVolume changes the canvas volume.
func (m *Memory) SetVolume(v float64) {
	m.mu.Lock()
	m.volume = v
	m.mu.Unlock()

	for _, l := range m.snapshot() {
		if l.AudioLevelChanged != nil {
			l.AudioLevelChanged(v)
		}
	}
}

// SetMedia attaches a media source, or detaches it when ref is None.
func (m *Memory) SetMedia(ref mo.Option[media.Ref]) {
	m.mu.Lock()
	m.media = ref
	m.mu.Unlock()

	for _, l := range m.snapshot() {
		if l.MediaChanged != nil {
			l.MediaChanged()
		}
	}
}

// SetFrameRate changes the animation frame rate.
func (m *Memory) SetFrameRate(fps int) {
	if a := m.anim(); a != nil {
		a.mu.Lock()
		a.fps = fps
		a.mu.Unlock()
	}

	for _, l := range m.snapshot() {
		if l.FrameRateChanged != nil {
			l.FrameRateChanged()
		}
	}
}

// SetActiveRange changes the active playback range.
func (m *Memory) SetActiveRange(r Range) {
	if a := m.anim(); a != nil {
		a.mu.Lock()
		a.active = r
		a.mu.Unlock()
	}

	for _, l := range m.snapshot() {
		if l.PlaybackRangeChanged != nil {
			l.PlaybackRangeChanged()
		}
	}
}

// SetDocumentRange changes the full extent of the animation.
func (m *Memory) SetDocumentRange(r Range) {
	if a := m.anim(); a != nil {
		a.mu.Lock()
		a.document = r
		a.mu.Unlock()
	}
}

func (m *Memory) anim() *MemoryAnimation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.animation
}
