package widgets

import (
	"sync"

	"go.uber.org/zap"

	"github.com/davidparry/widgets/dispatch"
	"github.com/davidparry/widgets/internal/imagecache"
	"github.com/davidparry/widgets/internal/stats"
)

// ViewOption configures an ImageView.
type ViewOption interface {
	applyView(*ImageView)
}

// viewOptionFunc wraps a function to implement ViewOption.
type viewOptionFunc func(*ImageView)

// Compile-time check that viewOptionFunc implements ViewOption.
var _ ViewOption = viewOptionFunc(nil)

func (f viewOptionFunc) applyView(v *ImageView) { f(v) }

// WithOnImage sets the callback run on the rendering context whenever the
// view starts showing a new image, typically to invalidate and redraw.
func WithOnImage(fn func(*imagecache.Image)) ViewOption {
	return viewOptionFunc(func(v *ImageView) { v.onImage = fn })
}

// ImageView is the model behind a view that shows one image by URL.
// Deliveries from background fetches are posted through the view's
// dispatcher, so Image and the OnImage callback only change on the
// rendering context.
type ImageView struct {
	loader     *Loader
	dispatcher dispatch.Dispatcher
	onImage    func(*imagecache.Image)
	logger     *zap.Logger

	mu       sync.Mutex
	url      string
	image    *imagecache.Image
	sub      *imagecache.Subscription
	gen      uint64 // bumped by every LoadURL; older deliveries are stale
	detached bool
}

// NewImageView creates a view fed by loader. A nil dispatcher runs
// deliveries on the fetching goroutine.
func NewImageView(loader *Loader, d dispatch.Dispatcher, opts ...ViewOption) *ImageView {
	if d == nil {
		d = dispatch.Immediate{}
	}
	v := &ImageView{
		loader:     loader,
		dispatcher: d,
		onImage:    func(*imagecache.Image) {},
		logger:     loader.logger.Named("view"),
	}
	for _, opt := range opts {
		opt.applyView(v)
	}
	return v
}

// LoadURL points the view at url. A cached image is shown before LoadURL
// returns; otherwise the view shows nothing until the fetch completes.
// A failed fetch leaves the view empty.
func (v *ImageView) LoadURL(url string) {
	cache := v.loader.Cache()

	v.mu.Lock()
	if v.detached {
		v.mu.Unlock()
		return
	}
	v.sub.Cancel()
	v.gen++
	gen := v.gen
	v.url = url
	v.image = nil
	// Subscribe before the lookup so a Put racing with it is not missed.
	v.sub = cache.Subscribe(url, imagecache.ListenerFunc(func(string) {
		v.dispatcher.Post(func() { v.updateFromCache(gen) })
	}))
	sub := v.sub
	v.mu.Unlock()

	if img, ok := cache.Get(url); ok {
		sub.Cancel()
		v.show(gen, img)
		return
	}
	v.loader.Fetch(url)
}

// URL returns the URL the view was last pointed at.
func (v *ImageView) URL() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.url
}

// Image returns the image being shown, or nil.
func (v *ImageView) Image() *imagecache.Image {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.image
}

// Alive reports whether the view still accepts deliveries.
func (v *ImageView) Alive() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.detached
}

// Detach revokes the pending subscription. Deliveries already posted become
// no-ops and later LoadURL calls are ignored.
func (v *ImageView) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detached = true
	v.sub.Cancel()
	v.sub = nil
}

// updateFromCache runs on the rendering context after the cache announced
// the image for generation gen.
func (v *ImageView) updateFromCache(gen uint64) {
	url, ok := v.current(gen)
	if !ok {
		v.loader.stats.IncCounter(stats.MetricViewStaleDrops, 1)
		return
	}
	img, ok := v.loader.Cache().Get(url)
	if !ok {
		// Evicted between Put and delivery, e.g. larger than the whole budget.
		v.logger.Debug("delivered image already evicted", zap.String("url", url))
		return
	}
	v.show(gen, img)
}

func (v *ImageView) current(gen uint64) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.detached || gen != v.gen {
		return "", false
	}
	return v.url, true
}

func (v *ImageView) show(gen uint64, img *imagecache.Image) {
	v.mu.Lock()
	if v.detached || gen != v.gen {
		v.mu.Unlock()
		v.loader.stats.IncCounter(stats.MetricViewStaleDrops, 1)
		return
	}
	if v.image == img {
		v.mu.Unlock()
		return
	}
	v.image = img
	v.sub = nil
	v.mu.Unlock()

	v.loader.stats.IncCounter(stats.MetricViewDeliveries, 1)
	v.onImage(img)
}
