// Package assets loads images, fonts, and glTF models off the render goroutine. Each Load returns a Handle at once and
// decodes in the background; the result is posted to the render loop's FrameQueue and handed to the caller's callback at
// the top of a later frame, but only if no newer Load for the same path was issued in the meantime.
package assets

import (
	"image"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/opentype"

	"github.com/solarlune/framekit"
)

// Kind is the category of an asset, decided by its file extension.
type Kind int

const (
	KindRaw   Kind = iota // Anything unrecognised; delivered as bytes.
	KindImage             // .png, .jpg, .jpeg, .gif, .bmp, .webp, .tga
	KindFont              // .ttf, .otf
	KindModel             // .gltf, .glb
)

func (kind Kind) String() string {
	switch kind {
	case KindImage:
		return "image"
	case KindFont:
		return "font"
	case KindModel:
		return "model"
	}
	return "raw"
}

// KindOf returns the Kind of the asset at the given path.
func KindOf(p string) Kind {
	switch strings.ToLower(path.Ext(p)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tga":
		return KindImage
	case ".ttf", ".otf":
		return KindFont
	case ".gltf", ".glb":
		return KindModel
	}
	return KindRaw
}

// Handle identifies a single Load request. Handles increase with every request a Loader makes.
type Handle uint64

// Result is the outcome of a Load. Exactly one of Image, Font, Model, or Raw is set on success; on failure Err wraps
// framekit.ErrAssetLoadFailure.
type Result struct {
	Handle Handle
	Path   string
	Kind   Kind
	Image  image.Image
	Font   *opentype.Font
	Model  *Library
	Raw    []byte
	Err    error
}

// Callback receives a Result on the render goroutine, at the top of a frame.
type Callback func(fc *framekit.FrameContext, res Result)

// Sink accepts completed loads; a *framekit.FrameQueue or *framekit.RenderLoop will do.
type Sink interface {
	Post(ev framekit.Event)
}

// Observer holds optional progress callbacks. They're called on the loader's goroutines, not the render goroutine, so they
// mustn't touch scene state.
type Observer struct {
	OnStart func(p string, h Handle)
	OnLoad  func(res Result)
	OnError func(res Result)
}

// Options configure a Loader.
type Options struct {
	MaxTextureSize int // If above zero, images larger than this on either side are scaled down to fit.
	Observer       Observer
	Logger         logrus.FieldLogger
}

// Loader loads assets from an fs.FS in the background.
type Loader struct {
	fsys   fs.FS
	sink   Sink
	opts   Options
	logger logrus.FieldLogger

	mu        sync.Mutex
	next      Handle
	latest    map[string]Handle
	callbacks map[string]Callback
	inFlight  sync.WaitGroup
}

// NewLoader creates a new Loader reading from fsys and posting completions to sink.
func NewLoader(fsys fs.FS, sink Sink, opts Options) *Loader {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Loader{
		fsys:      fsys,
		sink:      sink,
		opts:      opts,
		logger:    opts.Logger.WithField("component", "assets"),
		latest:    map[string]Handle{},
		callbacks: map[string]Callback{},
	}
}

// Load starts loading the asset at p and returns its Handle straight away. When the load finishes, onComplete is called at
// the top of the next frame, unless another Load (or a Cancel) for the same path has happened since, in which case the
// result is dropped. onComplete may be nil.
func (loader *Loader) Load(p string, onComplete Callback) Handle {

	p = cleanPath(p)

	loader.mu.Lock()
	loader.next++
	h := loader.next
	loader.latest[p] = h
	loader.callbacks[p] = onComplete
	loader.mu.Unlock()

	if loader.opts.Observer.OnStart != nil {
		loader.opts.Observer.OnStart(p, h)
	}

	loader.logger.WithFields(logrus.Fields{"path": p, "handle": h}).Debug("load started")

	loader.inFlight.Add(1)
	go func() {
		defer loader.inFlight.Done()
		res := loader.decode(p, h)
		if res.Err != nil {
			loader.logger.WithError(res.Err).WithFields(logrus.Fields{"path": p, "handle": h}).Error("load failed")
			if loader.opts.Observer.OnError != nil {
				loader.opts.Observer.OnError(res)
			}
		} else if loader.opts.Observer.OnLoad != nil {
			loader.opts.Observer.OnLoad(res)
		}
		loader.sink.Post(completion{loader: loader, result: res, callback: onComplete})
	}()

	return h

}

// Cancel supersedes any in-flight Load for p without starting a new one; its result will be dropped.
func (loader *Loader) Cancel(p string) {
	p = cleanPath(p)
	loader.mu.Lock()
	defer loader.mu.Unlock()
	if _, exists := loader.latest[p]; exists {
		loader.next++
		loader.latest[p] = loader.next
	}
	delete(loader.callbacks, p)
}

// Latest returns the Handle of the newest request for p, and whether p was ever requested.
func (loader *Loader) Latest(p string) (Handle, bool) {
	loader.mu.Lock()
	defer loader.mu.Unlock()
	h, ok := loader.latest[cleanPath(p)]
	return h, ok
}

// IsCurrent returns true if h is still the newest request for p.
func (loader *Loader) IsCurrent(p string, h Handle) bool {
	latest, ok := loader.Latest(p)
	return ok && latest == h
}

// Wait blocks until every load started so far has been decoded and posted.
func (loader *Loader) Wait() {
	loader.inFlight.Wait()
}

func (loader *Loader) decode(p string, h Handle) Result {

	res := Result{Handle: h, Path: p, Kind: KindOf(p)}

	data, err := fs.ReadFile(loader.fsys, p)
	if err != nil {
		res.Err = errors.Wrapf(framekit.ErrAssetLoadFailure, "%s: %v", p, err)
		return res
	}

	switch res.Kind {
	case KindImage:
		res.Image, err = decodeImage(p, data, loader.opts.MaxTextureSize)
	case KindFont:
		res.Font, err = decodeFont(data)
	case KindModel:
		res.Model, err = decodeModel(data)
	default:
		res.Raw = data
	}

	if err != nil {
		res.Err = errors.Wrapf(framekit.ErrAssetLoadFailure, "%s: %v", p, err)
		res.Image, res.Font, res.Model = nil, nil, nil
	}

	return res

}

func cleanPath(p string) string {
	return strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, `\`, "/")), "/")
}

// completion is the Event a finished load posts to the frame queue.
type completion struct {
	loader   *Loader
	result   Result
	callback Callback
}

func (c completion) Apply(fc *framekit.FrameContext) {
	if !c.loader.IsCurrent(c.result.Path, c.result.Handle) {
		c.loader.logger.WithFields(logrus.Fields{"path": c.result.Path, "handle": c.result.Handle}).Debug("dropping superseded load")
		return
	}
	if c.callback != nil {
		c.callback(fc, c.result)
	}
}

// ApplyTexture returns a Callback that sets a loaded image as the material's texture. On failure, the material keeps its
// current appearance.
func ApplyTexture(material *framekit.Material) Callback {
	return func(fc *framekit.FrameContext, res Result) {
		if res.Err != nil || res.Image == nil {
			return
		}
		material.Texture.Set(res.Image)
	}
}
