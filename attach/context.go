package attach

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"h2p/css/counter"
	"h2p/css/media"
	"h2p/css/resolve"
	"h2p/resource"
)

// DefaultLimitOfLayouts is number of passes used to resolve forward
// target-counter() references when properties do not say otherwise.
const DefaultLimitOfLayouts = 2

// Properties configure conversion. Zero value is usable: print device, default
// workers and appliers, no outline, remote resources allowed.
type Properties struct {
	BaseURI             string
	Device              *media.DeviceDescription
	Workers             *Registry
	Appliers            *ApplierRegistry
	Outline             *OutlineHandler
	Fonts               *resource.FontProvider
	Retriever           resource.Retriever
	DefaultCSS          []byte
	UserCSS             []byte
	Charset             encoding.Encoding // forced input encoding, nil means detection
	CreateAcroForm      bool
	ImmediateFlush      bool
	ContinuousContainer bool
	LimitOfLayouts      int
}

// ProcessorContext is state of single conversion. It is reset between runs
// and must not be shared by concurrent conversions.
type ProcessorContext struct {
	ctx   context.Context
	log   *zap.Logger
	props Properties

	Resources *resource.Resolver
	Fonts     *resource.FontProvider
	Counters  *counter.Manager
	Outline   *OutlineHandler
	Styles    *resolve.Resolver

	state      *State
	links      map[string]bool
	fields     map[string]int
	quoteDepth int
	title      string
	meta       map[string]string
}

// NewProcessorContext prepares conversion context from properties.
func NewProcessorContext(ctx context.Context, props Properties, log *zap.Logger) (*ProcessorContext, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if props.Device == nil {
		dev := media.Print()
		props.Device = &dev
	}
	if props.Workers == nil {
		props.Workers = DefaultRegistry()
	}
	if props.Appliers == nil {
		props.Appliers = DefaultAppliers()
	}
	if props.Outline == nil {
		props.Outline = NewOutlineHandler(nil)
	}
	if props.Fonts == nil {
		props.Fonts = resource.NewFontProvider("", log)
	}
	if props.LimitOfLayouts < 1 {
		props.LimitOfLayouts = DefaultLimitOfLayouts
	}

	res, err := resource.NewResolver(ctx, props.BaseURI, props.Retriever, log)
	if err != nil {
		return nil, err
	}
	c := &ProcessorContext{
		ctx:       ctx,
		log:       log.Named("attach"),
		props:     props,
		Resources: res,
		Fonts:     props.Fonts,
		Counters:  counter.NewManager(),
		Outline:   props.Outline,
	}
	c.Reset()
	return c, nil
}

// Properties returns properties context was created with.
func (c *ProcessorContext) Properties() Properties {
	return c.props
}

// Log returns context logger.
func (c *ProcessorContext) Log() *zap.Logger {
	return c.log
}

// State returns stack of open workers.
func (c *ProcessorContext) State() *State {
	return c.state
}

// Reset prepares context for the next conversion: caches, counters and
// collected metadata are dropped.
func (c *ProcessorContext) Reset() {
	c.Resources.ResetCache()
	c.Counters.Clear()
	c.Styles = nil
	c.links = make(map[string]bool)
	c.title = ""
	c.meta = make(map[string]string)
	c.startPass()
}

// startPass prepares context for walking document again within the same
// conversion.
func (c *ProcessorContext) startPass() {
	c.Counters.StartPass()
	c.Outline.Reset()
	c.state = &State{}
	c.fields = make(map[string]int)
	c.quoteDepth = 0
}

// IsLinkTarget reports whether some link in document points to id.
func (c *ProcessorContext) IsLinkTarget(id string) bool {
	return id != "" && c.links[id]
}

// Title returns document title collected from title element.
func (c *ProcessorContext) Title() string {
	return c.title
}

// Meta returns document metadata collected from meta elements.
func (c *ProcessorContext) Meta() map[string]string {
	return c.meta
}

// State is stack of open workers.
type State struct {
	stack []Worker
}

// Push adds worker on top.
func (s *State) Push(w Worker) {
	s.stack = append(s.stack, w)
}

// Pop removes and returns top worker.
func (s *State) Pop() Worker {
	if len(s.stack) == 0 {
		return nil
	}
	w := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return w
}

// Top returns top worker without removing it.
func (s *State) Top() Worker {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// Empty reports whether no worker is open.
func (s *State) Empty() bool {
	return len(s.stack) == 0
}

// Size returns number of open workers.
func (s *State) Size() int {
	return len(s.stack)
}

// at returns worker i levels below top.
func (s *State) at(i int) Worker {
	if i < 0 || i >= len(s.stack) {
		return nil
	}
	return s.stack[len(s.stack)-1-i]
}
