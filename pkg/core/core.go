// Package core is the embedding API: an Engine that loads, selects and
// renders documents, and Sessions that keep expansion state between renders.
package core

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/kvtree/internal/formatter"
	"github.com/oakwood-commons/kvtree/internal/limiter"
	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/internal/render"
	"github.com/oakwood-commons/kvtree/internal/selector"
	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
	"github.com/oakwood-commons/kvtree/pkg/loader"
	"github.com/oakwood-commons/kvtree/pkg/logger"
)

// Selector picks a sub-tree of a document with an expression.
type Selector interface {
	Select(expr string, v jsonvalue.Value) (jsonvalue.Value, error)
}

// Formatter turns a presentation tree into text.
type Formatter interface {
	Format(n render.Node, f formatter.Format, opts formatter.Options) (string, error)
}

// Engine holds the render configuration shared by every session.
type Engine struct {
	Selector   Selector
	Formatter  Formatter
	Limit      limiter.Config
	AutoDecode bool

	renderOpts render.Options
	renderer   *render.Renderer
	log        logr.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithSelector sets a custom selector.
func WithSelector(s Selector) Option {
	return func(e *Engine) {
		e.Selector = s
	}
}

// WithFormatter sets a custom formatter.
func WithFormatter(f Formatter) Option {
	return func(e *Engine) {
		e.Formatter = f
	}
}

// WithRenderOptions sets the renderer thresholds, key format and priority keys.
func WithRenderOptions(opts render.Options) Option {
	return func(e *Engine) {
		e.renderOpts = opts
	}
}

// WithLimit trims the top-level collection before rendering.
func WithLimit(cfg limiter.Config) Option {
	return func(e *Engine) {
		e.Limit = cfg
	}
}

// WithAutoDecode decodes JSON, YAML and JWT strings embedded in documents
// before rendering.
func WithAutoDecode(enabled bool) Option {
	return func(e *Engine) {
		e.AutoDecode = enabled
	}
}

// WithLogger sets the logger used by the engine and its sessions.
func WithLogger(lgr logr.Logger) Option {
	return func(e *Engine) {
		e.log = lgr
	}
}

// New creates an Engine with defaults and validates its configuration.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{
		renderOpts: render.DefaultOptions(),
		log:        *logger.GetNoopLogger(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if err := engine.renderOpts.Validate(); err != nil {
		return nil, fmt.Errorf("render options: %w", err)
	}
	if err := engine.Limit.Validate(); err != nil {
		return nil, err
	}
	if engine.Selector == nil {
		eval, err := selector.NewEvaluator()
		if err != nil {
			return nil, err
		}
		engine.Selector = eval
	}
	if engine.Formatter == nil {
		engine.Formatter = defaultFormatter{}
	}
	engine.renderer = render.New(engine.renderOpts)
	return engine, nil
}

// LoadRoot parses input into a single root value; multi-doc inputs return an array.
func LoadRoot(input string) (jsonvalue.Value, error) {
	return loader.LoadRoot(input)
}

// LoadRootBytes parses input bytes into a single root value.
func LoadRootBytes(data []byte) (jsonvalue.Value, error) {
	return loader.LoadRootBytes(data)
}

// LoadFile reads a file and parses it into a single root value.
func LoadFile(path string) (jsonvalue.Value, error) {
	return loader.LoadFile(path)
}

// LoadObject converts an already parsed Go value. Strings and byte slices
// are parsed with format detection. Cycles, functions, channels and
// non-finite numbers fail with jsonvalue.ErrMalformedInput.
func LoadObject(value any) (jsonvalue.Value, error) {
	return loader.LoadObject(value)
}

// Renderer returns the engine's renderer.
func (e *Engine) Renderer() *render.Renderer {
	return e.renderer
}

// Prepare applies string decoding, the selection expression and the record
// limit, in that order. An empty expression keeps the whole document.
func (e *Engine) Prepare(v jsonvalue.Value, expr string) (jsonvalue.Value, error) {
	if e.AutoDecode {
		v = loader.RecursiveDecode(v)
	}
	if expr != "" {
		if e.Selector == nil {
			return jsonvalue.Value{}, fmt.Errorf("selector is not configured")
		}
		selected, err := e.Selector.Select(expr, v)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		e.log.V(1).Info("selected sub-tree", logger.ExprKey, expr, logger.ShapeKey, string(e.renderer.Classify(selected)))
		v = selected
	}
	return e.Limit.Apply(v), nil
}

// Render converts input and renders it once with the given expansion state.
// Malformed input is reported before any traversal starts.
func (e *Engine) Render(input any, exp render.Expansion) (render.Node, error) {
	v, err := LoadObject(input)
	if err != nil {
		return nil, err
	}
	return e.renderer.Render(v, "", exp), nil
}

// Keys lists every expandable key of v in traversal order.
func (e *Engine) Keys(v jsonvalue.Value) []pathkey.Key {
	return e.renderer.CollectKeys(v, "")
}

// Format formats a presentation tree with the engine's formatter.
func (e *Engine) Format(n render.Node, f formatter.Format, opts formatter.Options) (string, error) {
	if e.Formatter == nil {
		return "", fmt.Errorf("formatter is not configured")
	}
	return e.Formatter.Format(n, f, opts)
}

type defaultFormatter struct{}

func (defaultFormatter) Format(n render.Node, f formatter.Format, opts formatter.Options) (string, error) {
	return formatter.Render(n, f, opts)
}
