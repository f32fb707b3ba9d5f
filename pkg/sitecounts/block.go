package sitecounts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// Block renders the site counts block
type Block interface {
	// Render produces the block markup. content is accepted for parity with
	// other blocks and ignored.
	Render(ctx context.Context, attrs Attributes, content string, rc RenderContext) (*RenderResult, error)

	// Counts returns the published item count of every public content type.
	Counts(ctx context.Context) ([]CountResult, error)

	// OnTemplate registers a template hook at the end of the template chain.
	OnTemplate(hook TemplateHook)

	// OnOutput registers an output hook at the end of the output chain.
	OnOutput(hook OutputHook)
}

// block implements the Block interface
type block struct {
	repository   Repository
	presentation PresentationBuilder
	translator   Translator
	escape       Escaper
	query        ListQuery
	template     string
	concurrent   bool
	logger       *slog.Logger

	mu    sync.RWMutex
	hooks Hooks
}

// Option represents a functional option for configuring the block
type Option func(*block)

// WithRepository sets the repository queried by every render
func WithRepository(repo Repository) Option {
	return func(b *block) {
		b.repository = repo
	}
}

// WithPresentationBuilder replaces the default CSS class/style builder
func WithPresentationBuilder(p PresentationBuilder) Option {
	return func(b *block) {
		b.presentation = p
	}
}

// WithTranslator replaces the English translator
func WithTranslator(t Translator) Option {
	return func(b *block) {
		b.translator = t
	}
}

// WithEscaper replaces the HTML escaper
func WithEscaper(e Escaper) Option {
	return func(b *block) {
		b.escape = e
	}
}

// WithListQuery replaces the default filtered list query
func WithListQuery(q ListQuery) Option {
	return func(b *block) {
		b.query = q
	}
}

// WithTemplate replaces the default wrapper template
func WithTemplate(tmpl string) Option {
	return func(b *block) {
		b.template = tmpl
	}
}

// WithConcurrentQueries runs the count and list queries in parallel
func WithConcurrentQueries(enabled bool) Option {
	return func(b *block) {
		b.concurrent = enabled
	}
}

// WithLogger sets the logger used for render diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(b *block) {
		b.logger = logger
	}
}

// WithHooks appends the given hook chains
func WithHooks(h Hooks) Option {
	return func(b *block) {
		b.hooks.Template = append(b.hooks.Template, h.Template...)
		b.hooks.Output = append(b.hooks.Output, h.Output...)
	}
}

// New creates a new block with the given options
func New(options ...Option) (Block, error) {
	b := &block{
		presentation: DefaultPresentation{},
		translator:   NewTranslator(language.English),
		escape:       HTMLEscaper,
		query:        DefaultListQuery(),
		template:     DefaultTemplate,
		logger:       slog.Default(),
	}

	for _, option := range options {
		option(b)
	}

	if b.repository == nil {
		return nil, ErrRepositoryRequired
	}
	if err := b.query.Validate(); err != nil {
		return nil, err
	}

	return b, nil
}

func (b *block) OnTemplate(hook TemplateHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks.Template = append(b.hooks.Template, hook)
}

func (b *block) OnOutput(hook OutputHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks.Output = append(b.hooks.Output, hook)
}

func (b *block) snapshotHooks() Hooks {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.hooks.clone()
}

func (b *block) Counts(ctx context.Context) ([]CountResult, error) {
	return b.countPublished(ctx)
}

func (b *block) Render(ctx context.Context, attrs Attributes, _ string, rc RenderContext) (*RenderResult, error) {
	start := time.Now()
	renderID := uuid.New()
	logger := b.logger.With("render_id", renderID.String())

	var (
		counts []CountResult
		list   string
	)

	if b.concurrent {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			counts, err = b.countPublished(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			list, err = b.fetchList(gctx, rc.CurrentItemID)
			return err
		})
		if err := g.Wait(); err != nil {
			logger.Error("Failed to query site counts", "err", err)
			return nil, err
		}
	} else {
		var err error
		counts, err = b.countPublished(ctx)
		if err != nil {
			logger.Error("Failed to count content types", "err", err)
			return nil, err
		}
		list, err = b.fetchList(ctx, rc.CurrentItemID)
		if err != nil {
			logger.Error("Failed to query filtered list", "err", err)
			return nil, err
		}
	}

	fragments := Fragments{
		WrapperAttributes: wrapperAttributes(attrs, b.presentation.BuildPresentation(rc.Style), b.escape),
		Counts:            b.countsMarkup(counts),
		CurrentItem:       b.translator.CurrentItemLine(rc.CurrentItemID),
		List:              list,
	}

	base := &HookContext{
		Context:       ctx,
		RenderID:      renderID,
		Attributes:    attrs,
		RenderContext: rc,
		Metadata:      make(map[string]interface{}),
	}

	markup, err := assemble(b.snapshotHooks(), base, b.template, fragments)
	if err != nil {
		logger.Error("Failed to assemble site counts markup", "err", err)
		return nil, err
	}

	logger.Debug("Site counts rendered",
		"types", len(counts),
		"current_item_id", int64(rc.CurrentItemID),
		"duration", time.Since(start))

	return &RenderResult{Markup: markup}, nil
}
