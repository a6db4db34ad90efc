// internal/browser/render/render.go
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/stylecore/internal/browser/dom"
	"github.com/xkilldash9x/stylecore/internal/browser/parser"
	"github.com/xkilldash9x/stylecore/internal/browser/style"
	"github.com/xkilldash9x/stylecore/internal/observability"
)

// Result is one document carried through markup parsing, stylesheet parsing
// and style resolution.
type Result struct {
	// ID correlates the log lines of one render.
	ID          uuid.UUID
	Name        string
	Tree        *dom.Tree
	StyleText   string
	Rules       []parser.Rule
	Styles      style.Styles
	Diagnostics parser.Diagnostics
	Elapsed     time.Duration
}

// Source is a named document whose markup is produced on demand.
type Source struct {
	Name string
	Load func() (string, error)
}

// Markup returns a Source over text already in memory.
func Markup(name, text string) Source {
	return Source{Name: name, Load: func() (string, error) { return text, nil }}
}

// Pipeline runs the three core stages. It holds no per-document state and is
// safe for concurrent use.
type Pipeline struct {
	log      *zap.Logger
	metrics  *observability.Metrics
	html     *parser.HTMLParser
	css      *parser.CSSParser
	resolver *style.Resolver
}

// New creates a pipeline. A nil logger disables logging; nil metrics are discarded.
func New(logger *zap.Logger, metrics *observability.Metrics) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		log:      logger.Named("render"),
		metrics:  metrics,
		html:     parser.NewHTMLParser(logger),
		css:      parser.NewCSSParser(logger),
		resolver: style.NewResolver(logger),
	}
}

// Render parses raw markup, parses the embedded stylesheet text and resolves
// every element's style. It never fails.
func (p *Pipeline) Render(raw string) *Result {
	return p.render("", raw)
}

func (p *Pipeline) render(name, raw string) *Result {
	start := time.Now()
	res := &Result{ID: uuid.New(), Name: name}

	doc := p.html.Parse(raw)
	sheet := p.css.Parse(doc.StyleText)
	res.Tree = doc.Tree
	res.StyleText = doc.StyleText
	res.Rules = sheet.Rules
	res.Styles = p.resolver.Resolve(doc.Tree, sheet.Rules)
	res.Diagnostics = doc.Diagnostics
	res.Diagnostics.Add(sheet.Diagnostics)
	res.Elapsed = time.Since(start)

	p.record(res)
	return res
}

func (p *Pipeline) record(res *Result) {
	d := res.Diagnostics
	p.metrics.ObserveRender(res.Elapsed)
	p.metrics.AddRecoveries(observability.RecoveryStrayEndTag, d.StrayEndTags)
	p.metrics.AddRecoveries(observability.RecoveryUnclosedElement, d.UnclosedElements)
	p.metrics.AddRecoveries(observability.RecoveryDroppedSelector, d.DroppedSelectors)
	p.metrics.AddRecoveries(observability.RecoveryDroppedDeclaration, d.DroppedDeclarations)
	p.metrics.AddRecoveries(observability.RecoverySkippedAtRule, d.SkippedAtRules)

	p.log.Debug("Document rendered",
		zap.String("render_id", res.ID.String()),
		zap.String("name", res.Name),
		zap.Int("nodes", res.Tree.Len()),
		zap.Int("rules", len(res.Rules)),
		zap.Int("warnings", len(d.Warnings)),
		zap.Duration("elapsed", res.Elapsed))
}

// RenderAll renders independent documents with at most limit in flight.
// Results keep the order of sources; a source that failed to load leaves a
// nil entry and its error is combined into the returned error. Once ctx is
// done no further documents are started, but running ones complete.
func (p *Pipeline) RenderAll(ctx context.Context, sources []Source, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = 1
	}
	results := make([]*Result, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, src := range sources {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			raw, err := src.Load()
			if err != nil {
				p.log.Warn("Failed to load document", zap.String("name", src.Name), zap.Error(err))
				errs[i] = fmt.Errorf("loading %s: %w", src.Name, err)
				return nil
			}
			results[i] = p.render(src.Name, raw)
			return nil
		})
	}
	// Workers report through errs so one bad source does not cancel the rest.
	_ = g.Wait()

	err := multierr.Combine(errs...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = multierr.Append(err, ctxErr)
	}
	return results, err
}
