package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/leengari/mdtable/internal/coerce"
	"github.com/leengari/mdtable/internal/domain/request"
	"github.com/leengari/mdtable/internal/domain/schema"
	"github.com/leengari/mdtable/internal/filter"
	"github.com/leengari/mdtable/internal/markdown"
	"github.com/leengari/mdtable/internal/parser"
	"github.com/leengari/mdtable/internal/parser/ast"
	"github.com/leengari/mdtable/internal/parser/lexer"
	"github.com/leengari/mdtable/internal/planner"
)

// Options configure one Engine
type Options struct {
	Headline      string
	HeadingMarker string
	// KeepLinks leaves [text](url) markup in cells
	KeepLinks bool
	Coerce    coerce.Options
	// Sort orders rows by index key after loading
	Sort     bool
	SortDesc bool
	// AlwaysKeep columns survive every column selection
	AlwaysKeep []string
}

// DefaultOptions loads the "## Leaderboard" section with lenient inference
func DefaultOptions() Options {
	return Options{
		Headline:      "## Leaderboard",
		HeadingMarker: markdown.DefaultHeadingMarker,
		Coerce:        coerce.DefaultOptions(),
	}
}

// Engine is the main entry point for loading and filtering tables.
// Observers must be registered before the engine is shared between goroutines.
type Engine struct {
	opts      Options
	logger    *slog.Logger
	observers []Observer // Observers for lifecycle events
}

// New creates a new Engine instance
func New(opts Options) *Engine {
	if opts.HeadingMarker == "" {
		opts.HeadingMarker = markdown.DefaultHeadingMarker
	}
	return &Engine{
		opts:      opts,
		logger:    slog.Default(),
		observers: make([]Observer, 0),
	}
}

// Options returns the options the engine was built with
func (e *Engine) Options() Options {
	return e.opts
}

// WithOptions returns an engine using opts that reports to the same observers
func (e *Engine) WithOptions(opts Options) *Engine {
	clone := New(opts)
	clone.logger = e.logger
	clone.observers = append(clone.observers, e.observers...)
	return clone
}

// Load runs the document through extraction, link stripping, parsing and
// type inference and returns the typed table.
func (e *Engine) Load(document string) (*schema.Table, error) {
	t, _, err := e.LoadWithReport(document)
	return t, err
}

// LoadWithReport is Load that also returns the per-column inference report
func (e *Engine) LoadWithReport(document string) (*schema.Table, []coerce.Inference, error) {
	req := request.New()
	defer req.Close()

	// 1. Extract section
	e.notify(Event{Type: EventExtractStart, RequestID: req.ID, Data: e.opts.Headline})
	_, body := markdown.SplitFrontMatter(document)
	section, err := markdown.ExtractSection(body, e.opts.Headline, e.opts.HeadingMarker)
	if err != nil {
		return nil, nil, e.fail(req, fmt.Errorf("extract error: %w", err))
	}
	req.Done(request.StageExtract)
	e.notify(Event{Type: EventExtractEnd, RequestID: req.ID, Data: len(section)})

	// 2. Strip links
	if !e.opts.KeepLinks {
		section = markdown.StripLinks(section)
		req.Done(request.StageStrip)
	}

	// 3. Parse
	e.notify(Event{Type: EventParseStart, RequestID: req.ID})
	table, err := markdown.ParseTable(section)
	if err != nil {
		return nil, nil, e.fail(req, fmt.Errorf("parse error: %w", err))
	}
	req.Done(request.StageParse)
	e.notify(Event{Type: EventParseEnd, RequestID: req.ID, Data: map[string]interface{}{
		"rows":    table.Len(),
		"columns": len(table.Columns()),
	}})

	// 4. Coerce
	e.notify(Event{Type: EventCoerceStart, RequestID: req.ID, Data: e.opts.Coerce.Mode.String()})
	typed, report, err := coerce.CoerceWithReport(table, e.opts.Coerce)
	if err != nil {
		return nil, nil, e.fail(req, fmt.Errorf("coerce error: %w", err))
	}
	for _, inf := range report {
		if !inf.FellBack() {
			continue
		}
		e.logger.Warn("column fell back to CATEGORICAL",
			"request_id", req.ID,
			"column", inf.Column,
			"candidate", inf.Candidate,
			"offending", inf.Offending,
			"matched", inf.Matched,
			"non_null", inf.NonNull,
		)
		e.notify(Event{Type: EventFallback, RequestID: req.ID, Data: inf})
	}
	req.Done(request.StageCoerce)
	e.notify(Event{Type: EventCoerceEnd, RequestID: req.ID, Data: typed.Schema()})

	// 5. Sort (optional)
	if e.opts.Sort {
		typed = typed.SortByIndex(e.opts.SortDesc)
		req.Done(request.StageSort)
	}

	e.logger.Debug("table loaded",
		"request_id", req.ID,
		"rows", typed.Len(),
		"stages", req.Stages,
		"elapsed", req.Elapsed(),
	)
	return typed, report, nil
}

// Filter applies spec to t; the always-keep columns of the engine are added
// when spec names none.
func (e *Engine) Filter(t *schema.Table, spec filter.Spec) *schema.Table {
	req := request.New()
	defer req.Close()

	if spec.AlwaysKeep == nil {
		spec.AlwaysKeep = e.opts.AlwaysKeep
	}

	e.notify(Event{Type: EventFilterStart, RequestID: req.ID, Data: t.Len()})
	out := filter.Apply(t, spec)
	req.Done(request.StageFilter)
	e.notify(Event{Type: EventFilterEnd, RequestID: req.ID, Data: map[string]interface{}{
		"rows_in":  t.Len(),
		"rows_out": out.Len(),
	}})
	return out
}

// Query parses a FILTER statement, plans it against t and applies it
func (e *Engine) Query(t *schema.Table, query string) (*Result, error) {
	out, err := e.Run(t, query)
	if err != nil {
		return nil, err
	}
	res := NewResult(out)
	res.Message = fmt.Sprintf("%d of %d rows", out.Len(), t.Len())
	return res, nil
}

// Run is Query returning the filtered table itself
func (e *Engine) Run(t *schema.Table, query string) (*schema.Table, error) {
	req := request.New()
	defer req.Close()

	// 1. Tokenize
	e.notify(Event{Type: EventLexStart, RequestID: req.ID, Data: query})
	tokens, err := lexer.Tokenize(query)
	if err != nil {
		return nil, e.fail(req, fmt.Errorf("lexer error: %w", err))
	}
	e.notify(Event{Type: EventLexEnd, RequestID: req.ID, Data: len(tokens)})

	// 2. Parse
	stmt, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, e.fail(req, fmt.Errorf("parse error: %w", err))
	}
	req.Done(request.StageQuery)

	// 3. Plan
	e.notify(Event{Type: EventPlanStart, RequestID: req.ID, Data: stmt.String()})
	spec, err := planner.Plan(stmt.(*ast.FilterStatement), t, planner.Options{
		DateLayout: e.opts.Coerce.DateLayout,
		AlwaysKeep: e.opts.AlwaysKeep,
	})
	if err != nil {
		return nil, e.fail(req, fmt.Errorf("planning error: %w", err))
	}
	e.notify(Event{Type: EventPlanEnd, RequestID: req.ID, Data: len(spec.Constraints)})

	// 4. Filter
	return e.Filter(t, spec), nil
}

// AddObserver registers an observer to receive lifecycle events
func (e *Engine) AddObserver(observer Observer) {
	e.observers = append(e.observers, observer)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(observer Observer) {
	for i, o := range e.observers {
		if o == observer {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (e *Engine) notify(event Event) {
	event.Timestamp = time.Now()
	for _, observer := range e.observers {
		observer.OnEvent(event)
	}
}

// fail reports err to observers and returns it
func (e *Engine) fail(req *request.Request, err error) error {
	e.notify(Event{Type: EventError, RequestID: req.ID, Data: err.Error()})
	return err
}
