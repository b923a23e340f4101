package richtext

import (
	"sync"

	"go.uber.org/zap"
)

const (
	DefaultLanguage    = "javascript"
	CodePlaceholder    = "// Your code here"
	defaultDecodeLimit = 4
)

// ChangeFunc receives the full serialization after every user-driven mutation,
// together with the version that produced it.
type ChangeFunc func(value string, version uint64)

type Option func(*Editor)

func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

func WithHighlighter(h Highlighter) Option {
	return func(e *Editor) { e.hl = h }
}

func WithDefaultLanguage(lang string) Option {
	return func(e *Editor) {
		if lang != "" {
			e.lang = lang
		}
	}
}

func WithOnChange(fn ChangeFunc) Option {
	return func(e *Editor) { e.onChange = fn }
}

// WithDecodeLimit bounds how many image files are decoded concurrently.
func WithDecodeLimit(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.decodeLimit = n
		}
	}
}

// Editor is an editable document region bound to an externally owned value.
//
// Mutations are serialized by the editor. Changes are queued under the editor
// lock and delivered outside it, one at a time and in version order, by
// whichever mutating goroutine finds the queue idle. A callback may read the
// editor, call SetValue or start another mutation; a nested mutation is
// delivered after the current callback returns.
type Editor struct {
	mu sync.Mutex

	doc     *Document
	sel     *Selection
	pending MarkSet
	focused bool
	closed  bool
	version uint64
	toggle  *toggleRecord

	outbox     []change
	delivering bool

	onChange    ChangeFunc
	hl          Highlighter
	lang        string
	decodeLimit int
	log         *zap.Logger
}

// New creates an editor rendering value. An unparseable value yields an empty document.
func New(value string, opts ...Option) *Editor {
	e := &Editor{
		lang:        DefaultLanguage,
		decodeLimit: defaultDecodeLimit,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.hl == nil {
		e.hl = NewChromaHighlighter("")
	}
	doc, err := Parse(value)
	if err != nil {
		e.log.Warn("initial value rejected", zap.Error(err))
		doc = NewDocument()
	}
	e.doc = doc
	return e
}

// SetOnChange replaces the change callback.
func (e *Editor) SetOnChange(fn ChangeFunc) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

// Value returns the current serialization.
func (e *Editor) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Serialize()
}

// Document returns a snapshot of the current document tree.
func (e *Editor) Document() *Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Version increases with every applied mutation, external or user-driven.
func (e *Editor) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// SetValue applies an externally driven value. When it differs from the current
// serialization the document is replaced wholesale; it never emits.
//
// Blocks whose serialization is unchanged at the same index keep their ids, so
// a selection inside them survives. Any other selection is dropped.
func (e *Editor) SetValue(value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || value == e.doc.Serialize() {
		return
	}
	next, err := Parse(value)
	if err != nil {
		e.log.Warn("external value rejected", zap.Error(err))
		return
	}
	e.adoptIDs(next)
	e.doc = next
	e.version++
	e.toggle = nil
	e.pending = 0
	if e.sel != nil {
		if r, ok := e.doc.resolveSelection(*e.sel); ok {
			e.sel = &r
		} else {
			e.sel = nil
		}
	}
}

// adoptIDs renumbers next so unchanged blocks keep their current id and every
// other block gets an id never used by the current document.
func (e *Editor) adoptIDs(next *Document) {
	id := e.doc.nextID
	for i, b := range next.blocks {
		if i < len(e.doc.blocks) && renderBlock(e.doc.blocks[i]) == renderBlock(b) {
			b.ID = e.doc.blocks[i].ID
			continue
		}
		b.ID = id
		id++
	}
	next.nextID = id
}

// Focus gives the document region input focus, placing a caret at the end of
// the document when there is no selection yet.
func (e *Editor) Focus() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focus()
}

func (e *Editor) focus() {
	if e.closed {
		return
	}
	e.focused = true
	if e.sel == nil {
		c := Caret(e.doc.endPosition())
		e.sel = &c
	}
}

func (e *Editor) Focused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}

// Close detaches the document region. Every later mutation, including image
// decodes still in flight, is ignored.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.focused = false
	e.sel = nil
}

func (e *Editor) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

type change struct {
	value   string
	version uint64
}

// mutate runs fn under the editor lock and emits the new serialization when fn
// reports a change. It reports whether a change was applied.
func (e *Editor) mutate(fn func() bool) bool {
	e.mu.Lock()
	if e.closed || !fn() {
		e.mu.Unlock()
		return false
	}
	e.version++
	if e.toggle != nil && e.toggle.version != e.version {
		e.toggle = nil
	}
	e.outbox = append(e.outbox, change{value: e.doc.Serialize(), version: e.version})
	if e.delivering {
		e.mu.Unlock()
		return true
	}
	e.delivering = true
	e.deliver()
	return true
}

// deliver drains the outbox with e.mu held on entry and released on return.
// Callbacks run without the lock.
func (e *Editor) deliver() {
	for len(e.outbox) > 0 {
		batch := e.outbox
		e.outbox = nil
		cb := e.onChange
		e.mu.Unlock()
		if cb != nil {
			for _, c := range batch {
				cb(c.value, c.version)
			}
		}
		e.mu.Lock()
	}
	e.delivering = false
	e.mu.Unlock()
}

// preserving runs a structural mutation inside the capture/mutate/restore cycle.
// remap, when non-nil, translates positions whose block was rewritten.
func (e *Editor) preserving(mutation func() (remap func(Position) Position)) {
	sel, ok := e.capture()
	remap := mutation()
	if ok && remap != nil {
		sel = Selection{Anchor: remap(sel.Anchor), Focus: remap(sel.Focus)}
	}
	e.restore(sel, ok)
}
