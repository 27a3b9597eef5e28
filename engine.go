package gofpd

import (
	"fmt"
	"sync"

	"github.com/albertocavalcante/go-fpd/fpd"
	"github.com/albertocavalcante/go-fpd/pcd"
	"github.com/albertocavalcante/go-fpd/workspace"
)

// ConsumerRecord is one module instance consuming a PCD, with the item type
// it binds the PCD as.
type ConsumerRecord struct {
	Key      fpd.ModuleSAKey
	ItemType pcd.ItemType
}

// Engine keeps the PCD build definitions of a platform consistent with the
// PCD usage of its modules and library instances.
//
// The engine owns a consumer index mapping every PCD to the module instances
// that use it. The index is derived from the document on first use and then
// updated incrementally; the document remains the source of truth.
//
// Engine methods are safe for concurrent use. Every mutation of the index
// and the document happens under a single lock, while the workspace scans of
// a reconciliation run outside it.
type Engine struct {
	doc *fpd.Document
	ws  workspace.Lookup
	cfg *engineConfig

	mu          sync.Mutex
	initialized bool
	index       map[pcd.ID][]ConsumerRecord

	// defaults caches the value the first consumer introduced for each PCD.
	defaults map[pcd.ID]string
}

// NewEngine creates an engine over doc, resolving modules through ws.
func NewEngine(doc *fpd.Document, ws workspace.Lookup, opts ...Option) (*Engine, error) {
	if doc == nil {
		return nil, fmt.Errorf("platform document is nil")
	}
	if ws == nil {
		return nil, fmt.Errorf("workspace lookup is nil")
	}
	cfg, err := newEngineConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{
		doc:      doc,
		ws:       ws,
		cfg:      cfg,
		index:    make(map[pcd.ID][]ConsumerRecord),
		defaults: make(map[pcd.ID]string),
	}, nil
}

// Document returns the platform document the engine edits. Callers must not
// mutate it while engine operations are running.
func (e *Engine) Document() *fpd.Document {
	return e.doc
}

// describe names a module instance for error messages: the module name when
// the workspace knows it, the raw key otherwise.
func (e *Engine) describe(key fpd.ModuleSAKey) string {
	if m, ok := e.ws.FindModule(key.Module()); ok && m.Name != "" {
		return m.Name
	}
	return key.String()
}
