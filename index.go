package gofpd

import (
	"slices"

	"github.com/albertocavalcante/go-fpd/fpd"
	"github.com/albertocavalcante/go-fpd/pcd"
)

// InitIndex builds the consumer index from the document. It runs once per
// engine; later calls are no-ops. Every other engine operation calls it
// implicitly.
func (e *Engine) InitIndex() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initIndexLocked()
}

func (e *Engine) initIndexLocked() {
	if e.initialized {
		return
	}
	e.initialized = true

	if len(e.doc.Modules) == 0 {
		e.doc.Modules = nil
		return
	}

	for _, m := range e.doc.Modules {
		for _, p := range m.Pcds {
			e.index[p.ID] = append(e.index[p.ID], ConsumerRecord{Key: m.Key, ItemType: p.ItemType})
			if _, ok := e.defaults[p.ID]; !ok {
				e.defaults[p.ID] = p.Value
			}
		}
	}
	e.cfg.log().Debug("consumer index built", "pcds", len(e.index), "modules", len(e.doc.Modules))
}

// Consumers returns the consumer records of id in insertion order.
func (e *Engine) Consumers(id pcd.ID) []ConsumerRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initIndexLocked()
	return slices.Clone(e.index[id])
}

// DefaultValue returns the platform wide value fixed by the first consumer
// of id.
func (e *Engine) DefaultValue(id pcd.ID) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initIndexLocked()
	v, ok := e.defaults[id]
	return v, ok
}

// removeConsumerLocked drops the record of the module instance key from the
// consumers of id and maintains the dynamic PCD table. When the last consumer
// goes, the cached default, the index entry and any dynamic table entry go
// with it. It reports whether a record was removed.
func (e *Engine) removeConsumerLocked(id pcd.ID, key fpd.ModuleSAKey) bool {
	consumers := e.index[id]
	i := consumerIndex(consumers, key)
	if i < 0 {
		return false
	}
	consumers = slices.Delete(consumers, i, i+1)
	if len(consumers) > 0 {
		e.index[id] = consumers
		return true
	}

	delete(e.defaults, id)
	delete(e.index, id)
	if e.doc.RemoveDynamicPcd(id) {
		e.cfg.log().Debug("dynamic pcd removed", "pcd", id.String())
	}
	return true
}

// MaintainDynamicPcds removes the module instance key from the consumers of
// id, deleting the PCD's dynamic table entry once nobody uses it. The build
// definition attached to the module instance is left alone.
func (e *Engine) MaintainDynamicPcds(id pcd.ID, key fpd.ModuleSAKey) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initIndexLocked()
	return e.removeConsumerLocked(id, key)
}

// rekeyLocked moves the consumer records of one module instance to a new key.
func (e *Engine) rekeyLocked(ids []pcd.ID, from, to fpd.ModuleSAKey) {
	for _, id := range ids {
		if i := consumerIndex(e.index[id], from); i >= 0 {
			e.index[id][i].Key = to
		}
	}
}

// consumerIndex finds the record of the module instance key. An exact key
// match wins; otherwise the first record of the same instance with any
// version is used. Two versions of one module on the same archs keep their
// own records.
func consumerIndex(consumers []ConsumerRecord, key fpd.ModuleSAKey) int {
	if i := slices.IndexFunc(consumers, func(c ConsumerRecord) bool { return c.Key.Equal(key) }); i >= 0 {
		return i
	}
	return slices.IndexFunc(consumers, func(c ConsumerRecord) bool { return c.Key.SameInstance(key) })
}
