package gofpd

import (
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/albertocavalcante/go-fpd/pcd"
)

// CheckConsistency verifies the consumer index against the document:
//   - every attached PCD has a consumer record pointing back to its module
//     instance, and every record has its attached PCD
//   - all consumers of a PCD share one item type
//   - a dynamic table entry exists exactly when a consumer is dynamic
//   - every indexed PCD has at least one consumer
//
// It also validates the SKU records of the dynamic table. All violations are
// returned together.
func (e *Engine) CheckConsistency() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initIndexLocked()

	errs := newMultiError()
	fail := func(format string, args ...any) {
		errs = multierror.Append(errs, fmt.Errorf(format, args...))
	}

	for _, m := range e.doc.Modules {
		for _, p := range m.Pcds {
			recs := e.index[p.ID]
			i := slices.IndexFunc(recs, func(c ConsumerRecord) bool { return c.Key.Equal(m.Key) })
			if i < 0 {
				fail("pcd %s attached to %s has no consumer record", p.ID, m.Key)
				continue
			}
			if recs[i].ItemType != p.ItemType {
				fail("pcd %s attached to %s as %s but indexed as %s", p.ID, m.Key, p.ItemType, recs[i].ItemType)
			}
		}
	}

	ids := make([]pcd.ID, 0, len(e.index))
	for id := range e.index {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, pcd.ID.Compare)

	for _, id := range ids {
		recs := e.index[id]
		if len(recs) == 0 {
			fail("pcd %s is indexed without consumers", id)
			continue
		}
		dynamic := false
		for _, c := range recs {
			if c.ItemType != recs[0].ItemType {
				fail("pcd %s consumed as both %s and %s", id, recs[0].ItemType, c.ItemType)
			}
			dynamic = dynamic || c.ItemType.IsDynamic()
			m := e.doc.Module(c.Key)
			if m == nil || m.Pcd(id) == nil {
				fail("pcd %s consumer %s has no attached build definition", id, c.Key)
			}
		}
		hasEntry := e.doc.DynamicPcd(id) != nil
		switch {
		case dynamic && !hasEntry:
			fail("dynamic pcd %s has no dynamic build definition", id)
		case !dynamic && hasEntry:
			fail("pcd %s has a dynamic build definition but no dynamic consumer", id)
		}
	}

	for _, d := range e.doc.DynamicPcds {
		if _, ok := e.index[d.ID]; !ok {
			fail("dynamic pcd %s has no consumer", d.ID)
		}
		if err := d.Validate(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	return errs.ErrorOrNil()
}
