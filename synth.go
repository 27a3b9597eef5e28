package gofpd

import (
	"fmt"
	"slices"

	"github.com/albertocavalcante/go-fpd/fpd"
	"github.com/albertocavalcante/go-fpd/pcd"
)

// PcdRequest asks for a PCD to be attached to a module instance.
type PcdRequest struct {
	ID    pcd.ID
	Token int64

	// ItemType is the binding the consumer asks for. DYNAMIC is a generic
	// request that is bound to a concrete type on first attachment.
	ItemType pcd.ItemType

	DatumType    string
	DefaultValue string
}

// requestFor builds the request a module usage makes against its package
// declaration. The usage default wins over the declared default.
func requestFor(u pcd.Usage, decl pcd.Declaration) PcdRequest {
	value := u.DefaultValue
	if value == "" {
		value = decl.DefaultValue
	}
	return PcdRequest{
		ID:           u.ID,
		Token:        decl.Token,
		ItemType:     u.ItemType,
		DatumType:    decl.DatumType,
		DefaultValue: value,
	}
}

// GenPcdData attaches the PCD described by req to the module instance key,
// checking it against the PCD's existing consumers and its package
// declaration decl.
//
// Attaching a PCD the module instance already consumes is a no-op.
//
// The first module instance to introduce a PCD into the platform fixes its
// value. Later consumers get that value, whatever default they propose.
//
// When the PCD resolves to DYNAMIC or DYNAMIC_EX and has no other consumer,
// an entry is created in the dynamic PCD table with SKU 0 holding the value.
func (e *Engine) GenPcdData(key fpd.ModuleSAKey, req PcdRequest, decl pcd.Declaration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initIndexLocked()
	_, err := e.genPcdDataLocked(key, req, decl)
	return err
}

// genPcdDataLocked does the work of GenPcdData and reports whether anything
// was attached. Nothing is mutated when it fails.
func (e *Engine) genPcdDataLocked(key fpd.ModuleSAKey, req PcdRequest, decl pcd.Declaration) (bool, error) {
	if !req.ItemType.Valid() {
		return false, &pcd.ItemTypeConflictError{
			PCD:           req.ID,
			Requester:     e.describe(key),
			RequestedType: req.ItemType,
		}
	}

	consumers := e.index[req.ID]
	if slices.ContainsFunc(consumers, func(c ConsumerRecord) bool { return c.Key.Equal(key) }) {
		return false, nil
	}

	itemType, err := e.bindItemType(key, req, decl, consumers)
	if err != nil {
		return false, err
	}

	value := req.DefaultValue
	if value == "" {
		value = pcd.ZeroValue(req.DatumType)
	}
	if cached, ok := e.defaults[req.ID]; ok {
		value = cached
	}
	size, err := pcd.MaxDatumSize(req.DatumType, value)
	if err != nil {
		return false, fmt.Errorf("pcd %s for %s: %w", req.ID, e.describe(key), err)
	}

	m := e.doc.Module(key)
	if m == nil {
		return false, fmt.Errorf("%w: %s", ErrModuleNotInPlatform, key)
	}

	first := len(consumers) == 0
	e.index[req.ID] = append(consumers, ConsumerRecord{Key: key, ItemType: itemType})
	if _, ok := e.defaults[req.ID]; !ok {
		e.defaults[req.ID] = value
	}

	m.AddPcd(fpd.PcdData{
		ID:           req.ID,
		Token:        req.Token,
		DatumType:    req.DatumType,
		ItemType:     itemType,
		Value:        value,
		MaxDatumSize: size,
	})

	if itemType.IsDynamic() && first && e.doc.DynamicPcd(req.ID) == nil {
		// The table is keyed by PCD, so this cannot collide.
		_ = e.doc.AddDynamicPcd(&fpd.DynamicPcd{
			ID:           req.ID,
			Token:        req.Token,
			DatumType:    req.DatumType,
			MaxDatumSize: size,
			SkuInfo:      []fpd.SkuInfo{{SkuID: 0, Value: value}},
		})
		e.cfg.log().Debug("dynamic pcd created", "pcd", req.ID.String(), "type", itemType.String())
	}

	e.cfg.log().Debug("pcd attached",
		"pcd", req.ID.String(),
		"module", e.describe(key),
		"type", itemType.String(),
		"value", value)
	return true, nil
}

// bindItemType decides the item type key gets for the requested PCD.
//
// A generic DYNAMIC request for an unused PCD is bound through the
// declaration's valid usages. Once a PCD has consumers their item type is
// binding: a generic request takes it when the declaration allows it, and a
// concrete request must match it exactly.
func (e *Engine) bindItemType(key fpd.ModuleSAKey, req PcdRequest, decl pcd.Declaration, consumers []ConsumerRecord) (pcd.ItemType, error) {
	if len(consumers) == 0 {
		if req.ItemType != pcd.Dynamic {
			return req.ItemType, nil
		}
		resolve := decl.ResolveDynamic
		if e.cfg.strictDynamic {
			resolve = decl.ResolveDynamicStrict
		}
		t, ok := resolve()
		if !ok {
			return pcd.ItemTypeUnknown, &pcd.ItemTypeConflictError{
				PCD:           req.ID,
				Requester:     e.describe(key),
				RequestedType: req.ItemType,
			}
		}
		return t, nil
	}

	existing := consumers[0]
	for _, c := range consumers[1:] {
		if c.ItemType != existing.ItemType {
			return pcd.ItemTypeUnknown, &pcd.ItemTypeConflictError{
				PCD:           req.ID,
				Existing:      e.describe(existing.Key),
				Requester:     e.describe(c.Key),
				ExistingType:  existing.ItemType,
				RequestedType: c.ItemType,
			}
		}
	}

	ok := req.ItemType == existing.ItemType
	if req.ItemType == pcd.Dynamic {
		ok = decl.Allows(existing.ItemType)
	}
	if !ok {
		return pcd.ItemTypeUnknown, &pcd.ItemTypeConflictError{
			PCD:           req.ID,
			Existing:      e.describe(existing.Key),
			Requester:     e.describe(key),
			ExistingType:  existing.ItemType,
			RequestedType: req.ItemType,
		}
	}
	return existing.ItemType, nil
}
