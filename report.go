package gofpd

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/albertocavalcante/go-fpd/fpd"
	"github.com/albertocavalcante/go-fpd/pcd"
)

const separatorWidth = 60 // Width of separator lines in text output

// IndexReport is a snapshot of the consumer index, sorted by PCD.
type IndexReport struct {
	Platform string      `json:"platform,omitempty"`
	Pcds     []PcdReport `json:"pcds"`
}

// PcdReport describes one PCD of the platform and who consumes it.
type PcdReport struct {
	ID        pcd.ID           `json:"id"`
	ItemType  pcd.ItemType     `json:"item_type"`
	Value     string           `json:"value"`
	Dynamic   bool             `json:"dynamic,omitempty"`
	Consumers []ConsumerReport `json:"consumers"`
}

// ConsumerReport is a consumer record with the module name resolved.
type ConsumerReport struct {
	Module   string          `json:"module"`
	Key      fpd.ModuleSAKey `json:"key"`
	ItemType pcd.ItemType    `json:"item_type"`
}

// Report snapshots the consumer index.
func (e *Engine) Report() *IndexReport {
	e.mu.Lock()
	e.initIndexLocked()
	ids := make([]pcd.ID, 0, len(e.index))
	for id := range e.index {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, pcd.ID.Compare)

	r := &IndexReport{Platform: e.doc.Header.Name, Pcds: make([]PcdReport, 0, len(ids))}
	for _, id := range ids {
		consumers := e.index[id]
		p := PcdReport{
			ID:        id,
			ItemType:  consumers[0].ItemType,
			Value:     e.defaults[id],
			Dynamic:   e.doc.DynamicPcd(id) != nil,
			Consumers: make([]ConsumerReport, 0, len(consumers)),
		}
		for _, c := range consumers {
			p.Consumers = append(p.Consumers, ConsumerReport{Key: c.Key, ItemType: c.ItemType})
		}
		r.Pcds = append(r.Pcds, p)
	}
	e.mu.Unlock()

	// Names are resolved outside the lock.
	for i := range r.Pcds {
		for j := range r.Pcds[i].Consumers {
			c := &r.Pcds[i].Consumers[j]
			c.Module = e.describe(c.Key)
		}
	}
	return r
}

// ToJSON outputs the report as indented JSON.
func (r *IndexReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ToText outputs the report in a human-readable format.
func (r *IndexReport) ToText() string {
	var sb strings.Builder

	title := "PCD Consumers"
	if r.Platform != "" {
		title += ": " + r.Platform
	}
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")

	dynamic := 0
	for _, p := range r.Pcds {
		if p.Dynamic {
			dynamic++
		}
	}
	sb.WriteString(fmt.Sprintf("PCDs: %d (dynamic: %d)\n\n", len(r.Pcds), dynamic))

	for _, p := range r.Pcds {
		marker := ""
		if p.Dynamic {
			marker = " [dynamic]"
		}
		sb.WriteString(fmt.Sprintf("%s %s = %s%s\n", p.ID, p.ItemType, p.Value, marker))
		for _, c := range p.Consumers {
			sb.WriteString(fmt.Sprintf("  - %s (%s)\n", c.Module, c.Key.Arch))
		}
	}
	return sb.String()
}
