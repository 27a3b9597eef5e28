package fpd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// documentPermissions is the file mode used when writing platform files.
const documentPermissions = 0o600

// ReadFile reads and parses a platform description from path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read platform description: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if doc.Header.Path == "" {
		doc.Header.Path = path
	}
	return doc, nil
}

// Parse parses YAML platform description data and validates the dynamic PCD
// table.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse platform description: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks structural constraints that do not depend on the
// workspace: unique module keys, unique PCDs per module and well formed
// dynamic entries.
func (d *Document) Validate() error {
	for i, m := range d.Modules {
		if m == nil {
			return fmt.Errorf("framework module %d is empty", i)
		}
		if m.Key.ModuleGUID == "" || m.Key.PackageGUID == "" {
			return fmt.Errorf("framework module %d: key %q lacks a module or package guid", i, m.Key)
		}
		for _, other := range d.Modules[:i] {
			if other.Key.Equal(m.Key) {
				return fmt.Errorf("framework module %s listed twice", m.Key)
			}
		}
		seen := make(map[string]bool, len(m.Pcds))
		for _, p := range m.Pcds {
			if seen[p.ID.String()] {
				return fmt.Errorf("framework module %s: pcd %s listed twice", m.Key, p.ID)
			}
			seen[p.ID.String()] = true
		}
	}
	for _, p := range d.DynamicPcds {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes the document to path.
func (d *Document) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, documentPermissions)
}

// WriteTo writes the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := d.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Marshal serializes the document. Output order follows document order, so
// a load/save cycle does not reorder entries. Empty sections are omitted.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode platform description: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
