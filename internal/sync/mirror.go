package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/peterbourgon/diskv/v3"

	"gistcal/internal/model"
)

const mirrorKey = "database.json"

// Mirror keeps a local on-disk copy of the document. It serves two
// purposes: a fast startup source when the gist is unreachable, and a
// second Saver so every flush lands locally as well as remotely.
type Mirror struct {
	d *diskv.Diskv
}

func NewMirror(dir string) *Mirror {
	return &Mirror{d: diskv.New(diskv.Options{
		BasePath:     dir,
		CacheSizeMax: 1 << 20,
	})}
}

// Save implements Saver.
func (m *Mirror) Save(_ context.Context, doc model.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mirror: %w", err)
	}
	if err := m.d.Write(mirrorKey, data); err != nil {
		return fmt.Errorf("write mirror: %w", err)
	}
	return nil
}

// Load reads the mirrored document. Returns (nil, nil) when no mirror
// has been written yet.
func (m *Mirror) Load() (*model.Document, error) {
	if !m.d.Has(mirrorKey) {
		return nil, nil
	}
	data, err := m.d.Read(mirrorKey)
	if err != nil {
		return nil, fmt.Errorf("read mirror: %w", err)
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode mirror: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}
