package ensemble

import (
	"os"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bazario-group/pricing-cli/internal/model"
)

// Registry holds the live model per category. Swaps are atomic: inflight
// predictions finish on the model they started with while new requests
// pick up the replacement.
type Registry struct {
	slots map[model.Category]*atomic.Pointer[Model]
}

// NewRegistry builds an empty registry with a slot per known category.
func NewRegistry() *Registry {
	slots := make(map[model.Category]*atomic.Pointer[Model], len(model.Categories()))
	for _, c := range model.Categories() {
		slots[c] = &atomic.Pointer[Model]{}
	}
	return &Registry{slots: slots}
}

// Get returns the live model for a category, or (nil, false) when none
// is loaded.
func (r *Registry) Get(c model.Category) (*Model, bool) {
	slot, ok := r.slots[c]
	if !ok {
		return nil, false
	}
	m := slot.Load()
	return m, m != nil
}

// Swap installs a validated model as the live one for its category.
func (r *Registry) Swap(m *Model) error {
	if err := m.Validate(); err != nil {
		return eris.Wrap(err, "ensemble: refusing to install invalid model")
	}
	slot, ok := r.slots[m.Category]
	if !ok {
		return eris.Errorf("ensemble: no registry slot for category %q", m.Category)
	}
	slot.Store(m)
	zap.L().Info("ensemble: model installed",
		zap.String("category", string(m.Category)),
		zap.String("run_id", m.Meta.RunID))
	return nil
}

// Loaded lists the categories that currently have a live model.
func (r *Registry) Loaded() []model.Category {
	var out []model.Category
	for _, c := range model.Categories() {
		if _, ok := r.Get(c); ok {
			out = append(out, c)
		}
	}
	return out
}

// LoadDir loads every category artifact present under dir. Missing
// artifacts are skipped with a warning; a present-but-invalid artifact
// is an error. Returns the number of models installed.
func (r *Registry) LoadDir(dir string) (int, error) {
	var n int
	for _, c := range model.Categories() {
		path := ArtifactPath(dir, c)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			zap.L().Warn("ensemble: no artifact for category",
				zap.String("category", string(c)),
				zap.String("path", path))
			continue
		}
		m, err := Load(path)
		if err != nil {
			return n, err
		}
		if err := r.Swap(m); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
