package ensemble

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/bazario-group/pricing-cli/internal/model"
)

// ArtifactPath returns the canonical artifact location for a category
// under dir.
func ArtifactPath(dir string, c model.Category) string {
	return filepath.Join(dir, string(c)+".model.json")
}

// Save writes the model artifact atomically: it lands at its final path
// via rename, so a concurrent loader sees either the old artifact or the
// new one, never a partial write.
func Save(dir string, m *Model) error {
	if err := m.Validate(); err != nil {
		return eris.Wrap(err, "ensemble: refusing to save invalid model")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "ensemble: create model dir %s", dir)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return eris.Wrap(err, "ensemble: marshal model")
	}

	tmp, err := os.CreateTemp(dir, string(m.Category)+".model.*.tmp")
	if err != nil {
		return eris.Wrap(err, "ensemble: create temp artifact")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "ensemble: write temp artifact")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "ensemble: close temp artifact")
	}
	if err := os.Rename(tmpName, ArtifactPath(dir, m.Category)); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "ensemble: publish artifact")
	}
	return nil
}

// Load reads and validates one artifact. A file that fails validation is
// rejected outright: a malformed artifact must never serve predictions.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ensemble: read artifact %s", path)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "ensemble: decode artifact %s", path)
	}
	if err := m.Validate(); err != nil {
		return nil, eris.Wrapf(err, "ensemble: artifact %s", path)
	}
	return &m, nil
}
