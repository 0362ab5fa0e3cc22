package patterns

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/bazario-group/pricing-cli/internal/model"
)

// Overrides reorders processor family precedence per category. The
// built-in order (Intel before AMD, RTX before GTX) ships as the default;
// deployments that want a different tie-break list family names here.
type Overrides struct {
	Categories map[string]PrecedenceOverride `yaml:"categories"`
}

// PrecedenceOverride lists family names in the desired match order.
// Families not listed keep their relative built-in order after the
// listed ones.
type PrecedenceOverride struct {
	CPU []string `yaml:"cpu"`
	GPU []string `yaml:"gpu"`
}

// LoadOverrides reads a YAML precedence file and applies it to the set.
// A missing path is not an error; an unknown family name is.
func (s *Set) LoadOverrides(path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Debug("patterns: no override file", zap.String("path", path))
			return nil
		}
		return eris.Wrap(err, "patterns: read overrides")
	}

	var ov Overrides
	if err := yaml.Unmarshal(raw, &ov); err != nil {
		return eris.Wrap(err, "patterns: parse overrides")
	}

	for cat, po := range ov.Categories {
		c, ok := model.ParseCategory(cat)
		if !ok {
			return eris.Errorf("patterns: overrides reference unknown category %q", cat)
		}
		lib := s.libs[c]
		if len(po.CPU) > 0 {
			reordered, err := reorderFamilies(lib.CPUFamilies, po.CPU)
			if err != nil {
				return eris.Wrapf(err, "patterns: cpu precedence for %s", cat)
			}
			lib.CPUFamilies = reordered
		}
		if len(po.GPU) > 0 {
			reordered, err := reorderFamilies(lib.GPUFamilies, po.GPU)
			if err != nil {
				return eris.Wrapf(err, "patterns: gpu precedence for %s", cat)
			}
			lib.GPUFamilies = reordered
		}
		zap.L().Info("patterns: precedence overridden",
			zap.String("category", cat),
			zap.Strings("cpu", po.CPU),
			zap.Strings("gpu", po.GPU),
		)
	}
	return nil
}

// reorderFamilies puts the named families first, in the given order,
// followed by the remaining families in their built-in order.
func reorderFamilies(families []ProcessorFamily, order []string) ([]ProcessorFamily, error) {
	byName := make(map[string]int, len(families))
	for i, f := range families {
		byName[f.Name] = i
	}

	used := make(map[string]bool, len(order))
	out := make([]ProcessorFamily, 0, len(families))
	for _, name := range order {
		i, ok := byName[name]
		if !ok {
			return nil, eris.Errorf("unknown family %q", name)
		}
		if used[name] {
			return nil, eris.Errorf("family %q listed twice", name)
		}
		used[name] = true
		out = append(out, families[i])
	}
	for _, f := range families {
		if !used[f.Name] {
			out = append(out, f)
		}
	}
	return out, nil
}
