package aggregation

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sector is a named keyword set used to narrow a view to one industry.
type Sector struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Presets holds the ordered sector list and the keyword focus lists.
type Presets struct {
	Sectors []Sector `yaml:"sectors" json:"sectors"`
	Focus   []Sector `yaml:"focus" json:"focus"`
}

var DefaultSectors = []Sector{
	{Name: "Real Estate", Keywords: []string{"house", "property", "rent", "buy", "lease", "real estate", "immobilier"}},
	{Name: "Tech", Keywords: []string{"AI", "software", "app", "code", "programming", "algorithm"}},
	{Name: "Finance", Keywords: []string{"bank", "loan", "invest", "stock", "crypto", "money"}},
	{Name: "Education", Keywords: []string{"school", "university", "learn", "student", "course"}},
	{Name: "Healthcare", Keywords: []string{"hospital", "doctor", "medicine", "health", "patient"}},
	{Name: "Tourism", Keywords: []string{"hotel", "travel", "visit", "tour", "vacation"}},
}

var DefaultFocus = []Sector{
	{Name: "Morocco", Keywords: []string{
		"Morocco", "Maroc", "المغرب", "Casablanca", "Rabat",
		"Tanger", "OCP", "Attijariwafa", "Darija", "touris",
		"visit", "immobili", "property", "house", "شقة",
	}},
}

func DefaultPresets() Presets {
	return Presets{Sectors: DefaultSectors, Focus: DefaultFocus}
}

// LoadPresets reads a YAML preset file. An empty path yields the defaults;
// a file that omits one of the lists keeps the default for it.
func LoadPresets(path string) (Presets, error) {
	if path == "" {
		return DefaultPresets(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Presets{}, fmt.Errorf("[Presets] failed to read %s: %w", path, err)
	}

	var p Presets
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Presets{}, fmt.Errorf("[Presets] failed to parse %s: %w", path, err)
	}
	if len(p.Sectors) == 0 {
		p.Sectors = DefaultSectors
	}
	if len(p.Focus) == 0 {
		p.Focus = DefaultFocus
	}
	if err := p.validate(); err != nil {
		return Presets{}, fmt.Errorf("[Presets] %s: %w", path, err)
	}

	slog.Info("[Presets] Loaded preset file",
		slog.String("path", path),
		slog.Int("sectors", len(p.Sectors)),
		slog.Int("focus_lists", len(p.Focus)))
	return p, nil
}

func (p Presets) validate() error {
	for _, list := range [][]Sector{p.Sectors, p.Focus} {
		seen := make(map[string]struct{}, len(list))
		for _, s := range list {
			name := strings.ToLower(strings.TrimSpace(s.Name))
			if name == "" {
				return fmt.Errorf("preset without a name")
			}
			if _, dup := seen[name]; dup {
				return fmt.Errorf("duplicate preset %q", s.Name)
			}
			seen[name] = struct{}{}
			if len(s.Keywords) == 0 {
				return fmt.Errorf("preset %q has no keywords", s.Name)
			}
		}
	}
	return nil
}

// Sector looks a sector up by name, ignoring case.
func (p Presets) Sector(name string) (Sector, bool) {
	return findPreset(p.Sectors, name)
}

// FocusList looks a focus list up by name, ignoring case.
func (p Presets) FocusList(name string) (Sector, bool) {
	return findPreset(p.Focus, name)
}

func findPreset(list []Sector, name string) (Sector, bool) {
	for _, s := range list {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return Sector{}, false
}
