package library

import (
	"fmt"
	"time"

	"github.com/bnema/path-of-filtering/internal/models"
	"gopkg.in/yaml.v3"
)

// filterSnapshot is the full state of a filter. Unlike the exported
// document it keeps styling stored on Show/Hide rules, defense entries and
// condition order.
type filterSnapshot struct {
	Name         string         `yaml:"name"`
	ImportedFrom string         `yaml:"imported_from,omitempty"`
	Description  string         `yaml:"description,omitempty"`
	LastEdited   string         `yaml:"last_edited"`
	Rules        []ruleSnapshot `yaml:"rules"`
}

type ruleSnapshot struct {
	Action       string              `yaml:"action"`
	Name         string              `yaml:"name"`
	Color        string              `yaml:"color,omitempty"`
	Emphasized   bool                `yaml:"emphasized,omitempty"`
	HasMapIcon   bool                `yaml:"has_map_icon,omitempty"`
	MapIcon      string              `yaml:"map_icon,omitempty"`
	HasAreaLevel bool                `yaml:"has_area_level,omitempty"`
	AreaLevel    int                 `yaml:"area_level,omitempty"`
	HasSound     bool                `yaml:"has_sound,omitempty"`
	Sound        int                 `yaml:"sound,omitempty"`
	Beam         bool                `yaml:"beam,omitempty"`
	Conditions   []conditionSnapshot `yaml:"conditions,omitempty"`
}

type conditionSnapshot struct {
	Kind     string          `yaml:"kind"`
	Rarities []string        `yaml:"rarities,omitempty"`
	Entries  []entrySnapshot `yaml:"entries,omitempty"`
	Op       string          `yaml:"op,omitempty"`
	Value    int             `yaml:"value,omitempty"`
	Flag     bool            `yaml:"flag,omitempty"`
}

type entrySnapshot struct {
	Kind  string `yaml:"kind"`
	Value string `yaml:"value"`
}

// EncodeModel renders the full filter state as YAML
func EncodeModel(f *models.Filter) ([]byte, error) {
	return yaml.Marshal(newFilterSnapshot(f))
}

// DecodeModel restores a filter written by EncodeModel
func DecodeModel(data []byte) (*models.Filter, error) {
	var s filterSnapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return s.filter()
}

func newFilterSnapshot(f *models.Filter) filterSnapshot {
	s := filterSnapshot{
		Name:         f.Name(),
		ImportedFrom: f.ImportedFrom(),
		Description:  f.Description(),
		LastEdited:   f.LastEdited().UTC().Format(models.TimestampLayout),
		Rules:        make([]ruleSnapshot, 0, len(f.Rules())),
	}
	for _, r := range f.Rules() {
		s.Rules = append(s.Rules, newRuleSnapshot(r))
	}
	return s
}

func newRuleSnapshot(r *models.Rule) ruleSnapshot {
	s := ruleSnapshot{
		Action:       string(r.Action),
		Name:         r.Name,
		Color:        r.Color.String(),
		Emphasized:   r.IsEmphasized,
		HasMapIcon:   r.HasMapIcon,
		MapIcon:      string(r.MapIcon),
		HasAreaLevel: r.HasAreaLevelDependency,
		AreaLevel:    r.AreaLevel,
		HasSound:     r.HasSoundEffect,
		Sound:        r.SoundEffect,
		Beam:         r.HasBeamEffect,
	}
	for _, c := range r.Conditions {
		s.Conditions = append(s.Conditions, newConditionSnapshot(c))
	}
	return s
}

func newConditionSnapshot(c models.Condition) conditionSnapshot {
	s := conditionSnapshot{Kind: c.Kind().String()}
	switch v := c.(type) {
	case *models.RarityCondition:
		for _, r := range v.Rarities {
			s.Rarities = append(s.Rarities, string(r))
		}
	case *models.ItemTypeCondition:
		for _, e := range v.Entries {
			s.Entries = append(s.Entries, entrySnapshot{Kind: string(e.Kind), Value: e.Value})
		}
	case *models.NumericCondition:
		s.Op = string(v.Op)
		s.Value = v.Value
	case *models.FlagCondition:
		s.Flag = v.Value
	}
	return s
}

func (s filterSnapshot) filter() (*models.Filter, error) {
	rules := make([]*models.Rule, 0, len(s.Rules))
	for i, rs := range s.Rules {
		r, err := rs.rule()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, r)
	}

	f := models.NewFilter(s.Name, s.ImportedFrom, s.Description, rules)
	if s.LastEdited != "" {
		t, err := time.Parse(models.TimestampLayout, s.LastEdited)
		if err != nil {
			return nil, fmt.Errorf("last edited: %w", err)
		}
		f.SetLastEdited(t)
	}
	return f, nil
}

// rule restores the stored state as is; it was valid when it was saved
func (s ruleSnapshot) rule() (*models.Rule, error) {
	action, ok := models.ParseAction(s.Action)
	if !ok {
		return nil, fmt.Errorf("unknown action %q", s.Action)
	}

	color := models.ColorNone
	if s.Color != "" {
		if color, ok = models.ParseColor(s.Color); !ok {
			return nil, fmt.Errorf("unknown color %q", s.Color)
		}
	}

	r := &models.Rule{
		Action:                 action,
		Name:                   s.Name,
		Color:                  color,
		IsEmphasized:           s.Emphasized,
		HasMapIcon:             s.HasMapIcon,
		MapIcon:                models.MapIcon(s.MapIcon),
		HasAreaLevelDependency: s.HasAreaLevel,
		AreaLevel:              s.AreaLevel,
		HasSoundEffect:         s.HasSound,
		SoundEffect:            s.Sound,
		HasBeamEffect:          s.Beam,
	}
	for _, cs := range s.Conditions {
		c, err := cs.condition()
		if err != nil {
			return nil, err
		}
		r.Conditions = append(r.Conditions, c)
	}
	return r, nil
}

func (s conditionSnapshot) condition() (models.Condition, error) {
	kind, ok := models.ParseConditionKind(s.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown condition kind %q", s.Kind)
	}

	switch {
	case kind == models.KindRarity:
		rarities := make([]models.RarityType, len(s.Rarities))
		for i, r := range s.Rarities {
			rarities[i] = models.RarityType(r)
		}
		return models.NewRarityCondition(rarities...), nil
	case kind == models.KindItemType:
		entries := make([]models.ItemTypeEntry, len(s.Entries))
		for i, e := range s.Entries {
			entries[i] = models.ItemTypeEntry{Kind: models.ItemTypeKind(e.Kind), Value: e.Value}
		}
		return models.NewItemTypeCondition(entries...), nil
	case kind.IsFlag():
		return models.NewFlagCondition(kind, s.Flag), nil
	default:
		return models.NewNumericCondition(kind, models.Comparator(s.Op), s.Value), nil
	}
}
