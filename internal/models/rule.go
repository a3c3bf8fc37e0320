package models

import (
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrDuplicateCondition = errors.New("rule already has a condition of this kind")
	ErrInvalidCondition   = errors.New("condition payload does not match its kind")
)

// Action is what a rule does with a matching item
type Action string

const (
	ActionShow    Action = "Show"
	ActionHide    Action = "Hide"
	ActionRecolor Action = "Recolor" // a Show with styling directives
)

// ParseAction accepts the action names written in rule headers
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionShow, ActionHide, ActionRecolor:
		return Action(s), true
	}
	return "", false
}

// MapIcon is the minimap icon shape
type MapIcon string

const (
	IconCircle          MapIcon = "Circle"
	IconDiamond         MapIcon = "Diamond"
	IconHexagon         MapIcon = "Hexagon"
	IconSquare          MapIcon = "Square"
	IconStar            MapIcon = "Star"
	IconTriangle        MapIcon = "Triangle"
	IconCross           MapIcon = "Cross"
	IconMoon            MapIcon = "Moon"
	IconRaindrop        MapIcon = "Raindrop"
	IconKite            MapIcon = "Kite"
	IconPentagon        MapIcon = "Pentagon"
	IconUpsideDownHouse MapIcon = "UpsideDownHouse"
)

// Alert sound ids accepted by PlayAlertSound
const (
	MinSoundEffect = 1
	MaxSoundEffect = 16
)

// Rule is one visibility/styling directive. Conditions are ANDed; an empty
// list matches every item.
type Rule struct {
	Action                 Action
	Name                   string
	Color                  Color // set only for ActionRecolor
	IsEmphasized           bool
	HasMapIcon             bool
	MapIcon                MapIcon
	HasAreaLevelDependency bool
	AreaLevel              int
	HasSoundEffect         bool
	SoundEffect            int // 0 when unset
	HasBeamEffect          bool
	Conditions             []Condition
}

// NewRule creates a rule without conditions
func NewRule(action Action, name string) *Rule {
	r := &Rule{Name: SingleLine(name)}
	r.SetAction(action)
	return r
}

// SetAction switches the action. Recolor gets White when no color is set;
// other actions drop the color.
func (r *Rule) SetAction(action Action) {
	r.Action = action
	if action == ActionRecolor {
		if !r.Color.IsValid() {
			r.Color = White
		}
		return
	}
	r.Color = ColorNone
}

// SetColor is ignored unless the rule recolors
func (r *Rule) SetColor(c Color) {
	if r.Action == ActionRecolor && c.IsValid() {
		r.Color = c
	}
}

// EffectiveColor is the color used for writing; White when unset
func (r *Rule) EffectiveColor() Color {
	if r.Color.IsValid() {
		return r.Color
	}
	return White
}

func (r *Rule) SetName(name string) {
	r.Name = SingleLine(name)
}

// SetAreaLevelDependency clears the level when disabled
func (r *Rule) SetAreaLevelDependency(enabled bool, level int) {
	r.HasAreaLevelDependency = enabled
	if enabled {
		r.AreaLevel = level
	} else {
		r.AreaLevel = 0
	}
}

func (r *Rule) SetMapIcon(enabled bool, icon MapIcon) {
	r.HasMapIcon = enabled
	if enabled {
		r.MapIcon = icon
	} else {
		r.MapIcon = ""
	}
}

// SetSoundEffect accepts ids 1 to 16
func (r *Rule) SetSoundEffect(enabled bool, id int) error {
	if enabled && (id < MinSoundEffect || id > MaxSoundEffect) {
		return fmt.Errorf("sound effect %d: must be between %d and %d", id, MinSoundEffect, MaxSoundEffect)
	}
	r.HasSoundEffect = enabled
	if enabled {
		r.SoundEffect = id
	} else {
		r.SoundEffect = 0
	}
	return nil
}

// HasCondition reports whether a condition of the kind is present
func (r *Rule) HasCondition(kind ConditionKind) bool {
	return r.conditionIndex(kind) != -1
}

func (r *Rule) conditionIndex(kind ConditionKind) int {
	for i, c := range r.Conditions {
		if c.Kind() == kind {
			return i
		}
	}
	return -1
}

// AvailableConditionKinds returns the kinds not used by the rule yet
func (r *Rule) AvailableConditionKinds() []ConditionKind {
	var kinds []ConditionKind
	for _, k := range AllConditionKinds() {
		if !r.HasCondition(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// ValidateCondition checks that the payload type fits the condition kind
func ValidateCondition(c Condition) error {
	var ok bool
	switch v := c.(type) {
	case *RarityCondition:
		ok = v != nil
	case *ItemTypeCondition:
		ok = v != nil
	case *NumericCondition:
		ok = v != nil && v.Field.IsNumeric()
	case *FlagCondition:
		ok = v != nil && v.Field.IsFlag()
	}
	if !ok {
		return ErrInvalidCondition
	}
	return nil
}

// AddCondition appends a condition whose kind the rule does not have yet.
// The ItemType condition stays last, where decoding puts it.
func (r *Rule) AddCondition(c Condition) error {
	if err := ValidateCondition(c); err != nil {
		return err
	}
	if r.HasCondition(c.Kind()) {
		return fmt.Errorf("%s: %w", c.Kind(), ErrDuplicateCondition)
	}
	r.Conditions = append(r.Conditions, c.Clone())
	r.itemTypeLast()
	return nil
}

// UpdateCondition replaces the condition at index wholesale. An ItemType
// condition moves to the end of the list.
func (r *Rule) UpdateCondition(index int, c Condition) error {
	if index < 0 || index >= len(r.Conditions) {
		return fmt.Errorf("condition %d: %w", index, ErrIndexOutOfRange)
	}
	if err := ValidateCondition(c); err != nil {
		return err
	}
	if i := r.conditionIndex(c.Kind()); i != -1 && i != index {
		return fmt.Errorf("%s: %w", c.Kind(), ErrDuplicateCondition)
	}
	r.Conditions[index] = c.Clone()
	r.itemTypeLast()
	return nil
}

func (r *Rule) itemTypeLast() {
	i := r.conditionIndex(KindItemType)
	if i == -1 || i == len(r.Conditions)-1 {
		return
	}
	it := r.Conditions[i]
	r.Conditions = append(r.Conditions[:i], r.Conditions[i+1:]...)
	r.Conditions = append(r.Conditions, it)
}

// SetCondition replaces the condition of the same kind, or adds it
func (r *Rule) SetCondition(c Condition) error {
	if err := ValidateCondition(c); err != nil {
		return err
	}
	if i := r.conditionIndex(c.Kind()); i != -1 {
		return r.UpdateCondition(i, c)
	}
	return r.AddCondition(c)
}

// RemoveConditionKind drops the condition of the given kind, if any
func (r *Rule) RemoveConditionKind(kind ConditionKind) bool {
	i := r.conditionIndex(kind)
	if i == -1 {
		return false
	}
	r.Conditions = append(r.Conditions[:i], r.Conditions[i+1:]...)
	return true
}

func (r *Rule) RemoveCondition(index int) error {
	if index < 0 || index >= len(r.Conditions) {
		return fmt.Errorf("condition %d: %w", index, ErrIndexOutOfRange)
	}
	r.Conditions = append(r.Conditions[:index], r.Conditions[index+1:]...)
	return nil
}

// Clone returns a deep copy
func (r *Rule) Clone() *Rule {
	cp := *r
	cp.Conditions = make([]Condition, len(r.Conditions))
	for i, c := range r.Conditions {
		cp.Conditions[i] = c.Clone()
	}
	return &cp
}
