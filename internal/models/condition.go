package models

import (
	"math"
	"strconv"
	"strings"
)

// ConditionKind identifies which predicate a Condition carries
type ConditionKind int

const (
	KindRarity ConditionKind = iota
	KindItemType
	KindItemLevel
	KindQuality
	KindCorrupted
	KindMirrored
	KindWaystoneTier
	KindStackableSize
	KindSockets
)

var conditionKindNames = map[ConditionKind]string{
	KindRarity:        "Rarity",
	KindItemType:      "ItemType",
	KindItemLevel:     "ItemLevel",
	KindQuality:       "Quality",
	KindCorrupted:     "Corrupted",
	KindMirrored:      "Mirrored",
	KindWaystoneTier:  "WaystoneTier",
	KindStackableSize: "StackableSize",
	KindSockets:       "Sockets",
}

// AllConditionKinds lists every kind in the order the editor offers them
func AllConditionKinds() []ConditionKind {
	return []ConditionKind{
		KindRarity, KindItemType, KindItemLevel, KindQuality, KindCorrupted,
		KindMirrored, KindWaystoneTier, KindStackableSize, KindSockets,
	}
}

func (k ConditionKind) String() string {
	return conditionKindNames[k]
}

// ParseConditionKind resolves a name produced by String
func ParseConditionKind(s string) (ConditionKind, bool) {
	for k, name := range conditionKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Keyword returns the directive written for the kind. ItemType has none of
// its own; its entries are written under ClassKeyword and BaseTypeKeyword.
func (k ConditionKind) Keyword() string {
	if k == KindStackableSize {
		return "StackSize"
	}
	if k == KindItemType {
		return ""
	}
	return conditionKindNames[k]
}

const (
	ClassKeyword    = "Class"
	BaseTypeKeyword = "BaseType"
)

// IsNumeric reports whether the kind takes a comparator and integer operand
func (k ConditionKind) IsNumeric() bool {
	switch k {
	case KindItemLevel, KindQuality, KindWaystoneTier, KindStackableSize, KindSockets:
		return true
	}
	return false
}

// IsFlag reports whether the kind takes a single boolean operand
func (k ConditionKind) IsFlag() bool {
	return k == KindCorrupted || k == KindMirrored
}

// Condition is one typed predicate of a Rule. Implementations are
// RarityCondition, ItemTypeCondition, NumericCondition and FlagCondition.
type Condition interface {
	Kind() ConditionKind
	// Operand renders the value part of the condition line
	Operand() string
	Clone() Condition
}

// RarityType is an item rarity as written in filter files
type RarityType string

const (
	RarityNormal RarityType = "Normal"
	RarityMagic  RarityType = "Magic"
	RarityRare   RarityType = "Rare"
	RarityUnique RarityType = "Unique"
)

// RarityCondition matches any of the listed rarities; list order is kept
type RarityCondition struct {
	Rarities []RarityType
}

func NewRarityCondition(rarities ...RarityType) *RarityCondition {
	return &RarityCondition{Rarities: append([]RarityType(nil), rarities...)}
}

func (c *RarityCondition) Kind() ConditionKind { return KindRarity }

func (c *RarityCondition) Operand() string {
	parts := make([]string, len(c.Rarities))
	for i, r := range c.Rarities {
		parts[i] = string(r)
	}
	return strings.Join(parts, " ")
}

func (c *RarityCondition) Clone() Condition {
	return NewRarityCondition(c.Rarities...)
}

// ItemTypeKind tells which directive an item type entry belongs to
type ItemTypeKind string

const (
	ItemTypeClass    ItemTypeKind = "class"
	ItemTypeBaseType ItemTypeKind = "basetype"
	ItemTypeDefense  ItemTypeKind = "defense" // reserved, never written
)

// ItemTypeEntry is a single class or base type name
type ItemTypeEntry struct {
	Kind  ItemTypeKind
	Value string
}

// ItemTypeCondition groups class and base type entries into one predicate
type ItemTypeCondition struct {
	Entries []ItemTypeEntry
}

func NewItemTypeCondition(entries ...ItemTypeEntry) *ItemTypeCondition {
	return &ItemTypeCondition{Entries: append([]ItemTypeEntry(nil), entries...)}
}

func (c *ItemTypeCondition) Kind() ConditionKind { return KindItemType }

// Values returns the entry values of one kind in list order
func (c *ItemTypeCondition) Values(kind ItemTypeKind) []string {
	var values []string
	for _, e := range c.Entries {
		if e.Kind == kind {
			values = append(values, e.Value)
		}
	}
	return values
}

// Operand renders every written group; the encoder emits one line per group instead
func (c *ItemTypeCondition) Operand() string {
	var groups []string
	for _, kind := range []ItemTypeKind{ItemTypeClass, ItemTypeBaseType} {
		if values := c.Values(kind); len(values) > 0 {
			groups = append(groups, QuoteValues(values))
		}
	}
	return strings.Join(groups, " ")
}

func (c *ItemTypeCondition) Clone() Condition {
	return NewItemTypeCondition(c.Entries...)
}

// QuoteValues renders values as `"a" "b"`
func QuoteValues(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return strings.Join(quoted, " ")
}

// Comparator is the operator of a numeric condition. Decoded files may carry
// any token here; it is stored as given.
type Comparator string

const (
	OpEqual   Comparator = "="
	OpGreater Comparator = ">"
	OpLess    Comparator = "<"
)

// NotANumber marks an operand that could not be parsed as an integer
const NotANumber = math.MinInt

// NumericCondition covers ItemLevel, Quality, WaystoneTier, StackableSize and Sockets
type NumericCondition struct {
	Field ConditionKind
	Op    Comparator
	Value int
}

func NewNumericCondition(kind ConditionKind, op Comparator, value int) *NumericCondition {
	return &NumericCondition{Field: kind, Op: op, Value: value}
}

func (c *NumericCondition) Kind() ConditionKind { return c.Field }

func (c *NumericCondition) Operand() string {
	return string(c.Op) + " " + FormatInt(c.Value)
}

func (c *NumericCondition) Clone() Condition {
	cp := *c
	return &cp
}

// FlagCondition covers Corrupted and Mirrored
type FlagCondition struct {
	Field ConditionKind
	Value bool
}

func NewFlagCondition(kind ConditionKind, value bool) *FlagCondition {
	return &FlagCondition{Field: kind, Value: value}
}

func (c *FlagCondition) Kind() ConditionKind { return c.Field }

func (c *FlagCondition) Operand() string {
	if c.Value {
		return "True"
	}
	return "False"
}

func (c *FlagCondition) Clone() Condition {
	cp := *c
	return &cp
}

// FormatInt writes NotANumber as "NaN"
func FormatInt(v int) string {
	if v == NotANumber {
		return "NaN"
	}
	return strconv.Itoa(v)
}

// ParseInt reads the leading integer of s, ignoring anything after it.
// Text without leading digits yields NotANumber.
func ParseInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return NotANumber
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return NotANumber
	}
	return v
}
