package encoder

import (
	"strings"
	"testing"
	"time"

	"github.com/bnema/path-of-filtering/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockLines(block string) []string {
	return strings.Split(strings.TrimSuffix(block, "\n"), "\n")
}

func TestEncodeMinimalHideRule(t *testing.T) {
	r := models.NewRule(models.ActionHide, "Junk")
	require.NoError(t, r.AddCondition(models.NewRarityCondition(models.RarityNormal)))

	block := New().EncodeRule(r)

	assert.Equal(t, []string{
		"# Hide - Junk",
		"Hide",
		"\tSetFontSize 30",
		"\tRarity Normal",
		"",
	}, blockLines(block))
}

func TestEncodeRecolorRule(t *testing.T) {
	r := models.NewRule(models.ActionRecolor, "Divines")
	r.SetColor(models.RedSolid)
	r.IsEmphasized = true
	r.SetMapIcon(true, models.IconStar)
	r.SetAreaLevelDependency(true, 65)
	require.NoError(t, r.SetSoundEffect(true, 3))
	r.HasBeamEffect = true

	block := New().EncodeRule(r)

	assert.Equal(t, []string{
		"# Recolor - Divines",
		"Show",
		"\tSetTextColor 0 0 0 255",
		"\tSetBorderColor 0 0 0 255",
		"\tSetBackgroundColor 255 0 0 255",
		"\tSetFontSize 36",
		"\tMinimapIcon 1 Red Star",
		"\tAreaLevel >= 65",
		"\tPlayAlertSound 3 200",
		"\tPlayEffect Red",
		"",
	}, blockLines(block))
}

func TestStylingIsOnlyWrittenForRecolor(t *testing.T) {
	r := models.NewRule(models.ActionShow, "Plain")
	r.IsEmphasized = true
	r.SetMapIcon(true, models.IconCircle)
	require.NoError(t, r.SetSoundEffect(true, 1))
	r.HasBeamEffect = true
	r.SetAreaLevelDependency(true, 10)

	block := New().EncodeRule(r)

	assert.Contains(t, block, "\tSetFontSize 30\n")
	assert.Contains(t, block, "\tAreaLevel >= 10\n")
	for _, directive := range []string{"SetTextColor", "MinimapIcon", "PlayAlertSound", "PlayEffect"} {
		assert.NotContains(t, block, directive)
	}
}

func TestEncodeItemTypeGrouping(t *testing.T) {
	r := models.NewRule(models.ActionShow, "Swords")
	require.NoError(t, r.AddCondition(models.NewItemTypeCondition(
		models.ItemTypeEntry{Kind: models.ItemTypeClass, Value: "Sword"},
		models.ItemTypeEntry{Kind: models.ItemTypeBaseType, Value: "Rusted Sword"},
		models.ItemTypeEntry{Kind: models.ItemTypeDefense, Value: "Armour"},
		models.ItemTypeEntry{Kind: models.ItemTypeBaseType, Value: "Rusted Hatchet"},
	)))

	enc := New()
	lines := blockLines(enc.EncodeRule(r))

	assert.Equal(t, []string{
		"# Show - Swords",
		"Show",
		"\tSetFontSize 30",
		"\tClass == \"Sword\"",
		"\tBaseType == \"Rusted Sword\" \"Rusted Hatchet\"",
		"",
	}, lines)
	assert.Equal(t, 1, enc.Stats().Dropped[DropDefenseEntry])
}

func TestEncodeConditionKeywords(t *testing.T) {
	tests := []struct {
		name      string
		condition models.Condition
		expected  string
	}{
		{"item level", models.NewNumericCondition(models.KindItemLevel, models.OpGreater, 70), "ItemLevel > 70"},
		{"quality", models.NewNumericCondition(models.KindQuality, models.OpEqual, 20), "Quality = 20"},
		{"waystone tier", models.NewNumericCondition(models.KindWaystoneTier, models.OpLess, 5), "WaystoneTier < 5"},
		{"stack size", models.NewNumericCondition(models.KindStackableSize, models.OpGreater, 9), "StackSize > 9"},
		{"sockets", models.NewNumericCondition(models.KindSockets, models.OpEqual, 2), "Sockets = 2"},
		{"corrupted", models.NewFlagCondition(models.KindCorrupted, true), "Corrupted True"},
		{"mirrored", models.NewFlagCondition(models.KindMirrored, false), "Mirrored False"},
		{"rarity", models.NewRarityCondition(models.RarityRare, models.RarityMagic), "Rarity Rare Magic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := models.NewRule(models.ActionShow, "x")
			require.NoError(t, r.AddCondition(tt.condition))
			assert.Contains(t, New().EncodeRule(r), "\t"+tt.expected+"\n")
		})
	}
}

func TestEncodeFilterDocument(t *testing.T) {
	edited := time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.UTC)
	f := models.NewFilter("Endgame", "", "Maps and currency", nil)
	f.AddRule(models.NewRule(models.ActionHide, "Junk"))
	f.AddRule(models.NewRule(models.ActionShow, "Keep"))
	f.SetLastEdited(edited)

	doc := EncodeFilter(f)
	lines := strings.Split(doc, "\n")

	assert.Equal(t, []string{
		Separator,
		ProductBanner,
		Separator,
		"# Endgame",
		"# Maps and currency",
		"# Last Edited: 2025-03-04T05:06:07.890Z",
		Separator,
		"# Rules",
		Separator,
		"# Show - Keep",
		"Show",
		"\tSetFontSize 30",
		"",
		"",
		"# Hide - Junk",
		"Hide",
		"\tSetFontSize 30",
		"",
		"",
		"",
	}, lines)

	assert.Equal(t, doc, EncodeFilter(f), "output is deterministic")
}
