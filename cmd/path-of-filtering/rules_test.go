package main

import (
	"testing"

	"github.com/bnema/path-of-filtering/internal/models"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumericCondition(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		op      models.Comparator
		value   int
		wantErr bool
	}{
		{"greater", "> 70", models.OpGreater, 70, false},
		{"equal", "= 3", models.OpEqual, 3, false},
		{"extra spaces", "  <   5 ", models.OpLess, 5, false},
		{"missing value", ">", "", 0, true},
		{"unknown comparator", ">= 5", "", 0, true},
		{"not a number", "> high", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parseNumericCondition(models.KindItemLevel, tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.KindItemLevel, c.Kind())
			assert.Equal(t, tt.op, c.Op)
			assert.Equal(t, tt.value, c.Value)
		})
	}
}

func TestNumericFlagNames(t *testing.T) {
	for _, kind := range models.AllConditionKinds() {
		if kind.IsNumeric() {
			assert.NotEmpty(t, numericFlagName(kind), kind.String())
		}
	}
}

func newEditCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "edit"}
	addRuleFlags(cmd)
	cmd.Flags().StringSlice("clear", nil, "")
	cmd.Flags().StringSlice("drop", nil, "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestApplyRuleFlagsOnlyTouchesGivenFlags(t *testing.T) {
	r := models.NewRule(models.ActionRecolor, "Loot")
	r.SetColor(models.Blue)
	r.IsEmphasized = true
	r.HasBeamEffect = true
	require.NoError(t, r.AddCondition(models.NewRarityCondition(models.RarityRare)))

	cmd := newEditCommand(t, "--item-level", "> 70", "--rarity", "Unique", "--sound", "3")
	require.NoError(t, applyRuleFlags(cmd, r))

	assert.Equal(t, models.ActionRecolor, r.Action)
	assert.Equal(t, "Loot", r.Name)
	assert.Equal(t, models.Blue, r.Color)
	assert.True(t, r.IsEmphasized)
	assert.True(t, r.HasBeamEffect)
	assert.Equal(t, 3, r.SoundEffect)
	require.Len(t, r.Conditions, 2)
	assert.Equal(t, "Unique", r.Conditions[0].Operand())
	assert.Equal(t, "> 70", r.Conditions[1].Operand())
}

func TestApplyRuleFlagsRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"action", []string{"--action", "Glow"}},
		{"color", []string{"--color", "Mauve"}},
		{"sound", []string{"--sound", "20"}},
		{"comparison", []string{"--quality", "high"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := models.NewRule(models.ActionShow, "x")
			assert.Error(t, applyRuleFlags(newEditCommand(t, tt.args...), r))
		})
	}
}

func TestClearRuleFlags(t *testing.T) {
	r := models.NewRule(models.ActionRecolor, "Loot")
	r.SetMapIcon(true, models.IconStar)
	r.SetAreaLevelDependency(true, 60)
	require.NoError(t, r.SetSoundEffect(true, 2))
	require.NoError(t, r.AddCondition(models.NewRarityCondition(models.RarityRare)))
	require.NoError(t, r.AddCondition(models.NewFlagCondition(models.KindCorrupted, false)))

	cmd := newEditCommand(t, "--clear", "icon,area-level,sound", "--drop", "Rarity")
	require.NoError(t, clearRuleFlags(cmd, r))

	assert.False(t, r.HasMapIcon)
	assert.False(t, r.HasAreaLevelDependency)
	assert.False(t, r.HasSoundEffect)
	require.Len(t, r.Conditions, 1)
	assert.Equal(t, models.KindCorrupted, r.Conditions[0].Kind())

	assert.Error(t, clearRuleFlags(newEditCommand(t, "--clear", "beam"), r))
	assert.Error(t, clearRuleFlags(newEditCommand(t, "--drop", "Weight"), r))
}
