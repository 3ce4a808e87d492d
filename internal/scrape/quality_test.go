package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_RejectsShortText(t *testing.T) {
	t.Parallel()

	v := NewQualityValidator()
	err := v.Validate(strings.Repeat("x", 90))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestValidate_AcceptsSubstantiveText(t *testing.T) {
	t.Parallel()

	// ~500 chars of varied prose; unique-word ratio well above 0.3.
	text := `The semiconductor maker posted results that beat consensus
	estimates on both revenue and margin, citing resilient datacenter demand
	and an improving supply picture. Executives flagged currency headwinds
	for the coming quarter but maintained capital expenditure plans.
	Inventory levels normalized faster than feared, and the order backlog
	stretched into next year. Several analysts raised price targets
	following the call, while others cautioned that valuation already
	reflects much of the anticipated recovery in end markets.`

	v := NewQualityValidator()
	require.GreaterOrEqual(t, len(text), 450)
	assert.GreaterOrEqual(t, uniqueWordRatio(text), 0.6)
	assert.NoError(t, v.Validate(text))
}

func TestValidate_RejectsRepetitiveText(t *testing.T) {
	t.Parallel()

	v := NewQualityValidator()
	err := v.Validate(strings.Repeat("click here read more ", 20))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unique-word ratio")
}

func TestValidate_RejectsNavigationPrefix(t *testing.T) {
	t.Parallel()

	v := NewQualityValidator()
	filler := `this body is otherwise long enough to pass the length check and
	the words here are varied enough that the ratio heuristic would accept it
	without complaint under normal circumstances today`

	tests := []struct {
		name string
		text string
	}{
		{"menu", "Menu " + filler},
		{"home about contact", "Home About Contact " + filler},
		{"search login register", "Search Login Register " + filler},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.text)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "navigation")
		})
	}
}

func TestValidate_NavigationDeepInBodyIsFine(t *testing.T) {
	t.Parallel()

	v := NewQualityValidator()
	prose := `The board approved a dividend increase and signaled openness to
	further acquisitions after a year of integration work. Free cash flow
	conversion improved markedly, helped by working capital discipline.
	Later in the piece the author mentions the settings menu of the product.`

	assert.NoError(t, v.Validate(prose))
}

func TestUniqueWordRatio(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, uniqueWordRatio("alpha beta gamma delta"), 1e-9)
	assert.InDelta(t, 0.25, uniqueWordRatio("spam spam spam spam"), 1e-9)
	assert.Zero(t, uniqueWordRatio("   "))
}
