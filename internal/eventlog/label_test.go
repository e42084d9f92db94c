package eventlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	v := DefaultVocabulary()

	tests := []struct {
		text string
		kind LabelKind
		id   int
	}{
		{"QTM Start Command Sent", Anchor, 0},
		{"  qtm start command sent ", Anchor, 0},
		{"QTM Recording Started", Milestone, 0},
		{"Beep Started", Milestone, 0},
		{"Beep Command Sent", Unrecognized, 0},
		{"LED_3_Lit", ControlLit, 3},
		{"led_12_lit", ControlLit, 12},
		{"LED_3_ON Command Sent", Unrecognized, 0},
		{"#2 - pressed", ButtonPressed, 2},
		{"Button #4-pressed", ButtonPressed, 4},
		{"#2 - released", ButtonReleased, 2},
		{"", Unrecognized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			l := v.Classify(tt.text)
			assert.Equal(t, tt.kind, l.Kind)
			assert.Equal(t, tt.id, l.ID)
		})
	}
}

func TestQualifies(t *testing.T) {
	t.Parallel()

	v := DefaultVocabulary()
	assert.True(t, v.Qualifies(Label{Kind: Anchor}))
	assert.True(t, v.Qualifies(Label{Kind: Milestone}))
	assert.True(t, v.Qualifies(Label{Kind: ButtonPressed}))
	assert.True(t, v.Qualifies(Label{Kind: ControlLit}))
	assert.False(t, v.Qualifies(Label{Kind: ButtonReleased}))
	assert.False(t, v.Qualifies(Label{Kind: Unrecognized}))

	withReleases, err := NewVocabulary(VocabularyConfig{
		AnchorLabel:     DefaultAnchorLabel,
		ReleasedPattern: DefaultReleasedPattern,
		IncludeReleased: true,
	})
	require.NoError(t, err)
	assert.True(t, withReleases.Qualifies(withReleases.Classify("#1 - released")))
	assert.Equal(t, Unrecognized, withReleases.Classify("LED_1_Lit").Kind, "empty pattern disables the kind")
}

func TestNewVocabularyErrors(t *testing.T) {
	t.Parallel()

	_, err := NewVocabulary(VocabularyConfig{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	_, err = NewVocabulary(VocabularyConfig{AnchorLabel: "start", LitPattern: "("})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestLabelKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "anchor", Anchor.String())
	assert.Equal(t, "button-released", ButtonReleased.String())
	assert.Equal(t, "unrecognized", LabelKind(99).String())
}
