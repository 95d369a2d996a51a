package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateLegacy(t *testing.T) {
	legacy := []byte(`{
		"mrs_finch": {
			"start": {
				"text": "Hello, dear.",
				"options": [
					{"text": "Ask about Iris", "next": "iris"},
					{"text": "Leave"}
				]
			},
			"iris": {
				"text": "I saw a shadow figure in her basement.",
				"trust": 10,
				"clue": "Mrs. Finch saw a 'shadow figure' in Iris's basement"
			}
		}
	}`)

	nodes, clueText, err := MigrateLegacy(legacy)
	require.NoError(t, err)

	finch := nodes["mrs_finch"]
	require.Len(t, finch, 2)

	// "start" sorts first; the rest alphabetical.
	start := finch[0]
	assert.Equal(t, "start", start.ID)
	assert.Equal(t, "mrs_finch", start.Character)
	assert.Equal(t, "Hello, dear.", start.Text())
	require.Len(t, start.Choices, 2)
	assert.Equal(t, "iris", start.Choices[0].Next)
	// Option without next ends the conversation.
	assert.Equal(t, ExitNode, start.Choices[1].Next)

	iris := finch[1]
	assert.Equal(t, "iris", iris.ID)
	// A legacy trust number becomes both a gate and an effect.
	require.NotNil(t, iris.Conditions)
	require.NotNil(t, iris.Conditions.TrustMin)
	assert.Equal(t, 10, *iris.Conditions.TrustMin)
	assert.Equal(t, "mrs_finch", iris.Conditions.TrustOf)
	require.NotNil(t, iris.Effects)
	assert.Equal(t, 10, iris.Effects.TrustDelta)

	// A free-text clue becomes a stable slug id plus display text.
	clueID := iris.Effects.UnlockClue
	assert.Equal(t, "mrs_finch_saw_a_shadow_figure_in_iris_s_basement", clueID)
	assert.Equal(t, "Mrs. Finch saw a 'shadow figure' in Iris's basement", clueText[clueID])
}

func TestMigrateLegacy_MalformedInput(t *testing.T) {
	_, _, err := MigrateLegacy([]byte(`{"broken":`))
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "a_shadow_figure", Slugify("A 'shadow figure'!"))
	assert.Equal(t, "bus_ticket_stub", Slugify("Bus ticket stub"))
}
