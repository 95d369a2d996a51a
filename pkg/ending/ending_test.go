package ending

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplewoodlane/engine/pkg/conditions"
)

func testResolver() *Resolver {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewResolver(DefaultEndings, 20, DefaultKeyClues, DefaultRedHerrings, logger)
}

// seventeenClues is an 85% find rate against a 20-clue pack, including
// every key clue.
func seventeenClues() []string {
	clues := append([]string{}, DefaultKeyClues...)
	for i := 0; i < 14; i++ {
		clues = append(clues, fmt.Sprintf("filler_%d", i))
	}
	return clues
}

func TestResolve_FullTruth(t *testing.T) {
	r := testResolver()
	res := r.Resolve(Snapshot{
		Clues:      seventeenClues(),
		PhotoTypes: []string{"portrait", "location", "evidence"},
		Trust:      map[string]int{"mrs_finch": 65, "mr_arnold": 45, "camille": 35},
		Theory:     "Iris took the late bus out of town. The letter explains why.",
	})
	assert.Equal(t, "full_truth", res.Name)
	assert.Equal(t, 85, res.Stats.CluePercent)
	assert.Equal(t, 17, res.Stats.CluesFound)
	assert.Contains(t, res.Epilogues, "mrs_finch")
}

func TestResolve_FullTruth_FailsEachLeg(t *testing.T) {
	r := testResolver()
	base := func() Snapshot {
		return Snapshot{
			Clues:      seventeenClues(),
			PhotoTypes: []string{"portrait", "location", "evidence"},
			Trust:      map[string]int{"mrs_finch": 65, "mr_arnold": 45, "camille": 35},
		}
	}

	low := base()
	low.Clues = low.Clues[:10] // 50%, still has key clues
	assert.NotEqual(t, "full_truth", r.Resolve(low).Name)

	noPhoto := base()
	noPhoto.PhotoTypes = []string{"portrait", "location"}
	assert.NotEqual(t, "full_truth", r.Resolve(noPhoto).Name)

	coldArnold := base()
	coldArnold.Trust["mr_arnold"] = 39
	assert.NotEqual(t, "full_truth", r.Resolve(coldArnold).Name)
}

func TestResolve_CommunitySilence(t *testing.T) {
	r := testResolver()
	res := r.Resolve(Snapshot{
		Clues: []string{"basement_light"},
		Trust: map[string]int{"mrs_finch": 15, "jake_lila": 10, "mr_arnold": 18},
	})
	assert.Equal(t, "community_silence", res.Name)
	assert.Equal(t, 14, res.Stats.AverageTrust)
}

func TestResolve_CommunitySilence_BlockedByKeyClue(t *testing.T) {
	r := testResolver()
	res := r.Resolve(Snapshot{
		Clues: []string{"bus_ticket"},
		Trust: map[string]int{"mrs_finch": 15, "jake_lila": 10, "mr_arnold": 18},
	})
	assert.NotEqual(t, "community_silence", res.Name)
}

func TestResolve_SupernaturalFromTheory(t *testing.T) {
	r := testResolver()
	res := r.Resolve(Snapshot{
		Trust:  map[string]int{"mrs_finch": 50},
		Theory: "A ghost, I'm sure of it. The house is haunted and the shadow figure proves it.",
	})
	assert.Equal(t, "supernatural", res.Name)
	assert.True(t, res.Stats.Theory.SupernaturalFocus)
	assert.Equal(t, 3, res.Stats.Theory.SupernaturalMentions)
}

func TestResolve_PriorityOrder(t *testing.T) {
	r := testResolver()
	// Satisfies both full_truth and supernatural: declaration order wins.
	res := r.Resolve(Snapshot{
		Clues:      seventeenClues(),
		PhotoTypes: []string{"portrait", "location", "evidence"},
		Trust:      map[string]int{"mrs_finch": 65, "mr_arnold": 45, "camille": 35},
		Theory:     "A ghost haunted the cursed basement.",
	})
	assert.Equal(t, "full_truth", res.Name)
}

func TestResolve_FalseTrail(t *testing.T) {
	r := testResolver()
	res := r.Resolve(Snapshot{
		Trust:  map[string]int{"mrs_finch": 50, "camille": 50},
		Theory: "It all comes back to the garden shears in the shed.",
	})
	assert.Equal(t, "false_trail", res.Name)
	assert.True(t, res.Stats.Theory.FollowedRedHerrings)
}

func TestResolve_MisguidedFallback(t *testing.T) {
	r := testResolver()
	// High trust, a key clue (blocks community_silence), mundane theory,
	// nowhere near full truth.
	res := r.Resolve(Snapshot{
		Clues:  []string{"bus_ticket"},
		Trust:  map[string]int{"mrs_finch": 50, "camille": 50},
		Theory: "Maybe she just needed to leave.",
	})
	assert.Equal(t, "misguided_conclusion", res.Name)
}

func TestResolve_Totality(t *testing.T) {
	r := testResolver()
	rng := rand.New(rand.NewSource(42))

	cluePool := append(seventeenClues(), "filler_14", "filler_15", "filler_16")
	theories := []string{
		"",
		"A ghost did it. The spirit never left. Haunted, all of it.",
		"The garden shears. But that can't be right.",
		"She took the bus. The journal says where.",
	}
	characters := []string{"mrs_finch", "mr_arnold", "camille", "jake_lila"}

	for i := 0; i < 1000; i++ {
		snap := Snapshot{Trust: map[string]int{}, Theory: theories[rng.Intn(len(theories))]}
		for _, id := range characters {
			snap.Trust[id] = rng.Intn(101)
		}
		for _, clue := range cluePool {
			if rng.Intn(2) == 0 {
				snap.Clues = append(snap.Clues, clue)
			}
		}
		for _, pt := range []string{"portrait", "location", "evidence"} {
			if rng.Intn(2) == 0 {
				snap.PhotoTypes = append(snap.PhotoTypes, pt)
			}
		}

		res := r.Resolve(snap)
		require.NotEmpty(t, res.Name, "snapshot %d resolved to nothing", i)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, testResolver().Validate())

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	empty := NewResolver(nil, 20, nil, nil, logger)
	assert.Error(t, empty.Validate())

	noClues := NewResolver(DefaultEndings, 0, nil, nil, logger)
	assert.Error(t, noClues.Validate())

	gatedLast := NewResolver([]Ending{
		{Name: "only", Criteria: &Criteria{CluePercentMin: intPtr(50)}},
	}, 20, nil, nil, logger)
	err := gatedLast.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unconditional")
}

func TestCriteria_IsUnconditional(t *testing.T) {
	assert.True(t, (*Criteria)(nil).IsUnconditional())
	assert.True(t, (&Criteria{}).IsUnconditional())
	assert.True(t, (&Criteria{Requirements: &conditions.Requirements{}}).IsUnconditional())
	assert.False(t, (&Criteria{AverageTrustMax: intPtr(25)}).IsUnconditional())
	assert.False(t, (&Criteria{ForbiddenClues: []string{"x"}}).IsUnconditional())
}

func TestAnalyzeTheory(t *testing.T) {
	sig := AnalyzeTheory("The GHOST and the spirit. A ghost, again.", nil)
	assert.True(t, sig.SupernaturalFocus)
	assert.Equal(t, 3, sig.SupernaturalMentions)

	sig = AnalyzeTheory("One ghost is not a pattern.", nil)
	assert.False(t, sig.SupernaturalFocus)

	sig = AnalyzeTheory("She left, but that can't be the whole story.", nil)
	assert.True(t, sig.Contradictory)

	sig = AnalyzeTheory("The Garden Shears did it.", []string{"garden shears"})
	assert.True(t, sig.FollowedRedHerrings)

	sig = AnalyzeTheory("", []string{"garden shears"})
	assert.False(t, sig.SupernaturalFocus)
	assert.False(t, sig.Contradictory)
	assert.False(t, sig.FollowedRedHerrings)
}
