package game

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplewoodlane/engine/pkg/clock"
	"github.com/maplewoodlane/engine/pkg/conditions"
	"github.com/maplewoodlane/engine/pkg/content"
	"github.com/maplewoodlane/engine/pkg/dialogue"
	"github.com/maplewoodlane/engine/pkg/effects"
	"github.com/maplewoodlane/engine/pkg/ending"
	"github.com/maplewoodlane/engine/pkg/event"
	"github.com/maplewoodlane/engine/pkg/photo"
	"github.com/maplewoodlane/engine/pkg/trust"
)

func intPtr(i int) *int { return &i }

func testPack() *content.Pack {
	return &content.Pack{
		Name: "lane_test",
		Characters: []trust.Character{
			{ID: "mrs_finch", Name: "Mrs. Finch", InitialTrust: 40,
				Personality: trust.Personality{Forgiveness: 1, Memory: 0, Emotionality: 0.5}},
			{ID: "camille", Name: "Camille", InitialTrust: 30,
				Personality: trust.Personality{Forgiveness: 0.5, Memory: 0.5, Emotionality: 0.5}},
		},
		Dialogues: map[string][]*dialogue.Node{
			"mrs_finch": {
				{ID: "intro", Lines: []string{"Evening, dear."}, Choices: []dialogue.Choice{
					{Text: "Ask about Iris", Next: "iris",
						Effects: &effects.Effects{TrustDelta: 5}},
					{Text: "Leave", Next: dialogue.ExitNode},
				}},
				{ID: "iris", Lines: []string{"Her journal is still on the porch."},
					Effects: &effects.Effects{UnlockClue: "iris_journal"},
					Choices: []dialogue.Choice{{Text: "Thank her"}}},
				{ID: "garden_idle", Lines: []string{"Mind the roses."}},
			},
			"camille": {
				{ID: "doorstep", Lines: []string{"I don't talk to reporters."}},
			},
		},
		Schedules: map[string]map[string]event.ScheduleEntry{
			"mrs_finch": {
				"morning": {Location: "garden", Activity: "pruning", DialogueNode: "garden_idle"},
			},
		},
		Events: []*event.WorldEvent{
			{ID: "basement_flicker", StartTime: 1230, DailyReset: true,
				Effects: &effects.Effects{UnlockClue: "basement_light"}},
		},
		Triggers: []*dialogue.GlobalTrigger{
			{ID: "camille_opens_up", OneTime: true,
				When:           &conditions.Requirements{Clues: []string{"iris_journal"}},
				StartCharacter: "camille", StartNode: "doorstep"},
		},
		Clues: map[string]string{
			"iris_journal":   "Iris kept a journal",
			"basement_light": "A light in the empty basement",
			"bus_ticket":     "A bus ticket stub",
		},
		KeyClues:    []string{"bus_ticket"},
		RedHerrings: []string{"garden shears"},
		PhotoRules: []photo.AnalysisRule{
			{Subject: "ticket_stub", MinQuality: 1, Clue: "bus_ticket"},
		},
		Endings: []ending.Ending{
			{Name: "case_closed", Criteria: &ending.Criteria{
				Requirements: &conditions.Requirements{Clues: []string{"bus_ticket"}}}},
			{Name: "cold_case"},
		},
	}
}

func newTestGame(t *testing.T) *Game {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	g, err := New(testPack(), rand.New(rand.NewSource(11)), logger)
	require.NoError(t, err)
	return g
}

func TestNew_RejectsInvalidPack(t *testing.T) {
	p := testPack()
	p.Endings = p.Endings[:1] // conditional last ending
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	_, err := New(p, nil, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid content pack")
}

func TestAdvance_EventsAndRoutines(t *testing.T) {
	g := newTestGame(t)

	// Past 06:00 the morning routine is pushed.
	fired := g.Advance(400)
	assert.Empty(t, fired)
	entry, ok := g.CurrentSchedule("mrs_finch")
	require.True(t, ok)
	assert.Equal(t, "garden", entry.Location)
	assert.Equal(t, clock.Morning, g.TimeOfDay())

	fired = g.Advance(830) // 20:30
	require.Len(t, fired, 1)
	assert.Equal(t, "basement_flicker", fired[0].EventID)
	assert.True(t, g.GameState().HasClue("basement_light"))
	assert.Equal(t, clock.Night, g.TimeOfDay())
}

func TestDialogue_EffectsAndTrigger(t *testing.T) {
	g := newTestGame(t)

	prompt := g.StartDialogue("mrs_finch")
	require.NotNil(t, prompt)
	assert.Equal(t, "intro", prompt.NodeID)
	require.Len(t, prompt.Choices, 2)

	// Choosing applies trust and moves to the next node.
	prompt, err := g.Choose(0)
	require.NoError(t, err)
	require.NotNil(t, prompt)
	assert.Equal(t, "iris", prompt.NodeID)
	assert.Equal(t, 45, g.Trust("mrs_finch"))
	assert.True(t, g.GameState().HasClue("iris_journal"))
	assert.Equal(t, []string{"Iris kept a journal"}, g.ClueLog())

	// Ending the conversation fires the global trigger, which force-starts
	// Camille's dialogue now that the journal clue exists.
	prompt, err = g.Choose(0)
	require.NoError(t, err)
	require.NotNil(t, prompt)
	assert.Equal(t, "camille", prompt.CharacterID)
	assert.Equal(t, "doorstep", prompt.NodeID)
}

func TestTakePhoto_AnalysisUnlocksClue(t *testing.T) {
	g := newTestGame(t)

	p, err := g.TakePhoto(photo.TypeEvidence, "ticket_stub", "under the porch mat")
	require.NoError(t, err)
	assert.Equal(t, photo.TypeEvidence, p.Type)
	assert.True(t, g.GameState().HasClue("bus_ticket"))
}

func TestShowEvidence_RequiresFoundClue(t *testing.T) {
	g := newTestGame(t)

	g.ShowEvidence("mrs_finch", "bus_ticket")
	assert.False(t, g.GameState().EvidenceShownTo("mrs_finch"))

	_, err := g.TakePhoto(photo.TypeEvidence, "ticket_stub", "")
	require.NoError(t, err)
	g.ShowEvidence("mrs_finch", "bus_ticket")
	assert.True(t, g.GameState().EvidenceShownTo("mrs_finch"))
}

func TestResolveEnding(t *testing.T) {
	g := newTestGame(t)
	g.SetTheory("She bought a ticket and left.")

	res := g.ResolveEnding()
	assert.Equal(t, "cold_case", res.Name)

	_, err := g.TakePhoto(photo.TypeEvidence, "ticket_stub", "")
	require.NoError(t, err)
	res = g.ResolveEnding()
	assert.Equal(t, "case_closed", res.Name)
	assert.Equal(t, 1, res.Stats.CluesFound)
	assert.Equal(t, 3, res.Stats.TotalClues)
}

func TestNotesAndAccusations(t *testing.T) {
	g := newTestGame(t)

	require.NoError(t, g.AddNote("camille", "Won't open the door past dusk."))
	require.Len(t, g.Notes("camille"), 1)
	assert.Error(t, g.AddNote("nobody", "x"))

	assert.True(t, g.Accuse("camille"))
	assert.False(t, g.Accuse("camille"))
}

func TestOnNotify(t *testing.T) {
	g := newTestGame(t)

	var results []*effects.Result
	g.OnNotify(func(r *effects.Result) { results = append(results, r) })

	g.StartDialogue("mrs_finch")
	_, err := g.Choose(0) // +5 trust, then node unlocks the journal clue
	require.NoError(t, err)
	require.NotEmpty(t, results)
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	g := newTestGame(t)

	g.MoveTo("porch")
	g.Advance(1230) // basement_flicker fires
	g.StartDialogueAt("mrs_finch", "intro")
	_, err := g.Choose(0) // showing "iris", trust 45, journal clue
	require.NoError(t, err)
	g.SetTheory("Something about the basement.")

	snap := g.Snapshot()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var loaded SavedSession
	require.NoError(t, json.Unmarshal(raw, &loaded))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	g2, err := New(testPack(), rand.New(rand.NewSource(11)), logger)
	require.NoError(t, err)

	prompt, err := g2.Restore(&loaded)
	require.NoError(t, err)

	// The in-progress conversation resumes at the same node without
	// re-applying its effects.
	require.NotNil(t, prompt)
	assert.Equal(t, "iris", prompt.NodeID)
	assert.Equal(t, 45, g2.Trust("mrs_finch"))
	assert.Equal(t, 1230, g2.Minute())
	assert.Equal(t, "porch", g2.Position())
	assert.Equal(t, "Something about the basement.", g2.GameState().Theory)
	assert.True(t, g2.GameState().HasClue("iris_journal"))
	assert.Equal(t, g.ID(), g2.ID())

	// The daily event stays triggered for today after restore.
	ev := g2.Advance(0)
	assert.Empty(t, ev)
}

func TestRestore_WrongPack(t *testing.T) {
	g := newTestGame(t)
	snap := g.Snapshot()
	snap.PackName = "someone_elses_case"
	_, err := g.Restore(snap)
	assert.Error(t, err)
}
