package state

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAddClue_Idempotent(t *testing.T) {
	gs := New()

	assert.True(t, gs.AddClue("iris_journal"))
	assert.False(t, gs.AddClue("iris_journal"))
	assert.True(t, gs.AddClue("torn_photograph"))
	assert.False(t, gs.AddClue(""))

	assert.Equal(t, []string{"iris_journal", "torn_photograph"}, gs.Clues)
	assert.True(t, gs.HasClue("iris_journal"))
	assert.False(t, gs.HasClue("bus_ticket"))
}

func TestPhotos(t *testing.T) {
	gs := New()
	assert.False(t, gs.HasPhotoType("anomaly"))

	gs.AddPhoto(Photo{ID: uuid.New(), Type: "anomaly", Subject: "basement window", Quality: 72})
	gs.AddPhoto(Photo{ID: uuid.New(), Type: "anomaly", Subject: "hedge", Quality: 33})

	assert.True(t, gs.HasPhotoType("anomaly"))
	assert.False(t, gs.HasPhotoType("portrait"))
	assert.Len(t, gs.Photos, 2)
}

func TestVars(t *testing.T) {
	gs := New()
	assert.Equal(t, "", gs.Var("met_finch"))
	gs.SetVar("met_finch", "true")
	assert.Equal(t, "true", gs.Var("met_finch"))
}

func TestItems(t *testing.T) {
	gs := New()
	assert.True(t, gs.AddItem("spare key"))
	assert.False(t, gs.AddItem("spare key"))
	assert.False(t, gs.AddItem(""))
	assert.Equal(t, []string{"spare key"}, gs.Items)
}

func TestAccusations(t *testing.T) {
	gs := New()
	assert.False(t, gs.HasAccused(""))

	assert.True(t, gs.Accuse("mr_arnold"))
	assert.False(t, gs.Accuse("mr_arnold"))

	assert.True(t, gs.HasAccused(""))
	assert.True(t, gs.HasAccused("mr_arnold"))
	assert.False(t, gs.HasAccused("camille"))
}

func TestEvidenceShown(t *testing.T) {
	gs := New()
	assert.False(t, gs.EvidenceShownTo(""))

	gs.ShowEvidence("mrs_finch", "iris_journal")
	gs.ShowEvidence("mrs_finch", "iris_journal") // duplicate ignored
	gs.ShowEvidence("mrs_finch", "torn_photograph")

	assert.True(t, gs.EvidenceShownTo("mrs_finch"))
	assert.False(t, gs.EvidenceShownTo("mr_arnold"))
	assert.True(t, gs.EvidenceShownTo(""))
	assert.Len(t, gs.EvidenceShown["mrs_finch"], 2)
}
