package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doAction(t *testing.T, handler *PlayHandler, id uuid.UUID, action ActionRequest) (*httptest.ResponseRecorder, *ActionResponse) {
	t.Helper()
	body, err := json.Marshal(action)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/session/"+id.String()+"/action", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		return rr, nil
	}
	var resp ActionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return rr, &resp
}

func TestPlayHandler_DialogueAcrossRequests(t *testing.T) {
	mock := setupMock(t)
	session := createSession(t, mock)
	handler := NewPlayHandler(mock, testLogger())

	rr, resp := doAction(t, handler, session.ID, ActionRequest{
		Action: "start_dialogue", Character: "mrs_finch",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, resp.Prompt)
	assert.Equal(t, "intro", resp.Prompt.NodeID)
	assert.Len(t, resp.Prompt.Choices, 2)

	// The conversation survives the round trip through storage.
	choice := 0
	rr, resp = doAction(t, handler, session.ID, ActionRequest{Action: "choose", Choice: &choice})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, resp.Prompt)
	assert.Equal(t, "iris", resp.Prompt.NodeID)
	assert.Equal(t, 45, resp.Trust["mrs_finch"])
	assert.Contains(t, resp.Clues, "Iris kept a journal")

	rr, resp = doAction(t, handler, session.ID, ActionRequest{Action: "end_dialogue"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, resp.Prompt)
	assert.Equal(t, 45, resp.Trust["mrs_finch"], "effects persist after the conversation")
}

func TestPlayHandler_AdvanceFiresEvents(t *testing.T) {
	mock := setupMock(t)
	session := createSession(t, mock)
	handler := NewPlayHandler(mock, testLogger())

	rr, resp := doAction(t, handler, session.ID, ActionRequest{Action: "advance", Minutes: 1230})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "basement_flicker", resp.Events[0].EventID)
	assert.Equal(t, 1230, resp.Minute)
	assert.Equal(t, "night", resp.TimeOfDay)
	assert.Contains(t, resp.Clues, "A light in the empty basement")
}

func TestPlayHandler_PhotoTheoryEnding(t *testing.T) {
	mock := setupMock(t)
	session := createSession(t, mock)
	handler := NewPlayHandler(mock, testLogger())

	rr, resp := doAction(t, handler, session.ID, ActionRequest{
		Action: "take_photo", PhotoType: "evidence", Subject: "ticket_stub",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, resp.Photo)
	assert.Contains(t, resp.Clues, "A bus ticket stub")

	rr, _ = doAction(t, handler, session.ID, ActionRequest{
		Action: "set_theory", Text: "She took the bus out of town.",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr, resp = doAction(t, handler, session.ID, ActionRequest{Action: "resolve_ending"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, resp.Ending)
	assert.Equal(t, "case_closed", resp.Ending.Name)
}

func TestPlayHandler_NotesAndAccusations(t *testing.T) {
	mock := setupMock(t)
	session := createSession(t, mock)
	handler := NewPlayHandler(mock, testLogger())

	rr, _ := doAction(t, handler, session.ID, ActionRequest{
		Action: "add_note", Character: "mrs_finch", Text: "Porch light off at nine.",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr, _ = doAction(t, handler, session.ID, ActionRequest{Action: "accuse", Character: "mrs_finch"})
	require.Equal(t, http.StatusOK, rr.Code)

	// Accusation persisted to the stored session.
	stored, err := mock.LoadSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, stored.GameState.HasAccused("mrs_finch"))
	assert.Len(t, stored.Trust.Notes["mrs_finch"], 1)
}

func TestPlayHandler_Errors(t *testing.T) {
	mock := setupMock(t)
	session := createSession(t, mock)
	handler := NewPlayHandler(mock, testLogger())

	tests := []struct {
		name   string
		action ActionRequest
		status int
	}{
		{"unknown action", ActionRequest{Action: "dance"}, http.StatusBadRequest},
		{"advance without minutes", ActionRequest{Action: "advance"}, http.StatusBadRequest},
		{"choose with no dialogue", ActionRequest{Action: "choose", Choice: intPtr(0)}, http.StatusBadRequest},
		{"choose without index", ActionRequest{Action: "choose"}, http.StatusBadRequest},
		{"dialogue with unknown character", ActionRequest{Action: "start_dialogue", Character: "ghost"}, http.StatusBadRequest},
		{"photo with bad type", ActionRequest{Action: "take_photo", PhotoType: "selfie", Subject: "evan"}, http.StatusBadRequest},
		{"note for unknown character", ActionRequest{Action: "add_note", Character: "ghost", Text: "x"}, http.StatusBadRequest},
		{"accuse unknown character", ActionRequest{Action: "accuse", Character: "ghost"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, _ := doAction(t, handler, session.ID, tt.action)
			assert.Equal(t, tt.status, rr.Code)
		})
	}

	t.Run("unknown session", func(t *testing.T) {
		rr, _ := doAction(t, handler, uuid.New(), ActionRequest{Action: "end_dialogue"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("bad path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/session/"+session.ID.String(), bytes.NewReader([]byte(`{}`)))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/session/"+session.ID.String()+"/action", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func intPtr(i int) *int { return &i }
