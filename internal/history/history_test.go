package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"perch/internal/db"

	"github.com/openai/openai-go/v3/responses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "perch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.Migrate())
	return NewStore(database)
}

func sampleResponse(t *testing.T) *responses.Response {
	t.Helper()
	raw := `{
		"id": "resp_1",
		"model": "gemini-2.5-flash",
		"output": [
			{
				"type": "message",
				"id": "msg_1",
				"role": "assistant",
				"status": "completed",
				"content": [{"type": "output_text", "text": "Hello there.", "annotations": []}]
			}
		]
	}`
	var r responses.Response
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return &r
}

func TestEnsureSessionIsIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureSession(ctx, "sess-1", "default"))
	require.NoError(t, s.EnsureSession(ctx, "sess-1", "default"))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "sess-1", sessions[0].ID)
	assert.Equal(t, "default", sessions[0].Channel)
}

func TestSaveTurnAndLoadInputHistory(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureSession(ctx, "sess-1", "default"))
	require.NoError(t, s.SaveTurn(ctx, "sess-1", "Say hello.", sampleResponse(t)))

	items, err := s.LoadInputHistory(ctx, "sess-1")
	require.NoError(t, err)
	// One user message plus the assistant's replayed output.
	require.Len(t, items, 2)

	session, turns, err := s.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)
	require.Len(t, turns, 1)
	assert.Equal(t, "Say hello.", turns[0].UserMessage)
	assert.Equal(t, "gemini-2.5-flash", turns[0].Model)
}

func TestLoadInputHistorySkipsCorruptTurns(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureSession(ctx, "sess-1", "default"))
	require.NoError(t, s.q.InsertTurn(ctx, db.InsertTurnParams{
		SessionID:    "sess-1",
		UserMessage:  "broken",
		ResponseJson: "{not json",
	}))

	items, err := s.LoadInputHistory(ctx, "sess-1")
	require.NoError(t, err)
	// The user message survives; the unparseable response is dropped.
	assert.Len(t, items, 1)
}

func TestGetSessionMissing(t *testing.T) {
	s := newStore(t)

	_, _, err := s.GetSession(context.Background(), "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestOutputToInputRoundTripsKnownTypes(t *testing.T) {
	resp := sampleResponse(t)
	items := OutputToInput(resp.Output)
	require.Len(t, items, 1)
	assert.NotNil(t, items[0].OfOutputMessage)
}
