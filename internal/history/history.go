package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"perch/internal/db"

	"github.com/openai/openai-go/v3/responses"
)

type Store struct {
	q *db.Queries
}

func NewStore(database *db.DB) *Store {
	return &Store{q: db.New(database.Conn())}
}

func (s *Store) EnsureSession(ctx context.Context, sessionID, channel string) error {
	return s.q.UpsertSession(ctx, db.UpsertSessionParams{
		ID:      sessionID,
		Channel: channel,
	})
}

func (s *Store) SaveTurn(ctx context.Context, sessionID, userMessage string, resp *responses.Response) error {
	raw := resp.RawJSON()
	return s.q.InsertTurn(ctx, db.InsertTurnParams{
		SessionID:    sessionID,
		UserMessage:  userMessage,
		ResponseJson: raw,
		Model:        sql.NullString{String: resp.Model, Valid: resp.Model != ""},
	})
}

// Session is a summary row for the gateway's session listing.
type Session struct {
	ID        string `json:"id"`
	Channel   string `json:"channel"`
	CreatedAt string `json:"created_at"`
}

// TurnSummary is one stored turn without the raw response payload.
type TurnSummary struct {
	ID          int64  `json:"id"`
	UserMessage string `json:"user_message"`
	Model       string `json:"model,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.q.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	sessions := make([]Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, Session{ID: row.ID, Channel: row.Channel, CreatedAt: row.CreatedAt})
	}
	return sessions, nil
}

func (s *Store) GetSession(ctx context.Context, sessionID string) (Session, []TurnSummary, error) {
	row, err := s.q.GetSession(ctx, sessionID)
	if err != nil {
		return Session{}, nil, err
	}
	turns, err := s.q.GetTurnsBySession(ctx, sessionID)
	if err != nil {
		return Session{}, nil, err
	}
	summaries := make([]TurnSummary, 0, len(turns))
	for _, t := range turns {
		summaries = append(summaries, TurnSummary{
			ID:          t.ID,
			UserMessage: t.UserMessage,
			Model:       t.Model.String,
			CreatedAt:   t.CreatedAt,
		})
	}
	return Session{ID: row.ID, Channel: row.Channel, CreatedAt: row.CreatedAt}, summaries, nil
}

func (s *Store) LoadInputHistory(ctx context.Context, sessionID string) ([]responses.ResponseInputItemUnionParam, error) {
	turns, err := s.q.GetTurnsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var items []responses.ResponseInputItemUnionParam
	for _, turn := range turns {
		// Add user message.
		items = append(items, responses.ResponseInputItemParamOfMessage(turn.UserMessage, "user"))

		// Deserialize the stored response.
		var resp responses.Response
		if err := json.Unmarshal([]byte(turn.ResponseJson), &resp); err != nil {
			slog.Warn("skipping turn with invalid response JSON", "turn_id", turn.ID, "error", err)
			continue
		}

		// Convert output items to input items.
		items = append(items, OutputToInput(resp.Output)...)
	}

	return items, nil
}

// OutputToInput converts response output items into input item params
// for the next API call. Each output type's ToParam() does a lossless
// round-trip via RawJSON.
func OutputToInput(output []responses.ResponseOutputItemUnion) []responses.ResponseInputItemUnionParam {
	var items []responses.ResponseInputItemUnionParam
	for _, item := range output {
		switch item.Type {
		case "message":
			v := item.AsMessage().ToParam()
			items = append(items, responses.ResponseInputItemUnionParam{OfOutputMessage: &v})
		case "function_call":
			v := item.AsFunctionCall().ToParam()
			items = append(items, responses.ResponseInputItemUnionParam{OfFunctionCall: &v})
		case "reasoning":
			v := item.AsReasoning().ToParam()
			items = append(items, responses.ResponseInputItemUnionParam{OfReasoning: &v})
		case "web_search_call":
			v := item.AsWebSearchCall().ToParam()
			items = append(items, responses.ResponseInputItemUnionParam{OfWebSearchCall: &v})
		default:
			slog.Debug("skipping unknown output item type", "type", item.Type)
		}
	}
	return items
}
