package server

import (
	"encoding/json"

	"github.com/wallwar/wallwar-server/internal/game"
)

// Client-to-server message types.
const (
	MsgStartGame        = "start_game"
	MsgDraw             = "draw"
	MsgSelectSlot       = "select_slot"
	MsgEndTurn          = "end_turn"
	MsgMovementComplete = "movement_complete"
	MsgReplay           = "replay"
)

// Server-to-client message types.
const (
	MsgWelcome = "welcome"
	MsgState   = "state"
	MsgBatch   = "batch"
	MsgResult  = "result"
	MsgError   = "error"
	MsgNotice  = "notice"
)

// Replay navigation actions.
const (
	ReplayStart    = "start"
	ReplayNext     = "next"
	ReplayPrevious = "previous"
	ReplaySkip     = "skip"
	ReplayAt       = "at"
	ReplayLast     = "last"
)

// InboundEnvelope routes a client message by type and keeps the raw payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	var t struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// StartGameMsg starts the game. First is "player", "computer" or empty for the configured default.
type StartGameMsg struct {
	First string `json:"first"`
}

type SelectSlotMsg struct {
	SlotID int `json:"slot_id"`
}

type MovementCompleteMsg struct {
	BatchID    string `json:"batch_id"`
	MovementID int    `json:"movement_id"`
}

// ReplayMsg steps through the recorded states of the session's game.
// An empty action means "last".
type ReplayMsg struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
	Index  int    `json:"index"`
}

// OutboundMessage wraps every server-to-client payload.
type OutboundMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type WelcomeData struct {
	SessionID string   `json:"session_id"`
	GameID    string   `json:"game_id"`
	Viewer    string   `json:"viewer"`
	Commands  []string `json:"commands"`
}

// ResultData reports whether a command was accepted by the engine.
type ResultData struct {
	Command  string `json:"command"`
	Accepted bool   `json:"accepted"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// ReplayData answers a replay request. State is absent when the cursor ran off either end.
type ReplayData struct {
	GameID  string         `json:"game_id"`
	Action  string         `json:"action"`
	Size    int            `json:"size"`
	Dropped int            `json:"dropped"`
	State   *game.Snapshot `json:"state,omitempty"`
}

// NoticeData carries a game event the client announces, such as a lost point.
type NoticeData struct {
	Event  string `json:"event"`
	Side   string `json:"side"`
	Amount int    `json:"amount"`
	Turn   int    `json:"turn"`
}
