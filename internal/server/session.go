package server

import (
	"encoding/json"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wallwar/wallwar-server/internal/game"
	"github.com/wallwar/wallwar-server/internal/game/rules"
	"go.uber.org/zap"
)

const sendBufferSize = 256

// noticeEvents are forwarded to the client as notice messages.
var noticeEvents = []rules.EventType{rules.EventPointLost, rules.EventGameOver}

// Session is one browser connection playing one game against the computer.
// It is the engine's Presenter and Scheduler: batches and snapshots are
// forwarded to the client, and timers stop firing once the session closes.
type Session struct {
	id     string
	server *Server
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	logger *zap.Logger
	engine *game.Engine

	// bus handles, released by the read pump on exit
	handles []int

	closeOnce sync.Once
}

func (s *Session) ID() string { return s.id }

// Present forwards a batch; the client answers with one movement_complete per movement.
func (s *Session) Present(batch game.Batch) {
	s.write(OutboundMessage{Type: MsgBatch, Data: batch})
}

// Render forwards the snapshot with the computer's face-down cards hidden.
func (s *Session) Render(snapshot game.Snapshot) {
	s.write(OutboundMessage{Type: MsgState, Data: snapshot.ForViewer(rules.SidePlayer)})
}

func (s *Session) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		select {
		case <-s.done:
			return
		default:
		}
		s.guard("scheduled action", fn)
	})
}

func (s *Session) write(msg OutboundMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to encode message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.send <- data:
	case <-s.done:
	default:
		// never drop a batch silently
		s.logger.Warn("send buffer full, closing session")
		s.Close()
	}
}

func (s *Session) subscribe() {
	bus := s.engine.Events()
	for _, eventType := range noticeEvents {
		s.handles = append(s.handles, bus.SubscribeTyped(eventType, s.notice))
	}
}

// unsubscribe must not run inside a listener; the bus holds its lock while publishing.
func (s *Session) unsubscribe() {
	bus := s.engine.Events()
	for _, handle := range s.handles {
		bus.Unsubscribe(handle)
	}
	s.handles = nil
}

func (s *Session) notice(ev rules.Event) {
	s.write(OutboundMessage{Type: MsgNotice, Data: NoticeData{
		Event:  strings.ToLower(string(ev.Type)),
		Side:   ev.Side.String(),
		Amount: ev.Amount,
		Turn:   ev.Turn,
	}})
}

// Close stops both pumps; the write pump sends the close frame and drops
// the connection. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.server.remove(s)
		if s.server.recorder != nil && s.engine != nil {
			s.server.recorder.ClearReplay(s.engine.GameID())
		}
		s.logger.Info("session closed")
	})
}

// guard runs fn and turns a panic into a closed session instead of a dead process.
func (s *Session) guard(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in session",
				zap.String("in", what),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			s.write(OutboundMessage{Type: MsgError, Data: ErrorData{Message: "internal error"}})
			s.Close()
		}
	}()
	fn()
}

func (s *Session) readPump() {
	defer func() {
		s.unsubscribe()
		s.Close()
	}()

	cfg := s.server.cfg.Server.WebSocket
	s.conn.SetReadLimit(cfg.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		s.guard("message", func() { s.handleMessage(message) })

		select {
		case <-s.done:
			return
		default:
		}
	}
}

func (s *Session) writePump() {
	cfg := s.server.cfg.Server.WebSocket
	ticker := time.NewTicker(cfg.PongTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		s.conn.Close()
		s.Close()
	}()

	for {
		select {
		case message := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (s *Session) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		s.sendError("invalid message format")
		return
	}

	switch envelope.Type {
	case MsgStartGame:
		var msg StartGameMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
			s.sendError("invalid start_game message")
			return
		}
		first, err := s.server.firstSide(msg.First)
		if err != nil {
			s.sendError(err.Error())
			return
		}
		s.result(MsgStartGame, s.engine.StartGame(first))

	case MsgDraw:
		s.result(MsgDraw, s.engine.RequestDraw(rules.SidePlayer))

	case MsgSelectSlot:
		var msg SelectSlotMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
			s.sendError("invalid select_slot message")
			return
		}
		s.result(MsgSelectSlot, s.engine.SelectAttackTarget(rules.SlotID(msg.SlotID)))

	case MsgEndTurn:
		s.result(MsgEndTurn, s.engine.RequestEndTurn())

	case MsgMovementComplete:
		var msg MovementCompleteMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
			s.sendError("invalid movement_complete message")
			return
		}
		// stale and repeated completions are normal after reconnects; no reply
		s.engine.NotifyMovementComplete(msg.BatchID, msg.MovementID)

	case MsgReplay:
		var msg ReplayMsg
		if err := json.Unmarshal(envelope.Raw, &msg); err != nil {
			s.sendError("invalid replay message")
			return
		}
		s.replay(msg)

	default:
		s.sendError("unknown message type: " + envelope.Type)
	}
}

// replay navigates the game's recording. Computer cards are revealed once the game is over.
func (s *Session) replay(msg ReplayMsg) {
	r := s.engine.Replay()
	if r == nil {
		s.sendError("replay recording is disabled")
		return
	}

	action := strings.ToLower(strings.TrimSpace(msg.Action))
	if action == "" {
		action = ReplayLast
	}
	var (
		state game.Snapshot
		found bool
	)
	switch action {
	case ReplayStart:
		r.Start()
		state, found = r.Next()
	case ReplayNext:
		state, found = r.Next()
	case ReplayPrevious:
		state, found = r.Previous()
	case ReplaySkip:
		state, found = r.Skip(msg.Count)
	case ReplayAt:
		state, found = r.StateAt(msg.Index)
	case ReplayLast:
		state, found = r.Last()
	default:
		s.sendError("unknown replay action: " + msg.Action)
		return
	}

	_, over := s.engine.Winner()
	s.write(OutboundMessage{Type: MsgReplay, Data: replayData(r, action, state, found, over)})
}

func (s *Session) result(command string, accepted bool) {
	if !accepted {
		s.logger.Debug("command not accepted", zap.String("command", command))
	}
	s.write(OutboundMessage{Type: MsgResult, Data: ResultData{Command: command, Accepted: accepted}})
}

func (s *Session) sendError(message string) {
	s.write(OutboundMessage{Type: MsgError, Data: ErrorData{Message: message}})
}
