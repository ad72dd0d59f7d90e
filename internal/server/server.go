package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wallwar/wallwar-server/internal/config"
	"github.com/wallwar/wallwar-server/internal/game"
	"github.com/wallwar/wallwar-server/internal/game/rules"
	"go.uber.org/zap"
)

// Server bridges browser clients to game engines over websockets.
// Every connection gets its own engine; there is no shared game state.
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	upgrader websocket.Upgrader
	strategy game.AttackStrategy
	recorder *game.ReplayRecorder

	mu         sync.RWMutex
	sessions   map[string]*Session
	httpServer *http.Server
}

// New validates the game settings and prepares the upgrader.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	strategy, err := game.LookupStrategy(cfg.Computer.Strategy)
	if err != nil {
		return nil, fmt.Errorf("computer strategy: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		strategy: strategy,
		sessions: make(map[string]*Session),
	}
	if cfg.Replay.Enabled {
		s.recorder = game.NewReplayRecorder(logger, cfg.Replay.MaxStates, cfg.Replay.MaxGames)
	}
	ws := cfg.Server.WebSocket
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  ws.ReadBufferSize,
		WriteBufferSize: ws.WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
	}
	return s, nil
}

// Handler serves the websocket endpoint, replay lookups and a health check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Server.WebSocket.Path, s.serveWS)
	mux.HandleFunc("GET /replays/{game_id}", s.serveReplay)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok sessions=%d\n", s.SessionCount())
	})
	return mux
}

// ListenAndServe blocks until the server stops. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:    s.cfg.Server.WebSocket.Address,
		Handler: s.Handler(),
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Info("starting websocket server",
		zap.String("address", srv.Addr),
		zap.String("path", s.cfg.Server.WebSocket.Path),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("websocket server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and closes every session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.httpServer
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	// hijacked connections are not tracked by http.Server
	for _, sess := range sessions {
		sess.Close()
	}
	s.logger.Info("websocket server stopped", zap.Int("closed_sessions", len(sessions)))
	return err
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Replays returns the replay recorder, or nil when recording is disabled.
func (s *Server) Replays() *game.ReplayRecorder { return s.recorder }

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := &Session{
		id:     uuid.NewString(),
		server: s,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
	sess.logger = s.logger.With(zap.String("session_id", sess.id))

	engine, err := game.NewEngine(sess.logger, sess, sess, s.engineOptions())
	if err != nil {
		s.logger.Error("failed to create engine", zap.Error(err))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "engine unavailable"))
		conn.Close()
		return
	}
	sess.engine = engine
	sess.subscribe()

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	sess.logger.Info("session opened",
		zap.String("game_id", engine.GameID()),
		zap.String("remote_addr", r.RemoteAddr),
	)

	sess.write(OutboundMessage{Type: MsgWelcome, Data: WelcomeData{
		SessionID: sess.id,
		GameID:    engine.GameID(),
		Viewer:    rules.SidePlayer.String(),
		Commands:  []string{MsgStartGame, MsgDraw, MsgSelectSlot, MsgEndTurn, MsgMovementComplete},
	}})
	sess.Render(engine.Snapshot())

	go sess.writePump()
	go sess.readPump()
}

// serveReplay returns one recorded state of a running game, the latest
// unless ?index= is given. The computer's row stays masked.
func (s *Server) serveReplay(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil {
		http.Error(w, "replay recording is disabled", http.StatusNotFound)
		return
	}
	replay, ok := s.recorder.GetReplay(r.PathValue("game_id"))
	if !ok {
		http.Error(w, "replay not found", http.StatusNotFound)
		return
	}

	action := ReplayLast
	var (
		state game.Snapshot
		found bool
	)
	if raw := r.URL.Query().Get("index"); raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid index", http.StatusBadRequest)
			return
		}
		action = ReplayAt
		state, found = replay.StateAt(index)
	} else {
		state, found = replay.Last()
	}
	if !found {
		http.Error(w, "state not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(replayData(replay, action, state, true, false)); err != nil {
		s.logger.Warn("failed to write replay", zap.Error(err))
	}
}

// replayData masks the computer's row unless reveal is set.
func replayData(r *game.Replay, action string, state game.Snapshot, found, reveal bool) ReplayData {
	data := ReplayData{
		GameID:  r.GameID,
		Action:  action,
		Size:    r.Size(),
		Dropped: r.Dropped(),
	}
	if found {
		if !reveal {
			state = state.ForViewer(rules.SidePlayer)
		}
		data.State = &state
	}
	return data
}

func (s *Server) remove(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sess.id)
}

func (s *Server) engineOptions() game.Options {
	g := s.cfg.Game
	return game.Options{
		RankCount:        g.RankCount,
		MaxPoints:        g.MaxPoints,
		Seed:             g.Seed,
		ComputerStrategy: s.strategy,
		ComputerDelay:    s.cfg.Computer.Delay,
		StrictInvariants: g.StrictInvariants,
		Recorder:         s.recorder,
	}
}

// firstSide resolves the requested opening side, falling back to configuration.
func (s *Server) firstSide(requested string) (rules.Side, error) {
	name := strings.ToLower(strings.TrimSpace(requested))
	if name == "" {
		name = strings.ToLower(s.cfg.Game.FirstSide)
	}
	if name == "random" {
		return rules.Sides()[rand.IntN(2)], nil
	}
	side, err := rules.ParseSide(name)
	if err != nil {
		return rules.SidePlayer, fmt.Errorf("invalid first side %q", requested)
	}
	return side, nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := s.cfg.Server.WebSocket.AllowedOrigins
	if len(allowed) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range allowed {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	s.logger.Warn("rejected websocket origin", zap.String("origin", origin))
	return false
}
