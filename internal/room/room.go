// Package room runs one game table as an actor goroutine.
package room

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/DoyleJ11/yaht-backend/internal/ai"
	"github.com/DoyleJ11/yaht-backend/internal/archive"
	"github.com/DoyleJ11/yaht-backend/internal/engine"
	"github.com/DoyleJ11/yaht-backend/internal/types"
)

var ErrRoomClosed = errors.New("room closed")
var ErrRoomFull = errors.New("room is full")
var ErrGameInProgress = errors.New("game already in progress")
var ErrWrongPassword = errors.New("wrong room password")
var ErrNameTaken = errors.New("name already taken in this room")
var ErrNotHost = errors.New("only the host can start the game")
var ErrSpectator = errors.New("spectators cannot play")
var ErrNotMember = errors.New("not a member of this room")
var ErrEmptyChat = errors.New("empty chat message")

// PasswordCost is the bcrypt cost for room passwords.
var PasswordCost = bcrypt.DefaultCost

const (
	MinCapacity = engine.MinPlayers
	MaxCapacity = engine.MaxPlayers
	inboxSize   = 64
)

// Sender is a member's outbound queue. Send must not block; it reports
// false when the message could not be queued.
type Sender interface {
	Send(types.ServerMessage) bool
}

// ResultSink receives finished games.
type ResultSink interface {
	Submit(archive.Result) bool
}

type Options struct {
	ID         string
	Name       string
	MaxPlayers int    // clamped to [MinCapacity, MaxCapacity]
	Password   string // empty means open
	Rand       engine.Rand
	Results    ResultSink

	// OnClose runs on the actor goroutine once the room has shut down
	// because its last member left.
	OnClose func(id string)
}

type Room struct {
	id          string
	name        string
	maxPlayers  int
	hasPassword bool

	inbox  chan msg
	ctx    context.Context
	cancel context.CancelFunc
	info   atomic.Pointer[types.RoomInfo]

	// owned by the actor goroutine
	roster       roster
	passwordHash []byte
	game         *engine.Game
	rng          engine.Rand
	results      ResultSink
	onClose      func(string)
	log          *zap.Logger
}

// New builds a room with host seated. Call Start once it is registered.
func New(parent context.Context, opts Options, host Member, log *zap.Logger) (*Room, error) {
	capacity := min(max(opts.MaxPlayers, MinCapacity), MaxCapacity)

	var hash []byte
	if opts.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(opts.Password), PasswordCost)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		hash = h
	}
	rng := opts.Rand
	if rng == nil {
		rng = newRand()
	}

	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		id:           opts.ID,
		name:         opts.Name,
		maxPlayers:   capacity,
		hasPassword:  hash != nil,
		inbox:        make(chan msg, inboxSize),
		ctx:          ctx,
		cancel:       cancel,
		passwordHash: hash,
		rng:          rng,
		results:      opts.Results,
		onClose:      opts.OnClose,
		log:          log.With(zap.String("room_id", opts.ID)),
	}
	r.roster = newRoster(capacity, host)
	r.publishInfo()
	return r, nil
}

func (r *Room) Start() {
	host := r.roster.players[0]
	go r.loop(host)
}

func newRand() *rand.Rand {
	var seed [8]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
}

func (r *Room) ID() string { return r.id }

func (r *Room) Info() types.RoomInfo { return *r.info.Load() }

func (r *Room) Closed() bool { return r.ctx.Err() != nil }

// Close stops the actor. Members are not told.
func (r *Room) Close() { r.cancel() }

type msg interface{ isRoomMsg() }

type join struct {
	member    Member
	password  string
	spectator bool
	reply     chan error
}

type leave struct {
	id    string
	quiet bool
	reply chan error
}

type startGame struct {
	id    string
	reply chan error
}

type roll struct {
	id    string
	reply chan error
}

type hold struct {
	id    string
	mask  [engine.NumDice]bool
	reply chan error
}

type score struct {
	id       string
	category engine.Category
	reply    chan error
}

type chat struct {
	id    string
	text  string
	reply chan error
}

type getSnapshot struct {
	reply chan types.RoomSnapshot
}

func (join) isRoomMsg() {}
func (leave) isRoomMsg() {}
func (startGame) isRoomMsg() {}
func (roll) isRoomMsg() {}
func (hold) isRoomMsg() {}
func (score) isRoomMsg() {}
func (chat) isRoomMsg() {}
func (getSnapshot) isRoomMsg() {}

func (r *Room) Join(ctx context.Context, m Member, password string) error {
	reply := make(chan error, 1)
	return r.do(ctx, join{member: m, password: password, reply: reply}, reply)
}

// Spectate ignores capacity, password and a running game.
func (r *Room) Spectate(ctx context.Context, m Member) error {
	reply := make(chan error, 1)
	return r.do(ctx, join{member: m, spectator: true, reply: reply}, reply)
}

func (r *Room) Leave(ctx context.Context, id string) error {
	reply := make(chan error, 1)
	return r.do(ctx, leave{id: id, reply: reply}, reply)
}

// Depart is a Leave with no RoomLeft, used after moving to another room.
func (r *Room) Depart(ctx context.Context, id string) error {
	reply := make(chan error, 1)
	return r.do(ctx, leave{id: id, quiet: true, reply: reply}, reply)
}

func (r *Room) StartGame(ctx context.Context, id string) error {
	reply := make(chan error, 1)
	return r.do(ctx, startGame{id: id, reply: reply}, reply)
}

func (r *Room) Roll(ctx context.Context, id string) error {
	reply := make(chan error, 1)
	return r.do(ctx, roll{id: id, reply: reply}, reply)
}

func (r *Room) Hold(ctx context.Context, id string, mask [engine.NumDice]bool) error {
	reply := make(chan error, 1)
	return r.do(ctx, hold{id: id, mask: mask, reply: reply}, reply)
}

func (r *Room) Score(ctx context.Context, id string, c engine.Category) error {
	reply := make(chan error, 1)
	return r.do(ctx, score{id: id, category: c, reply: reply}, reply)
}

func (r *Room) Chat(ctx context.Context, id, text string) error {
	reply := make(chan error, 1)
	return r.do(ctx, chat{id: id, text: text, reply: reply}, reply)
}

func (r *Room) Snapshot(ctx context.Context) (types.RoomSnapshot, error) {
	reply := make(chan types.RoomSnapshot, 1)
	return await(ctx, r, getSnapshot{reply: reply}, reply)
}

func (r *Room) do(ctx context.Context, m msg, reply chan error) error {
	err, callErr := await(ctx, r, m, reply)
	if callErr != nil {
		return callErr
	}
	return err
}

// a reply that raced with shutdown still wins
func await[T any](ctx context.Context, r *Room, m msg, reply chan T) (T, error) {
	var zero T
	select {
	case r.inbox <- m:
	case <-r.ctx.Done():
		return zero, ErrRoomClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-r.ctx.Done():
		select {
		case v := <-reply:
			return v, nil
		default:
			return zero, ErrRoomClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (r *Room) loop(host Member) {
	defer r.cancel()
	r.log.Info("room opened", zap.String("host_id", host.ID), zap.Int("max_players", r.maxPlayers))
	r.sendTo(host, types.RoomJoined{RoomID: r.id, Room: r.snapshot()})

	for {
		select {
		case <-r.ctx.Done():
			r.log.Info("room stopped")
			return

		case m := <-r.inbox:
			r.handle(m)
			r.publishInfo()
			if r.roster.isEmpty() {
				r.cancel()
				r.log.Info("room closed: no members left")
				if r.onClose != nil {
					r.onClose(r.id)
				}
				return
			}
		}
	}
}

func (r *Room) handle(m msg) {
	switch m := m.(type) {
	case join:
		if m.spectator {
			m.reply <- r.handleSpectate(m.member)
		} else {
			m.reply <- r.handleJoin(m.member, m.password)
		}
	case leave:
		m.reply <- r.handleLeave(m.id, m.quiet)
	case startGame:
		m.reply <- r.handleStart(m.id)
	case roll:
		m.reply <- r.handleRoll(m.id)
	case hold:
		m.reply <- r.handleHold(m.id, m.mask)
	case score:
		m.reply <- r.handleScore(m.id, m.category)
	case chat:
		m.reply <- r.handleChat(m.id, m.text)
	case getSnapshot:
		m.reply <- r.snapshot()
	}
}

func (r *Room) handleJoin(m Member, password string) error {
	_, isPlayer, present := r.roster.member(m.ID)
	if present && isPlayer {
		r.sendTo(m, types.RoomJoined{RoomID: r.id, Room: r.snapshot()})
		return nil
	}
	if r.passwordHash != nil && bcrypt.CompareHashAndPassword(r.passwordHash, []byte(password)) != nil {
		return ErrWrongPassword
	}
	if r.gameRunning() {
		return ErrGameInProgress
	}
	if r.roster.nameTaken(m.Name, m.ID) {
		return ErrNameTaken
	}
	if r.roster.full() {
		return ErrRoomFull
	}

	// a spectator taking a seat
	if present {
		r.roster.remove(m.ID)
		r.broadcast(types.SpectatorLeft{Name: m.Name}, m.ID)
	}
	if err := r.roster.addPlayer(m); err != nil {
		return err
	}

	r.log.Debug("player joined", zap.String("player_id", m.ID), zap.String("name", m.Name))
	r.sendTo(m, types.RoomJoined{RoomID: r.id, Room: r.snapshot()})
	r.broadcast(types.PlayerJoined{PlayerID: m.ID, Name: m.Name}, m.ID)
	r.broadcast(types.RoomUpdate{Room: r.snapshot()}, m.ID)
	return nil
}

func (r *Room) handleSpectate(m Member) error {
	_, isPlayer, present := r.roster.member(m.ID)
	switch {
	case present && !isPlayer:
		return nil
	case present:
		// gives up the seat, with the usual departure handling
		_ = r.handleLeave(m.ID, true)
	case r.roster.nameTaken(m.Name, m.ID):
		return ErrNameTaken
	}
	r.roster.addSpectator(m)

	r.log.Debug("spectator joined", zap.String("player_id", m.ID), zap.String("name", m.Name))
	r.sendTo(m, types.RoomJoined{RoomID: r.id, Room: r.snapshot()})
	if r.game != nil {
		r.sendTo(m, types.GameState{Game: r.game.Snapshot()})
	}
	r.broadcast(types.SpectatorJoined{Name: m.Name}, m.ID)
	r.broadcast(types.RoomUpdate{Room: r.snapshot()}, m.ID)
	return nil
}

func (r *Room) handleLeave(id string, quiet bool) error {
	m, wasPlayer, hostChanged, ok := r.roster.remove(id)
	if !ok {
		return ErrNotMember
	}
	r.log.Debug("member left", zap.String("player_id", id), zap.Bool("player", wasPlayer))
	if !quiet {
		r.sendTo(m, types.RoomLeft{})
	}

	if wasPlayer {
		r.broadcast(types.PlayerLeft{PlayerID: m.ID, Name: m.Name}, "")
	} else {
		r.broadcast(types.SpectatorLeft{Name: m.Name}, "")
	}
	if hostChanged {
		if h, ok := r.roster.host(); ok {
			r.broadcast(types.SystemMessage{Text: fmt.Sprintf("%s is now the host", h.Name)}, "")
		}
	}
	if !r.roster.isEmpty() {
		r.broadcast(types.RoomUpdate{Room: r.snapshot()}, "")
	}

	if wasPlayer && r.gameRunning() {
		if err := r.game.SetConnected(id, false); err == nil {
			r.broadcast(types.SystemMessage{Text: fmt.Sprintf("%s left; the computer will finish their game", m.Name)}, "")
			r.playAbsentTurns()
		}
	}
	return nil
}

func (r *Room) handleStart(id string) error {
	if id != r.roster.hostID {
		if _, _, ok := r.roster.member(id); !ok {
			return ErrNotMember
		}
		return ErrNotHost
	}
	if r.gameRunning() {
		return ErrGameInProgress
	}

	players := make([]*engine.Player, 0, len(r.roster.players))
	for _, m := range r.roster.players {
		players = append(players, engine.NewPlayer(m.ID, m.Name))
	}
	g := engine.NewGame(players)
	if err := g.Start(); err != nil {
		return err
	}
	r.game = g

	r.log.Info("game started", zap.Int("players", len(players)))
	r.broadcast(types.GameStarted{Game: g.Snapshot()}, "")
	r.broadcastTurnStarted()
	return nil
}

// player resolves id to a seated player, for game actions.
func (r *Room) player(id string) error {
	_, isPlayer, ok := r.roster.member(id)
	switch {
	case !ok:
		return ErrNotMember
	case !isPlayer:
		return ErrSpectator
	case r.game == nil:
		return engine.ErrGameNotInProgress
	}
	return nil
}

func (r *Room) handleRoll(id string) error {
	if err := r.player(id); err != nil {
		return err
	}
	if err := r.game.RollDice(id, r.rng); err != nil {
		return err
	}
	r.broadcastDiceRolled()
	return nil
}

func (r *Room) handleHold(id string, mask [engine.NumDice]bool) error {
	if err := r.player(id); err != nil {
		return err
	}
	if err := r.game.HoldDice(id, mask); err != nil {
		return err
	}
	r.broadcastDiceHeld()
	return nil
}

func (r *Room) handleScore(id string, c engine.Category) error {
	if err := r.player(id); err != nil {
		return err
	}
	points, err := r.game.ScoreCategory(id, c)
	if err != nil {
		return err
	}
	r.afterScore(id, c, points)
	r.playAbsentTurns()
	return nil
}

func (r *Room) handleChat(id, text string) error {
	m, _, ok := r.roster.member(id)
	if !ok {
		return ErrNotMember
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyChat
	}
	r.broadcast(types.ChatMessage{
		SenderID:   m.ID,
		SenderName: m.Name,
		Text:       text,
		Timestamp:  time.Now().Unix(),
	}, "")
	return nil
}

func (r *Room) afterScore(id string, c engine.Category, points int) {
	r.broadcast(types.CategoryScored{PlayerID: id, Category: c, Score: points}, "")
	r.broadcast(types.TurnEnded{PlayerID: id}, "")
	r.broadcast(types.GameState{Game: r.game.Snapshot()}, "")

	if r.game.Phase() != engine.PhaseFinished {
		r.broadcastTurnStarted()
		return
	}

	scores := r.game.FinalScores()
	var winnerID string
	if w, ok := r.game.Winner(); ok {
		winnerID = w.ID
	}
	r.log.Info("game over", zap.String("winner_id", winnerID))
	r.broadcast(types.GameOver{FinalScores: scores, WinnerID: winnerID}, "")

	if r.results != nil {
		r.results.Submit(archive.Result{
			RoomID:     r.id,
			RoomName:   r.name,
			FinishedAt: time.Now().UTC(),
			Scores:     scores,
			WinnerID:   winnerID,
		})
	}
}

// computer plays for absent seats until a connected player is up
func (r *Room) playAbsentTurns() {
	for r.gameRunning() {
		p := r.game.CurrentPlayer()
		if p.Connected {
			return
		}
		c, points, err := ai.PlayTurn(r.game, p.ID, ai.Medium, r.rng, func(a ai.Action) {
			switch a.Kind {
			case ai.ActionRoll:
				r.broadcastDiceRolled()
			case ai.ActionHold:
				r.broadcastDiceHeld()
			}
		})
		if err != nil {
			r.log.Error("computer turn failed", zap.String("player_id", p.ID), zap.Error(err))
			return
		}
		r.afterScore(p.ID, c, points)
	}
}

func (r *Room) broadcastDiceRolled() {
	if t, ok := r.game.Turn(); ok {
		r.broadcast(types.DiceRolled{Dice: t.Dice(), RollsRemaining: t.RollsRemaining()}, "")
	}
}

func (r *Room) broadcastDiceHeld() {
	if t, ok := r.game.Turn(); ok {
		r.broadcast(types.DiceHeld{Dice: t.Dice()}, "")
	}
}

func (r *Room) broadcastTurnStarted() {
	p := r.game.CurrentPlayer()
	if p == nil {
		return
	}
	r.broadcast(types.TurnStarted{PlayerID: p.ID, Name: p.Name, TurnNumber: r.game.Round()}, "")
}

func (r *Room) gameRunning() bool {
	return r.game != nil && r.game.Phase() == engine.PhasePlaying
}

// broadcast enqueues out for every member except exceptID.
func (r *Room) broadcast(out types.ServerMessage, exceptID string) {
	for _, m := range r.roster.all() {
		if m.ID == exceptID {
			continue
		}
		r.sendTo(m, out)
	}
}

func (r *Room) sendTo(m Member, out types.ServerMessage) {
	if m.Outbox == nil {
		return
	}
	if !m.Outbox.Send(out) {
		r.log.Debug("dropped message for slow member", zap.String("player_id", m.ID), zap.String("type", out.Kind()))
	}
}

func (r *Room) state() types.RoomState {
	switch {
	case r.game == nil:
		return types.RoomWaiting
	case r.game.Phase() == engine.PhaseFinished:
		return types.RoomFinished
	default:
		return types.RoomInGame
	}
}

func (r *Room) snapshot() types.RoomSnapshot {
	snap := types.RoomSnapshot{
		RoomID:      r.id,
		Name:        r.name,
		HostID:      r.roster.hostID,
		Players:     make([]types.PlayerInfo, 0, len(r.roster.players)),
		Spectators:  make([]string, 0, len(r.roster.spectators)),
		State:       r.state(),
		MaxPlayers:  r.maxPlayers,
		HasPassword: r.hasPassword,
	}
	for _, m := range r.roster.players {
		snap.Players = append(snap.Players, types.PlayerInfo{ID: m.ID, Name: m.Name, Connected: true})
	}
	for _, m := range r.roster.spectators {
		snap.Spectators = append(snap.Spectators, m.Name)
	}
	return snap
}

func (r *Room) publishInfo() {
	r.info.Store(&types.RoomInfo{
		RoomID:         r.id,
		Name:           r.name,
		PlayerCount:    len(r.roster.players),
		MaxPlayers:     r.maxPlayers,
		SpectatorCount: len(r.roster.spectators),
		State:          r.state(),
		HasPassword:    r.hasPassword,
	})
}
