package engine

import "errors"

var ErrCannotRoll = errors.New("cannot roll now")
var ErrCannotHold = errors.New("cannot hold dice now")
var ErrCannotScore = errors.New("cannot score now")
var ErrNoActiveTurn = errors.New("no active turn")
var ErrCategoryAlreadyScored = errors.New("category already scored")
var ErrInvalidCategory = errors.New("invalid category")
var ErrNotEnoughPlayers = errors.New("not enough players")
var ErrTooManyPlayers = errors.New("too many players (max 6)")
var ErrNotYourTurn = errors.New("not your turn")
var ErrGameNotInProgress = errors.New("game not in progress")
var ErrGameAlreadyStarted = errors.New("game already started")
var ErrUnknownPlayer = errors.New("player not in game")

const (
	MinPlayers  = 2
	MaxPlayers  = 6
	TotalRounds = len(AllCategories)
)

type Phase string

const (
	PhaseLobby    Phase = "Lobby"
	PhasePlaying  Phase = "Playing"
	PhaseFinished Phase = "Finished"
)

// Game is the authoritative state of one room's game. Player order is fixed
// at construction. Playing implies an active turn; Finished implies none.
type Game struct {
	phase       Phase
	players     []*Player
	current     int
	turn        *Turn
	round       int
	totalRounds int
}

func NewGame(players []*Player) *Game {
	return &Game{
		phase:       PhaseLobby,
		players:     players,
		totalRounds: TotalRounds,
	}
}

// Start begins a multiplayer game of 2-6 players.
func (g *Game) Start() error {
	return g.start(MinPlayers)
}

// StartSolo allows a single player, for play against the AI.
func (g *Game) StartSolo() error {
	return g.start(1)
}

func (g *Game) start(minPlayers int) error {
	if g.phase != PhaseLobby {
		return ErrGameAlreadyStarted
	}
	if len(g.players) < minPlayers {
		return ErrNotEnoughPlayers
	}
	if len(g.players) > MaxPlayers {
		return ErrTooManyPlayers
	}
	g.phase = PhasePlaying
	g.round = 1
	g.current = 0
	g.turn = NewTurn(g.players[0].ID)
	return nil
}

func (g *Game) Phase() Phase { return g.phase }

func (g *Game) Round() int { return g.round }

func (g *Game) TotalRounds() int { return g.totalRounds }

// CurrentPlayer is nil unless the game is being played.
func (g *Game) CurrentPlayer() *Player {
	if g.phase != PhasePlaying {
		return nil
	}
	return g.players[g.current]
}

func (g *Game) IsCurrentPlayer(playerID string) bool {
	p := g.CurrentPlayer()
	return p != nil && p.ID == playerID
}

// Turn returns a copy of the active turn.
func (g *Game) Turn() (Turn, bool) {
	if g.turn == nil {
		return Turn{}, false
	}
	return *g.turn, true
}

func (g *Game) Player(playerID string) (*Player, bool) {
	for _, p := range g.players {
		if p.ID == playerID {
			return p, true
		}
	}
	return nil, false
}

func (g *Game) SetConnected(playerID string, connected bool) error {
	p, ok := g.Player(playerID)
	if !ok {
		return ErrUnknownPlayer
	}
	p.Connected = connected
	return nil
}

func (g *Game) activeTurn(playerID string) (*Turn, error) {
	if g.phase != PhasePlaying {
		return nil, ErrGameNotInProgress
	}
	if !g.IsCurrentPlayer(playerID) {
		return nil, ErrNotYourTurn
	}
	if g.turn == nil {
		return nil, ErrNoActiveTurn
	}
	return g.turn, nil
}

func (g *Game) RollDice(playerID string, rng Rand) error {
	turn, err := g.activeTurn(playerID)
	if err != nil {
		return err
	}
	return turn.Roll(rng)
}

func (g *Game) HoldDice(playerID string, mask [NumDice]bool) error {
	turn, err := g.activeTurn(playerID)
	if err != nil {
		return err
	}
	return turn.Hold(mask)
}

// ScoreCategory banks the current dice into category c for the current
// player, advances the turn and returns the points scored. A literal Yahtzee
// rolled after Yahtzee was banked at 50 earns a bonus and scores with the
// Joker table.
func (g *Game) ScoreCategory(playerID string, c Category) (int, error) {
	turn, err := g.activeTurn(playerID)
	if err != nil {
		return 0, err
	}
	if !turn.CanScore() {
		return 0, ErrCannotScore
	}
	if !c.Valid() {
		return 0, ErrInvalidCategory
	}
	card := g.players[g.current].Scorecard
	if card.IsUsed(c) {
		return 0, ErrCategoryAlreadyScored
	}

	values := turn.dice.Values()
	banked, _ := card.Score(CategoryYahtzee)
	joker := IsYahtzee(values) && card.IsUsed(CategoryYahtzee) && banked == YahtzeeScore

	score := ComputeScoreJoker(c, values, joker)
	if err := card.Record(c, score); err != nil {
		return 0, err
	}
	if joker {
		card.AddYahtzeeBonus()
	}

	turn.finish()
	g.advance()
	return score, nil
}

func (g *Game) advance() {
	g.current++
	if g.current >= len(g.players) {
		g.current = 0
		g.round++
	}
	if g.round > g.totalRounds {
		g.phase = PhaseFinished
		g.turn = nil
		return
	}
	g.turn = NewTurn(g.players[g.current].ID)
}

// Winner is the first player in turn order with the highest grand total.
func (g *Game) Winner() (*Player, bool) {
	if g.phase != PhaseFinished || len(g.players) == 0 {
		return nil, false
	}
	best := g.players[0]
	for _, p := range g.players[1:] {
		if p.Scorecard.GrandTotal() > best.Scorecard.GrandTotal() {
			best = p
		}
	}
	return best, true
}

type FinalScore struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

func (g *Game) FinalScores() []FinalScore {
	out := make([]FinalScore, 0, len(g.players))
	for _, p := range g.players {
		out = append(out, FinalScore{PlayerID: p.ID, Name: p.Name, Score: p.Scorecard.GrandTotal()})
	}
	return out
}
