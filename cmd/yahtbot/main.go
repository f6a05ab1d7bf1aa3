// Command yahtbot is a computer player. By default it connects to a game
// server, creates or joins a room and plays until the game ends. The
// simulate subcommand plays solo games locally and reports the scores.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/yaht-backend/internal/ai"
	"github.com/DoyleJ11/yaht-backend/internal/client"
	"github.com/DoyleJ11/yaht-backend/internal/config"
	"github.com/DoyleJ11/yaht-backend/internal/engine"
	"github.com/DoyleJ11/yaht-backend/internal/types"
)

const version = "yahtbot/1"

type playConfig struct {
	Addr       string
	Name       string
	RoomID     string
	RoomName   string
	Password   string
	MaxPlayers int
	StartAt    int
	Difficulty string
	LogLevel   string
}

type simulateConfig struct {
	Games      int
	Difficulty string
	Seed       int64
	LogLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	var err error
	if len(args) > 0 && args[0] == "simulate" {
		err = runSimulate(args[1:])
	} else {
		err = runPlay(ctx, args)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parsePlay(fs *flag.FlagSet, args []string) (playConfig, error) {
	cfg := playConfig{}
	fs.StringVar(&cfg.Addr, "addr", "127.0.0.1:9876", "game server address")
	fs.StringVar(&cfg.Name, "name", "yahtbot", "display name")
	fs.StringVar(&cfg.RoomID, "room", "", "room id to join, empty creates a room")
	fs.StringVar(&cfg.RoomName, "room-name", "", "name of a created room")
	fs.StringVar(&cfg.Password, "password", "", "room password")
	fs.IntVar(&cfg.MaxPlayers, "max-players", 4, "capacity of a created room")
	fs.IntVar(&cfg.StartAt, "start-at", 2, "as host, start once this many players are seated, 0 never")
	fs.StringVar(&cfg.Difficulty, "difficulty", string(ai.Medium), "easy, medium or hard")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return playConfig{}, err
	}
	if _, ok := ai.ParseDifficulty(cfg.Difficulty); !ok {
		return playConfig{}, fmt.Errorf("unknown difficulty %q", cfg.Difficulty)
	}
	return cfg, nil
}

func runPlay(ctx context.Context, args []string) error {
	cfg, err := parsePlay(flag.NewFlagSet("yahtbot", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	log, err := config.NewLogger(cfg.LogLevel, "console")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	d, _ := ai.ParseDifficulty(cfg.Difficulty)

	dctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	c, err := client.Dial(dctx, cfg.Addr, cfg.Name, version)
	cancel()
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()
	defer func() { _ = c.Close() }()

	log = log.With(zap.String("player_id", c.PlayerID))
	log.Info("connected", zap.String("server_version", c.ServerVersion))

	var enter types.ClientMessage = types.CreateRoom{Name: cfg.RoomName, MaxPlayers: cfg.MaxPlayers, Password: cfg.Password}
	if cfg.RoomID != "" {
		enter = types.JoinRoom{RoomID: cfg.RoomID, Password: cfg.Password}
	}
	if err := c.Send(enter); err != nil {
		return err
	}

	b := newBot(c.PlayerID, d, cfg.StartAt, rand.New(rand.NewSource(time.Now().UnixNano())), log)
	for {
		m, err := c.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}
		if joined, ok := m.(types.RoomJoined); ok {
			log.Info("in room", zap.String("room_id", joined.RoomID), zap.String("room", joined.Room.Name))
		}
		if e, ok := m.(types.ErrorMessage); ok && (e.Code == types.CodeRoomNotFound || e.Code == types.CodeRoomFull || e.Code == types.CodeWrongPassword || e.Code == types.CodeNameTaken) {
			return errors.New(e.Message)
		}

		replies, done := b.handle(m)
		for _, r := range replies {
			if err := c.Send(r); err != nil {
				return err
			}
		}
		if done {
			return c.Send(types.Disconnect{})
		}
	}
}

func parseSimulate(fs *flag.FlagSet, args []string) (simulateConfig, error) {
	cfg := simulateConfig{}
	fs.IntVar(&cfg.Games, "games", 100, "number of solo games")
	fs.StringVar(&cfg.Difficulty, "difficulty", string(ai.Hard), "easy, medium or hard")
	fs.Int64Var(&cfg.Seed, "seed", 0, "dice seed, 0 picks one")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return simulateConfig{}, err
	}
	if cfg.Games <= 0 {
		return simulateConfig{}, fmt.Errorf("games must be positive, got %d", cfg.Games)
	}
	if _, ok := ai.ParseDifficulty(cfg.Difficulty); !ok {
		return simulateConfig{}, fmt.Errorf("unknown difficulty %q", cfg.Difficulty)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, nil
}

func runSimulate(args []string) error {
	cfg, err := parseSimulate(flag.NewFlagSet("simulate", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	log, err := config.NewLogger(cfg.LogLevel, "console")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	d, _ := ai.ParseDifficulty(cfg.Difficulty)

	rng := rand.New(rand.NewSource(cfg.Seed))
	scores := make([]int, 0, cfg.Games)
	for range cfg.Games {
		score, err := simulateGame(d, rng)
		if err != nil {
			return err
		}
		log.Debug("game finished", zap.Int("score", score))
		scores = append(scores, score)
	}

	total, best, worst := 0, scores[0], scores[0]
	for _, s := range scores {
		total += s
		best = max(best, s)
		worst = min(worst, s)
	}
	log.Info("simulation done",
		zap.String("difficulty", string(d)),
		zap.Int("games", len(scores)),
		zap.Int64("seed", cfg.Seed),
		zap.Float64("mean", float64(total)/float64(len(scores))),
		zap.Int("best", best),
		zap.Int("worst", worst),
	)
	return nil
}

// simulateGame plays one solo game to the end and returns the grand total.
func simulateGame(d ai.Difficulty, rng engine.Rand) (int, error) {
	const id = "bot"
	g := engine.NewGame([]*engine.Player{engine.NewPlayer(id, "bot")})
	if err := g.StartSolo(); err != nil {
		return 0, err
	}
	for g.Phase() == engine.PhasePlaying {
		if _, _, err := ai.PlayTurn(g, id, d, rng, nil); err != nil {
			return 0, err
		}
	}
	p, _ := g.Player(id)
	return p.Scorecard.GrandTotal(), nil
}
