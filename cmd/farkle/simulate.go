package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/farkle/cmd/farkle/shared"
	"github.com/lox/farkle/internal/client"
	"github.com/lox/farkle/internal/scoring"
	"github.com/lox/farkle/internal/server"
)

// SimulateCmd runs headless bot-vs-bot games against a running server
type SimulateCmd struct {
	Server        string        `kong:"default='http://localhost:8080',help='Server URL'"`
	Games         int           `kong:"default='10',help='Number of games to play'"`
	Concurrency   int           `kong:"default='4',help='Games played in parallel'"`
	BankThreshold int           `kong:"default='300',help='Bot banks once turn points reach this'"`
	Timeout       time.Duration `kong:"default='2m',help='Per-game timeout'"`
	Debug         bool          `kong:"help='Enable debug logging'"`
}

type simStats struct {
	mu      sync.Mutex
	games   int
	seatWon [2]int
}

func (s *simStats) record(winner int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games++
	if winner >= 0 && winner < 2 {
		s.seatWon[winner]++
	}
}

func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)
	stats := &simStats{}

	var g errgroup.Group
	g.SetLimit(c.Concurrency)

	start := time.Now()
	for i := 0; i < c.Games; i++ {
		g.Go(func() error {
			winner, err := c.playGame(i, logger)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			stats.record(winner)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	logger.Info("simulation complete",
		"games", stats.games,
		"seat0_wins", stats.seatWon[0],
		"seat1_wins", stats.seatWon[1],
		"elapsed", elapsed,
	)
	return nil
}

// playGame runs one full bot-vs-bot game and returns the winning seat.
func (c *SimulateCmd) playGame(n int, logger *log.Logger) (int, error) {
	creator, err := newBot(c.Server, fmt.Sprintf("sim-%d-a", n), c.BankThreshold, logger)
	if err != nil {
		return -1, err
	}
	defer creator.close()

	if err := creator.client.CreateRoom(creator.name); err != nil {
		return -1, err
	}
	joined, err := creator.client.WaitForMessage(server.MessageTypeRoomJoined, 10*time.Second)
	if err != nil {
		return -1, err
	}
	var ack server.RoomJoinedData
	if err := server.DecodeData(joined, &ack); err != nil {
		return -1, err
	}

	opponent, err := newBot(c.Server, fmt.Sprintf("sim-%d-b", n), c.BankThreshold, logger)
	if err != nil {
		return -1, err
	}
	defer opponent.close()

	if err := opponent.client.JoinRoom(ack.Code, opponent.name); err != nil {
		return -1, err
	}

	deadline := time.After(c.Timeout)
	for {
		select {
		case winner := <-creator.done:
			return winner, nil
		case err := <-creator.errs:
			return -1, err
		case err := <-opponent.errs:
			return -1, err
		case <-deadline:
			return -1, fmt.Errorf("timed out after %s", c.Timeout)
		}
	}
}

// bot plays a greedy strategy: keep the highest-scoring subset, bank once
// the threshold is reached.
type bot struct {
	client    *client.Client
	name      string
	threshold int
	done      chan int
	errs      chan error
}

func newBot(serverURL, name string, threshold int, logger *log.Logger) (*bot, error) {
	b := &bot{
		client:    client.NewClient(serverURL, logger),
		name:      name,
		threshold: threshold,
		done:      make(chan int, 1),
		errs:      make(chan error, 1),
	}

	if err := b.client.Connect(); err != nil {
		return nil, err
	}

	b.client.AddEventHandler(server.MessageTypeRoomUpdate, b.onUpdate)
	b.client.AddEventHandler(server.MessageTypeError, func(msg *server.Message) {
		var errData server.ErrorData
		if err := server.DecodeData(msg, &errData); err != nil {
			return
		}
		// Racing intents from stale snapshots are expected; real failures
		// are not.
		if errData.Kind == "not_your_turn" || errData.Kind == "illegal_phase" {
			return
		}
		select {
		case b.errs <- fmt.Errorf("%s: %s", errData.Kind, errData.Message):
		default:
		}
	})

	return b, nil
}

func (b *bot) close() {
	_ = b.client.Disconnect()
}

func (b *bot) onUpdate(msg *server.Message) {
	var update server.RoomUpdateData
	if err := server.DecodeData(msg, &update); err != nil {
		return
	}

	if update.Game.Phase == "game_over" {
		winner := -1
		if update.Game.Winner != nil {
			winner = *update.Game.Winner
		}
		select {
		case b.done <- winner:
		default:
		}
		return
	}

	seat := b.client.Seat()
	if seat < 0 || update.Game.ActiveSeat != seat {
		return
	}

	var err error
	switch update.Game.Phase {
	case "must_roll":
		if update.Game.TurnPoints >= b.threshold {
			err = b.client.Bank()
		} else {
			err = b.client.Roll()
		}
	case "selecting":
		indices := bestSelection(update.Game.Dice, update.Game.KeptMask)
		if len(indices) == 0 {
			return
		}
		err = b.client.Keep(indices)
	}

	if err != nil {
		select {
		case b.errs <- err:
		default:
		}
	}
}

// bestSelection returns the free-dice subset with the highest score.
func bestSelection(dice []int, kept []bool) []int {
	var free []int
	for i := range dice {
		if i < len(kept) && kept[i] {
			continue
		}
		free = append(free, i)
	}

	var best []int
	bestPoints := 0
	for mask := 1; mask < 1<<len(free); mask++ {
		var indices []int
		var faces []int
		for bit, idx := range free {
			if mask&(1<<bit) != 0 {
				indices = append(indices, idx)
				faces = append(faces, dice[idx])
			}
		}
		result := scoring.Score(faces, len(indices) == len(dice))
		if result.Valid && result.Points > bestPoints {
			bestPoints = result.Points
			best = indices
		}
	}
	return best
}
