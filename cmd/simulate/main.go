// Package main runs a single battle or a whole quest for an ad-hoc hero and
// prints the result as JSON. A non-zero -seed makes the run reproducible.
//
// Usage:
//
//	simulate battle -monster wild-wolf -seed 42 -str 6 -agi 5
//	simulate quest -quest forest-of-shadows -seed 42 -db /tmp/sim.db
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cory-johannsen/herobound/internal/app"
	"github.com/cory-johannsen/herobound/internal/config"
	"github.com/cory-johannsen/herobound/internal/game/combat"
	"github.com/cory-johannsen/herobound/internal/game/dice"
	"github.com/cory-johannsen/herobound/internal/game/gameerr"
	"github.com/cory-johannsen/herobound/internal/game/hero"
	"github.com/cory-johannsen/herobound/internal/game/quest"
	"github.com/cory-johannsen/herobound/internal/game/reward"
	"github.com/cory-johannsen/herobound/internal/game/stats"
	"github.com/cory-johannsen/herobound/internal/observability"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("simulate: %s: %v", gameerr.GRPCCode(err), err)
	}
}

// common holds the flags shared by every subcommand.
type common struct {
	configPath string
	seed       uint64
	name       string
	level      int
	values     stats.Values
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "configs/dev.yaml", "path to configuration file")
	fs.Uint64Var(&c.seed, "seed", 0, "random seed; 0 draws from crypto/rand")
	fs.StringVar(&c.name, "name", "Wanderer", "hero name")
	fs.IntVar(&c.level, "level", 1, "hero level")
	fs.IntVar(&c.values.Strength, "str", 5, "strength")
	fs.IntVar(&c.values.Magic, "mag", 5, "magic")
	fs.IntVar(&c.values.Agility, "agi", 5, "agility")
	fs.IntVar(&c.values.Speed, "spd", 5, "speed")
	fs.IntVar(&c.values.Charisma, "cha", 5, "charisma")
	fs.IntVar(&c.values.Luck, "luck", 5, "luck")
}

func (c *common) source() dice.Source {
	if c.seed == 0 {
		return dice.NewCryptoSource()
	}
	return dice.NewSeededSource(c.seed)
}

func (c *common) hero() (*hero.Hero, error) {
	h, err := hero.Build(c.name, "human", "adventurer", c.values)
	if err != nil {
		return nil, err
	}
	if c.level > 1 {
		h.Level = c.level
	}
	return h, nil
}

func (c *common) setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New("expected a subcommand: battle or quest")
	}
	switch args[0] {
	case "battle":
		return runBattle(ctx, args[1:], stdout)
	case "quest":
		return runQuest(ctx, args[1:], stdout)
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

// runBattle fights a content monster in memory; nothing is persisted.
func runBattle(ctx context.Context, args []string, stdout io.Writer) error {
	var c common
	fs := flag.NewFlagSet("battle", flag.ContinueOnError)
	c.register(fs)
	monsterID := fs.String("monster", "wild-wolf", "monster template id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := c.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	content, err := app.LoadContent(cfg.Game, logger)
	if err != nil {
		return err
	}
	tmpl, err := content.Monsters.ByID(*monsterID)
	if err != nil {
		return err
	}
	mob, err := tmpl.Spawn()
	if err != nil {
		return err
	}
	h, err := c.hero()
	if err != nil {
		return err
	}
	fighter, err := h.Combatant()
	if err != nil {
		return err
	}

	roller := dice.NewRoller(c.source(), observability.Component(logger, "dice"))
	engine := combat.NewEngine(roller, reward.NewCalculator(), observability.Component(logger, "battle"),
		combat.WithMaxRounds(cfg.Game.MaxRounds),
	)
	res, err := engine.Run(ctx, fighter, h.State(), mob)
	if err != nil {
		if !gameerr.IsStalemate(err) {
			return err
		}
		logger.Warn("battle ended without a winner", zap.Error(err))
	}
	return writeJSON(stdout, res)
}

// runQuest plays a quest from start to completion against a SQLite store.
func runQuest(ctx context.Context, args []string, stdout io.Writer) error {
	var c common
	fs := flag.NewFlagSet("quest", flag.ContinueOnError)
	c.register(fs)
	questID := fs.String("quest", "forest-of-shadows", "quest id")
	dbPath := fs.String("db", "", "SQLite file; empty uses a temporary file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, logger, err := c.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if *dbPath == "" {
		dir, err := os.MkdirTemp("", "herobound-sim-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
		*dbPath = filepath.Join(dir, "sim.db")
	}
	cfg.Storage = config.StorageConfig{Backend: "sqlite", SQLitePath: *dbPath}

	game, err := app.New(ctx, cfg, logger, app.WithSource(c.source()))
	if err != nil {
		return err
	}
	defer game.Close()

	h, err := c.hero()
	if err != nil {
		return err
	}
	if err := game.Store.CreateHero(ctx, h); err != nil {
		return err
	}
	p, err := game.Tracker.StartQuest(ctx, h.ID, *questID)
	if err != nil {
		return err
	}
	for !p.IsCompleted {
		step, err := game.Tracker.AdvanceQuest(ctx, h.ID, *questID)
		if err != nil {
			return err
		}
		p = step.Progress
	}

	final, err := game.Store.Hero(ctx, h.ID)
	if err != nil {
		return err
	}
	items, err := game.Store.Items(ctx, h.ID)
	if err != nil {
		return err
	}
	return writeJSON(stdout, struct {
		Hero      *hero.Hero      `json:"hero"`
		Inventory map[string]int  `json:"inventory"`
		Progress  *quest.Progress `json:"progress"`
	}{final, items, p})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
