// Package server wires storage, the progression engine, and the HTTP API
// into the hunt server process.
package server

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"

	"github.com/louisbranch/trailhunt/internal/platform/config"
	"github.com/louisbranch/trailhunt/internal/services/hunt/domain"
	"github.com/louisbranch/trailhunt/internal/services/hunt/engine"
	"github.com/louisbranch/trailhunt/internal/services/hunt/storage"
	sqlitestore "github.com/louisbranch/trailhunt/internal/services/hunt/storage/sqlite"
	"github.com/louisbranch/trailhunt/internal/services/hunt/web"
)

// Config holds the hunt server command configuration.
type Config struct {
	HTTPAddr      string `env:"TRAILHUNT_HTTP_ADDR" envDefault:"localhost:8080"`
	DBPath        string `env:"TRAILHUNT_DB_PATH" envDefault:"trailhunt.db"`
	ProgressModel string `env:"TRAILHUNT_PROGRESS_MODEL" envDefault:"events"`
	// TeamPassKey is a base64 Ed25519 private key or 32-byte seed. Blank
	// means an ephemeral per-process key.
	TeamPassKey string `env:"TRAILHUNT_TEAM_PASS_KEY"`
	RedOffset   int    `env:"TRAILHUNT_RED_OFFSET" envDefault:"0"`
	BlueOffset  int    `env:"TRAILHUNT_BLUE_OFFSET" envDefault:"5"`
}

// ParseConfig loads environment defaults into a Config and then applies
// command-line flags on top.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.ProgressModel, "progress-model", cfg.ProgressModel, "progress model: events or counter")
	fs.IntVar(&cfg.RedOffset, "red-offset", cfg.RedOffset, "external position offset for the red trail")
	fs.IntVar(&cfg.BlueOffset, "blue-offset", cfg.BlueOffset, "external position offset for the blue trail")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Run starts the hunt server and blocks until the context ends.
func Run(ctx context.Context, cfg Config) error {
	model, err := storage.ParseProgressModel(cfg.ProgressModel)
	if err != nil {
		return err
	}

	store, err := sqlitestore.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	key, err := decodeTeamPassKey(cfg.TeamPassKey)
	if err != nil {
		return err
	}

	e := engine.New(engine.Config{
		Teams:    store,
		Clues:    store,
		Progress: store.Progress(model),
		Tracks: domain.NewTracks(map[domain.Group]int{
			domain.GroupRed:  cfg.RedOffset,
			domain.GroupBlue: cfg.BlueOffset,
		}),
	})

	server, err := web.NewServer(web.Config{
		HTTPAddr: cfg.HTTPAddr,
		TeamPass: web.TeamPassConfig{Key: key},
	}, e)
	if err != nil {
		return fmt.Errorf("init hunt server: %w", err)
	}

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve hunt: %w", err)
	}
	return nil
}

// decodeTeamPassKey accepts a base64 private key or seed. Blank yields a
// nil key, which the web server replaces with an ephemeral one.
func decodeTeamPassKey(value string) (ed25519.PrivateKey, error) {
	if value == "" {
		return nil, nil
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(value)
	}
	if err != nil {
		return nil, fmt.Errorf("decode team pass key: %w", err)
	}
	switch len(decoded) {
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(decoded), nil
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(decoded), nil
	default:
		return nil, errors.New("team pass key must be an Ed25519 private key or seed")
	}
}
