// Package seed loads a YAML clue catalog into the hunt store. It is run
// once before an event and again whenever clue content changes; loads
// are upserts, so re-running it never disturbs team progress.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/trailhunt/internal/platform/config"
	"github.com/louisbranch/trailhunt/internal/services/hunt/domain"
	"github.com/louisbranch/trailhunt/internal/services/hunt/storage"
	sqlitestore "github.com/louisbranch/trailhunt/internal/services/hunt/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath      string `env:"TRAILHUNT_DB_PATH" envDefault:"trailhunt.db"`
	CatalogPath string `env:"TRAILHUNT_CLUE_CATALOG"`
	Verbose     bool
}

// ParseConfig loads environment defaults into a Config and then applies
// command-line flags on top.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.CatalogPath, "clues", cfg.CatalogPath, "clue catalog YAML file")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.CatalogPath) == "" {
		return Config{}, fmt.Errorf("-clues is required")
	}
	return cfg, nil
}

// catalogFile is the on-disk shape of a clue catalog.
type catalogFile struct {
	Groups map[string][]catalogClue `yaml:"groups"`
}

type catalogClue struct {
	Position int    `yaml:"position"`
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Hint     string `yaml:"hint"`
}

// LoadCatalog parses and validates a clue catalog. Each group's positions
// must form an unbroken run starting at 1; a gap would strand every team
// at the position before it.
func LoadCatalog(r io.Reader, tracks domain.Tracks) ([]domain.Clue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var parsed catalogFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(parsed.Groups) == 0 {
		return nil, fmt.Errorf("catalog defines no groups")
	}

	groupNames := make([]string, 0, len(parsed.Groups))
	for name := range parsed.Groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	var clues []domain.Clue
	for _, name := range groupNames {
		group, err := tracks.ParseGroup(name)
		if err != nil {
			return nil, fmt.Errorf("catalog group %q: %w", name, err)
		}

		entries := parsed.Groups[name]
		seen := make(map[int]bool, len(entries))
		for _, entry := range entries {
			if entry.Position < 1 {
				return nil, fmt.Errorf("group %q: position %d must be >= 1", name, entry.Position)
			}
			if seen[entry.Position] {
				return nil, fmt.Errorf("group %q: duplicate position %d", name, entry.Position)
			}
			seen[entry.Position] = true
			if strings.TrimSpace(entry.Question) == "" {
				return nil, fmt.Errorf("group %q position %d: question is required", name, entry.Position)
			}
			if strings.TrimSpace(entry.Answer) == "" {
				return nil, fmt.Errorf("group %q position %d: answer is required", name, entry.Position)
			}
			clues = append(clues, domain.Clue{
				Group:    group,
				Position: entry.Position,
				Question: entry.Question,
				Answer:   entry.Answer,
				Hint:     entry.Hint,
			})
		}
		for want := 1; want <= len(entries); want++ {
			if !seen[want] {
				return nil, fmt.Errorf("group %q: missing position %d", name, want)
			}
		}
	}
	return clues, nil
}

// Run loads the catalog and upserts every clue.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	file, err := os.Open(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	clues, err := LoadCatalog(file, domain.DefaultTracks())
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

	return Load(ctx, store, clues, cfg.Verbose, out)
}

// Load upserts clues into any clue store.
func Load(ctx context.Context, clues storage.ClueStore, catalog []domain.Clue, verbose bool, out io.Writer) error {
	for _, clue := range catalog {
		if err := clues.PutClue(ctx, clue); err != nil {
			return fmt.Errorf("put clue %s/%d: %w", clue.Group, clue.Position, err)
		}
		if verbose {
			fmt.Fprintf(out, "clue %s/%d: %s\n", clue.Group, clue.Position, clue.Question)
		}
	}
	fmt.Fprintf(out, "loaded %d clues\n", len(catalog))
	return nil
}
