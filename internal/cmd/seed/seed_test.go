package seed

import (
	"context"
	"flag"
	"strings"
	"testing"

	"github.com/louisbranch/trailhunt/internal/services/hunt/domain"
	"github.com/louisbranch/trailhunt/internal/services/hunt/storage/memory"
)

const validCatalog = `
groups:
  red:
    - position: 1
      question: "How many legs does a spider have?"
      answer: "8"
      hint: "Head to the library."
    - position: 2
      question: "What color is the town hall door?"
      answer: "green"
  blue:
    - position: 1
      question: "Count the fountain statues."
      answer: "3"
`

func TestLoadCatalog(t *testing.T) {
	clues, err := LoadCatalog(strings.NewReader(validCatalog), domain.DefaultTracks())
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(clues) != 3 {
		t.Fatalf("len(clues) = %d, want 3", len(clues))
	}
	// Groups come back in sorted order, blue first.
	if clues[0].Group != domain.GroupBlue || clues[0].Position != 1 {
		t.Fatalf("clues[0] = %s/%d", clues[0].Group, clues[0].Position)
	}
	if clues[1].Hint != "Head to the library." {
		t.Fatalf("hint = %q", clues[1].Hint)
	}
}

func TestLoadCatalogRejections(t *testing.T) {
	tests := []struct {
		name    string
		catalog string
		wantErr string
	}{
		{
			name:    "empty",
			catalog: "groups: {}",
			wantErr: "no groups",
		},
		{
			name: "unknown group",
			catalog: `
groups:
  purple:
    - {position: 1, question: q, answer: a}
`,
			wantErr: "purple",
		},
		{
			name: "duplicate position",
			catalog: `
groups:
  red:
    - {position: 1, question: q, answer: a}
    - {position: 1, question: q2, answer: a2}
`,
			wantErr: "duplicate position 1",
		},
		{
			name: "gap strands teams",
			catalog: `
groups:
  red:
    - {position: 1, question: q, answer: a}
    - {position: 3, question: q3, answer: a3}
`,
			wantErr: "missing position 2",
		},
		{
			name: "blank answer",
			catalog: `
groups:
  red:
    - {position: 1, question: q, answer: "  "}
`,
			wantErr: "answer is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(strings.NewReader(tt.catalog), domain.DefaultTracks())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadUpserts(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	clues, err := LoadCatalog(strings.NewReader(validCatalog), domain.DefaultTracks())
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	var out strings.Builder
	if err := Load(ctx, store, clues, false, &out); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !strings.Contains(out.String(), "loaded 3 clues") {
		t.Fatalf("output = %q", out.String())
	}

	stored, err := store.ClueByPosition(ctx, domain.GroupRed, 2)
	if err != nil {
		t.Fatalf("ClueByPosition: %v", err)
	}
	if stored.Answer != "green" {
		t.Fatalf("answer = %q", stored.Answer)
	}

	// Re-running replaces content without error.
	clues[0].Question = "Updated"
	if err := Load(ctx, store, clues, false, &out); err != nil {
		t.Fatalf("Load() rerun error = %v", err)
	}
	updated, err := store.ClueByPosition(ctx, clues[0].Group, clues[0].Position)
	if err != nil {
		t.Fatalf("ClueByPosition: %v", err)
	}
	if updated.Question != "Updated" {
		t.Fatalf("question = %q", updated.Question)
	}
}

func TestParseConfigRequiresCatalog(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected error without -clues")
	}

	t.Setenv("TRAILHUNT_DB_PATH", "custom.db")
	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-clues", "clues.yaml"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.DBPath != "custom.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.CatalogPath != "clues.yaml" {
		t.Fatalf("CatalogPath = %q", cfg.CatalogPath)
	}
}

func TestParseConfigCatalogFromEnv(t *testing.T) {
	t.Setenv("TRAILHUNT_CLUE_CATALOG", "event.yaml")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.CatalogPath != "event.yaml" {
		t.Fatalf("CatalogPath = %q", cfg.CatalogPath)
	}
}
