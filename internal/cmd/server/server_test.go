package server

import (
	"crypto/ed25519"
	"encoding/base64"
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "localhost:8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "localhost:8080")
	}
	if cfg.DBPath != "trailhunt.db" {
		t.Fatalf("DBPath = %q, want %q", cfg.DBPath, "trailhunt.db")
	}
	if cfg.ProgressModel != "events" {
		t.Fatalf("ProgressModel = %q, want %q", cfg.ProgressModel, "events")
	}
	if cfg.RedOffset != 0 || cfg.BlueOffset != 5 {
		t.Fatalf("offsets = %d/%d, want 0/5", cfg.RedOffset, cfg.BlueOffset)
	}
}

func TestParseConfigEnvDefaults(t *testing.T) {
	t.Setenv("TRAILHUNT_HTTP_ADDR", "0.0.0.0:9999")
	t.Setenv("TRAILHUNT_PROGRESS_MODEL", "counter")
	t.Setenv("TRAILHUNT_BLUE_OFFSET", "10")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "0.0.0.0:9999" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.ProgressModel != "counter" {
		t.Fatalf("ProgressModel = %q", cfg.ProgressModel)
	}
	if cfg.BlueOffset != 10 {
		t.Fatalf("BlueOffset = %d, want 10", cfg.BlueOffset)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("TRAILHUNT_HTTP_ADDR", "0.0.0.0:9999")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", "localhost:7000", "-db", "other.db"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "localhost:7000" {
		t.Fatalf("HTTPAddr = %q, want flag value", cfg.HTTPAddr)
	}
	if cfg.DBPath != "other.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
}

func TestParseConfigRejectsBadOffset(t *testing.T) {
	t.Setenv("TRAILHUNT_BLUE_OFFSET", "five")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected error for non-numeric offset")
	}
}

func TestDecodeTeamPassKey(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	private := ed25519.NewKeyFromSeed(seed)

	fromSeed, err := decodeTeamPassKey(base64.StdEncoding.EncodeToString(seed))
	if err != nil {
		t.Fatalf("decode seed: %v", err)
	}
	if !fromSeed.Equal(private) {
		t.Fatal("seed-derived key mismatch")
	}

	fromKey, err := decodeTeamPassKey(base64.RawStdEncoding.EncodeToString(private))
	if err != nil {
		t.Fatalf("decode key: %v", err)
	}
	if !fromKey.Equal(private) {
		t.Fatal("private key mismatch")
	}

	if key, err := decodeTeamPassKey(""); err != nil || key != nil {
		t.Fatalf("blank key = %v, %v, want nil, nil", key, err)
	}
	if _, err := decodeTeamPassKey("%%%"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	if _, err := decodeTeamPassKey(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Fatal("expected error for wrong key length")
	}
}
