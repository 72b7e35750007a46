// Package main provides a one-shot utility for team pass key generation.
//
// It emits the signing key the hunt server uses to issue team passes, so
// passes survive server restarts.
package main

import (
	"os"

	"github.com/louisbranch/trailhunt/internal/platform/config"
	"github.com/louisbranch/trailhunt/internal/tools/teampasskey"
)

func main() {
	if err := teampasskey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate team pass key: %v", err)
	}
}
