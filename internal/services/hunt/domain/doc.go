// Package domain holds the treasure hunt's core types and rules: teams,
// groups with their track offsets, clues, answer checking, and the gating
// decision between a requested clue position and the position a team's
// durable progress allows.
package domain
