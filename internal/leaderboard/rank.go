package leaderboard

import (
	"sort"
	"strings"

	"github.com/mauv0809/whack-a-blob/internal/ledger"
)

// Rank orders snapshots by score descending and assigns positions 1..N.
// Equal scores are ordered by who reached the score first, then by player id,
// so every player gets a distinct position.
func Rank(snapshots []ledger.Snapshot, seasonName string) []Entry {
	sorted := make([]ledger.Snapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.ReachedAt.Equal(b.ReachedAt) {
			return a.ReachedAt.Before(b.ReachedAt)
		}
		return a.PlayerID < b.PlayerID
	})

	entries := make([]Entry, len(sorted))
	for i, snap := range sorted {
		entries[i] = Entry{
			Player:   snap.Address,
			Score:    snap.Score,
			Season:   seasonName,
			Position: i + 1,
		}
	}
	return entries
}

// FindPlayer returns the entry of address, matched case-insensitively.
func FindPlayer(entries []Entry, address string) (*Entry, error) {
	for i := range entries {
		if strings.EqualFold(entries[i].Player, address) {
			found := entries[i]
			return &found, nil
		}
	}
	return nil, ErrPlayerNotFound
}
