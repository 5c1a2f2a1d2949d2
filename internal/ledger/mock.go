package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Mock is an in-memory Ledger for tests. It is safe for concurrent use.
type Mock struct {
	mu      sync.Mutex
	records []ScoreRecord
	nextID  int64

	Now func() time.Time
	// Addresses maps player ids to addresses for LatestSnapshots.
	Addresses map[int64]string

	AppendScoreFunc         func(ctx context.Context, playerID, seasonID, delta int64, source Source) (*ScoreRecord, error)
	CountRecordsBetweenFunc func(ctx context.Context, playerID, seasonID int64, from, to time.Time) (int, error)

	AppendScoreCalls []struct {
		PlayerID int64
		SeasonID int64
		Delta    int64
		Source   Source
	}
	LatestSnapshotsCalls []int64
}

func NewMock() *Mock {
	return &Mock{Now: time.Now, Addresses: make(map[int64]string)}
}

// Records returns a copy of every record appended so far.
func (m *Mock) Records() []ScoreRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ScoreRecord(nil), m.records...)
}

func (m *Mock) latest(playerID, seasonID int64) (ScoreRecord, bool) {
	var found ScoreRecord
	ok := false
	for _, r := range m.records {
		if r.PlayerID == playerID && r.SeasonID == seasonID && (!ok || r.Version > found.Version) {
			found, ok = r, true
		}
	}
	return found, ok
}

func (m *Mock) LatestScore(ctx context.Context, playerID, seasonID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, _ := m.latest(playerID, seasonID)
	return r.Score, nil
}

func (m *Mock) AppendScore(ctx context.Context, playerID, seasonID, delta int64, source Source) (*ScoreRecord, error) {
	m.mu.Lock()
	m.AppendScoreCalls = append(m.AppendScoreCalls, struct {
		PlayerID int64
		SeasonID int64
		Delta    int64
		Source   Source
	}{playerID, seasonID, delta, source})
	fn := m.AppendScoreFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, playerID, seasonID, delta, source)
	}
	return m.Append(playerID, seasonID, delta, source)
}

// Append stores a record without going through AppendScoreFunc.
func (m *Mock) Append(playerID, seasonID, delta int64, source Source) (*ScoreRecord, error) {
	if err := ValidateDelta(delta); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, _ := m.latest(playerID, seasonID)
	score, err := addScore(prev.Score, delta)
	if err != nil {
		return nil, err
	}
	m.nextID++
	r := ScoreRecord{
		ID:        m.nextID,
		PlayerID:  playerID,
		SeasonID:  seasonID,
		Score:     score,
		Version:   prev.Version + 1,
		Delta:     delta,
		Source:    source,
		CreatedAt: m.Now().UTC(),
	}
	m.records = append(m.records, r)
	return &r, nil
}

func (m *Mock) CountRecordsBetween(ctx context.Context, playerID, seasonID int64, from, to time.Time) (int, error) {
	m.mu.Lock()
	fn := m.CountRecordsBetweenFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, playerID, seasonID, from, to)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.records {
		if r.PlayerID == playerID && r.SeasonID == seasonID && !r.CreatedAt.Before(from) && r.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (m *Mock) GetRecord(ctx context.Context, recordID int64) (*ScoreRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == recordID {
			return &r, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *Mock) LatestSnapshots(ctx context.Context, seasonID int64) ([]Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LatestSnapshotsCalls = append(m.LatestSnapshotsCalls, seasonID)

	byPlayer := make(map[int64]*Snapshot)
	for _, r := range m.records {
		if r.SeasonID != seasonID {
			continue
		}
		latest, _ := m.latest(r.PlayerID, seasonID)
		snap, ok := byPlayer[r.PlayerID]
		if !ok {
			snap = &Snapshot{
				RecordID:  latest.ID,
				PlayerID:  r.PlayerID,
				Address:   m.Addresses[r.PlayerID],
				Score:     latest.Score,
				ReachedAt: latest.CreatedAt,
			}
			byPlayer[r.PlayerID] = snap
		}
		if r.Score == latest.Score && r.CreatedAt.Before(snap.ReachedAt) {
			snap.ReachedAt = r.CreatedAt
		}
	}

	snapshots := make([]Snapshot, 0, len(byPlayer))
	for _, snap := range byPlayer {
		snapshots = append(snapshots, *snap)
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].PlayerID < snapshots[j].PlayerID })
	return snapshots, nil
}
