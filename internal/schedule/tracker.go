package schedule

import "sort"

// PlayerID identifies a player within a roster.
type PlayerID int

// Partnership is an unordered pair of teammates, stored smaller id first.
type Partnership struct {
	A, B PlayerID
}

// NewPartnership returns the canonical form of the pair {a, b}.
func NewPartnership(a, b PlayerID) Partnership {
	if a > b {
		a, b = b, a
	}
	return Partnership{a, b}
}

// foursome is the sorted set of players sharing a court.
type foursome [4]PlayerID

func newFoursome(players [4]PlayerID) foursome {
	f := foursome(players)
	sort.Slice(f[:], func(i, j int) bool { return f[i] < f[j] })
	return f
}

// PartnershipTracker records which pairs have already been teammates and
// which foursomes have already shared a court.
type PartnershipTracker struct {
	total  int
	used   map[Partnership]int
	groups map[foursome]bool
}

// NewPartnershipTracker returns an empty tracker for a roster of n players.
func NewPartnershipTracker(n int) *PartnershipTracker {
	return &PartnershipTracker{
		total:  n * (n - 1) / 2,
		used:   make(map[Partnership]int),
		groups: make(map[foursome]bool),
	}
}

// HasPlayed reports whether a and b have been teammates.
func (t *PartnershipTracker) HasPlayed(a, b PlayerID) bool {
	return t.used[NewPartnership(a, b)] > 0
}

// MarkPlayed records one more occurrence of the partnership {a, b}.
func (t *PartnershipTracker) MarkPlayed(a, b PlayerID) {
	t.used[NewPartnership(a, b)]++
}

// Times returns how often a and b have been teammates.
func (t *PartnershipTracker) Times(a, b PlayerID) int {
	return t.used[NewPartnership(a, b)]
}

// Remaining returns the number of partnerships never used.
func (t *PartnershipTracker) Remaining() int {
	return t.total - len(t.used)
}

func (t *PartnershipTracker) hasGrouped(players [4]PlayerID) bool {
	return t.groups[newFoursome(players)]
}

func (t *PartnershipTracker) markGrouped(players [4]PlayerID) {
	t.groups[newFoursome(players)] = true
}

// repeated returns partnerships used more than once, in canonical order.
func (t *PartnershipTracker) repeated() []RepeatedPartnership {
	var out []RepeatedPartnership
	for p, n := range t.used {
		if n > 1 {
			out = append(out, RepeatedPartnership{Partnership: p, Times: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// GameCountTracker records games played per roster member.
type GameCountTracker struct {
	roster []PlayerID
	counts map[PlayerID]int
}

// NewGameCountTracker returns a tracker with every roster member at zero.
func NewGameCountTracker(roster []PlayerID) *GameCountTracker {
	counts := make(map[PlayerID]int, len(roster))
	for _, p := range roster {
		counts[p] = 0
	}
	return &GameCountTracker{roster: roster, counts: counts}
}

// Count returns the games played by p.
func (t *GameCountTracker) Count(p PlayerID) int {
	return t.counts[p]
}

// Increment adds one game for each of the four players.
func (t *GameCountTracker) Increment(players [4]PlayerID) {
	for _, p := range players {
		t.counts[p]++
	}
}

// Min returns the fewest games played by any roster member.
func (t *GameCountTracker) Min() int {
	if len(t.roster) == 0 {
		return 0
	}
	min := t.counts[t.roster[0]]
	for _, p := range t.roster[1:] {
		if c := t.counts[p]; c < min {
			min = c
		}
	}
	return min
}

// Max returns the most games played by any roster member.
func (t *GameCountTracker) Max() int {
	max := 0
	for _, p := range t.roster {
		if c := t.counts[p]; c > max {
			max = c
		}
	}
	return max
}

// Skew is Max minus Min.
func (t *GameCountTracker) Skew() int {
	return t.Max() - t.Min()
}

// Rank returns a copy of players ordered by games played, then by id.
func (t *GameCountTracker) Rank(players []PlayerID) []PlayerID {
	ranked := make([]PlayerID, len(players))
	copy(ranked, players)
	sort.Slice(ranked, func(i, j int) bool {
		ci, cj := t.counts[ranked[i]], t.counts[ranked[j]]
		if ci != cj {
			return ci < cj
		}
		return ranked[i] < ranked[j]
	})
	return ranked
}

// Snapshot returns a copy of the current counts.
func (t *GameCountTracker) Snapshot() map[PlayerID]int {
	out := make(map[PlayerID]int, len(t.counts))
	for p, c := range t.counts {
		out[p] = c
	}
	return out
}
