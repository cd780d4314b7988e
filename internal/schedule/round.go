package schedule

import "github.com/derekprior/doubles/internal/strategy"

// Match is one 2v2 game on a court.
type Match struct {
	Round    int
	Court    int
	Team1    Team
	Team2    Team
	Fallback bool // selected under the relaxed partnership rule
}

// Players returns the four players of the match, team 1 first.
func (m Match) Players() [4]PlayerID {
	return [4]PlayerID{m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1]}
}

// Round is the set of matches played concurrently.
type Round struct {
	Number     int
	Matches    []Match
	SittingOut []PlayerID
}

// roundBuilder fills the courts for one round and commits the round to the
// trackers only when it is accepted.
type roundBuilder struct {
	roster   []PlayerID
	courts   int
	partners *PartnershipTracker
	games    *GameCountTracker
	selector *matchSelector
	balance  strategy.Balance
}

// build attempts round number n. When the balance policy refuses the round,
// it is rebuilt with the lowest-count players required on every court. It
// returns false, leaving the trackers untouched, when no court could be
// filled or the policy refuses both attempts.
func (b *roundBuilder) build(n int) (Round, bool) {
	placed, matches := b.fill(n, false)
	if len(matches) > 0 && !b.balance.AcceptRound(b.projected(placed)) {
		placed, matches = b.fill(n, true)
		if len(matches) > 0 && !b.balance.AcceptRound(b.projected(placed)) {
			return Round{}, false
		}
	}
	if len(matches) == 0 {
		return Round{}, false
	}

	for _, m := range matches {
		b.partners.MarkPlayed(m.Team1[0], m.Team1[1])
		b.partners.MarkPlayed(m.Team2[0], m.Team2[1])
		b.partners.markGrouped(m.Players())
		b.games.Increment(m.Players())
	}

	return Round{
		Number:     n,
		Matches:    matches,
		SittingOut: b.unplaced(placed),
	}, true
}

// fill selects matches court by court without touching the trackers. With
// seatLowest, each match must include the unplaced players on the fewest
// games, up to all four seats.
func (b *roundBuilder) fill(n int, seatLowest bool) (map[PlayerID]bool, []Match) {
	placed := make(map[PlayerID]bool)
	var matches []Match

	for court := 1; court <= b.courts; court++ {
		eligible := b.games.Rank(b.unplaced(placed))
		if len(eligible) < 4 {
			break
		}
		var q quota
		if seatLowest {
			q = b.lowestQuota(eligible)
		}
		sel, ok := b.selector.Select(eligible, q)
		if !ok {
			// Later courts would see the same eligible players.
			break
		}
		for _, p := range sel.players() {
			placed[p] = true
		}
		matches = append(matches, Match{
			Round:    n,
			Court:    court,
			Team1:    sel.team1,
			Team2:    sel.team2,
			Fallback: sel.relaxed,
		})
	}
	return placed, matches
}

// lowestQuota requires the eligible players at the roster minimum.
func (b *roundBuilder) lowestQuota(eligible []PlayerID) quota {
	min := b.games.Min()
	q := quota{low: make(map[PlayerID]bool)}
	for _, p := range eligible {
		if b.games.Count(p) == min {
			q.low[p] = true
		}
	}
	q.need = len(q.low)
	if q.need > 4 {
		q.need = 4
	}
	return q
}

// unplaced returns roster members not yet placed, in roster order.
func (b *roundBuilder) unplaced(placed map[PlayerID]bool) []PlayerID {
	var out []PlayerID
	for _, p := range b.roster {
		if !placed[p] {
			out = append(out, p)
		}
	}
	return out
}

// projected returns per-player game counts, in roster order, as they would
// be after this round.
func (b *roundBuilder) projected(placed map[PlayerID]bool) []int {
	counts := make([]int, len(b.roster))
	for i, p := range b.roster {
		counts[i] = b.games.Count(p)
		if placed[p] {
			counts[i]++
		}
	}
	return counts
}
