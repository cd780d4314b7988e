package schedule

// DefaultBacktrackFactor scales the per-court search budget, which is
// factor × k² examined pairs for k candidates.
const DefaultBacktrackFactor = 4

// Team is two partners sharing a side of the net.
type Team [2]PlayerID

// rule selects which team pairings a search will admit.
type rule int

const (
	// ruleStrict requires both partnerships of a match to be unused.
	ruleStrict rule = iota
	// ruleRelaxed requires at least one unused partnership.
	ruleRelaxed
)

// selection is a match found by the selector, before it is placed on a court.
type selection struct {
	team1, team2 Team
	relaxed      bool
}

func (s selection) players() [4]PlayerID {
	return [4]PlayerID{s.team1[0], s.team1[1], s.team2[0], s.team2[1]}
}

// matchSelector picks one match from an ordered candidate list.
type matchSelector struct {
	partners      *PartnershipTracker
	factor        int
	allowResplits bool
	fallback      bool
}

// quota requires a match to seat at least need players from low.
type quota struct {
	low  map[PlayerID]bool
	need int
}

func (q quota) met(players [4]PlayerID) bool {
	n := 0
	for _, p := range players {
		if q.low[p] {
			n++
		}
	}
	return n >= q.need
}

// Select returns the first match found scanning candidates in order that
// satisfies q. When no match satisfies the strict rule within budget, it
// retries once under the relaxed rule if fallback is enabled.
func (s *matchSelector) Select(candidates []PlayerID, q quota) (selection, bool) {
	if len(candidates) < 4 {
		return selection{}, false
	}
	limit := s.factor * len(candidates) * len(candidates)

	if sel, ok := s.search(candidates, ruleStrict, q, limit); ok {
		return sel, true
	}
	if !s.fallback {
		return selection{}, false
	}
	sel, ok := s.search(candidates, ruleRelaxed, q, limit)
	sel.relaxed = ok
	return sel, ok
}

func (s *matchSelector) search(candidates []PlayerID, r rule, q quota, limit int) (selection, bool) {
	st := &searchState{sel: s, rule: r, quota: q, limit: limit}
	t1, t2, ok := st.find(candidates, nil)
	if !ok {
		return selection{}, false
	}
	return selection{team1: t1, team2: t2}, true
}

// searchState carries the step budget through one depth-first search.
type searchState struct {
	sel   *matchSelector
	rule  rule
	quota quota
	steps int
	limit int
}

func (st *searchState) exhausted() bool {
	return st.steps >= st.limit
}

// find picks a team from list. With first == nil it picks team 1 and recurses
// for team 2 over the players after it; otherwise it completes the match.
// A head that yields no match is dropped and the next player becomes head.
func (st *searchState) find(list []PlayerID, first *Team) (Team, Team, bool) {
	for i := 0; i < len(list)-1; i++ {
		p1 := list[i]
		for j := i + 1; j < len(list); j++ {
			if st.exhausted() {
				return Team{}, Team{}, false
			}
			st.steps++

			p2 := list[j]
			if !st.admitPair(p1, p2) {
				continue
			}
			team := Team{p1, p2}

			if first == nil {
				rest := without(list[i+1:], j-i-1)
				if t1, t2, ok := st.find(rest, &team); ok {
					return t1, t2, true
				}
				continue
			}
			if st.admitMatch(*first, team) {
				return *first, team, true
			}
		}
	}
	return Team{}, Team{}, false
}

func (st *searchState) admitPair(a, b PlayerID) bool {
	if st.rule == ruleRelaxed {
		return true
	}
	return !st.sel.partners.HasPlayed(a, b)
}

func (st *searchState) admitMatch(t1, t2 Team) bool {
	players := [4]PlayerID{t1[0], t1[1], t2[0], t2[1]}
	if !st.quota.met(players) {
		return false
	}
	if !st.sel.allowResplits && st.sel.partners.hasGrouped(players) {
		return false
	}
	if st.rule == ruleRelaxed {
		return !st.sel.partners.HasPlayed(t1[0], t1[1]) || !st.sel.partners.HasPlayed(t2[0], t2[1])
	}
	return true
}

// without returns a copy of list with index i removed.
func without(list []PlayerID, i int) []PlayerID {
	out := make([]PlayerID, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
