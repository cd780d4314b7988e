package schedule

import (
	"reflect"
	"testing"

	"github.com/derekprior/doubles/internal/strategy"
)

func newTestBuilder(n, courts int, balance strategy.Balance) *roundBuilder {
	ids := roster(n)
	partners := NewPartnershipTracker(n)
	return &roundBuilder{
		roster:   ids,
		courts:   courts,
		partners: partners,
		games:    NewGameCountTracker(ids),
		selector: newTestSelector(partners),
		balance:  balance,
	}
}

func TestBuildRoundFillsCourts(t *testing.T) {
	b := newTestBuilder(8, 2, strategy.Priority{})

	round, ok := b.build(1)
	if !ok {
		t.Fatal("build() rejected the first round")
	}

	t.Run("two matches on consecutive courts", func(t *testing.T) {
		if len(round.Matches) != 2 {
			t.Fatalf("matches = %d, want 2", len(round.Matches))
		}
		for i, m := range round.Matches {
			if m.Court != i+1 || m.Round != 1 {
				t.Errorf("match %d at round %d court %d, want round 1 court %d", i, m.Round, m.Court, i+1)
			}
		}
		if round.Matches[1].Team1 != (Team{5, 6}) || round.Matches[1].Team2 != (Team{7, 8}) {
			t.Errorf("court 2 = %v vs %v, want [5 6] vs [7 8]", round.Matches[1].Team1, round.Matches[1].Team2)
		}
	})

	t.Run("trackers committed", func(t *testing.T) {
		if b.partners.Remaining() != 24 {
			t.Errorf("Remaining() = %d, want 24", b.partners.Remaining())
		}
		for _, p := range roster(8) {
			if b.games.Count(p) != 1 {
				t.Errorf("player %d has %d games, want 1", p, b.games.Count(p))
			}
		}
	})

	t.Run("nobody sits out", func(t *testing.T) {
		if len(round.SittingOut) != 0 {
			t.Errorf("sitting out = %v, want none", round.SittingOut)
		}
	})
}

func TestBuildRoundSkipsUnfillableCourt(t *testing.T) {
	b := newTestBuilder(5, 2, strategy.Priority{})

	round, ok := b.build(1)
	if !ok {
		t.Fatal("build() rejected a round with one fillable court")
	}
	if len(round.Matches) != 1 {
		t.Errorf("matches = %d, want 1", len(round.Matches))
	}
	if !reflect.DeepEqual(round.SittingOut, []PlayerID{5}) {
		t.Errorf("sitting out = %v, want [5]", round.SittingOut)
	}
	if b.games.Count(5) != 0 {
		t.Errorf("sitting out counted as a game: %d", b.games.Count(5))
	}
}

func TestBuildRoundRejectionLeavesTrackersUntouched(t *testing.T) {
	b := newTestBuilder(4, 1, strategy.Priority{})
	b.partners.MarkPlayed(1, 2)
	b.partners.MarkPlayed(3, 4)
	b.partners.markGrouped([4]PlayerID{1, 2, 3, 4})

	if _, ok := b.build(2); ok {
		t.Fatal("build() accepted a round with no novel foursome")
	}
	if b.partners.Remaining() != 4 {
		t.Errorf("Remaining() = %d, want 4", b.partners.Remaining())
	}
	if b.games.Max() != 0 {
		t.Errorf("games recorded for a rejected round: max %d", b.games.Max())
	}
}

func TestBuildRoundBalancePolicy(t *testing.T) {
	// Players 1-4 are two games ahead; any match must seat two of them.
	setup := func(balance strategy.Balance) *roundBuilder {
		b := newTestBuilder(6, 1, balance)
		b.games.Increment([4]PlayerID{1, 2, 3, 4})
		b.games.Increment([4]PlayerID{1, 2, 3, 4})
		return b
	}

	t.Run("priority accepts", func(t *testing.T) {
		b := setup(strategy.Priority{})
		round, ok := b.build(3)
		if !ok {
			t.Fatal("priority policy rejected the round")
		}
		m := round.Matches[0]
		if m.Team1 != (Team{5, 6}) || m.Team2 != (Team{1, 2}) {
			t.Errorf("match = %v vs %v, want [5 6] vs [1 2]", m.Team1, m.Team2)
		}
	})

	t.Run("strict rejects projected skew above one", func(t *testing.T) {
		b := setup(strategy.Strict{})
		if _, ok := b.build(3); ok {
			t.Fatal("strict policy accepted a round leaving skew 2")
		}
		if b.games.Count(5) != 0 || b.partners.HasPlayed(5, 6) {
			t.Error("rejected round mutated the trackers")
		}
	})
}

func TestBuildRoundSeatsLowestCountPlayers(t *testing.T) {
	// Players 5 and 6 are a game behind, and 5 has partnered everyone, so
	// the first pass skips them and seats 6 with three players already ahead.
	setup := func(balance strategy.Balance) *roundBuilder {
		b := newTestBuilder(6, 1, balance)
		for _, p := range [][2]PlayerID{{1, 2}, {3, 4}, {1, 5}, {2, 5}, {3, 5}, {4, 5}, {5, 6}} {
			b.partners.MarkPlayed(p[0], p[1])
		}
		b.partners.markGrouped([4]PlayerID{1, 2, 3, 4})
		b.games.Increment([4]PlayerID{1, 2, 3, 4})
		return b
	}

	t.Run("priority keeps the first pass", func(t *testing.T) {
		b := setup(strategy.Priority{})
		round, ok := b.build(2)
		if !ok {
			t.Fatal("priority policy rejected the round")
		}
		m := round.Matches[0]
		if m.Team1 != (Team{6, 1}) || m.Team2 != (Team{2, 3}) {
			t.Errorf("match = %v vs %v, want [6 1] vs [2 3]", m.Team1, m.Team2)
		}
		if b.games.Skew() != 2 {
			t.Errorf("skew = %d, want 2", b.games.Skew())
		}
	})

	t.Run("strict rebuilds around the idle players", func(t *testing.T) {
		b := setup(strategy.Strict{})
		round, ok := b.build(2)
		if !ok {
			t.Fatal("strict policy rejected a round that can be balanced")
		}
		m := round.Matches[0]
		if m.Team1 != (Team{5, 6}) || m.Team2 != (Team{1, 3}) {
			t.Errorf("match = %v vs %v, want [5 6] vs [1 3]", m.Team1, m.Team2)
		}
		if !m.Fallback {
			t.Error("rebuilt match repeats 5 and 6, so it should be a fallback")
		}
		if b.games.Skew() != 1 {
			t.Errorf("skew = %d, want 1", b.games.Skew())
		}
		if !reflect.DeepEqual(round.SittingOut, []PlayerID{2, 4}) {
			t.Errorf("sitting out = %v, want [2 4]", round.SittingOut)
		}
	})
}
