package schedule

import (
	"errors"
	"fmt"

	"github.com/derekprior/doubles/internal/strategy"
)

// DefaultMaxRounds bounds generation when Options.MaxRounds is unset.
const DefaultMaxRounds = 20

// ErrInvalidInput is returned when the roster or court count cannot produce
// any match.
var ErrInvalidInput = errors.New("invalid input")

// State is the terminal state of a generation run.
type State int

const (
	StateBuilding State = iota
	StateCompleted
	StateExhausted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateCompleted:
		return "completed"
	case StateExhausted:
		return "exhausted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options controls when generation stops and how matches are selected.
type Options struct {
	MaxRounds            int // 0 selects DefaultMaxRounds
	TargetGamesPerPlayer int // stop once every player has this many games; 0 disables
	AllowResplits        bool
	DisableFallback      bool
	BacktrackFactor      int              // 0 selects DefaultBacktrackFactor
	Balance              strategy.Balance // nil selects strategy.Strict
}

// PlayerMetrics holds per-player schedule statistics.
type PlayerMetrics struct {
	Games    int
	SatOut   int
	Partners int // distinct teammates
}

// RepeatedPartnership is a pair that partnered more than once.
type RepeatedPartnership struct {
	Partnership
	Times int
}

// Result is the schedule plus the generation report.
type Result struct {
	Rounds               []Round
	State                State
	GameCounts           map[PlayerID]int
	Metrics              map[PlayerID]*PlayerMetrics
	FallbackMatches      int
	PartialRounds        []int // rounds that left at least one fillable court empty
	RepeatedPartnerships []RepeatedPartnership
	Skew                 int
	DegradedFairness     bool
}

// RoundsGenerated returns the number of rounds in the schedule.
func (r *Result) RoundsGenerated() int {
	return len(r.Rounds)
}

// Matches returns every match in round then court order.
func (r *Result) Matches() []Match {
	var out []Match
	for _, rd := range r.Rounds {
		out = append(out, rd.Matches...)
	}
	return out
}

// Generate builds a doubles schedule for roster on the given number of
// courts. Invalid input yields a Failed result with an error wrapping
// ErrInvalidInput. Every other outcome returns a nil error, with the terminal
// state and any partial schedule described by the Result.
func Generate(roster []PlayerID, courts int, opts Options) (*Result, error) {
	if err := validateInput(roster, courts); err != nil {
		return &Result{
			State:      StateFailed,
			GameCounts: map[PlayerID]int{},
			Metrics:    map[PlayerID]*PlayerMetrics{},
		}, err
	}

	g := newGenerator(roster, courts, opts)
	g.run()
	return g.result(), nil
}

func validateInput(roster []PlayerID, courts int) error {
	if len(roster) < 4 {
		return fmt.Errorf("%w: roster has %d players, at least 4 are required", ErrInvalidInput, len(roster))
	}
	if courts < 1 {
		return fmt.Errorf("%w: courts must be at least 1, got %d", ErrInvalidInput, courts)
	}
	seen := make(map[PlayerID]bool, len(roster))
	for _, p := range roster {
		if seen[p] {
			return fmt.Errorf("%w: player %d appears twice in the roster", ErrInvalidInput, p)
		}
		seen[p] = true
	}
	return nil
}

type generator struct {
	roster []PlayerID
	courts int
	opts   Options

	partners *PartnershipTracker
	games    *GameCountTracker
	builder  *roundBuilder

	rounds []Round
	state  State
}

func newGenerator(roster []PlayerID, courts int, opts Options) *generator {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if opts.BacktrackFactor <= 0 {
		opts.BacktrackFactor = DefaultBacktrackFactor
	}
	if opts.Balance == nil {
		opts.Balance = strategy.Strict{}
	}

	owned := make([]PlayerID, len(roster))
	copy(owned, roster)

	partners := NewPartnershipTracker(len(owned))
	games := NewGameCountTracker(owned)
	return &generator{
		roster:   owned,
		courts:   courts,
		opts:     opts,
		partners: partners,
		games:    games,
		builder: &roundBuilder{
			roster:   owned,
			courts:   courts,
			partners: partners,
			games:    games,
			selector: &matchSelector{
				partners:      partners,
				factor:        opts.BacktrackFactor,
				allowResplits: opts.AllowResplits,
				fallback:      !opts.DisableFallback,
			},
			balance: opts.Balance,
		},
		state: StateBuilding,
	}
}

func (g *generator) run() {
	for g.state == StateBuilding {
		if len(g.rounds) > 0 && g.shouldStop() {
			g.state = StateCompleted
			return
		}
		round, ok := g.builder.build(len(g.rounds) + 1)
		if !ok {
			g.state = StateExhausted
			return
		}
		g.rounds = append(g.rounds, round)
	}
}

func (g *generator) shouldStop() bool {
	if g.partners.Remaining() == 0 {
		return true
	}
	if len(g.rounds) >= g.opts.MaxRounds {
		return true
	}
	if g.opts.TargetGamesPerPlayer > 0 && g.games.Min() >= g.opts.TargetGamesPerPlayer {
		return true
	}
	return false
}

func (g *generator) result() *Result {
	res := &Result{
		Rounds:               g.rounds,
		State:                g.state,
		GameCounts:           g.games.Snapshot(),
		Metrics:              g.buildMetrics(),
		RepeatedPartnerships: g.partners.repeated(),
		Skew:                 g.games.Skew(),
	}
	res.DegradedFairness = res.Skew > 1

	fillable := g.courts
	if max := len(g.roster) / 4; fillable > max {
		fillable = max
	}
	for _, rd := range g.rounds {
		if len(rd.Matches) < fillable {
			res.PartialRounds = append(res.PartialRounds, rd.Number)
		}
		for _, m := range rd.Matches {
			if m.Fallback {
				res.FallbackMatches++
			}
		}
	}
	return res
}

func (g *generator) buildMetrics() map[PlayerID]*PlayerMetrics {
	metrics := make(map[PlayerID]*PlayerMetrics, len(g.roster))
	partners := make(map[PlayerID]map[PlayerID]bool, len(g.roster))
	for _, p := range g.roster {
		metrics[p] = &PlayerMetrics{Games: g.games.Count(p)}
		partners[p] = make(map[PlayerID]bool)
	}

	for _, rd := range g.rounds {
		for _, p := range rd.SittingOut {
			metrics[p].SatOut++
		}
		for _, m := range rd.Matches {
			for _, t := range []Team{m.Team1, m.Team2} {
				partners[t[0]][t[1]] = true
				partners[t[1]][t[0]] = true
			}
		}
	}
	for p, set := range partners {
		metrics[p].Partners = len(set)
	}
	return metrics
}
