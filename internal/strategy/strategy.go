package strategy

import "fmt"

// Balance decides whether a round may be committed, given the game counts
// every roster member would have once the round is played.
type Balance interface {
	Name() string
	AcceptRound(projected []int) bool
}

// Get returns a Balance policy by name. An empty name selects strict.
func Get(name string) (Balance, error) {
	switch name {
	case "", "strict":
		return Strict{}, nil
	case "priority":
		return Priority{}, nil
	default:
		return nil, fmt.Errorf("unknown balance policy: %q", name)
	}
}

// Priority never rejects a round. Balance comes only from candidate ordering,
// which puts players with the fewest games first, so partnership coverage can
// win over even game counts.
type Priority struct{}

func (Priority) Name() string { return "priority" }

func (Priority) AcceptRound(projected []int) bool { return true }

// Strict rejects any round that would leave one player more than one game
// ahead of another. The round builder then retries the round with the
// lowest-count players seated first.
type Strict struct{}

func (Strict) Name() string { return "strict" }

func (Strict) AcceptRound(projected []int) bool {
	return Skew(projected) <= 1
}

// Skew returns max minus min of counts, or 0 for an empty slice.
func Skew(counts []int) int {
	if len(counts) == 0 {
		return 0
	}
	max, min := counts[0], counts[0]
	for _, c := range counts[1:] {
		if c > max {
			max = c
		}
		if c < min {
			min = c
		}
	}
	return max - min
}
