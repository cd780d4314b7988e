package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/derekprior/doubles/internal/config"
	"github.com/derekprior/doubles/internal/excel"
	"github.com/derekprior/doubles/internal/strategy"
	"github.com/xuri/excelize/v2"
)

// Violation represents a rule or guideline violation found during validation.
type Violation struct {
	Row     int
	Type    string // "error" or "warning"
	Message string
	Times   int // for repeated partnerships: how often the pair partnered (0 = not applicable)
}

// Validate reads a schedule workbook and checks it against the config.
func Validate(cfg *config.Config, path string) ([]Violation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	matches, bad, err := excel.ReadMatches(f)
	if err != nil {
		return nil, fmt.Errorf("reading matches: %w", err)
	}
	courts, err := excel.CourtColumns(f)
	if err != nil {
		return nil, fmt.Errorf("reading courts: %w", err)
	}

	var violations []Violation

	// Check hard rules
	violations = append(violations, checkCourtCount(cfg, courts)...)
	violations = append(violations, checkBadCells(bad)...)
	violations = append(violations, checkKnownPlayers(cfg, matches)...)
	violations = append(violations, checkDistinctPlayers(matches)...)
	violations = append(violations, checkOnePerRound(matches)...)
	violations = append(violations, checkRoundSequence(matches)...)

	// Check guidelines
	violations = append(violations, checkRepeatedPartnerships(matches)...)
	if !cfg.Pairing.AllowResplits {
		violations = append(violations, checkRepeatedFoursomes(matches)...)
	}
	violations = append(violations, checkBalance(cfg, matches)...)

	return violations, nil
}

func checkBadCells(bad []excel.BadCell) []Violation {
	var violations []Violation
	for _, c := range bad {
		violations = append(violations, Violation{
			Row:     c.Row,
			Type:    "error",
			Message: fmt.Sprintf("Round %d court %d: %q is not a match (want \"A & B vs C & D\")", c.Round, c.Court, c.Text),
		})
	}
	return violations
}

func checkCourtCount(cfg *config.Config, courts int) []Violation {
	if cfg.Courts > 0 && courts > cfg.Courts {
		return []Violation{{
			Row:     1,
			Type:    "error",
			Message: fmt.Sprintf("Schedule has %d court columns but only %d courts are configured", courts, cfg.Courts),
		}}
	}
	return nil
}

func checkKnownPlayers(cfg *config.Config, matches []excel.Match) []Violation {
	known := make(map[string]bool, len(cfg.Players))
	for _, name := range cfg.PlayerNames() {
		known[name] = true
	}

	var violations []Violation
	for _, m := range matches {
		for _, name := range m.Players() {
			if !known[name] {
				violations = append(violations, Violation{
					Row:     m.Row,
					Type:    "error",
					Message: fmt.Sprintf("Unknown player %q in round %d", name, m.Round),
				})
			}
		}
	}
	return violations
}

func checkDistinctPlayers(matches []excel.Match) []Violation {
	var violations []Violation
	for _, m := range matches {
		seen := make(map[string]bool, 4)
		for _, name := range m.Players() {
			if seen[name] {
				violations = append(violations, Violation{
					Row:     m.Row,
					Type:    "error",
					Message: fmt.Sprintf("%s appears twice in the round %d match on court %d", name, m.Round, m.Court),
				})
				break
			}
			seen[name] = true
		}
	}
	return violations
}

func checkOnePerRound(matches []excel.Match) []Violation {
	type playerRound struct {
		player string
		round  int
	}
	courts := make(map[playerRound][]int)
	rows := make(map[playerRound]int)
	for _, m := range matches {
		for _, name := range m.Players() {
			key := playerRound{name, m.Round}
			if n := len(courts[key]); n > 0 && courts[key][n-1] == m.Court {
				continue // duplicate within one match, reported elsewhere
			}
			courts[key] = append(courts[key], m.Court)
			rows[key] = m.Row
		}
	}

	var violations []Violation
	for key, list := range courts {
		if len(list) > 1 {
			violations = append(violations, Violation{
				Row:     rows[key],
				Type:    "error",
				Message: fmt.Sprintf("%s plays on %d courts in round %d", key.player, len(list), key.round),
			})
		}
	}
	sortViolations(violations)
	return violations
}

func checkRoundSequence(matches []excel.Match) []Violation {
	rounds := make(map[int]int) // round -> first row
	for _, m := range matches {
		if _, ok := rounds[m.Round]; !ok {
			rounds[m.Round] = m.Row
		}
	}

	var violations []Violation
	last := 0
	for r, row := range rounds {
		if r > last {
			last = r
		}
		if r < 1 {
			violations = append(violations, Violation{
				Row:     row,
				Type:    "error",
				Message: fmt.Sprintf("Round number %d must be at least 1", r),
			})
		}
	}
	for r := 1; r < last; r++ {
		if _, ok := rounds[r]; !ok {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("Round %d has no matches but later rounds do", r),
			})
		}
	}
	sortViolations(violations)
	return violations
}

func checkRepeatedPartnerships(matches []excel.Match) []Violation {
	type pairing struct {
		a, b string
	}
	key := func(x, y string) pairing {
		if y < x {
			x, y = y, x
		}
		return pairing{x, y}
	}

	times := make(map[pairing]int)
	lastRow := make(map[pairing]int)
	for _, m := range matches {
		for _, team := range [][2]string{m.Team1, m.Team2} {
			if team[0] == team[1] {
				continue
			}
			k := key(team[0], team[1])
			times[k]++
			lastRow[k] = m.Row
		}
	}

	var violations []Violation
	for k, n := range times {
		if n > 1 {
			violations = append(violations, Violation{
				Row:     lastRow[k],
				Type:    "warning",
				Message: fmt.Sprintf("%s and %s partner %d times", k.a, k.b, n),
				Times:   n,
			})
		}
	}
	sortViolations(violations)
	return violations
}

func checkRepeatedFoursomes(matches []excel.Match) []Violation {
	seen := make(map[string]int) // sorted foursome -> first round
	var violations []Violation
	for _, m := range matches {
		players := m.Players()
		names := players[:]
		sort.Strings(names)
		k := strings.Join(names, "\x00")
		if first, ok := seen[k]; ok {
			violations = append(violations, Violation{
				Row:     m.Row,
				Type:    "warning",
				Message: fmt.Sprintf("Round %d court %d re-splits the foursome from round %d", m.Round, m.Court, first),
			})
			continue
		}
		seen[k] = m.Round
	}
	return violations
}

func checkBalance(cfg *config.Config, matches []excel.Match) []Violation {
	games := make(map[string]int)
	for _, m := range matches {
		for _, name := range m.Players() {
			games[name]++
		}
	}

	var violations []Violation
	counts := make([]int, 0, len(cfg.Players))
	for _, name := range cfg.PlayerNames() {
		counts = append(counts, games[name])
		if games[name] == 0 && len(matches) > 0 {
			violations = append(violations, Violation{
				Type:    "warning",
				Message: fmt.Sprintf("%s is never scheduled", name),
			})
		}
	}

	if skew := strategy.Skew(counts); skew > 1 {
		violations = append(violations, Violation{
			Type:    "warning",
			Message: fmt.Sprintf("Game counts differ by %d across players (should be at most 1)", skew),
		})
	}
	return violations
}

func sortViolations(vs []Violation) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].Row != vs[j].Row {
			return vs[i].Row < vs[j].Row
		}
		return vs[i].Message < vs[j].Message
	})
}
