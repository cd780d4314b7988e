// Package export writes a generated schedule as YAML.
package export

import (
	"fmt"
	"io"

	"github.com/derekprior/doubles/internal/config"
	"github.com/derekprior/doubles/internal/schedule"
	"gopkg.in/yaml.v3"
)

type Document struct {
	Tournament string        `yaml:"tournament,omitempty"`
	State      string        `yaml:"state"`
	Rounds     []Round       `yaml:"rounds"`
	Players    []PlayerStats `yaml:"players"`
	Warnings   []string      `yaml:"warnings,omitempty"`
}

type Round struct {
	Number     int      `yaml:"round"`
	Matches    []Match  `yaml:"matches"`
	SittingOut []string `yaml:"sitting_out,omitempty"`
}

type Match struct {
	Court    string    `yaml:"court"`
	Team1    [2]string `yaml:"team1,flow"`
	Team2    [2]string `yaml:"team2,flow"`
	Fallback bool      `yaml:"fallback,omitempty"`
}

type PlayerStats struct {
	Name     string `yaml:"name"`
	Games    int    `yaml:"games"`
	SatOut   int    `yaml:"sat_out"`
	Partners int    `yaml:"partners"`
}

// Build converts a result into its exported form, naming players and courts
// from cfg. Player ids are 1-based roster positions.
func Build(cfg *config.Config, result *schedule.Result) Document {
	doc := Document{
		Tournament: cfg.Tournament,
		State:      result.State.String(),
		Rounds:     []Round{},
		Players:    []PlayerStats{},
	}

	team := func(t schedule.Team) [2]string {
		return [2]string{cfg.PlayerName(int(t[0])), cfg.PlayerName(int(t[1]))}
	}
	for _, rd := range result.Rounds {
		r := Round{Number: rd.Number}
		for _, m := range rd.Matches {
			r.Matches = append(r.Matches, Match{
				Court:    cfg.CourtName(m.Court),
				Team1:    team(m.Team1),
				Team2:    team(m.Team2),
				Fallback: m.Fallback,
			})
		}
		for _, p := range rd.SittingOut {
			r.SittingOut = append(r.SittingOut, cfg.PlayerName(int(p)))
		}
		doc.Rounds = append(doc.Rounds, r)
	}

	for i, name := range cfg.PlayerNames() {
		stats := PlayerStats{Name: name}
		if m, ok := result.Metrics[schedule.PlayerID(i+1)]; ok {
			stats.Games = m.Games
			stats.SatOut = m.SatOut
			stats.Partners = m.Partners
		}
		doc.Players = append(doc.Players, stats)
	}

	for _, rp := range result.RepeatedPartnerships {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("%s and %s partner %d times",
			cfg.PlayerName(int(rp.A)), cfg.PlayerName(int(rp.B)), rp.Times))
	}
	if result.DegradedFairness {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("game counts differ by %d", result.Skew))
	}
	return doc
}

// WriteYAML writes the schedule document to w.
func WriteYAML(w io.Writer, cfg *config.Config, result *schedule.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Build(cfg, result)); err != nil {
		return fmt.Errorf("encoding schedule: %w", err)
	}
	return enc.Close()
}
