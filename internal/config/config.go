package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Player is a roster entry. Names are trimmed and NFC-normalized on load so
// that visually identical names compare equal.
type Player struct {
	Name string
}

func (p *Player) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: player must be a name, not a %s", value.Line, kindName(value.Kind))
	}
	p.Name = NormalizeName(value.Value)
	return nil
}

func (p Player) MarshalYAML() (interface{}, error) {
	return p.Name, nil
}

// NormalizeName trims s and converts it to Unicode NFC.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	default:
		return "non-scalar value"
	}
}

type Stopping struct {
	MaxRounds            int `yaml:"max_rounds"`
	TargetGamesPerPlayer int `yaml:"target_games_per_player"`
}

type Pairing struct {
	AllowResplits   bool  `yaml:"allow_resplits"`
	Fallback        *bool `yaml:"fallback"`
	BacktrackFactor int   `yaml:"backtrack_factor"`
}

// FallbackEnabled reports whether the relaxed partnership rule is on.
// It defaults to true when unset.
func (p Pairing) FallbackEnabled() bool {
	return p.Fallback == nil || *p.Fallback
}

type Config struct {
	Tournament string   `yaml:"tournament"`
	Players    []Player `yaml:"players"`
	Courts     int      `yaml:"courts"`
	CourtNames []string `yaml:"court_names"`
	Stopping   Stopping `yaml:"stopping"`
	Balance    string   `yaml:"balance"`
	Pairing    Pairing  `yaml:"pairing"`
}

// PlayerNames returns every player name in roster order.
func (c *Config) PlayerNames() []string {
	names := make([]string, len(c.Players))
	for i, p := range c.Players {
		names[i] = p.Name
	}
	return names
}

// PlayerName returns the name for a 1-based roster id.
func (c *Config) PlayerName(id int) string {
	if id < 1 || id > len(c.Players) {
		return fmt.Sprintf("Player %d", id)
	}
	return c.Players[id-1].Name
}

// CourtName returns the display name for a 1-based court number.
func (c *Config) CourtName(court int) string {
	if court >= 1 && court <= len(c.CourtNames) {
		return c.CourtNames[court-1]
	}
	return fmt.Sprintf("Court %d", court)
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

// validate checks structure only. Whether the roster and courts can produce
// a schedule is decided by the generator.
func (c *Config) validate() error {
	if len(c.Players) == 0 {
		return fmt.Errorf("at least one player is required")
	}

	seen := make(map[string]int)
	for i, p := range c.Players {
		if p.Name == "" {
			return fmt.Errorf("player %d has an empty name", i+1)
		}
		if strings.Contains(p.Name, " & ") || strings.Contains(p.Name, " vs ") {
			return fmt.Errorf("player %q: names cannot contain \" & \" or \" vs \"", p.Name)
		}
		if prev, ok := seen[p.Name]; ok {
			return fmt.Errorf("player %q appears twice (entries %d and %d)", p.Name, prev, i+1)
		}
		seen[p.Name] = i + 1
	}

	if c.Courts < 0 {
		return fmt.Errorf("courts cannot be negative, got %d", c.Courts)
	}

	if len(c.CourtNames) > 0 {
		if len(c.CourtNames) != c.Courts {
			return fmt.Errorf("court_names lists %d courts but courts is %d", len(c.CourtNames), c.Courts)
		}
		names := make(map[string]bool)
		for _, n := range c.CourtNames {
			if strings.TrimSpace(n) == "" {
				return fmt.Errorf("court names cannot be empty")
			}
			if names[n] {
				return fmt.Errorf("court %q appears twice", n)
			}
			names[n] = true
		}
	}

	if c.Stopping.MaxRounds < 0 {
		return fmt.Errorf("stopping.max_rounds cannot be negative, got %d", c.Stopping.MaxRounds)
	}
	if c.Stopping.TargetGamesPerPlayer < 0 {
		return fmt.Errorf("stopping.target_games_per_player cannot be negative, got %d", c.Stopping.TargetGamesPerPlayer)
	}
	if c.Pairing.BacktrackFactor < 0 {
		return fmt.Errorf("pairing.backtrack_factor cannot be negative, got %d", c.Pairing.BacktrackFactor)
	}

	return nil
}
