package config

import "testing"

const testConfigYAML = `
tournament: Thursday Night Doubles

players: [Ana, Ben, Cleo, Dev, Eli, Fay, Gus, Hal]

courts: 2
court_names: [North, South]

stopping:
  max_rounds: 12
  target_games_per_player: 5

balance: strict

pairing:
  allow_resplits: true
  fallback: false
  backtrack_factor: 6
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("tournament", func(t *testing.T) {
		if cfg.Tournament != "Thursday Night Doubles" {
			t.Errorf("tournament = %q, want %q", cfg.Tournament, "Thursday Night Doubles")
		}
	})

	t.Run("players", func(t *testing.T) {
		if len(cfg.Players) != 8 {
			t.Fatalf("players = %d, want 8", len(cfg.Players))
		}
		if cfg.Players[2].Name != "Cleo" {
			t.Errorf("player 3 = %q, want %q", cfg.Players[2].Name, "Cleo")
		}
		if cfg.PlayerName(8) != "Hal" {
			t.Errorf("PlayerName(8) = %q, want %q", cfg.PlayerName(8), "Hal")
		}
	})

	t.Run("courts", func(t *testing.T) {
		if cfg.Courts != 2 {
			t.Errorf("courts = %d, want 2", cfg.Courts)
		}
		if cfg.CourtName(2) != "South" {
			t.Errorf("CourtName(2) = %q, want %q", cfg.CourtName(2), "South")
		}
	})

	t.Run("stopping", func(t *testing.T) {
		if cfg.Stopping.MaxRounds != 12 {
			t.Errorf("max rounds = %d, want 12", cfg.Stopping.MaxRounds)
		}
		if cfg.Stopping.TargetGamesPerPlayer != 5 {
			t.Errorf("target games = %d, want 5", cfg.Stopping.TargetGamesPerPlayer)
		}
	})

	t.Run("balance", func(t *testing.T) {
		if cfg.Balance != "strict" {
			t.Errorf("balance = %q, want %q", cfg.Balance, "strict")
		}
	})

	t.Run("pairing", func(t *testing.T) {
		if !cfg.Pairing.AllowResplits {
			t.Error("allow_resplits should be true")
		}
		if cfg.Pairing.FallbackEnabled() {
			t.Error("fallback should be disabled")
		}
		if cfg.Pairing.BacktrackFactor != 6 {
			t.Errorf("backtrack factor = %d, want 6", cfg.Pairing.BacktrackFactor)
		}
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
players: [A, B, C, D]
courts: 1
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Pairing.FallbackEnabled() {
		t.Error("fallback should default to enabled")
	}
	if cfg.CourtName(1) != "Court 1" {
		t.Errorf("CourtName(1) = %q, want %q", cfg.CourtName(1), "Court 1")
	}
	if cfg.PlayerName(9) != "Player 9" {
		t.Errorf("PlayerName(9) = %q, want %q", cfg.PlayerName(9), "Player 9")
	}
}

func TestPlayerNamesNormalized(t *testing.T) {
	t.Run("whitespace trimmed", func(t *testing.T) {
		cfg, err := LoadFromBytes([]byte(`players: ["  Ana ", Ben]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Players[0].Name != "Ana" {
			t.Errorf("name = %q, want %q", cfg.Players[0].Name, "Ana")
		}
	})

	t.Run("composed and decomposed forms are duplicates", func(t *testing.T) {
		// "José" spelled with U+00E9, then with e + U+0301.
		_, err := LoadFromBytes([]byte("players: [\"Jos\u00e9\", \"Jose\u0301\"]"))
		if err == nil {
			t.Error("expected duplicate error for equivalent Unicode names")
		}
	})

	t.Run("names must be scalars", func(t *testing.T) {
		_, err := LoadFromBytes([]byte("players:\n  - name: Ana\n"))
		if err == nil {
			t.Error("expected error for mapping player entry")
		}
	})
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no players", "players: []\ncourts: 1\n"},
		{"empty name", "players: [A, \"\", C, D]\ncourts: 1\n"},
		{"duplicate name", "players: [A, B, A, D]\ncourts: 1\n"},
		{"separator in name", "players: [\"A & B\", C, D, E]\ncourts: 1\n"},
		{"negative courts", "players: [A, B, C, D]\ncourts: -1\n"},
		{"court names mismatch", "players: [A, B, C, D]\ncourts: 2\ncourt_names: [North]\n"},
		{"duplicate court names", "players: [A, B, C, D]\ncourts: 2\ncourt_names: [North, North]\n"},
		{"negative max rounds", "players: [A, B, C, D]\ncourts: 1\nstopping:\n  max_rounds: -3\n"},
		{"negative target", "players: [A, B, C, D]\ncourts: 1\nstopping:\n  target_games_per_player: -1\n"},
		{"negative backtrack factor", "players: [A, B, C, D]\ncourts: 1\npairing:\n  backtrack_factor: -2\n"},
		{"malformed yaml", "players: [A, B\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromBytes([]byte(tt.yaml)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestLoadConfigLeavesFeasibilityToGenerator(t *testing.T) {
	// Three players on zero courts is structurally valid; the generator
	// reports it as invalid input.
	if _, err := LoadFromBytes([]byte("players: [A, B, C]\n")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPlayerNames(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := cfg.PlayerNames()
	if len(names) != 8 || names[0] != "Ana" || names[7] != "Hal" {
		t.Errorf("PlayerNames() = %v", names)
	}
}
