package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derekprior/doubles/internal/config"
	"github.com/derekprior/doubles/internal/excel"
	"github.com/derekprior/doubles/internal/export"
	"github.com/derekprior/doubles/internal/schedule"
	"github.com/derekprior/doubles/internal/strategy"
	"github.com/derekprior/doubles/internal/validator"
)

const defaultConfigFile = "config.yaml"

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "doubles",
		Short: "Round-robin doubles schedule generator",
	}

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate and validate schedules",
	}

	var configFile string
	scheduleCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: config.yaml in current directory)")

	var outputFile string
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate a schedule from a config file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runGenerate(configPath, outputFile)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "schedule.xlsx", "Output file path (.xlsx, or .yaml/.yml)")

	validateCmd := &cobra.Command{
		Use:          "validate <schedule.xlsx>",
		Short:        "Validate a schedule against the pairing rules",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runValidate(configPath, args[0])
		},
	}

	scheduleCmd.AddCommand(generateCmd, validateCmd)
	rootCmd.AddCommand(initCmd, scheduleCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# Doubles Tournament Configuration
# ================================
# This file defines the roster and courts for a round-robin doubles schedule.
# Each round places players onto courts as two teams of two. The generator
# rotates partners so that, as far as possible, every pair partners once.

tournament: "Thursday Night Doubles"

# Players in roster order. Names must be unique and cannot contain " & " or
# " vs ", which the schedule uses as separators.
players: [Ana, Ben, Cleo, Dev, Eli, Fay, Gus, Hal]

# Number of courts played at the same time. Courts beyond players/4 stay empty.
courts: 2

# Optional display names, one per court.
court_names: [North, South]

# Generation stops at the first of these that is reached, or once every pair
# of players has partnered.
stopping:
  max_rounds: 20                 # 0 uses the default of 20
  target_games_per_player: 0     # stop once everyone has this many games; 0 disables

# Balance decides what happens when a round would leave game counts uneven.
# "strict" rebuilds the round around the players with the fewest games and ends
# the schedule if counts would still end up more than 1 apart.
# "priority" always accepts the round, trading even counts for more partnerships.
balance: strict

pairing:
  # A foursome that already shared a court is normally not scheduled again,
  # even with different teams. Set to true to allow those re-splits.
  allow_resplits: false

  # When no match with two new partnerships exists, accept a match with one.
  fallback: true

  # Search budget per court, as a multiple of (players available)^2.
  backtrack_factor: 4
`

// rosterFor assigns player ids 1..N in config order.
func rosterFor(cfg *config.Config) []schedule.PlayerID {
	roster := make([]schedule.PlayerID, len(cfg.Players))
	for i := range cfg.Players {
		roster[i] = schedule.PlayerID(i + 1)
	}
	return roster
}

func buildOptions(cfg *config.Config) (schedule.Options, error) {
	balance, err := strategy.Get(cfg.Balance)
	if err != nil {
		return schedule.Options{}, err
	}
	return schedule.Options{
		MaxRounds:            cfg.Stopping.MaxRounds,
		TargetGamesPerPlayer: cfg.Stopping.TargetGamesPerPlayer,
		AllowResplits:        cfg.Pairing.AllowResplits,
		DisableFallback:      !cfg.Pairing.FallbackEnabled(),
		BacktrackFactor:      cfg.Pairing.BacktrackFactor,
		Balance:              balance,
	}, nil
}

func runGenerate(configPath, outputPath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Scheduling %d players on %d courts (%s balance)...\n",
		len(cfg.Players), cfg.Courts, opts.Balance.Name())

	result, err := schedule.Generate(rosterFor(cfg), cfg.Courts, opts)
	if err != nil {
		return fmt.Errorf("generating schedule: %w", err)
	}

	matches := len(result.Matches())
	switch result.State {
	case schedule.StateCompleted:
		fmt.Printf("✓ Schedule complete: %d rounds, %d matches\n", result.RoundsGenerated(), matches)
	case schedule.StateExhausted:
		fmt.Fprintf(os.Stderr, "⚠ No valid round could follow round %d\n", result.RoundsGenerated())
		fmt.Fprintf(os.Stderr, "\nGenerating partial schedule...\n")
	}

	fmt.Println("\nPer Player Metrics:")
	fmt.Printf("  %-15s %6s %8s %9s\n", "Player", "Games", "Sat Out", "Partners")
	for i, name := range cfg.PlayerNames() {
		m := result.Metrics[schedule.PlayerID(i+1)]
		fmt.Printf("  %-15s %6d %8d %9d\n", name, m.Games, m.SatOut, m.Partners)
	}

	warnings := reportWarnings(cfg, result)
	if len(warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("  ⚠ %s\n", w)
		}
	} else {
		fmt.Println("\n✓ No warnings")
	}

	if err := writeOutput(cfg, result, outputPath); err != nil {
		return err
	}

	fmt.Printf("\n✓ Schedule saved to %s\n", outputPath)
	if result.State != schedule.StateCompleted {
		return fmt.Errorf("schedule is incomplete: stopped %s after %d rounds", result.State, result.RoundsGenerated())
	}
	return nil
}

func reportWarnings(cfg *config.Config, result *schedule.Result) []string {
	var warnings []string
	if result.FallbackMatches > 0 {
		warnings = append(warnings, fmt.Sprintf("%d matches repeat a partnership", result.FallbackMatches))
	}
	for _, r := range result.PartialRounds {
		warnings = append(warnings, fmt.Sprintf("Round %d left a court empty", r))
	}
	for _, rp := range result.RepeatedPartnerships {
		warnings = append(warnings, fmt.Sprintf("%s and %s partner %d times",
			cfg.PlayerName(int(rp.A)), cfg.PlayerName(int(rp.B)), rp.Times))
	}
	if result.DegradedFairness {
		warnings = append(warnings, fmt.Sprintf("Game counts differ by %d across players", result.Skew))
	}
	return warnings
}

func writeOutput(cfg *config.Config, result *schedule.Result, outputPath string) error {
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".yaml", ".yml":
		out, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		if err := export.WriteYAML(out, cfg, result); err != nil {
			out.Close()
			return fmt.Errorf("writing YAML: %w", err)
		}
		return out.Close()
	}

	f, err := excel.Generate(cfg, result)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	return nil
}

func runValidate(configPath, schedulePath string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	violations, err := validator.Validate(cfg, schedulePath)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	errors := 0
	warnings := 0
	for _, v := range violations {
		switch v.Type {
		case "error":
			errors++
			fmt.Printf("✗ Rule violation: %s\n", v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ Guideline violation: %s\n", v.Message)
		}
	}

	fmt.Printf("\nValidation complete: %d rule violations, %d guideline violations\n", errors, warnings)

	// Regenerate player sheets from the schedule
	if err := excel.UpdatePlayerSheets(schedulePath, cfg); err != nil {
		return fmt.Errorf("updating player sheets: %w", err)
	}
	fmt.Printf("✓ Player sheets updated in %s\n", schedulePath)

	if errors > 0 {
		return fmt.Errorf("%d rule violations found", errors)
	}
	return nil
}
