package excel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/derekprior/doubles/internal/config"
	"github.com/derekprior/doubles/internal/schedule"
	"github.com/xuri/excelize/v2"
)

const (
	ScheduleSheet = "Schedule"
	SummarySheet  = "Summary"

	sittingOutHeader = "Sitting Out"
	maxSheetName     = 31
)

// Match is a scheduled match with player names, as it appears in the
// Schedule sheet.
type Match struct {
	Row   int // 1-based sheet row; 0 for matches not read from a sheet
	Round int
	Court int
	Team1 [2]string
	Team2 [2]string
}

// Players returns the four names, team 1 first.
func (m Match) Players() [4]string {
	return [4]string{m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1]}
}

// FormatMatch renders a match cell as "A & B vs C & D".
func FormatMatch(team1, team2 [2]string) string {
	return fmt.Sprintf("%s & %s vs %s & %s", team1[0], team1[1], team2[0], team2[1])
}

// ParseMatchCell parses "A & B vs C & D". Names are normalized the same way
// the config normalizes them.
// Returns ok=false if the cell doesn't match the match format.
func ParseMatchCell(cell string) (team1, team2 [2]string, ok bool) {
	sides := strings.Split(cell, " vs ")
	if len(sides) != 2 {
		return team1, team2, false
	}
	var teams [2][2]string
	for i, side := range sides {
		names := strings.Split(side, " & ")
		if len(names) != 2 {
			return team1, team2, false
		}
		for j, n := range names {
			n = config.NormalizeName(n)
			if n == "" {
				return team1, team2, false
			}
			teams[i][j] = n
		}
	}
	return teams[0], teams[1], true
}

// Generate creates an Excel workbook with the schedule, per-player sheets and
// a summary.
func Generate(cfg *config.Config, result *schedule.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set default font for the workbook
	f.SetDefaultFont("Arial")

	if err := writeScheduleSheet(f, cfg, result); err != nil {
		return nil, fmt.Errorf("writing schedule sheet: %w", err)
	}

	matches := namedMatches(cfg, result)
	if err := writePlayerSheets(f, cfg, matches); err != nil {
		return nil, fmt.Errorf("writing player sheets: %w", err)
	}
	if err := writeSummarySheet(f, cfg, matches, result.RoundsGenerated()); err != nil {
		return nil, fmt.Errorf("writing summary sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func namedMatches(cfg *config.Config, result *schedule.Result) []Match {
	var out []Match
	for _, m := range result.Matches() {
		out = append(out, Match{
			Round: m.Round,
			Court: m.Court,
			Team1: [2]string{cfg.PlayerName(int(m.Team1[0])), cfg.PlayerName(int(m.Team1[1]))},
			Team2: [2]string{cfg.PlayerName(int(m.Team2[0])), cfg.PlayerName(int(m.Team2[1]))},
		})
	}
	return out
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 16, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	style, _ := headerStyle(f)
	if style != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), style)
	}
}

func writeScheduleSheet(f *excelize.File, cfg *config.Config, result *schedule.Result) error {
	sheet := ScheduleSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	// Headers: Round, <court1>, <court2>, ..., Sitting Out
	headers := []string{"Round"}
	for c := 1; c <= cfg.Courts; c++ {
		headers = append(headers, cfg.CourtName(c))
	}
	headers = append(headers, sittingOutHeader)
	writeHeaders(f, sheet, headers)

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 16, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	sitCol := cfg.Courts + 2
	for _, rd := range result.Rounds {
		row := rd.Number + 1
		f.SetCellValue(sheet, cellRef(1, row), rd.Number)

		for _, m := range rd.Matches {
			t1 := [2]string{cfg.PlayerName(int(m.Team1[0])), cfg.PlayerName(int(m.Team1[1]))}
			t2 := [2]string{cfg.PlayerName(int(m.Team2[0])), cfg.PlayerName(int(m.Team2[1]))}
			f.SetCellValue(sheet, cellRef(m.Court+1, row), FormatMatch(t1, t2))
		}

		var out []string
		for _, p := range rd.SittingOut {
			out = append(out, cfg.PlayerName(int(p)))
		}
		f.SetCellValue(sheet, cellRef(sitCol, row), strings.Join(out, ", "))

		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(sitCol, row), cellStyle)
		}
	}

	// Set column widths (sized for Arial 16)
	f.SetColWidth(sheet, "A", "A", 10)
	if cfg.Courts > 0 {
		f.SetColWidth(sheet, colLetter(2), colLetter(cfg.Courts+1), 44)
	}
	f.SetColWidth(sheet, colLetter(sitCol), colLetter(sitCol), 30)

	// Conditional formatting: empty court cells get light red
	lastRow := result.RoundsGenerated() + 1
	if lastRow < 2 || cfg.Courts < 1 {
		return nil
	}
	redFill, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})
	for c := 1; c <= cfg.Courts; c++ {
		col := colLetter(c + 1)
		cellRange := fmt.Sprintf("%s2:%s%d", col, col, lastRow)
		formula := fmt.Sprintf(`LEN(%s2)=0`, col)
		if err := f.SetConditionalFormat(sheet, cellRange, []excelize.ConditionalFormatOptions{
			{
				Type:     "formula",
				Criteria: formula,
				Format:   &redFill,
			},
		}); err != nil {
			return fmt.Errorf("formatting %s: %w", cellRange, err)
		}
	}

	return nil
}

func writePlayerSheets(f *excelize.File, cfg *config.Config, matches []Match) error {
	names := cfg.PlayerNames()
	sheets := playerSheetNames(names)

	for _, player := range names {
		sheet := sheets[player]
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet for %s: %w", player, err)
		}

		headers := []string{"Round", "Court", "Partner", "Opponents"}
		writeHeaders(f, sheet, headers)

		type playerGame struct {
			round     int
			court     int
			partner   string
			opponents string
		}
		var games []playerGame
		for _, m := range matches {
			for side, team := range [][2]string{m.Team1, m.Team2} {
				other := m.Team2
				if side == 1 {
					other = m.Team1
				}
				for i, name := range team {
					if name != player {
						continue
					}
					games = append(games, playerGame{
						round:     m.Round,
						court:     m.Court,
						partner:   team[1-i],
						opponents: other[0] + " & " + other[1],
					})
				}
			}
		}
		sort.Slice(games, func(i, j int) bool {
			if games[i].round != games[j].round {
				return games[i].round < games[j].round
			}
			return games[i].court < games[j].court
		})

		cellStyle, _ := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Size: 16, Family: "Arial"},
		})

		for i, g := range games {
			row := i + 2
			f.SetCellValue(sheet, cellRef(1, row), g.round)
			f.SetCellValue(sheet, cellRef(2, row), cfg.CourtName(g.court))
			f.SetCellValue(sheet, cellRef(3, row), g.partner)
			f.SetCellValue(sheet, cellRef(4, row), g.opponents)
			if cellStyle != 0 {
				f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), cellStyle)
			}
		}

		// Set column widths (sized for Arial 16)
		widths := map[string]float64{"A": 10, "B": 16, "C": 20, "D": 36}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}

	return nil
}

func writeSummarySheet(f *excelize.File, cfg *config.Config, matches []Match, rounds int) error {
	sheet := SummarySheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Player", "Games", "Sat Out", "Partners"}
	writeHeaders(f, sheet, headers)

	games := make(map[string]int)
	partners := make(map[string]map[string]bool)
	for _, m := range matches {
		for _, team := range [][2]string{m.Team1, m.Team2} {
			for i, name := range team {
				games[name]++
				if partners[name] == nil {
					partners[name] = make(map[string]bool)
				}
				partners[name][team[1-i]] = true
			}
		}
	}

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Family: "Arial"},
	})

	for i, player := range cfg.PlayerNames() {
		row := i + 2
		satOut := rounds - games[player]
		if satOut < 0 {
			satOut = 0
		}
		f.SetCellValue(sheet, cellRef(1, row), player)
		f.SetCellValue(sheet, cellRef(2, row), games[player])
		f.SetCellValue(sheet, cellRef(3, row), satOut)
		f.SetCellValue(sheet, cellRef(4, row), len(partners[player]))
		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), cellStyle)
		}
	}

	widths := map[string]float64{"A": 24, "B": 10, "C": 10, "D": 12}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}
	return nil
}

// BadCell is a non-empty court cell that does not hold a match.
type BadCell struct {
	Row   int
	Round int
	Court int
	Text  string
}

// ReadMatches parses every match cell of the Schedule sheet. Court numbers
// follow column order, so the first court column is court 1. Court cells
// with text that is not a match are returned as bad cells.
func ReadMatches(f *excelize.File) ([]Match, []BadCell, error) {
	rows, err := f.GetRows(ScheduleSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", ScheduleSheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", ScheduleSheet)
	}

	header := rows[0]
	lastCourtCol := len(header) - 1
	if lastCourtCol >= 1 && header[lastCourtCol] == sittingOutHeader {
		lastCourtCol--
	}

	var matches []Match
	var bad []BadCell
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		round, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			continue
		}
		for col := 1; col <= lastCourtCol && col < len(row); col++ {
			if strings.TrimSpace(row[col]) == "" {
				continue
			}
			t1, t2, ok := ParseMatchCell(row[col])
			if !ok {
				bad = append(bad, BadCell{Row: i + 1, Round: round, Court: col, Text: row[col]})
				continue
			}
			matches = append(matches, Match{
				Row:   i + 1,
				Round: round,
				Court: col,
				Team1: t1,
				Team2: t2,
			})
		}
	}
	return matches, bad, nil
}

// CourtColumns returns the number of court columns in the Schedule sheet.
func CourtColumns(f *excelize.File) (int, error) {
	rows, err := f.GetRows(ScheduleSheet)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", ScheduleSheet, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n := len(rows[0]) - 1
	if n >= 1 && rows[0][len(rows[0])-1] == sittingOutHeader {
		n--
	}
	return n, nil
}

// UpdatePlayerSheets rebuilds the player and summary sheets of the workbook
// at path from its Schedule sheet.
func UpdatePlayerSheets(path string, cfg *config.Config) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	// Bad cells are left in place; validation reports them.
	matches, _, err := ReadMatches(f)
	if err != nil {
		return err
	}

	rounds := 0
	for _, m := range matches {
		if m.Round > rounds {
			rounds = m.Round
		}
	}

	for _, sheet := range f.GetSheetList() {
		if sheet == ScheduleSheet {
			continue
		}
		if err := f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("removing sheet %s: %w", sheet, err)
		}
	}

	if err := writePlayerSheets(f, cfg, matches); err != nil {
		return fmt.Errorf("writing player sheets: %w", err)
	}
	if err := writeSummarySheet(f, cfg, matches, rounds); err != nil {
		return fmt.Errorf("writing summary sheet: %w", err)
	}
	return f.Save()
}

// playerSheetNames maps each player to a unique, Excel-safe sheet name.
func playerSheetNames(players []string) map[string]string {
	used := map[string]bool{
		strings.ToLower(ScheduleSheet): true,
		strings.ToLower(SummarySheet):  true,
	}
	out := make(map[string]string, len(players))
	for _, p := range players {
		base := sanitizeSheetName(p)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncate(base, maxSheetName-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		out[p] = name
	}
	return out
}

func sanitizeSheetName(name string) string {
	r := strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")")
	s := strings.Trim(r.Replace(name), "'")
	if s == "" {
		s = "Player"
	}
	return truncate(s, maxSheetName)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
