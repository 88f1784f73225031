// Command validate re-reads the files written by a QA run and checks them
// against the run settings: every day file is present with one row per
// 5-minute slot, every value is a sentinel code or within its QA bounds, wind
// chill carries the out-of-range code whenever its inputs do, and the report
// lists every day in order.
//
// Usage:
//
//	go run ./cmd/validate -settings settings.yaml [-dir out/]
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/station-qa-etl/internal/config"
	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

// reportHeaderLines precede the per-day rows of the summary report.
const reportHeaderLines = 5

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	settingsPath := flag.String("settings", "", "run settings YAML file")
	dir := flag.String("dir", "", "directory holding the run's outputs (defaults to output_file_path)")
	flag.Parse()

	if *settingsPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(*settingsPath, *dir))
}

func run(settingsPath, dir string) int {
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	job, err := settings.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	if dir == "" {
		dir = job.OutputDir
	}

	fmt.Println("=== Station QA Output Validation ===")
	fmt.Println()

	grid, err := domain.BuildGrid(job.Start, job.End)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	expected := slotsByDay(grid)

	days := make(map[string][]dayRow)
	for _, d := range domain.Days(job.Start, job.End) {
		name := domain.DayFileName(d)
		rows, err := loadDay(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", name, err)
			return 1
		}
		days[name] = rows
	}

	phases := []*phase{
		validateGrid(days, expected),
		validateValues(days, job.Limits),
		validateWindChill(days),
		validateReport(filepath.Join(dir, domain.ReportFileName(job.Start, job.End)), domain.Days(job.Start, job.End)),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Day files: %d, grid slots: %d\n", len(days), len(grid))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == 20 {
				fmt.Printf("  ... and %d more\n", len(p.errors)-i)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// dayRow is one parsed line of a day file.
type dayRow struct {
	lineNum   int
	timestamp string
	values    map[domain.Variable]domain.Value
	raw       map[domain.Variable]string
}

func loadDay(path string) ([]dayRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no header in %s", path)
	}

	header := all[0]
	rows := make([]dayRow, 0, len(all)-1)
	for i, rec := range all[1:] {
		row := dayRow{
			lineNum: i + 2,
			values:  make(map[domain.Variable]domain.Value, len(header)),
			raw:     make(map[domain.Variable]string, len(header)),
		}
		for j, h := range header {
			if j >= len(rec) {
				break
			}
			cell := strings.TrimSpace(rec[j])
			if h == "TIMESTAMP" {
				row.timestamp = cell
				continue
			}
			v := domain.Variable(strings.ToLower(h))
			row.raw[v] = cell
			if x, err := strconv.ParseFloat(cell, 64); err == nil {
				row.values[v] = domain.FromSentinel(x)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func slotsByDay(grid []time.Time) map[string][]string {
	out := make(map[string][]string)
	for _, ts := range grid {
		name := domain.DayFileName(ts)
		out[name] = append(out[name], ts.Format("2006-01-02 15:04:05"))
	}
	return out
}

// ── Validation phases ──

func validateGrid(days map[string][]dayRow, expected map[string][]string) *phase {
	p := &phase{name: "Phase 1: Grid completeness"}
	fmt.Println(p.name)

	for name, rows := range days {
		want := expected[name]
		if len(rows) != len(want) {
			p.errorf("%s: %d rows, want %d", name, len(rows), len(want))
			continue
		}
		for i, row := range rows {
			if row.timestamp != want[i] {
				p.errorf("%s line %d: timestamp %q, want %q", name, row.lineNum, row.timestamp, want[i])
				break
			}
		}
	}
	return p
}

func validateValues(days map[string][]dayRow, limits domain.Limits) *phase {
	p := &phase{name: "Phase 2: Sentinel codes and QA bounds"}
	fmt.Println(p.name)

	for name, rows := range days {
		for _, row := range rows {
			for v, cell := range row.raw {
				val, ok := row.values[v]
				if !ok {
					p.errorf("%s line %d: %s: %q is not a number", name, row.lineNum, v, cell)
					continue
				}
				b, checked := limits[v]
				x, valid := val.Float()
				if checked && valid && (x < b.Low || x > b.High) {
					p.errorf("%s line %d: %s = %g outside [%g, %g] but not flagged", name, row.lineNum, v, x, b.Low, b.High)
				}
			}
		}
	}
	return p
}

func validateWindChill(days map[string][]dayRow) *phase {
	p := &phase{name: "Phase 3: Wind chill sentinel precedence"}
	fmt.Println(p.name)

	for name, rows := range days {
		for _, row := range rows {
			tair, wspd, chil := row.values[domain.VarTair], row.values[domain.VarWspd], row.values[domain.VarChil]
			switch {
			case tair.IsOutOfRange() || wspd.IsOutOfRange():
				if !chil.IsOutOfRange() {
					p.errorf("%s line %d: CHIL %s with out-of-range input", name, row.lineNum, chil.Status())
				}
			case tair.IsMissing() || wspd.IsMissing():
				if chil.IsValid() {
					p.errorf("%s line %d: CHIL valid with missing input", name, row.lineNum)
				}
			}
		}
	}
	return p
}

func validateReport(path string, days []time.Time) *phase {
	p := &phase{name: "Phase 4: Summary report"}
	fmt.Println(p.name)

	f, err := os.Open(path)
	if err != nil {
		p.errorf("open report: %v", err)
		return p
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		p.errorf("read report: %v", err)
		return p
	}

	if len(lines) != reportHeaderLines+len(days) {
		p.errorf("report has %d lines, want %d", len(lines), reportHeaderLines+len(days))
		return p
	}
	if lines[0] != "Statistics Report" {
		p.errorf("report line 1 = %q", lines[0])
	}
	for i, d := range days {
		line := lines[reportHeaderLines+i]
		if got := strings.TrimSpace(line[:min(19, len(line))]); got != domain.DayFileName(d) {
			p.errorf("report row %d names %q, want %q", i+1, got, domain.DayFileName(d))
		}
	}
	return p
}
