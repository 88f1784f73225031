// Command genmock writes a synthetic CR300 TOA5 table for a date range, for
// manual runs and demos of the QA pipeline. The output can be made untidy on
// purpose: dropped rows, repeated timestamps, and out-of-range spikes.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -start "2023-01-01 00:00" -end "2023-01-07 23:55" \
//	  -out data/NWC0_raw.dat -gaps 0.02 -duplicates 5 -spikes 10
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/station-qa-etl/internal/config"
	"github.com/couchcryptid/station-qa-etl/internal/domain"
)

var (
	header = []string{"TIMESTAMP", "RECORD", "TAIR", "RELH", "SRAD", "WSPD", "WMAX", "WDIR", "RAIN", "BATV"}
	units  = []string{"TS", "RN", "DegC", "%", "W/m^2", "m/s", "m/s", "Deg", "mm", "Volts"}
	procs  = []string{"", "", "Smp", "Smp", "Avg", "Avg", "Max", "Smp", "Tot", "Smp"}
)

type options struct {
	start, end time.Time
	out        string
	gaps       float64
	duplicates int
	spikes     int
	seed       uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	start := flag.String("start", "", "first timestamp, "+config.DatetimeLayout)
	end := flag.String("end", "", "last timestamp, "+config.DatetimeLayout)
	out := flag.String("out", "", "output TOA5 file")
	gaps := flag.Float64("gaps", 0, "fraction of rows to drop, 0..1")
	dups := flag.Int("duplicates", 0, "rows to repeat with altered values")
	spikes := flag.Int("spikes", 0, "rows to give an out-of-range TAIR or WSPD")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *start == "" || *end == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -start, -end, -out")
	}
	if *gaps < 0 || *gaps > 1 {
		return fmt.Errorf("-gaps must be within [0, 1], got %g", *gaps)
	}

	opts := options{out: *out, gaps: *gaps, duplicates: *dups, spikes: *spikes, seed: *seed}
	var err error
	if opts.start, err = time.ParseInLocation(config.DatetimeLayout, *start, time.UTC); err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	if opts.end, err = time.ParseInLocation(config.DatetimeLayout, *end, time.UTC); err != nil {
		return fmt.Errorf("parse -end: %w", err)
	}

	grid, err := domain.BuildGrid(opts.start, opts.end)
	if err != nil {
		return err
	}
	rows := generate(grid, opts)
	if err := write(opts.out, rows); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	log.Printf("wrote %s: %d rows for %d slots", opts.out, len(rows), len(grid))
	return nil
}

// generate builds one row per slot with a diurnal temperature and radiation
// cycle, then applies the requested defects.
func generate(grid []time.Time, opts options) [][]string {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	rows := make([][]string, 0, len(grid)+opts.duplicates)

	for i, ts := range grid {
		if rng.Float64() < opts.gaps {
			continue
		}
		hour := float64(ts.Hour()) + float64(ts.Minute())/60
		tair := 4 + 7*math.Sin(2*math.Pi*(hour-9)/24) + rng.NormFloat64()*0.3
		relh := math.Min(100, 75-2.5*(tair-4)+rng.NormFloat64()*2)
		srad := math.Max(0, 550*math.Sin(math.Pi*(hour-7)/10))
		if hour < 7 || hour > 17 {
			srad = 0
		}
		wspd := math.Max(0, 1.2+0.6*math.Sin(2*math.Pi*hour/24)+rng.NormFloat64()*0.3)
		wmax := wspd + math.Abs(rng.NormFloat64())*0.6
		rain := 0.0
		if rng.Float64() < 0.01 {
			rain = 0.25 * float64(1+rng.IntN(4))
		}

		rows = append(rows, []string{
			ts.Format("2006-01-02 15:04:05"),
			strconv.Itoa(i),
			ff(tair), ff(relh), ff(srad), ff(wspd), ff(wmax),
			strconv.Itoa(rng.IntN(360)),
			ff(rain),
			ff(12.4 + rng.Float64()*0.4),
		})
	}

	for range opts.spikes {
		if len(rows) == 0 {
			break
		}
		row := rows[rng.IntN(len(rows))]
		if rng.IntN(2) == 0 {
			row[2] = "99.9" // TAIR
		} else {
			row[5] = "-3.5" // WSPD
		}
	}

	for range opts.duplicates {
		if len(rows) == 0 {
			break
		}
		i := rng.IntN(len(rows))
		dup := append([]string(nil), rows[i]...)
		dup[2] = ff(rng.NormFloat64() * 5)
		rows = append(rows[:i+1], append([][]string{dup}, rows[i+1:]...)...)
	}
	return rows
}

func ff(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func write(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	env := []string{"TOA5", "NWC0", "CR300", "1234", "CR300.Std.10", "CPU:NWC0.CR3", "5678", "Table5"}
	for _, r := range [][]string{env, header, units, procs} {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}
