// Package batch scores a CSV of sensor readings against one band's
// model, appending predictions to the input columns. It runs through
// the same projection path the server uses, so offline and online
// scoring cannot drift apart.
package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/virajparmaj/turbine-nox-wise/internal/nox"
)

// Summary aggregates one batch run.
type Summary struct {
	Rows    int
	Failed  int
	Min     float64
	Max     float64
	Mean    float64
	Elapsed time.Duration
}

// Runner scores reading rows for one band.
type Runner struct {
	svc  *nox.Service
	band nox.Band
}

// NewRunner wires the prediction service and the target band.
func NewRunner(svc *nox.Service, band nox.Band) *Runner {
	return &Runner{svc: svc, band: band}
}

// RunFiles opens the input and output paths and runs.
func (rn *Runner) RunFiles(ctx context.Context, inPath, outPath string) (Summary, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return Summary{}, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return Summary{}, fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	return rn.Run(ctx, in, out)
}

// Run reads reading rows from in and writes each row back with a
// NOX_pred column appended. The header must name all nine sensor
// columns; extra columns (like a ground-truth NOX) pass through
// untouched. Rows that fail to parse or score are counted and skipped;
// the run keeps going.
func (rn *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (Summary, error) {
	start := time.Now()
	reader := csv.NewReader(in)
	writer := csv.NewWriter(out)

	header, err := reader.Read()
	if err != nil {
		return Summary{}, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return Summary{}, err
	}

	if err := writer.Write(append(append([]string(nil), header...), "NOX_pred")); err != nil {
		return Summary{}, fmt.Errorf("write header: %w", err)
	}

	sum := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	var total float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row := sum.Rows + sum.Failed + 1
		if err != nil {
			return sum, fmt.Errorf("read row %d: %w", row, err)
		}

		reading, err := readingFromRecord(record, cols)
		if err != nil {
			sum.Failed++
			log.Warn().Err(err).Int("row", row).Msg("skipping unparsable row")
			continue
		}

		result, err := rn.svc.Predict(ctx, reading, rn.band)
		if err != nil {
			sum.Failed++
			log.Warn().Err(err).Int("row", row).Msg("skipping unscorable row")
			continue
		}

		outRecord := append(append([]string(nil), record...), strconv.FormatFloat(result.NOx, 'f', -1, 64))
		if err := writer.Write(outRecord); err != nil {
			return sum, fmt.Errorf("write row %d: %w", row, err)
		}

		sum.Rows++
		total += result.NOx
		if result.NOx < sum.Min {
			sum.Min = result.NOx
		}
		if result.NOx > sum.Max {
			sum.Max = result.NOx
		}
	}

	if sum.Rows > 0 {
		sum.Mean = total / float64(sum.Rows)
	} else {
		sum.Min, sum.Max = 0, 0
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return sum, fmt.Errorf("flush output: %w", err)
	}

	sum.Elapsed = time.Since(start)
	log.Info().
		Str("band", rn.band.String()).
		Int("rows", sum.Rows).
		Int("failed", sum.Failed).
		Dur("elapsed", sum.Elapsed).
		Msg("batch scoring finished")
	return sum, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range nox.FieldNames() {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("input is missing column %s", name)
		}
	}
	return cols, nil
}

func readingFromRecord(record []string, cols map[string]int) (nox.SensorReading, error) {
	var reading nox.SensorReading
	fields := map[string]*float64{
		"AT": &reading.AT, "AP": &reading.AP, "AH": &reading.AH,
		"AFDP": &reading.AFDP, "GTEP": &reading.GTEP, "TIT": &reading.TIT,
		"TAT": &reading.TAT, "CDP": &reading.CDP, "TEY": &reading.TEY,
	}
	for _, name := range nox.FieldNames() {
		idx := cols[name]
		if idx >= len(record) {
			return reading, fmt.Errorf("row has %d columns, column %s expected at %d", len(record), name, idx+1)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
		if err != nil {
			return reading, fmt.Errorf("column %s: %w", name, err)
		}
		*fields[name] = v
	}
	return reading, nil
}
