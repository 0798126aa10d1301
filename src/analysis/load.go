package analysis

import (
	"fmt"
	"os"
	"time"

	units "github.com/docker/go-units"
	"github.com/rs/zerolog"

	"github.com/iafilius/TraceViewer/src/trace"
)

// Dataset is one loaded trace: the parsed table and its summary.
// A Dataset is never modified after Load returns it; loading another file yields a new one.
type Dataset struct {
	Path     string
	Table    trace.Table
	Summary  Summary
	Lines    int // total lines read, matched or not
	LoadedAt time.Time
}

// Load parses path and summarizes it. On any error nothing is returned, so callers keep
// whatever Dataset they already hold.
func Load(path string) (*Dataset, error) {
	return LoadWithLogger(path, zerolog.Nop())
}

// LoadWithLogger is Load with structured logging of the outcome.
func LoadWithLogger(path string, log zerolog.Logger) (*Dataset, error) {
	start := time.Now()
	tbl, lines, err := trace.ParseStats(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("trace parse failed")
		return nil, err
	}
	sum, err := Summarize(tbl)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Int("lines", lines).Msg("trace has no reception events")
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds := &Dataset{Path: path, Table: tbl, Summary: sum, Lines: lines, LoadedAt: time.Now()}
	ev := log.Info().Str("path", path).Int("rows", len(tbl)).Int("skipped", lines-len(tbl))
	if st, err := os.Stat(path); err == nil {
		ev = ev.Str("size", units.HumanSize(float64(st.Size())))
	}
	ev.Dur("took", time.Since(start)).Msg("trace loaded")
	return ds, nil
}
