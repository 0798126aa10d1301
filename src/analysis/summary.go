package analysis

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/iafilius/TraceViewer/src/trace"
)

// ErrEmptyDataset is returned when a summary is requested over zero rows.
var ErrEmptyDataset = errors.New("no reception events in trace")

// Metric labels in render/export order.
const (
	LabelTotalPackets    = "Total Packets Received"
	LabelFirstPacketTime = "First Packet Time (s)"
	LabelLastPacketTime  = "Last Packet Time (s)"
	LabelDuration        = "Duration (s)"
	LabelAverageInterval = "Average Interval (s)"
)

// SummaryColumns are the headers of the summary table.
var SummaryColumns = []string{"Metric", "Value"}

// Summary captures the reception statistics for one trace table.
// Float fields are rounded to 6 decimals (half to even).
type Summary struct {
	TotalPackets    int
	FirstPacketTime float64
	LastPacketTime  float64
	Duration        float64 // LastPacketTime - FirstPacketTime
	AverageInterval float64 // NaN with fewer than two rows
}

// Metric is one labelled summary value.
type Metric struct {
	Label string
	Value float64
	// Integer marks counts that render without decimals.
	Integer bool
}

// Summarize reduces the reception time column to the five summary metrics.
func Summarize(t trace.Table) (Summary, error) {
	times := t.Times()
	if len(times) == 0 {
		return Summary{}, ErrEmptyDataset
	}
	minT, maxT := times[0], times[0]
	for _, v := range times[1:] {
		if v < minT {
			minT = v
		}
		if v > maxT {
			maxT = v
		}
	}
	avg := math.NaN()
	if len(times) > 1 {
		sum := 0.0
		for i := 1; i < len(times); i++ {
			sum += times[i] - times[i-1]
		}
		avg = sum / float64(len(times)-1)
	}
	s := Summary{
		TotalPackets:    len(times),
		FirstPacketTime: round6(minT),
		LastPacketTime:  round6(maxT),
		AverageInterval: round6(avg),
	}
	s.Duration = s.LastPacketTime - s.FirstPacketTime
	return s, nil
}

// round6 rounds to 6 decimal places, ties to even. NaN and Inf pass through.
func round6(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.RoundToEven(v*1e6) / 1e6
}

// Metrics returns the summary as ordered (label, value) pairs.
func (s Summary) Metrics() []Metric {
	return []Metric{
		{Label: LabelTotalPackets, Value: float64(s.TotalPackets), Integer: true},
		{Label: LabelFirstPacketTime, Value: s.FirstPacketTime},
		{Label: LabelLastPacketTime, Value: s.LastPacketTime},
		{Label: LabelDuration, Value: s.Duration},
		{Label: LabelAverageInterval, Value: s.AverageInterval},
	}
}

// Rows returns the summary as display strings: one {label, value} pair per metric.
func (s Summary) Rows() [][]string {
	ms := s.Metrics()
	out := make([][]string, len(ms))
	for i, m := range ms {
		out[i] = []string{m.Label, m.Format()}
	}
	return out
}

// Format renders the value for tables and CSV.
func (m Metric) Format() string {
	if m.Integer {
		return strconv.FormatInt(int64(m.Value), 10)
	}
	return FormatValue(m.Value)
}

// FormatValue prints up to 6 decimals, trimming trailing zeros but keeping one
// decimal for integral values (1 -> "1.0"). NaN prints as "NaN".
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	if s == "-0.0" {
		s = "0.0"
	}
	return s
}
