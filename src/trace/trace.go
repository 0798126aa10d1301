// Package trace reads NS-3 style ASCII packet traces and keeps the reception events
// as an ordered table of rows.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Sentinels used for fields missing from a reception line.
const (
	UnknownNode  = "Unknown"
	NotAvailable = "N/A"
)

// Column headers in export order. Shared by CSV, Parquet and the viewer detail table.
var Columns = []string{
	"Packet Index",
	"Reception Time (s)",
	"Source Node",
	"Destination Node",
	"Size (bytes)",
	"Protocol",
}

// Row is one reception event.
type Row struct {
	// Index is the line position in the source file, counting every line.
	Index           int     `parquet:"packet_index"`
	ReceptionTime   float64 `parquet:"reception_time_s"`
	SourceNode      string  `parquet:"source_node"`
	DestinationNode string  `parquet:"destination_node"`
	SizeBytes       string  `parquet:"size_bytes"`
	Protocol        string  `parquet:"protocol"`
}

// Table is the ordered set of reception rows from one trace file.
type Table []Row

// Times returns the reception time column in row order.
func (t Table) Times() []float64 {
	out := make([]float64, len(t))
	for i, r := range t {
		out[i] = r.ReceptionTime
	}
	return out
}

// ErrFormat classifies every FormatError.
var ErrFormat = errors.New("trace format error")

// FormatError reports a matched line whose timestamp could not be read.
type FormatError struct {
	Line  int    // zero-based line index
	Token string // offending token, empty when missing
	Err   error
}

func (e *FormatError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("line %d: missing reception timestamp", e.Line)
	}
	return fmt.Sprintf("line %d: bad reception timestamp %q: %v", e.Line, e.Token, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFormat) match any FormatError.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// Parse opens path and parses it. Open/read failures keep the *fs.PathError in the chain.
func Parse(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()
	tbl, _, err := parse(f)
	return tbl, err
}

// ParseReader parses a trace from r.
func ParseReader(r io.Reader) (Table, error) {
	tbl, _, err := parse(r)
	return tbl, err
}

// ParseStats is like Parse but also returns the total number of lines read.
func ParseStats(path string) (Table, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (Table, int, error) {
	// bufio.Reader instead of Scanner: trace lines have no fixed upper length.
	reader := bufio.NewReader(r)
	tbl := Table{}
	idx := 0
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			if line[0] == 'r' {
				row, perr := parseLine(idx, line)
				if perr != nil {
					return nil, idx, perr
				}
				tbl = append(tbl, row)
			}
			idx++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, idx, fmt.Errorf("read trace: %w", err)
		}
	}
	return tbl, idx, nil
}

// parseLine extracts a Row from a reception line.
func parseLine(idx int, line string) (Row, error) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return Row{}, &FormatError{Line: idx, Err: io.ErrUnexpectedEOF}
	}
	ts, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Row{}, &FormatError{Line: idx, Token: parts[1], Err: err}
	}
	row := Row{
		Index:           idx,
		ReceptionTime:   ts,
		SourceNode:      UnknownNode,
		DestinationNode: UnknownNode,
		SizeBytes:       NotAvailable,
		Protocol:        NotAvailable,
	}
	if src, ok := firstWithPrefix(parts, "from"); ok {
		row.SourceNode = src
	}
	if len(parts) > 2 && strings.Contains(parts[2], "Node") {
		row.DestinationNode = strings.TrimRight(parts[2], ":")
	}
	if tok, ok := firstWithPrefix(parts, "size="); ok {
		row.SizeBytes = assignedValue(tok)
	}
	if tok, ok := firstWithPrefix(parts, "protocol="); ok {
		row.Protocol = assignedValue(tok)
	}
	return row, nil
}

func firstWithPrefix(parts []string, prefix string) (string, bool) {
	for _, p := range parts {
		if strings.HasPrefix(p, prefix) {
			return p, true
		}
	}
	return "", false
}

// assignedValue returns the text between the first '=' and the next one (or the end).
func assignedValue(tok string) string {
	v := tok[strings.IndexByte(tok, '=')+1:]
	if i := strings.IndexByte(v, '='); i >= 0 {
		v = v[:i]
	}
	return v
}
