package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	goparquet "github.com/parquet-go/parquet-go"
)

// FormatSeconds renders a time value with the shortest exact representation,
// always keeping one decimal so integral values read as floats (1 -> "1.0").
func FormatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// WriteCSV writes the detail table: header plus one record per row in Columns order.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	rec := make([]string, len(Columns))
	for _, r := range t {
		rec[0] = strconv.Itoa(r.Index)
		rec[1] = FormatSeconds(r.ReceptionTime)
		rec[2] = r.SourceNode
		rec[3] = r.DestinationNode
		rec[4] = r.SizeBytes
		rec[5] = r.Protocol
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a detail table previously written by WriteCSV.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("detail csv: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("detail csv: %w", err)
	}
	for i, h := range header {
		if h != Columns[i] {
			return nil, fmt.Errorf("detail csv: column %d is %q, want %q", i, h, Columns[i])
		}
	}
	tbl := Table{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("detail csv: %w", err)
		}
		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("detail csv: packet index %q: %w", rec[0], err)
		}
		ts, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("detail csv: reception time %q: %w", rec[1], err)
		}
		tbl = append(tbl, Row{Index: idx, ReceptionTime: ts, SourceNode: rec[2], DestinationNode: rec[3], SizeBytes: rec[4], Protocol: rec[5]})
	}
	return tbl, nil
}

// WriteParquet writes the detail table as a Parquet file with one row group.
func WriteParquet(w io.Writer, t Table) error {
	writer := goparquet.NewGenericWriter[Row](w)
	if _, err := writer.Write(t); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet reads a detail table written by WriteParquet.
func ReadParquet(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := goparquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	reader := goparquet.NewGenericReader[Row](pf)
	defer reader.Close()

	tbl := make(Table, 0, reader.NumRows())
	buf := make([]Row, 256)
	for {
		n, readErr := reader.Read(buf)
		tbl = append(tbl, buf[:n]...)
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read parquet rows: %w", readErr)
		}
	}
	return tbl, nil
}
