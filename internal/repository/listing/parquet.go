package listing

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// readParquet flattens every row group into string cells keyed by top-level column name.
func readParquet(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	cols := pf.Schema().Columns()
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col[0]
	}

	var rows [][]string
	buf := make([]parquet.Row, 256)
	for _, rg := range pf.RowGroups() {
		rr := parquet.NewRowGroupReader(rg)
		for {
			n, readErr := rr.ReadRows(buf)
			for i := 0; i < n; i++ {
				rec := make([]string, len(header))
				for _, v := range buf[i] {
					if c := v.Column(); c >= 0 && c < len(rec) && !v.IsNull() {
						rec[c] = v.String()
					}
				}
				rows = append(rows, rec)
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return nil, fmt.Errorf("read rows: %w", readErr)
			}
		}
	}
	return newTable(header, rows), nil
}
