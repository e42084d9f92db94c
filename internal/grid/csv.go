package grid

import (
	"encoding/csv"
	"io"
)

// ReadCSV reads comma separated rows. Ragged rows and a leading UTF-8 byte order
// mark are accepted.
func ReadCSV(r io.Reader) (*Grid, error) {
	cr := csv.NewReader(skipBOM(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return New(rows), nil
}

// WriteCSV writes the grid as comma separated rows terminated by "\n".
func WriteCSV(w io.Writer, g *Grid) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(g.Rows); err != nil {
		return err
	}
	return cw.Error()
}

type bomReader struct {
	r       io.Reader
	checked bool
	pending []byte
}

func skipBOM(r io.Reader) io.Reader {
	return &bomReader{r: r}
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head := make([]byte, 3)
		n, err := io.ReadFull(b.r, head)
		head = head[:n]
		if n == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
			head = nil
		}
		b.pending = head
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return 0, err
		}
	}
	if len(b.pending) > 0 {
		n := copy(p, b.pending)
		b.pending = b.pending[n:]
		return n, nil
	}
	return b.r.Read(p)
}
