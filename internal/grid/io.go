package grid

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ricki-pierce/integrating4Fears/internal/errors"
)

// Load reads the file at path into a grid, choosing the codec by extension.
func Load(path string) (*Grid, error) {
	switch FormatFor(path) {
	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.FileError(err, path)
		}
		defer f.Close()
		g, err := ReadCSV(f)
		if err != nil {
			return nil, fileParsingError(err, path)
		}
		return g, nil
	case FormatXLSX:
		g, err := readXLSXFile(path)
		if err != nil {
			return nil, fileParsingError(err, path)
		}
		return g, nil
	default:
		return nil, unsupportedFormat(path)
	}
}

// Save encodes g in the format implied by path's extension and replaces path
// atomically: the data goes to a temporary file in the same directory which is then
// renamed over the target.
func Save(g *Grid, path string) error {
	var buf bytes.Buffer
	switch FormatFor(path) {
	case FormatCSV:
		if err := WriteCSV(&buf, g); err != nil {
			return fileParsingError(err, path)
		}
	case FormatXLSX:
		if err := WriteXLSX(&buf, g); err != nil {
			return fileParsingError(err, path)
		}
	default:
		return unsupportedFormat(path)
	}

	return writeAtomic(path, buf.Bytes())
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".qtmsync-*.tmp")
	if err != nil {
		return errors.FileError(fmt.Errorf("error creating temporary file: %w", err), path)
	}
	tmpName := tmp.Name()
	// Removing after a successful rename fails harmlessly.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.FileError(fmt.Errorf("error writing temporary file: %w", err), path)
	}
	if err := tmp.Close(); err != nil {
		return errors.FileError(fmt.Errorf("error closing temporary file: %w", err), path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.FileError(fmt.Errorf("error replacing output file: %w", err), path)
	}
	return nil
}

func fileParsingError(err error, path string) error {
	return errors.New(err).
		Component("grid").
		Category(errors.CategoryFileParsing).
		FileContext(path).
		Build()
}

func unsupportedFormat(path string) error {
	return errors.Newf("unsupported tabular file extension %q", filepath.Ext(path)).
		Component("grid").
		Category(errors.CategoryValidation).
		FileContext(path).
		Build()
}
