package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

const maxLineSize = 1024 * 1024

// FileSource implements RecordSource for reading from stream files.
type FileSource struct {
	files     []string
	extractor *Extractor

	currentFile    *os.File
	currentScanner *bufio.Scanner
	currentSource  string
	currentLine    int
	fileIndex      int

	stats SourceStats
}

// SourceStats counts what a source has read so far.
type SourceStats struct {
	LinesRead    int
	LinesSkipped int
	Records      int
}

// NewFileSource creates a RecordSource that reads the given files in order.
func NewFileSource(files []string, extractor *Extractor) *FileSource {
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &FileSource{
		files:     files,
		extractor: extractor,
		fileIndex: -1,
	}
}

// Next returns the next record.
// Returns io.EOF when all files have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*Record, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentScanner == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		if s.currentScanner.Scan() {
			s.currentLine++
			s.stats.LinesRead++

			rec, ok, err := s.extractor.Extract(s.currentScanner.Text())
			if err != nil {
				return nil, annotate(err, s.currentSource, s.currentLine)
			}
			if !ok {
				s.stats.LinesSkipped++
				continue
			}

			s.stats.Records++
			rec.Source = s.currentSource
			rec.LineNum = s.currentLine
			return &rec, nil
		}

		if err := s.currentScanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
		}

		// Current file exhausted, try next
		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
		s.currentScanner = nil
	}
}

// Stats returns the line and record counts so far.
func (s *FileSource) Stats() SourceStats {
	return s.stats
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening stream file %s: %w", path, err)
	}

	s.currentFile = f
	s.currentScanner = newScanner(f)
	s.currentSource = path
	s.currentLine = 0

	return nil
}

func (s *FileSource) closeCurrentFile() error {
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		s.currentScanner = nil
		return err
	}
	return nil
}

// ReaderSource implements RecordSource over an already open reader.
type ReaderSource struct {
	name      string
	scanner   *bufio.Scanner
	extractor *Extractor
	line      int
}

// NewReaderSource creates a RecordSource reading lines from r.
// The name is used in error messages and as the record source.
func NewReaderSource(name string, r io.Reader, extractor *Extractor) *ReaderSource {
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &ReaderSource{
		name:      name,
		scanner:   newScanner(r),
		extractor: extractor,
	}
}

// Next returns the next record or io.EOF.
func (s *ReaderSource) Next(ctx context.Context) (*Record, error) {
	for s.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.line++

		rec, ok, err := s.extractor.Extract(s.scanner.Text())
		if err != nil {
			return nil, annotate(err, s.name, s.line)
		}
		if !ok {
			continue
		}
		rec.Source = s.name
		rec.LineNum = s.line
		return &rec, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.name, err)
	}
	return nil, io.EOF
}

// Close is a no-op; the caller owns the reader.
func (s *ReaderSource) Close() error {
	return nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

// annotate fills in the location of a *ParseError.
func annotate(err error, source string, line int) error {
	var perr *ParseError
	if errors.As(err, &perr) {
		perr.Source = source
		perr.LineNum = line
		return perr
	}
	return fmt.Errorf("%s:%d: %w", source, line, err)
}

// ReadAll drains src and returns every record.
// It stops at the first error; no partial result is returned.
func ReadAll(ctx context.Context, src RecordSource) ([]Record, error) {
	var records []Record
	for {
		rec, err := src.Next(ctx)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
}

// WriteRows drains src and writes one comma-joined row per record to w.
// It returns the number of rows written.
func WriteRows(ctx context.Context, src RecordSource, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for {
		rec, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = bw.Flush()
			return n, err
		}
		if _, err := bw.WriteString(FormatRow(*rec)); err != nil {
			return n, fmt.Errorf("writing row: %w", err)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("writing rows: %w", err)
	}
	return n, nil
}
