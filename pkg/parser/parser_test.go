package parser

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleStream = `% recognizer output
output(hla, alice, cooking, none, 3, 0.9, datime(2024, 1, 1, 0, 0, 0, 0), datime(2024, 1, 1, 1, 0, 0, 0))

output(hla, bob, reading, none, 4, 0.7, datime(2024, 1, 1, 0, 30, 0, 0), datime(2024, 1, 1, 0, 45, 0, 0))
`

func writeStream(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func drain(t *testing.T, src RecordSource) []*Record {
	t.Helper()
	ctx := context.Background()
	var records []*Record
	for {
		rec, err := src.Next(ctx)
		if err == io.EOF {
			return records
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		records = append(records, rec)
	}
}

func TestFileSource_Next(t *testing.T) {
	path := writeStream(t, t.TempDir(), "hla.stream", sampleStream)

	source := NewFileSource([]string{path}, NewExtractor())
	defer source.Close()

	records := drain(t, source)
	if len(records) != 2 {
		t.Fatalf("Got %d records, want 2", len(records))
	}

	if records[0].LineNum != 2 {
		t.Errorf("LineNum = %d, want 2", records[0].LineNum)
	}
	if records[1].LineNum != 4 {
		t.Errorf("LineNum = %d, want 4", records[1].LineNum)
	}
	if records[0].Source != path {
		t.Errorf("Source = %q, want %q", records[0].Source, path)
	}
	if records[1].User != "bob" {
		t.Errorf("User = %q, want bob", records[1].User)
	}

	stats := source.Stats()
	if stats.LinesRead != 4 || stats.LinesSkipped != 2 || stats.Records != 2 {
		t.Errorf("Stats() = %+v, want 4 read, 2 skipped, 2 records", stats)
	}
}

func TestFileSource_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeStream(t, dir, "a.stream", sampleStream)
	b := writeStream(t, dir, "b.stream", sampleStream)

	source := NewFileSource([]string{a, b}, nil)
	defer source.Close()

	records := drain(t, source)
	if len(records) != 4 {
		t.Errorf("Got %d records, want 4", len(records))
	}
	if records[2].Source != b {
		t.Errorf("Source = %q, want %q", records[2].Source, b)
	}
}

func TestFileSource_ParseErrorLocation(t *testing.T) {
	content := sampleStream + "output(hla, carol, datime(2024, 1, 1, 0))\n"
	path := writeStream(t, t.TempDir(), "bad.stream", content)

	source := NewFileSource([]string{path}, NewExtractor())
	defer source.Close()

	ctx := context.Background()
	var err error
	for err == nil {
		_, err = source.Next(ctx)
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Next() error = %v, want *ParseError", err)
	}
	if perr.Source != path {
		t.Errorf("Source = %q, want %q", perr.Source, path)
	}
	if perr.LineNum != 5 {
		t.Errorf("LineNum = %d, want 5", perr.LineNum)
	}
}

func TestFileSource_FileNotFound(t *testing.T) {
	source := NewFileSource([]string{"/nonexistent/file.stream"}, nil)
	defer source.Close()

	_, err := source.Next(context.Background())
	if err == nil || err == io.EOF {
		t.Errorf("Next() error = %v, want open error", err)
	}
}

func TestFileSource_ContextCancellation(t *testing.T) {
	path := writeStream(t, t.TempDir(), "hla.stream", sampleStream)

	source := NewFileSource([]string{path}, nil)
	defer source.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.Next(ctx)
	if err != context.Canceled {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

func TestFileSource_EmptyFile(t *testing.T) {
	path := writeStream(t, t.TempDir(), "empty.stream", "% only a comment\n\n")

	source := NewFileSource([]string{path}, nil)
	defer source.Close()

	if records := drain(t, source); len(records) != 0 {
		t.Errorf("Got %d records, want 0", len(records))
	}
}

func TestReaderSource(t *testing.T) {
	source := NewReaderSource("stdin", strings.NewReader(sampleStream), nil)

	records := drain(t, source)
	if len(records) != 2 {
		t.Fatalf("Got %d records, want 2", len(records))
	}
	if records[0].Source != "stdin" {
		t.Errorf("Source = %q, want stdin", records[0].Source)
	}
}

func TestReadAll_StopsOnError(t *testing.T) {
	content := sampleStream + "garbage\n"
	source := NewReaderSource("mem", strings.NewReader(content), nil)

	records, err := ReadAll(context.Background(), source)
	if err == nil {
		t.Fatal("ReadAll() expected error")
	}
	if records != nil {
		t.Errorf("ReadAll() returned %d records alongside an error", len(records))
	}
}

func TestWriteRows(t *testing.T) {
	source := NewReaderSource("mem", strings.NewReader(sampleStream), nil)

	var buf bytes.Buffer
	n, err := WriteRows(context.Background(), source, &buf)
	if err != nil {
		t.Fatalf("WriteRows() error = %v", err)
	}
	if n != 2 {
		t.Errorf("WriteRows() = %d, want 2", n)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Got %d rows, want 2", len(lines))
	}
	if lines[0] != "hla,alice,cooking,3,0.9,1704078000,1704081600" {
		t.Errorf("Row 0 = %q", lines[0])
	}
}
