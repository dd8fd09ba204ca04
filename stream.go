package luhn

import (
	"bufio"
	"io"
)

// maxLineSize bounds a single input line.
const maxLineSize = 16 << 20

// readerSource reads newline-delimited lines from an io.Reader.
type readerSource struct {
	scanner *bufio.Scanner
}

// NewReaderSource returns a LineSource over r. Lines may end in "\n" or
// "\r\n"; the terminator is not part of the returned line.
func NewReaderSource(r io.Reader) LineSource {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &readerSource{scanner: s}
}

func (s *readerSource) Next() (string, bool, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), true, nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", false, err
	}
	return "", false, nil
}

// sliceSource yields lines from memory.
type sliceSource struct {
	lines []string
	pos   int
}

// SliceSource returns a LineSource over lines.
func SliceSource(lines []string) LineSource {
	return &sliceSource{lines: lines}
}

func (s *sliceSource) Next() (string, bool, error) {
	if s.pos >= len(s.lines) {
		return "", false, nil
	}
	line := s.lines[s.pos]
	s.pos++
	return line, true, nil
}

// writerSink writes lines to an io.Writer, flushing after each line.
type writerSink struct {
	w *bufio.Writer
}

// NewWriterSink returns a LineSink over w.
func NewWriterSink(w io.Writer) LineSink {
	return &writerSink{w: bufio.NewWriter(w)}
}

func (s *writerSink) WriteLine(line []byte) error {
	if _, err := s.w.Write(line); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}
