package output

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sink receives formatted outline lines.
type Sink interface {
	// Emit writes one line. line already carries the indent prefix.
	Emit(indent int, line string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(indent int, line string) error

func (f SinkFunc) Emit(indent int, line string) error {
	return f(indent, line)
}

type writerSink struct {
	w io.Writer
}

// WriterSink writes each line followed by a newline to w.
func WriterSink(w io.Writer) Sink {
	return &writerSink{w: w}
}

func (s *writerSink) Emit(_ int, line string) error {
	_, err := fmt.Fprintln(s.w, line)
	return err
}

type logSink struct {
	l *log.Logger
}

// LogSink prints each line through l, or the standard logger if l is nil.
func LogSink(l *log.Logger) Sink {
	if l == nil {
		l = log.Default()
	}
	return &logSink{l: l}
}

func (s *logSink) Emit(_ int, line string) error {
	s.l.Print(line)
	return nil
}

type htmlSink struct {
	w io.Writer
}

// HTMLSink renders each line as an escaped heading element (see HeadingLevel) on its own line of w.
func HTMLSink(w io.Writer) Sink {
	return &htmlSink{w: w}
}

func (s *htmlSink) Emit(indent int, line string) error {
	tag := "h" + strconv.Itoa(HeadingLevel(indent))
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: line})

	if err := html.Render(s.w, n); err != nil {
		return fmt.Errorf("failed to render %s: %w", tag, err)
	}
	_, err := io.WriteString(s.w, "\n")
	return err
}
