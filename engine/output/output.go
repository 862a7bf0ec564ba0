// Package output writes indented outline lines to pluggable sinks: a console writer, an HTML
// document or a logger.
package output

import (
	"errors"
	"strings"
	"sync"
)

// Outliner formats outline lines and fans them out to its sinks.
type Outliner interface {
	// Output writes text at the given depth. The line is the Prefix for indent followed by text.
	// Every sink receives the line even if an earlier one fails.
	//
	// Parameters:
	//   - indent: nesting depth, 0 for top level
	//   - text: the line content
	//
	// Returns:
	//   - error: the joined sink errors
	Output(indent int, text string) error

	// AddSink appends a sink.
	//
	// Parameters:
	//   - sink: the sink to add
	AddSink(sink Sink)
}

type outliner struct {
	mu    sync.Mutex
	sinks []Sink
}

var _ Outliner = &outliner{}

// NewOutliner creates an Outliner. Without WithSink options it writes nowhere.
//
// Parameters:
//   - options: a variadic list of OutlinerBuilderOption functions
//
// Returns:
//   - Outliner: the outliner
func NewOutliner(options ...OutlinerBuilderOption) Outliner {
	o := &outliner{}
	for _, option := range options {
		option(o)
	}
	return o
}

func (o *outliner) Output(indent int, text string) error {
	line := Prefix(indent) + text

	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	for _, s := range o.sinks {
		if err := s.Emit(indent, line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (o *outliner) AddSink(sink Sink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sinks = append(o.sinks, sink)
}

// Prefix returns "-" preceded by indent copies of "--". Negative indents count as 0.
func Prefix(indent int) string {
	return strings.Repeat("--", max(indent, 0)) + "-"
}

// HeadingLevel returns the HTML heading level used for a line at indent: indent+1 for indents
// below 1, otherwise 3, never less than 1.
func HeadingLevel(indent int) int {
	if indent < 1 {
		return max(indent+1, 1)
	}
	return 3
}
