package output

// OutlinerBuilderOption is a functional option for configuring an Outliner via NewOutliner.
type OutlinerBuilderOption func(*outliner)

// WithSink is an option builder that adds a sink to the Outliner.
//
// Parameters:
//   - sink: the sink to add
//
// Returns:
//   - OutlinerBuilderOption: a function that applies the sink option to an outliner
func WithSink(sink Sink) OutlinerBuilderOption {
	return func(o *outliner) {
		o.sinks = append(o.sinks, sink)
	}
}
