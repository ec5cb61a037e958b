package stream

import "io"

// State is what a decoder has learned about a request so far. Each field
// keeps the value of the most recent event of its kind: a later resource id
// replaces an earlier one, and nothing is cleared once set.
type State struct {
	ResourceID   string
	AuxiliaryID  string
	ErrorMessage string
}

// HasResourceID reports whether a resource id has been seen.
func (s State) HasResourceID() bool { return s.ResourceID != "" }

// HasAuxiliaryID reports whether an auxiliary id has been seen.
func (s State) HasAuxiliaryID() bool { return s.AuxiliaryID != "" }

// HasErrorMessage reports whether an error or message field has been seen.
func (s State) HasErrorMessage() bool { return s.ErrorMessage != "" }

// Apply records event, replacing any earlier value of the same kind.
func (s *State) Apply(event Event) {
	switch event.Kind {
	case EventResourceID:
		s.ResourceID = event.Value
	case EventAuxiliaryID:
		s.AuxiliaryID = event.Value
	case EventErrorMessage:
		s.ErrorMessage = event.Value
	}
}

// StreamingDecoder forwards a response body to a sink while scanning its
// JSON Lines for outcome-relevant fields. It implements io.Writer so a
// transport can copy a body straight into it. A decoder belongs to a single
// request and is not safe for concurrent use.
type StreamingDecoder struct {
	sink      io.Writer
	scanner   LineScanner
	extractor EventExtractor
	state     State
}

// NewStreamingDecoder returns a decoder forwarding to sink. A nil sink
// discards the bytes.
func NewStreamingDecoder(sink io.Writer) *StreamingDecoder {
	if sink == nil {
		sink = io.Discard
	}

	return &StreamingDecoder{sink: sink}
}

// Write forwards p to the sink and then scans it. A sink failure is returned
// before any scanning happens so the transfer can be aborted.
func (d *StreamingDecoder) Write(p []byte) (int, error) {
	if err := forward(d.sink, p); err != nil {
		return 0, err
	}

	for _, line := range d.scanner.Feed(p) {
		d.state.Apply(d.extractor.Extract(line))
	}

	return len(p), nil
}

// Flush scans a trailing line that arrived without a newline. Callers that
// do not flush ignore such a fragment.
func (d *StreamingDecoder) Flush() {
	if line, ok := d.scanner.Flush(); ok {
		d.state.Apply(d.extractor.Extract(line))
	}
}

// State returns the fields extracted so far.
func (d *StreamingDecoder) State() State {
	return d.state
}

func forward(sink io.Writer, p []byte) error {
	if len(p) == 0 {
		return nil
	}

	n, err := sink.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}
