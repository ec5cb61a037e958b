package stream

import (
	"bytes"
	"io"
)

// AccumulatingDecoder forwards a response body to a sink and keeps a copy of
// every byte, for endpoints that answer with one JSON document or with an
// error body whose shape depends on the status code.
type AccumulatingDecoder struct {
	sink io.Writer
	body bytes.Buffer
}

// NewAccumulatingDecoder returns a decoder forwarding to sink. A nil sink
// discards the bytes.
func NewAccumulatingDecoder(sink io.Writer) *AccumulatingDecoder {
	if sink == nil {
		sink = io.Discard
	}

	return &AccumulatingDecoder{sink: sink}
}

// Write forwards p to the sink and appends it to the body.
func (d *AccumulatingDecoder) Write(p []byte) (int, error) {
	if err := forward(d.sink, p); err != nil {
		return 0, err
	}

	d.body.Write(p)
	return len(p), nil
}

// Body returns every byte received so far.
func (d *AccumulatingDecoder) Body() []byte {
	return d.body.Bytes()
}

// String returns the body as text.
func (d *AccumulatingDecoder) String() string {
	return d.body.String()
}

// State scans the complete body for outcome-relevant fields. The body is
// whole once the transfer has finished, so a final line without a newline
// is scanned too.
func (d *AccumulatingDecoder) State() State {
	var (
		scanner   LineScanner
		extractor EventExtractor
		state     State
	)

	for _, line := range scanner.Feed(d.body.Bytes()) {
		state.Apply(extractor.Extract(line))
	}
	if line, ok := scanner.Flush(); ok {
		state.Apply(extractor.Extract(line))
	}

	return state
}
