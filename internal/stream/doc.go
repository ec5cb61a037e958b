// Package stream decodes container engine response bodies as they arrive.
//
// The transport hands bytes to a decoder in arbitrary chunks. A decoder
// forwards every chunk to its sink untouched and, depending on the variant,
// either scans complete JSON Lines for the few fields that decide a
// request's outcome (StreamingDecoder) or keeps the whole body for parsing
// once the status code is known (AccumulatingDecoder).
package stream
