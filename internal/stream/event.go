package stream

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/opencontainers/go-digest"
	"github.com/valyala/fastjson"
)

// ShortIDLength is the number of characters a resource id is shortened to.
const ShortIDLength = 12

// EventKind identifies which recognized field a line produced.
type EventKind int

const (
	EventNone EventKind = iota
	EventResourceID
	EventAuxiliaryID
	EventErrorMessage
)

func (k EventKind) String() string {
	switch k {
	case EventResourceID:
		return "resource-id"
	case EventAuxiliaryID:
		return "auxiliary-id"
	case EventErrorMessage:
		return "error-message"
	default:
		return "none"
	}
}

// Event is the single outcome-relevant value extracted from one line.
type Event struct {
	Kind  EventKind
	Value string
}

// Field is a JSON key the extractor recognizes.
type Field string

const (
	FieldID      Field = "Id"
	FieldAux     Field = "aux"
	FieldError   Field = "error"
	FieldMessage Field = "message"
)

// Precedence is the order fields are checked in. The first field present
// with a usable value decides the event; the rest of the line is ignored.
var Precedence = []Field{FieldID, FieldAux, FieldError, FieldMessage}

// EventExtractor parses single lines. It keeps a reusable parser, so one
// extractor must not be shared between goroutines.
type EventExtractor struct {
	parser fastjson.Parser
}

// Extract returns the event carried by line. Blank lines, invalid UTF-8,
// anything that is not a JSON object and objects without a recognized field
// all yield an EventNone event.
func (e *EventExtractor) Extract(line []byte) Event {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || !utf8.Valid(line) {
		return Event{}
	}

	value, err := e.parser.ParseBytes(line)
	if err != nil || value.Type() != fastjson.TypeObject {
		return Event{}
	}

	for _, field := range Precedence {
		if event, ok := extractField(value, field); ok {
			return event
		}
	}

	return Event{}
}

func extractField(value *fastjson.Value, field Field) (Event, bool) {
	switch field {
	case FieldID:
		id, ok := stringField(value, string(FieldID))
		if !ok || id == "" {
			return Event{}, false
		}
		return Event{Kind: EventResourceID, Value: ShortID(id)}, true

	case FieldAux:
		aux := value.Get(string(FieldAux))
		if aux == nil || aux.Type() != fastjson.TypeObject {
			return Event{}, false
		}
		id, ok := stringField(aux, "ID")
		if !ok || id == "" {
			return Event{}, false
		}
		return Event{Kind: EventAuxiliaryID, Value: StripDigestAlgorithm(id)}, true

	case FieldError, FieldMessage:
		message, ok := stringField(value, string(field))
		if !ok || message == "" {
			return Event{}, false
		}
		return Event{Kind: EventErrorMessage, Value: message}, true
	}

	return Event{}, false
}

func stringField(value *fastjson.Value, key string) (string, bool) {
	field := value.Get(key)
	if field == nil || field.Type() != fastjson.TypeString {
		return "", false
	}

	b, err := field.StringBytes()
	if err != nil {
		return "", false
	}
	return string(b), true
}

// ShortID truncates id to ShortIDLength characters. Shorter ids are returned
// as they are.
func ShortID(id string) string {
	if len(id) > ShortIDLength {
		return id[:ShortIDLength]
	}
	return id
}

// StripDigestAlgorithm removes the algorithm tag from a content digest, so
// "sha256:abc..." becomes "abc...". Values that are not digests keep
// everything after the first colon, or are returned whole when there is none.
func StripDigestAlgorithm(value string) string {
	if d, err := digest.Parse(value); err == nil {
		return d.Encoded()
	}

	if _, encoded, ok := strings.Cut(value, ":"); ok {
		return encoded
	}
	return value
}
