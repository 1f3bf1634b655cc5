package change

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/entitydiagram/pkg/errors"
)

// wireEvent is the JSON shape shared by all event types. Only the fields
// relevant to Type are populated.
type wireEvent struct {
	Type        string  `json:"type"`
	Key         string  `json:"key,omitempty"`
	NodeKey     string  `json:"nodeKey,omitempty"`
	Loc         string  `json:"loc,omitempty"`
	FromNode    string  `json:"fromNode,omitempty"`
	ToNode      string  `json:"toNode,omitempty"`
	NewFromNode string  `json:"newFromNode,omitempty"`
	NewToNode   string  `json:"newToNode,omitempty"`
	Text        *string `json:"text,omitempty"`
	ToText      *string `json:"toText,omitempty"`
	OldText     *string `json:"oldText,omitempty"`
	NewText     *string `json:"newText,omitempty"`
	IsFromText  *bool   `json:"isFromText,omitempty"`
}

// Marshal encodes an event as JSON with a "type" discriminator.
func Marshal(e Event) ([]byte, error) {
	return json.Marshal(toWire(e))
}

// MarshalAll encodes a list of events as a JSON array.
func MarshalAll(events []Event) ([]byte, error) {
	out := make([]wireEvent, len(events))
	for i, e := range events {
		out[i] = toWire(e)
	}
	return json.Marshal(out)
}

// Unmarshal decodes a single event. Unknown types and missing required
// fields are reported as [errors.ErrCodeInvalidEvent].
func Unmarshal(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidEvent, err, "decode event")
	}
	return fromWire(w)
}

// UnmarshalAll decodes either a single event object or an array of events.
// Input starting with '[' is always decoded as an array.
func UnmarshalAll(data []byte) ([]Event, error) {
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) == 0 || trimmed[0] != '[' {
		e, err := Unmarshal(data)
		if err != nil {
			return nil, err
		}
		return []Event{e}, nil
	}
	var ws []wireEvent
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidEvent, err, "decode events")
	}
	out := make([]Event, 0, len(ws))
	for i, w := range ws {
		e, err := fromWire(w)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func toWire(e Event) wireEvent {
	switch e := e.(type) {
	case NodePositionChanged:
		return wireEvent{Type: TypeNodePositionChanged, NodeKey: e.Key, Loc: e.Loc}
	case LinkAdded:
		return wireEvent{Type: TypeLinkAdded, Key: e.Key, FromNode: e.From, ToNode: e.To, Text: e.Text, ToText: e.ToText}
	case LinkModified:
		return wireEvent{Type: TypeLinkModified, Key: e.Key, NewFromNode: e.NewFrom, NewToNode: e.NewTo, Text: e.Text, ToText: e.ToText}
	case LinkRemoved:
		return wireEvent{Type: TypeLinkRemoved, Key: e.Key}
	case LinkTextChanged:
		return wireEvent{Type: TypeLinkTextChanged, Key: e.Key, OldText: &e.OldText, NewText: &e.NewText, IsFromText: &e.IsFromText}
	default:
		panic(fmt.Sprintf("change: unhandled event %T", e))
	}
}

func fromWire(w wireEvent) (Event, error) {
	switch w.Type {
	case TypeNodePositionChanged:
		if w.NodeKey == "" {
			return nil, missing(w.Type, "nodeKey")
		}
		return NodePositionChanged{Key: w.NodeKey, Loc: w.Loc}, nil
	case TypeLinkAdded:
		if w.Key == "" {
			return nil, missing(w.Type, "key")
		}
		return LinkAdded{Key: w.Key, From: w.FromNode, To: w.ToNode, Text: w.Text, ToText: w.ToText}, nil
	case TypeLinkModified:
		if w.Key == "" {
			return nil, missing(w.Type, "key")
		}
		return LinkModified{Key: w.Key, NewFrom: w.NewFromNode, NewTo: w.NewToNode, Text: w.Text, ToText: w.ToText}, nil
	case TypeLinkRemoved:
		if w.Key == "" {
			return nil, missing(w.Type, "key")
		}
		return LinkRemoved{Key: w.Key}, nil
	case TypeLinkTextChanged:
		if w.Key == "" {
			return nil, missing(w.Type, "key")
		}
		if w.NewText == nil || w.IsFromText == nil {
			return nil, missing(w.Type, "newText/isFromText")
		}
		e := LinkTextChanged{Key: w.Key, NewText: *w.NewText, IsFromText: *w.IsFromText}
		if w.OldText != nil {
			e.OldText = *w.OldText
		}
		return e, nil
	case "":
		return nil, errors.New(errors.ErrCodeInvalidEvent, "event type is required")
	default:
		return nil, errors.New(errors.ErrCodeInvalidEvent, "unknown event type %q", w.Type)
	}
}

func missing(typ, field string) error {
	return errors.New(errors.ErrCodeInvalidEvent, "%s: %s is required", typ, field)
}
