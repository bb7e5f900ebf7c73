package backend

import "encoding/json"

// Envelope is the uniform response wrapper of the legacy API. Msg is left raw
// because the backend returns a plain string, an array of strings, or an
// object depending on the endpoint and outcome.
type Envelope struct {
	Success   bool            `json:"Success"`
	Msg       json.RawMessage `json:"Msg"`
	AlertType string          `json:"AlertType,omitempty"`
}

type MessageKind int

const (
	MessageEmpty MessageKind = iota
	MessageText
	MessageList
	MessageObject
)

// Message is the decoded form of Envelope.Msg. Exactly one of Text, List or
// Object is meaningful, selected by Kind.
type Message struct {
	Kind   MessageKind
	Text   string
	List   []string
	Object json.RawMessage
}

func (e *Envelope) Message() Message {
	if len(e.Msg) == 0 {
		return Message{Kind: MessageEmpty}
	}

	var text string
	if err := json.Unmarshal(e.Msg, &text); err == nil {
		return Message{Kind: MessageText, Text: text}
	}

	var list []string
	if err := json.Unmarshal(e.Msg, &list); err == nil {
		return Message{Kind: MessageList, List: list}
	}

	return Message{Kind: MessageObject, Object: e.Msg}
}

// ErrorText resolves a human-readable error from any of the three Msg shapes,
// falling back to the given text when nothing usable is present.
func (e *Envelope) ErrorText(fallback string) string {
	msg := e.Message()

	switch msg.Kind {
	case MessageText:
		if msg.Text != "" {
			return msg.Text
		}
	case MessageList:
		if len(msg.List) > 0 && msg.List[0] != "" {
			return msg.List[0]
		}
	case MessageObject:
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(msg.Object, &obj); err == nil && obj.Message != "" {
			return obj.Message
		}
	}

	return fallback
}

// DecodeObject unmarshals an object-shaped Msg into dst.
func (e *Envelope) DecodeObject(dst any) error {
	return json.Unmarshal(e.Msg, dst)
}
