package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

// EmptyReplyText is displayed when a webhook answers with an empty body.
const EmptyReplyText = "empty response"

// ReplyKind tags the shape of a webhook reply body.
type ReplyKind int

const (
	// ReplyEmpty is an empty or whitespace-only body.
	ReplyEmpty ReplyKind = iota
	// ReplyStructured is a body that parsed as a single JSON value.
	ReplyStructured
	// ReplyRaw is a body that is not JSON.
	ReplyRaw
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyEmpty:
		return "empty"
	case ReplyStructured:
		return "structured"
	case ReplyRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Reply is a decoded webhook response body.
type Reply struct {
	Kind ReplyKind
	// Value holds the decoded JSON for ReplyStructured. Numbers are json.Number.
	Value any
	// Compact is the compacted JSON body for ReplyStructured.
	Compact string
	Raw     string

	// fields holds the raw members of an object body, in their original
	// encoding.
	fields map[string]json.RawMessage
}

// replyFields is the lookup order for the display text after "output".
var replyFields = []string{"text", "message", "response"}

// DecodeReply classifies a response body.
func DecodeReply(body []byte) Reply {
	raw := string(body)
	if len(bytes.TrimSpace(body)) == 0 {
		return Reply{Kind: ReplyEmpty, Raw: raw}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Reply{Kind: ReplyRaw, Raw: raw}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Reply{Kind: ReplyRaw, Raw: raw}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return Reply{Kind: ReplyRaw, Raw: raw}
	}
	reply := Reply{Kind: ReplyStructured, Value: v, Compact: buf.String(), Raw: raw}
	if _, ok := v.(map[string]any); ok {
		if err := json.Unmarshal(body, &reply.fields); err != nil {
			reply.fields = nil
		}
	}
	return reply
}

// Text returns the string shown to the user for this reply.
func (r Reply) Text() string {
	switch r.Kind {
	case ReplyEmpty:
		return EmptyReplyText
	case ReplyRaw:
		return r.Raw
	}

	obj, ok := r.Value.(map[string]any)
	if !ok {
		switch v := r.Value.(type) {
		case nil:
			return "null"
		case string:
			return v
		case json.Number:
			return v.String()
		case bool:
			return strconv.FormatBool(v)
		default:
			return r.Compact
		}
	}

	if s, ok := obj["output"].(string); ok && s != "" {
		return s
	}
	for _, key := range replyFields {
		if v, ok := obj[key]; ok && truthy(v) {
			return r.displayValue(key, v)
		}
	}
	return r.Compact
}

// displayValue renders a field as text. Non-string values are shown as the
// compacted JSON the webhook sent, keeping key order and escapes as is.
func (r Reply) displayValue(key string, v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, r.fields[key]); err != nil {
		return ""
	}
	return buf.String()
}

// truthy follows loose JSON truthiness: false, null, "", and 0 are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case float64:
		return t != 0
	default:
		return true
	}
}

func stringField(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}
	s, _ := obj[key].(string)
	return s
}
