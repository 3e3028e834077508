package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeReplyText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		kind ReplyKind
		want string
	}{
		{name: "output wins over text", body: `{"text":"second","output":"first"}`, kind: ReplyStructured, want: "first"},
		{name: "empty output falls through", body: `{"output":"","text":"fallback"}`, kind: ReplyStructured, want: "fallback"},
		{name: "non-string output falls through", body: `{"output":42,"message":"msg"}`, kind: ReplyStructured, want: "msg"},
		{name: "message before response", body: `{"response":"r","message":"m"}`, kind: ReplyStructured, want: "m"},
		{name: "response last", body: `{"response":"r"}`, kind: ReplyStructured, want: "r"},
		{name: "non-string text serialized", body: `{"text":{"a":1}}`, kind: ReplyStructured, want: `{"a":1}`},
		{name: "non-string text keeps key order", body: `{"text":{"b":1,"a":2}}`, kind: ReplyStructured, want: `{"b":1,"a":2}`},
		{name: "non-string text is not html escaped", body: `{"text":{"a":"<b>&"}}`, kind: ReplyStructured, want: `{"a":"<b>&"}`},
		{name: "non-string message array", body: `{"message":[ 1, "x" ]}`, kind: ReplyStructured, want: `[1,"x"]`},
		{name: "numbers keep their literal form", body: `{"foo":12.50}`, kind: ReplyStructured, want: `{"foo":12.50}`},
		{name: "number text field literal", body: `{"text":12.50}`, kind: ReplyStructured, want: `12.50`},
		{name: "unknown fields serialize whole body", body: "{ \"foo\": 1,\n \"bar\": [1, 2] }", kind: ReplyStructured, want: `{"foo":1,"bar":[1,2]}`},
		{name: "array serialized", body: `[{"output":"x"}]`, kind: ReplyStructured, want: `[{"output":"x"}]`},
		{name: "json string unwrapped", body: `"hello"`, kind: ReplyStructured, want: "hello"},
		{name: "json number", body: `12.5`, kind: ReplyStructured, want: "12.5"},
		{name: "json null", body: `null`, kind: ReplyStructured, want: "null"},
		{name: "plain text verbatim", body: "Bonjour, voici la réponse.", kind: ReplyRaw, want: "Bonjour, voici la réponse."},
		{name: "trailing garbage is raw", body: `{"output":"x"} trailing`, kind: ReplyRaw, want: `{"output":"x"} trailing`},
		{name: "empty body", body: "", kind: ReplyEmpty, want: EmptyReplyText},
		{name: "whitespace body", body: "  \n\t", kind: ReplyEmpty, want: EmptyReplyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reply := DecodeReply([]byte(tt.body))
			assert.Equal(t, tt.kind, reply.Kind)
			assert.Equal(t, tt.want, reply.Text())
		})
	}
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	reply := DecodeReply([]byte(`{"a":0,"b":"","c":false,"d":null,"e":1,"f":"x","g":[],"h":{}}`))
	obj := reply.Value.(map[string]any)

	for _, key := range []string{"a", "b", "c", "d"} {
		assert.False(t, truthy(obj[key]), key)
	}
	for _, key := range []string{"e", "f", "g", "h"} {
		assert.True(t, truthy(obj[key]), key)
	}
}
