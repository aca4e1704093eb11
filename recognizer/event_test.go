package recognizer

import "testing"

func TestDecodeLine(t *testing.T) {
	for _, tt := range []struct {
		name string
		line string
		ok   bool
		kind Kind
		text string
		err  string
	}{
		{"partial", `{"type":"partial","text":"hello"}`, true, KindPartial, "hello", ""},
		{"final", `{"type":"final","text":"hello world"}`, true, KindFinal, "hello world", ""},
		{"error", `{"type":"error","error":"mic gone"}`, true, KindError, "", "mic gone"},
		{"partial trimmed", `{"type":"partial","text":"  hi  "}`, true, KindPartial, "hi", ""},
		{"partial empty text", `{"type":"partial","text":"   "}`, false, 0, "", ""},
		{"final missing text", `{"type":"final"}`, false, 0, "", ""},
		{"error missing message", `{"type":"error"}`, false, 0, "", ""},
		{"unknown type", `{"type":"ready","text":"x"}`, false, 0, "", ""},
		{"log noise", `LOG (VoskAPI:Init():model.cc:213) Decoding params`, false, 0, "", ""},
		{"empty line", ``, false, 0, "", ""},
		{"truncated json", `{"type":"final","text":"hel`, false, 0, "", ""},
		{"not an object", `[1,2,3]`, false, 0, "", ""},
	} {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := DecodeLine([]byte(tt.line))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if ev.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", ev.Kind, tt.kind)
			}
			if ev.Text != tt.text {
				t.Errorf("Text = %q, want %q", ev.Text, tt.text)
			}
			if ev.Err != tt.err {
				t.Errorf("Err = %q, want %q", ev.Err, tt.err)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	for _, tt := range []struct {
		kind Kind
		want string
	}{
		{KindPartial, "partial"},
		{KindFinal, "final"},
		{KindError, "error"},
		{Kind(0), "unknown"},
	} {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
