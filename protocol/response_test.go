package protocol

import (
	"bytes"
	"testing"
)

func TestMarshal_EndsWithCRLF(t *testing.T) {
	tests := []Response{
		Ok(),
		Val("blue"),
		NotFound(),
		Err("Parse error: unknown verb"),
	}

	for _, r := range tests {
		out := Marshal(r)
		if !bytes.HasSuffix(out, []byte("\r\n")) {
			t.Fatalf("expected CRLF terminator, got %q", out)
		}
		if bytes.Count(bytes.TrimSuffix(out, []byte("\r\n")), []byte("\n")) != 0 {
			t.Fatalf("unexpected interior newline in %q", out)
		}
	}
}

func TestMarshal_ExactBytes(t *testing.T) {
	tests := []struct {
		resp Response
		want string
	}{
		{Ok(), "OK\r\n"},
		{Val("hello world"), "VALUE hello world\r\n"},
		{NotFound(), "NOT_FOUND\r\n"},
		{Err("boom"), "ERROR boom\r\n"},
	}

	for _, tt := range tests {
		if got := string(Marshal(tt.resp)); got != tt.want {
			t.Fatalf("got %q, want %q", got, tt.want)
		}
	}
}

// Round-trip: for any response whose payload has no newline, parsing
// back the serialized line should not be ambiguous about which
// variant produced it. Since the server never parses its own
// responses, this is checked indirectly via the wire-level prefixes.
func TestMarshal_RoundTripPrefixes(t *testing.T) {
	cases := map[string]Response{
		"OK\r\n":           Ok(),
		"VALUE x\r\n":      Val("x"),
		"NOT_FOUND\r\n":    NotFound(),
		"ERROR bad\r\n":    Err("bad"),
	}
	for want, r := range cases {
		if got := string(Marshal(r)); got != want {
			t.Fatalf("got %q want %q", got, want)
		}
	}
}
