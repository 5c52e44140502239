package cgen

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"testing"
)

// decodeCString undoes cString: it accepts only the escapes cString emits.
func decodeCString(t *testing.T, lit string) []byte {
	t.Helper()
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		t.Fatalf("not a string literal: %s", lit)
	}
	body := lit[1 : len(lit)-1]
	var out []byte
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			if c < 0x20 || c > 0x7e || c == '"' {
				t.Fatalf("unescaped byte %#x in %s", c, lit)
			}
			out = append(out, c)
			continue
		}
		if i+3 >= len(body) {
			t.Fatalf("truncated escape in %s", lit)
		}
		v, err := strconv.ParseUint(body[i+1:i+4], 8, 8)
		if err != nil {
			t.Fatalf("bad escape %q in %s", body[i:i+4], lit)
		}
		out = append(out, byte(v))
		i += 3
	}
	return out
}

func TestCStringRoundTrip(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	inputs := [][]byte{
		nil,
		[]byte("plain text"),
		{0, 0, 0},
		[]byte(`quote " and backslash \`),
		[]byte("??=??/??'"),
		[]byte("\x01digits\x0012345"),
		{0xff, 0xfe, 'a', 0x7f},
		[]byte("café"),
		all,
	}
	for _, in := range inputs {
		lit := cString(in)
		if got := decodeCString(t, lit); !bytes.Equal(got, in) {
			t.Fatalf("round trip of %q: got %q via %s", in, got, lit)
		}
		if strings.Contains(lit, "??") {
			t.Fatalf("trigraph sequence left in %s", lit)
		}
	}
}

func TestCStringEscapes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", `""`},
		{"abc", `"abc"`},
		{"a\"b", `"a\042b"`},
		{`a\b`, `"a\134b"`},
		{"\x00" + "7", `"\0007"`},
		{"??=", `"?\077="`},
		{"???", `"?\077?"`},
		{"\n\t", `"\012\011"`},
	}
	for _, tt := range tests {
		if got := cString([]byte(tt.in)); got != tt.want {
			t.Errorf("cString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNumericLiterals(t *testing.T) {
	ints := map[int64]string{
		0:             "0",
		-1:            "-1",
		42:            "42",
		math.MaxInt64: "9223372036854775807",
		math.MinInt64: "INT64_MIN",
	}
	for v, want := range ints {
		if got := intLiteral(v); got != want {
			t.Errorf("intLiteral(%d) = %s, want %s", v, got, want)
		}
	}
	floats := []struct {
		v    float64
		want string
	}{
		{0, "0.0"},
		{1.5, "1.5"},
		{-3, "-3.0"},
		{1e21, "1e+21"},
		{math.Inf(1), "INFINITY"},
		{math.Inf(-1), "-INFINITY"},
		{math.NaN(), "NAN"},
	}
	for _, tt := range floats {
		if got := floatLiteral(tt.v); got != tt.want {
			t.Errorf("floatLiteral(%v) = %s, want %s", tt.v, got, tt.want)
		}
	}
}
