package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 1, true},
		{" 300000 ", 300000, true},
		{"1e3", 1000, true},
		{"0", 0, true},
		{"-1", -1, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e15", 1000000000000000, true},
		{"-1e15", -1000000000000000, true},
		{"1000000000000001", 0, false},
		{"1e400000000", 0, false},
		{"1e-400000000", 0, false},
		{"10000000000000000000000", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(Yen(tc.out)) {
				t.Fatalf("%q expected %d, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestAmountJSON(t *testing.T) {
	b, err := json.Marshal(Yen(50000))
	if err != nil || string(b) != "50000" {
		t.Fatalf("marshal = %s, %v", b, err)
	}

	var a Amount
	if err := json.Unmarshal([]byte("12.5"), &a); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if a.String() != "12.5" {
		t.Fatalf("unexpected amount %s", a)
	}

	for _, bad := range []string{`"12"`, `null`, `true`, `1e400000000`, `1e-400000000`, `1e16`} {
		if err := json.Unmarshal([]byte(bad), &a); err == nil {
			t.Fatalf("%s expected error", bad)
		}
	}
}
