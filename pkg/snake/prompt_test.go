package snake

import "testing"

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"y": true, "Yes": true, "1": true, "n": false, "No": false, "false": false} {
		got, err := ParseBool(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: expected %t, got %t", in, want, got)
		}
	}
	if _, err := ParseBool("maybe"); err == nil {
		t.Fatal("expected error for maybe")
	}
}
