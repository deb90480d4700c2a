package version

import "testing"

func TestStringDefaults(t *testing.T) {
	got := String()
	want := "dev (unknown) built unknown"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
