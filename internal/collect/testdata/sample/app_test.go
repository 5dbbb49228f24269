package sample

import "testing"

func TestProcess(t *testing.T) {
	if got := Process([]int{1, 20}); got != 3 {
		t.Fatalf("Process() = %d, want 3", got)
	}
}
