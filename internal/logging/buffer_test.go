package logging

import "testing"

func TestRingBufferWrapsInOrder(t *testing.T) {
	rb := NewRingBuffer(3)
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		rb.Write(LogEntry{Message: msg})
	}

	if rb.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", rb.Count())
	}

	all := rb.ReadAll()
	want := []string{"c", "d", "e"}
	for i, entry := range all {
		if entry.Message != want[i] {
			t.Errorf("entry %d = %q, want %q", i, entry.Message, want[i])
		}
	}
	if all[2].Seq != 5 {
		t.Errorf("last seq = %d, want 5", all[2].Seq)
	}
}

func TestRingBufferReadLast(t *testing.T) {
	rb := NewRingBuffer(10)
	if got := rb.ReadLast(5); got != nil {
		t.Errorf("empty buffer returned %v", got)
	}

	for _, msg := range []string{"a", "b", "c", "d"} {
		rb.Write(LogEntry{Message: msg})
	}

	tests := []struct {
		n    int
		want []string
	}{
		{2, []string{"c", "d"}},
		{0, []string{"a", "b", "c", "d"}},
		{50, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		got := rb.ReadLast(tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("ReadLast(%d) len = %d, want %d", tt.n, len(got), len(tt.want))
		}
		for i := range got {
			if got[i].Message != tt.want[i] {
				t.Errorf("ReadLast(%d)[%d] = %q, want %q", tt.n, i, got[i].Message, tt.want[i])
			}
		}
	}
}
