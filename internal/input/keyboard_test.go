package input

import (
	"context"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	events := make(chan Event, 16)
	if err := Read(context.Background(), strings.NewReader("x\nt q?"), events); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	want := []Event{Press, ManualDetect, Press, Quit}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecode(t *testing.T) {
	if ev, ok := Decode(0x03); !ok || ev != Quit {
		t.Errorf("Ctrl-C decoded as %v, %v", ev, ok)
	}
	if _, ok := Decode('z'); ok {
		t.Error("unmapped key should be ignored")
	}
}
