package cmd

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andresmejia3/facepill/internal/game"
	"github.com/andresmejia3/facepill/internal/store"
	"github.com/google/uuid"
)

func TestVerdict(t *testing.T) {
	tests := []struct {
		name string
		j    game.Judgment
		want []string
	}{
		{
			name: "No face",
			j:    game.Judgment{Result: game.ResultLose, Openness: -1},
			want: []string{"No faces detected", game.LoseLabel},
		},
		{
			name: "Wide open",
			j:    game.Judgment{Result: game.ResultWin, Faces: 1, Openness: 22.3},
			want: []string{"22.3 px", "more than 15", game.WinLabel},
		},
		{
			name: "Crowd, closed mouth",
			j:    game.Judgment{Result: game.ResultLose, Faces: 3, Openness: 4},
			want: []string{"Multiple faces detected (3)", game.LoseLabel},
		},
		{
			name: "Truncated landmarks",
			j:    game.Judgment{Result: game.ResultLose, Faces: 1, Openness: -1},
			want: []string{"incomplete", game.LoseLabel},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := verdict(tt.j)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("verdict missing %q:\n%s", w, got)
				}
			}
		})
	}
}

func TestPrintRounds(t *testing.T) {
	open := 19.0
	session := uuid.MustParse("0b7c3c9e-1111-4222-8333-444455556666")
	rounds := []store.Round{
		{ID: "01J0000000000000000000000B", SessionID: session, Round: 2, Result: "lose", Faces: 0, JudgedAt: time.Now()},
		{ID: "01J0000000000000000000000A", SessionID: session, Round: 1, Result: "win", Openness: &open, Faces: 1, JudgedAt: time.Now()},
	}

	var out bytes.Buffer
	printRounds(&out, rounds, store.Stats{Wins: 1, Losses: 1})
	got := out.String()
	for _, w := range []string{"0b7c3c9e", "19.0", "win", "lose", "1 wins / 1 losses (2 rounds)"} {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q:\n%s", w, got)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if got := confirm(&out, bufio.NewReader(strings.NewReader(tt.input)), "Sure?"); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "[y/N]") {
			t.Errorf("prompt not shown: %q", out.String())
		}
	}
}

func TestLogFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"facepill.log", "facepill-2026-01-02T03-04-05.000.log.gz", "other.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got := logFiles(filepath.Join(dir, "facepill.log"))
	if len(got) != 2 {
		t.Errorf("logFiles = %v, want the log and its backup", got)
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"play", "judge", "history", "reset"} {
		c, _, err := rootCmd.Find([]string{name})
		if err != nil || c.Name() != name {
			t.Errorf("command %q not registered: %v", name, err)
		}
	}
	if historyCmd.Annotations[dbAnnotation] != dbRequired {
		t.Error("history must require a database")
	}
	if playCmd.Annotations[dbAnnotation] != dbOptional {
		t.Error("play must run without a database")
	}
}
