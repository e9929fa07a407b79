package llm

import (
	"strings"
	"testing"
)

func TestResponseBudget_EmptyMessages(t *testing.T) {
	if got := ResponseBudget(nil); got != ContextCapacity {
		t.Fatalf("empty messages: got %d, want %d", got, ContextCapacity)
	}
}

func TestResponseBudget_Formula(t *testing.T) {
	tests := []struct {
		name  string
		chars int
		want  int
	}{
		{"zero length", 0, 2048},
		{"small input", 40, 2048 - 10},
		{"exact floor boundary", (2048 - 512) * 4, 512},
		{"below floor clamps", 100000, 512},
		{"one char rounds down", 3, 2048},
		{"four chars", 4, 2047},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages := []Message{{Role: "user", Content: strings.Repeat("a", tt.chars)}}
			if got := ResponseBudget(messages); got != tt.want {
				t.Fatalf("chars=%d: got %d, want %d", tt.chars, got, tt.want)
			}
		})
	}
}

func TestResponseBudget_SumsAcrossMessages(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: strings.Repeat("a", 100)},
		{Role: "user", Content: strings.Repeat("b", 100)},
		{Role: "assistant", Content: strings.Repeat("c", 100)},
		{Role: "user", Content: strings.Repeat("d", 100)},
	}
	// 400 chars -> 100 tokens
	want := 2048 - 100
	if got := ResponseBudget(messages); got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestEstimateTokens(t *testing.T) {
	messages := []Message{
		{Role: "user", Content: "Hi"},
		{Role: "assistant", Content: "Hello!"},
	}
	// 8 chars / 4 = 2
	if got := EstimateTokens(messages); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}
