package app_test

import (
	"reflect"
	"testing"

	"hotel_concierge/internal/app"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"  Hello,   World!! ", "hello world"},
		{"check-in & check-out?", "check in check out"},
		{"Doručak u 7:30", "doručak u 7 30"},
		{"€45/night", "45 night"},
		{"...", ""},
	}
	for _, c := range cases {
		if got := app.Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := app.Tokenize("Do you have FREE parking?")
	want := []string{"do", "you", "have", "free", "parking"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	if len(app.Tokenize("")) != 0 {
		t.Fatalf("Tokenize(\"\") should be empty")
	}
}
