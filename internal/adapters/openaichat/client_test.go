package openaichat

import (
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"hotel_concierge/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		overloaded bool
	}{
		{"api 429", &openai.APIError{HTTPStatusCode: 429, Message: "too many requests"}, true},
		{"api 503", &openai.APIError{HTTPStatusCode: 503, Message: "upstream busy"}, true},
		{"api 400", &openai.APIError{HTTPStatusCode: 400, Message: "bad request"}, false},
		{"rate limit text", errors.New("Rate limit reached for requests"), true},
		{"overloaded text", errors.New("the engine is currently overloaded"), true},
		{"plain failure", errors.New("connection refused"), false},
	}
	for _, c := range cases {
		got := classify(c.err)
		if errors.Is(got, domain.ErrOverloaded) != c.overloaded {
			t.Errorf("%s: classify(%v) overloaded=%v, want %v", c.name, c.err, !c.overloaded, c.overloaded)
		}
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New("", "", ""); err == nil {
		t.Fatalf("missing key must be rejected")
	}
	c, err := New("http://localhost:9999/v1/", "k", "")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if c.model != openai.GPT4oMini {
		t.Fatalf("default model: %q", c.model)
	}
}
