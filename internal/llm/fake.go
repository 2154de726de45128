package llm

import (
	"context"
	"sync"
)

// Call records one Generate invocation on the fake.
type Call struct {
	System   string
	Messages []Message
}

// Fake is a scripted Client for tests. Responses are returned in
// order, the last one repeating once the script runs out.
type Fake struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Calls     []Call
}

// ID identifies the provider.
func (f *Fake) ID() string { return "fake" }

// Generate returns the next scripted response.
func (f *Fake) Generate(_ context.Context, system string, messages []Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, Call{System: system, Messages: append([]Message{}, messages...)})
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Responses) == 0 {
		return "", ErrEmptyResponse
	}
	resp := f.Responses[0]
	if len(f.Responses) > 1 {
		f.Responses = f.Responses[1:]
	}
	return resp, nil
}

var _ Client = (*Fake)(nil)
