package llm

import (
	"context"
	"errors"
	"sync"
)

// Scripted is a Provider test double that replays a fixed queue of
// completions and records every call it receives. It lets tests pin exact
// model outputs and token counts, and assert how many calls a step made.
type Scripted struct {
	mu        sync.Mutex
	queue     []*Completion
	callIndex int
	err       error

	// Calls records every invocation in order.
	Calls []ScriptedCall
}

// ScriptedCall captures the arguments of one Invoke call.
type ScriptedCall struct {
	Tier         int
	SystemPrompt string
	UserMessage  string
}

var _ Provider = (*Scripted)(nil)

// NewScripted creates a scripted provider that returns the given completions
// in order. When the queue is exhausted, Invoke fails.
func NewScripted(completions ...*Completion) *Scripted {
	return &Scripted{queue: completions}
}

// FailWith makes every subsequent Invoke return the given error.
func (scripted *Scripted) FailWith(err error) *Scripted {
	scripted.mu.Lock()
	defer scripted.mu.Unlock()
	scripted.err = err
	return scripted
}

// Invoke records the call and returns the next queued completion.
func (scripted *Scripted) Invoke(_ context.Context, tier int, systemPrompt, userMessage string) (*Completion, error) {
	scripted.mu.Lock()
	defer scripted.mu.Unlock()

	scripted.Calls = append(scripted.Calls, ScriptedCall{
		Tier:         tier,
		SystemPrompt: systemPrompt,
		UserMessage:  userMessage,
	})

	if scripted.err != nil {
		return nil, scripted.err
	}

	if scripted.callIndex >= len(scripted.queue) {
		return nil, errors.New("scripted provider: no more completions queued")
	}

	completion := scripted.queue[scripted.callIndex]
	scripted.callIndex++
	return completion, nil
}

// CallCount returns the number of Invoke calls received so far.
func (scripted *Scripted) CallCount() int {
	scripted.mu.Lock()
	defer scripted.mu.Unlock()
	return len(scripted.Calls)
}
