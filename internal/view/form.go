package view

import (
	"sync"

	"github.com/Makepad-fr/tada/internal/service"
)

// Form is the create-todo input: a draft body and a submitting flag.
type Form struct {
	mu         sync.Mutex
	draft      string
	submitting bool
}

func (f *Form) SetDraft(s string) {
	f.mu.Lock()
	f.draft = s
	f.mu.Unlock()
}

func (f *Form) Draft() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Begin validates body and marks the form as submitting. It returns the
// normalized body.
func (f *Form) Begin(body string) (string, error) {
	body, err := service.NormalizeBody(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return "", ErrBusy
	}
	f.submitting = true
	return body, nil
}

// End clears the submitting flag.
func (f *Form) End() {
	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
}

// Reset clears the draft after a successful submit.
func (f *Form) Reset() {
	f.SetDraft("")
}
