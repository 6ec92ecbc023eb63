package quotation

import "sync"

type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseValidating      Phase = "validating"
	PhaseProcessingFiles Phase = "processing_files"
	PhaseSaving          Phase = "saving"
	PhaseSucceeded       Phase = "succeeded"
	PhaseClosed          Phase = "closed"
	PhaseFailed          Phase = "failed"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:            {PhaseValidating},
	PhaseValidating:      {PhaseProcessingFiles, PhaseFailed},
	PhaseProcessingFiles: {PhaseSaving, PhaseFailed},
	PhaseSaving:          {PhaseSucceeded, PhaseFailed},
	PhaseSucceeded:       {PhaseClosed},
	PhaseFailed:          {PhaseIdle},
}

// Tracker follows one save through its phases. Transitions not in the table are ignored.
type Tracker struct {
	mu      sync.Mutex
	phase   Phase
	history []Phase
}

func NewTracker() *Tracker {
	return &Tracker{phase: PhaseIdle, history: []Phase{PhaseIdle}}
}

func (t *Tracker) Set(next Phase) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, allowed := range transitions[t.phase] {
		if allowed == next {
			t.phase = next
			t.history = append(t.history, next)
			return true
		}
	}
	return false
}

func (t *Tracker) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

func (t *Tracker) History() []Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Phase, len(t.history))
	copy(out, t.history)
	return out
}

// fail records a hard failure; the composer goes back to idle.
func (t *Tracker) fail() {
	t.Set(PhaseFailed)
	t.Set(PhaseIdle)
}
