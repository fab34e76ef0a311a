package notify

import "sync"

// Recorder is a Notifier that remembers every intent. Used by tests and
// as a no-op stand-in when no gateway is configured.
type Recorder struct {
	mu      sync.Mutex
	intents []Intent
}

var _ Notifier = (*Recorder)(nil)

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Notify(intent Intent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, intent)
	return nil
}

// Intents returns a copy of everything recorded so far.
func (r *Recorder) Intents() []Intent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Intent, len(r.intents))
	copy(out, r.intents)
	return out
}

// ByKind filters recorded intents.
func (r *Recorder) ByKind(kind IntentKind) []Intent {
	var out []Intent
	for _, in := range r.Intents() {
		if in.Kind == kind {
			out = append(out, in)
		}
	}
	return out
}
