package domain

// PushEvent is one progress message from an image push.
type PushEvent struct {
	ID       string `json:"id,omitempty"`
	Status   string `json:"status"`
	Progress string `json:"progress,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Push statuses reported once per layer.
const (
	PushStatusPushed = "Pushed"
	PushStatusExists = "Layer already exists"
)

// LayerEvents keeps the per-layer completion events plus the trailing
// digest line, which is what an operator wants to see after a push.
func LayerEvents(events []PushEvent) []PushEvent {
	var out []PushEvent
	for _, e := range events {
		if e.Status == PushStatusPushed || e.Status == PushStatusExists {
			out = append(out, e)
		}
	}
	if n := len(events); n > 0 {
		last := events[n-1]
		if last.Status != PushStatusPushed && last.Status != PushStatusExists {
			out = append(out, last)
		}
	}
	return out
}
