package vo

import "testing"

func TestJobStatusIsValid(t *testing.T) {
	valid := []JobStatus{JobStatusQueued, JobStatusProcessing, JobStatusCompleted, JobStatusFailed, JobStatusCancelled}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []JobStatus{"", "running", "done"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	tests := map[JobStatus]bool{
		JobStatusQueued:     false,
		JobStatusProcessing: false,
		JobStatusCompleted:  true,
		JobStatusFailed:     true,
		JobStatusCancelled:  true,
	}
	for s, want := range tests {
		if got := s.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, got, want)
		}
	}
}

func TestJobStatusTransitions(t *testing.T) {
	all := []JobStatus{JobStatusQueued, JobStatusProcessing, JobStatusCompleted, JobStatusFailed, JobStatusCancelled}
	allowed := map[JobStatus]map[JobStatus]bool{
		JobStatusQueued: {
			JobStatusProcessing: true,
			JobStatusFailed:     true,
			JobStatusCancelled:  true,
		},
		JobStatusProcessing: {
			JobStatusCompleted: true,
			JobStatusFailed:    true,
			JobStatusCancelled: true,
		},
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}
