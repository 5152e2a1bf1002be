package domain

// Status is the lifecycle state of an experiment.
type Status string

const (
	StatusCreated   Status = "created"
	StatusScheduled Status = "scheduled"
	StatusStarting  Status = "starting"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusStopped   Status = "stopped"
	StatusSkipped   Status = "skipped"
)

// Statuses lists every known status in lifecycle order.
var Statuses = []Status{
	StatusCreated,
	StatusScheduled,
	StatusStarting,
	StatusRunning,
	StatusSucceeded,
	StatusFailed,
	StatusStopped,
	StatusSkipped,
}

func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsDone reports whether the status is terminal.
func (s Status) IsDone() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusStopped, StatusSkipped:
		return true
	}
	return false
}

// IsRunning reports whether the experiment is scheduled or executing.
func (s Status) IsRunning() bool {
	switch s {
	case StatusScheduled, StatusStarting, StatusRunning:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus returns ErrInvalidStatus for unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}
