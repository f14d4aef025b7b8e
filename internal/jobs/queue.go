package jobs

// SweepQueue provides an abstraction for enqueueing background sweeps
type SweepQueue interface {
	EnqueueSweep(profileID int64) error
}
