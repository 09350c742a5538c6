package pipeline

import (
	"fmt"
	"sync/atomic"
)

// Stats counts candidates of the current run. It is safe for concurrent use.
type Stats struct {
	queued  atomic.Int64
	saved   atomic.Int64
	failed  atomic.Int64
	skipped atomic.Int64
}

func (s *Stats) Queued() int64  { return s.queued.Load() }
func (s *Stats) Saved() int64   { return s.saved.Load() }
func (s *Stats) Failed() int64  { return s.failed.Load() }
func (s *Stats) Skipped() int64 { return s.skipped.Load() }

func (s *Stats) String() string {
	return fmt.Sprintf("Download status: Queued=%d; Saved=%d; Failed=%d; Skipped=%d",
		s.Queued(), s.Saved(), s.Failed(), s.Skipped())
}

func (s *Stats) reset() {
	s.queued.Store(0)
	s.saved.Store(0)
	s.failed.Store(0)
	s.skipped.Store(0)
}
