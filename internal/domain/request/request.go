package request

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// seqCounter is an atomic counter giving each request a process-local sequence number
var seqCounter uint64

// Stage names a pipeline step a request has passed through
type Stage string

const (
	StageExtract Stage = "extract"
	StageStrip   Stage = "strip_links"
	StageParse   Stage = "parse"
	StageCoerce  Stage = "coerce"
	StageSort    Stage = "sort"
	StageQuery   Stage = "query"
	StageFilter  Stage = "filter"
)

// Request is the tracing context for one load or filter call
type Request struct {
	ID        string    // Unique request identifier (UUID)
	Seq       uint64    // Monotonic sequence number
	Active    bool      // Whether the request is still running
	StartTime time.Time // When the request began
	Stages    []Stage   // Steps completed so far
}

// New creates a new request with a unique ID
func New() *Request {
	return &Request{
		ID:        uuid.New().String(),
		Seq:       atomic.AddUint64(&seqCounter, 1),
		Active:    true,
		StartTime: time.Now(),
		Stages:    make([]Stage, 0, 4),
	}
}

// Done records a completed stage
func (r *Request) Done(stage Stage) {
	r.Stages = append(r.Stages, stage)
}

// Close marks the request as finished
func (r *Request) Close() {
	r.Active = false
}

// Elapsed reports the time since the request started
func (r *Request) Elapsed() time.Duration {
	return time.Since(r.StartTime)
}
