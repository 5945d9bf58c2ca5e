package routing

import (
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/unamentis/patchpanel/capability"
)

// Record is one append-only entry of routing history: what was decided, what
// was actually used, and how it went. Records are never mutated.
type Record struct {
	ID        uuid.UUID           `json:"id"`
	Timestamp time.Time           `json:"timestamp"`
	TaskType  capability.TaskType `json:"task_type"`
	Reason    Reason              `json:"reason"`
	RuleName  string              `json:"rule_name,omitempty"`
	Chain     []string            `json:"chain"`

	// EndpointID is the endpoint that actually served the request. Empty
	// when the whole chain failed.
	EndpointID string        `json:"endpoint_id,omitempty"`
	Latency    time.Duration `json:"latency"`
	Success    bool          `json:"success"`
}

// RecordStore keeps a bounded in-memory window of routing records for
// observability. Backed by an LRU so history never grows without bound; with
// append-only inserts the LRU behaves as a ring buffer, evicting oldest
// first.
type RecordStore struct {
	records *lru.Cache[uuid.UUID, Record]
}

// DefaultRecordHistory is the default record window size.
const DefaultRecordHistory = 4096

// NewRecordStore creates a store holding at most size records.
func NewRecordStore(size int) (*RecordStore, error) {
	if size <= 0 {
		size = DefaultRecordHistory
	}
	cache, err := lru.New[uuid.UUID, Record](size)
	if err != nil {
		return nil, err
	}
	return &RecordStore{records: cache}, nil
}

// Append adds a record, assigning its ID and timestamp if unset.
func (s *RecordStore) Append(rec Record) Record {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	s.records.Add(rec.ID, rec)
	return rec
}

// Len returns the number of retained records.
func (s *RecordStore) Len() int {
	return s.records.Len()
}

// Records returns the retained records, oldest first.
func (s *RecordStore) Records() []Record {
	return s.records.Values()
}

// EndpointStats aggregates outcomes for one endpoint.
type EndpointStats struct {
	Requests     int     `json:"requests"`
	Failures     int     `json:"failures"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// Stats is a read-only projection over the record window, shaped for a
// dashboard or CLI report.
type Stats struct {
	Total      int                         `json:"total"`
	ByEndpoint map[string]EndpointStats    `json:"by_endpoint"`
	ByTaskType map[capability.TaskType]int `json:"by_task_type"`
	ByReason   map[Reason]int              `json:"by_reason"`
}

// Stats computes aggregate counts by endpoint, task type, and reason, plus
// per-endpoint mean latency and failure counts. See ComputeStats for the
// counting unit.
func (s *RecordStore) Stats() Stats {
	return ComputeStats(s.Records())
}

// ComputeStats builds the stats projection over any record slice, e.g. a
// window exported to disk.
//
// The counting unit is records, not user requests: a request that fell
// through the chain contributes one record per attempted invocation plus a
// terminal record with an empty EndpointID when every endpoint failed, so
// Total, ByTaskType, and ByReason count attempts and will exceed the request
// count during outages. Terminal records are excluded from ByEndpoint and
// identifiable by EndpointID == "".
func ComputeStats(records []Record) Stats {
	stats := Stats{
		ByEndpoint: make(map[string]EndpointStats),
		ByTaskType: make(map[capability.TaskType]int),
		ByReason:   make(map[Reason]int),
	}

	totalLatency := make(map[string]time.Duration)
	for _, rec := range records {
		stats.Total++
		stats.ByTaskType[rec.TaskType]++
		stats.ByReason[rec.Reason]++

		if rec.EndpointID == "" {
			continue
		}
		es := stats.ByEndpoint[rec.EndpointID]
		es.Requests++
		if !rec.Success {
			es.Failures++
		}
		totalLatency[rec.EndpointID] += rec.Latency
		stats.ByEndpoint[rec.EndpointID] = es
	}

	for id, es := range stats.ByEndpoint {
		if es.Requests > 0 {
			es.AvgLatencyMs = float64(totalLatency[id].Milliseconds()) / float64(es.Requests)
			stats.ByEndpoint[id] = es
		}
	}
	return stats
}
