package praxis

import "time"

// SourceReport summarizes collection from one source. A failed source is
// reported here and never aborts its siblings.
type SourceReport struct {
	Source   string        `json:"source"`
	Units    int           `json:"units"`
	Skipped  int           `json:"skipped"` // per-unit parse failures and duplicates
	Err      string        `json:"error,omitempty"`
	Failed   bool          `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// ServiceReport carries the per-service funnel counts operators use to
// diagnose low-yield runs without re-reading logs.
type ServiceReport struct {
	Service           string `json:"service"`
	UnitsContributing int    `json:"unitsContributing"`
	RejectedAtQuality int    `json:"rejectedAtQuality"`
	Accepted          int    `json:"accepted"`
	MergedDuplicates  int    `json:"mergedDuplicates"`
	RecordsWritten    int    `json:"recordsWritten"`
	WriteErr          string `json:"writeError,omitempty"`
}

// RunReport is the user-visible outcome of one pipeline run.
type RunReport struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	Sources []SourceReport `json:"sources"`

	// Funnel counts across all services.
	UnitsCollected           int `json:"unitsCollected"`
	RejectedAtClassification int `json:"rejectedAtClassification"`
	DroppedAtLLM             int `json:"droppedAtLLM"` // items lost to exhausted provider retries

	Services []ServiceReport `json:"services"`
}

// Service returns the report entry for a service, creating it on first use.
func (r *RunReport) Service(name string) *ServiceReport {
	for i := range r.Services {
		if r.Services[i].Service == name {
			return &r.Services[i]
		}
	}
	r.Services = append(r.Services, ServiceReport{Service: name})
	return &r.Services[len(r.Services)-1]
}
