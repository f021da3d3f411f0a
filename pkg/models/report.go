package models

import "time"

type DriftVerdict string

const (
	VerdictNoDrift DriftVerdict = "no significant drift"
	VerdictDrift   DriftVerdict = "drift detected"
)

type RunSource string

const (
	RunSourceScheduler RunSource = "scheduler"
	RunSourceTrigger   RunSource = "api_trigger"
	RunSourceManual    RunSource = "api_manual"
)

type SchedulerState string

const (
	SchedulerIdle    SchedulerState = "idle"
	SchedulerRunning SchedulerState = "running"
)

type RunOutcome string

const (
	RunOutcomeReport       RunOutcome = "report_generated"
	RunOutcomeInsufficient RunOutcome = "insufficient_data"
	RunOutcomeFailed       RunOutcome = "failed"
)

// FeatureDrift is the per-feature comparison result: the two-sample KS
// statistic against the baseline column and its p-value.
type FeatureDrift struct {
	Feature      string  `json:"feature"`
	Statistic    float64 `json:"statistic"`
	PValue       float64 `json:"p_value"`
	Drifted      bool    `json:"drifted"`
	BaselineMean float64 `json:"baseline_mean"`
	CurrentMean  float64 `json:"current_mean"`
}

// DriftReport is the immutable output of one analysis run. The analyzer
// fills the comparison fields; the scheduler stamps ID and GeneratedAt
// before the report is persisted, so two runs over identical inputs
// produce identical comparison content.
type DriftReport struct {
	ID                  string         `json:"id"`
	GeneratedAt         time.Time      `json:"generated_at"`
	Source              RunSource      `json:"source"`
	BaselineFingerprint string         `json:"baseline_fingerprint"`
	BaselineSamples     int            `json:"baseline_samples"`
	CurrentSamples      int            `json:"current_samples"`
	Features            []FeatureDrift `json:"features"`
	DriftedFeatures     int            `json:"drifted_features"`
	DriftShare          float64        `json:"drift_share"`
	Verdict             DriftVerdict   `json:"verdict"`
}

func (r *DriftReport) DriftDetected() bool {
	return r.Verdict == VerdictDrift
}

// DriftedFeatureNames lists the features flagged as drifted, in comparison order.
func (r *DriftReport) DriftedFeatureNames() []string {
	names := make([]string, 0, r.DriftedFeatures)
	for _, f := range r.Features {
		if f.Drifted {
			names = append(names, f.Feature)
		}
	}
	return names
}

// ReportInfo is stored-report metadata as listed by the status API.
type ReportInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size_bytes"`
	Modified time.Time `json:"modified"`
}
