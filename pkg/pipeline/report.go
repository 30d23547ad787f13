package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/matzehuels/mavenbuild/pkg/artifact"
	"github.com/matzehuels/mavenbuild/pkg/errors"
)

// Status is the outcome of one step or manifest rewrite.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// ManifestOutcome records one pom.xml reconstruction.
type ManifestOutcome struct {
	Path        string `json:"path"`
	Status      Status `json:"status"`
	Bundled     int    `json:"bundled,omitempty"`
	Synthesized bool   `json:"synthesized,omitempty"` // built from the default template
	Error       string `json:"error,omitempty"`

	Err error `json:"-"`
}

// Outcome records what happened to one artifact.
type Outcome struct {
	Kind   artifact.Kind `json:"kind"`
	Key    string        `json:"key,omitempty"`
	Path   string        `json:"path"`
	Module string        `json:"module,omitempty"`
	Status Status        `json:"status"`
	Code   errors.Code   `json:"code,omitempty"`
	Reason string        `json:"reason,omitempty"`

	Merged    string            `json:"merged,omitempty"`
	Manifests []ManifestOutcome `json:"manifests,omitempty"`

	Files    int           `json:"files,omitempty"`
	Bytes    int64         `json:"bytes,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`

	Err error `json:"-"`
}

// fail marks the outcome failed and appends err to its error.
func (o *Outcome) fail(err error) {
	o.Status = StatusFailed
	o.Err = multierror.Append(o.Err, err)
	if o.Code == "" {
		o.Code = errors.GetCode(err)
	}
	if o.Reason != "" {
		o.Reason += "; "
	}
	o.Reason += err.Error()
}

// Summary counts outcomes by status.
type Summary struct {
	Succeeded int   `json:"succeeded"`
	Skipped   int   `json:"skipped"`
	Failed    int   `json:"failed"`
	Manifests int   `json:"manifests"`
	Files     int   `json:"files"`
	Bytes     int64 `json:"bytes"`
}

// Report is the result of an extraction run.
type Report struct {
	RunID       string        `json:"run_id"`
	Root        string        `json:"root"`
	Destination string        `json:"destination"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Artifacts   int           `json:"artifacts"`
	Canceled    bool          `json:"canceled,omitempty"`
	Outcomes    []Outcome     `json:"outcomes"`
	Summary     Summary       `json:"summary"`
}

func newReport(opts *Options) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		Root:        opts.Root,
		Destination: opts.Destination,
		StartedAt:   time.Now(),
	}
}

// skipPlan records every artifact the plan does not extract.
func (r *Report) skipPlan(plan *Plan) {
	for _, u := range plan.Unkeyable {
		r.Outcomes = append(r.Outcomes, Outcome{
			Kind:   u.Kind,
			Path:   u.Path,
			Status: StatusSkipped,
			Code:   errors.ErrCodeUnkeyable,
			Reason: "no version separator in filename",
		})
	}
	for _, s := range plan.Steps {
		for _, f := range s.Shadowed {
			r.Outcomes = append(r.Outcomes, Outcome{
				Kind:   f.Kind,
				Key:    f.LogicalKey(),
				Path:   f.Path,
				Status: StatusSkipped,
				Reason: fmt.Sprintf("shadowed by %s %s", s.Primary.Kind, s.Primary.Path),
			})
		}
	}
	for _, f := range plan.UnusedPOMs {
		r.Outcomes = append(r.Outcomes, Outcome{
			Kind:   f.Kind,
			Key:    f.LogicalKey(),
			Path:   f.Path,
			Status: StatusSkipped,
			Reason: "no standalone jar with the same key",
		})
	}
}

func (r *Report) finish() {
	r.Duration = time.Since(r.StartedAt)
	s := Summary{}
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusSucceeded:
			s.Succeeded++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
		s.Files += o.Files
		s.Bytes += o.Bytes
		s.Manifests += lo.CountBy(o.Manifests, func(m ManifestOutcome) bool { return m.Status == StatusSucceeded })
	}
	r.Summary = s
}

// Failed returns the outcomes with status failed.
func (r *Report) Failed() []Outcome {
	return lo.Filter(r.Outcomes, func(o Outcome, _ int) bool { return o.Status == StatusFailed })
}

// Err combines every step and manifest failure of the run, or returns nil.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed && o.Err != nil {
			result = multierror.Append(result, fmt.Errorf("%s %s: %w", o.Kind, o.Path, o.Err))
		}
		for _, m := range o.Manifests {
			if m.Status == StatusFailed && m.Err != nil {
				result = multierror.Append(result, fmt.Errorf("manifest %s: %w", m.Path, m.Err))
			}
		}
	}
	return result.ErrorOrNil()
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
