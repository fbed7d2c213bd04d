package model

import "time"

// AnalysisReport accumulates the results of one model's pipeline run.
// Steps read what earlier steps produced and attach their own output.
//
// Design decision: A single accumulating struct (rather than typed channels
// between stages) keeps the pipeline sequential and easy to inspect, and
// makes partial results available when a step fails midway.
type AnalysisReport struct {
	// ModelName identifies the model variant this report belongs to.
	ModelName string `json:"model_name"`

	// DataFile is the source spreadsheet path.
	DataFile string `json:"data_file"`

	// StartedAt is when the pipeline began executing.
	StartedAt time.Time `json:"started_at"`

	// Raw holds the study records loaded from the spreadsheet, before
	// preparation. Shared read-only across model variants.
	Raw []StudyRecord `json:"-"`

	// Data is the prepared dataset produced by the prepare step.
	Data *Dataset `json:"data,omitempty"`

	// Fit is the sampler output produced by the fit step.
	Fit *FitResult `json:"-"`

	// Summaries are the posterior group summaries in display order,
	// produced by the extract step.
	Summaries []GroupSummary `json:"summaries,omitempty"`

	// Run is the archived run summary, populated by the persist step.
	Run *RunSummary `json:"run,omitempty"`

	// PlotFiles lists the image files written by the plot step.
	PlotFiles []string `json:"plot_files,omitempty"`

	// PerformedSteps records which pipeline steps ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut is set when the pipeline was cancelled before completing.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error holds the first step error, with ErrorMessage as its
	// serializable form.
	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`
}

// NewAnalysisReport creates a report for one model variant over the given
// raw study records.
func NewAnalysisReport(modelName, dataFile string, raw []StudyRecord) *AnalysisReport {
	return &AnalysisReport{
		ModelName: modelName,
		DataFile:  dataFile,
		StartedAt: time.Now(),
		Raw:       raw,
	}
}
