// Package pipeline provides a framework for executing analysis steps in
// sequence.
//
// The pipeline pattern is used to carry one model variant through its
// stages: dataset preparation, MCMC fitting, posterior extraction, plot
// rendering, and archiving. Each stage is implemented as a Step that
// receives the accumulated report and attaches its own output.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running fits
// 4. It keeps each stage independently testable
//
// The pipeline supports both single-model execution and batch processing
// of several model variants with concurrency control using errgroup.
package pipeline
