// Package pipeline turns a collected conversation into an AnalysisResult.
//
// A Pipeline runs its steps in order on a Job: render the transcript,
// truncate it, check the classifier quota and classify. The first failing
// step ends the run and its error is normalized into a degraded result,
// so Analyze always returns something presentable. The BatchProcessor
// analyzes several independent transcripts concurrently.
package pipeline
