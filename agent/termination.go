package agent

// TerminationReason indicates why an agent run stopped. It is carried in
// the Message of the run's final event.
type TerminationReason string

const (
	// TerminationComplete indicates the model answered without tool calls.
	TerminationComplete TerminationReason = "complete"

	// TerminationSkipSummarization indicates a tool ended the turn, so the
	// model was not asked to narrate its result.
	TerminationSkipSummarization TerminationReason = "skip_summarization"

	// TerminationTransfer indicates control passed to a sub-agent.
	TerminationTransfer TerminationReason = "transfer"

	// TerminationMaxSteps indicates the step limit was reached.
	TerminationMaxSteps TerminationReason = "max_steps"

	// TerminationTimeout indicates the context deadline was exceeded.
	TerminationTimeout TerminationReason = "timeout"

	// TerminationCancelled indicates context cancellation.
	TerminationCancelled TerminationReason = "cancelled"

	// TerminationError indicates an unrecoverable error occurred.
	TerminationError TerminationReason = "error"
)
