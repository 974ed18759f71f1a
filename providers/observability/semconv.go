package observability

// Pipeline attributes.
const (
	// AttrRunID identifies one pipeline run.
	AttrRunID = "pipeline.run.id"

	// AttrRunStatus is the terminal status of a run (completed, cancelled).
	AttrRunStatus = "pipeline.run.status"

	// AttrRunStageStatuses is the JSON object of terminal stage statuses.
	AttrRunStageStatuses = "pipeline.run.stage_statuses"

	// AttrStage is the stage name (validation, statistics, visualization, narrative).
	AttrStage = "pipeline.stage"

	// AttrStageLevel is the topological level of the stage (0-based).
	AttrStageLevel = "pipeline.stage.level"

	// AttrStageStatus is the terminal status of a stage.
	AttrStageStatus = "pipeline.stage.status"

	// AttrStageAttempt is the 1-based attempt number within a stage retry loop.
	AttrStageAttempt = "pipeline.stage.attempt"

	// AttrStageDependencies lists the upstream stages.
	AttrStageDependencies = "pipeline.stage.dependencies"

	// AttrErrorKind is the classified error kind recorded in the report.
	AttrErrorKind = "pipeline.error.kind"

	// AttrDatasetRows is the row count of the input dataset.
	AttrDatasetRows = "dataset.rows"

	// AttrDatasetColumns is the column count of the input dataset.
	AttrDatasetColumns = "dataset.columns"
)

// LLM attributes.
const (
	// AttrLLMModel is the model requested from the provider.
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the provider endpoint URL.
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMFinishReason is the provider's finish reason.
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTokensTotal is the total tokens reported by the provider.
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrRequestMessagesCount is the number of messages in the request.
	AttrRequestMessagesCount = "request.messages_count"
)

// HTTP attributes.
const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// Generic attributes.
const (
	AttrError             = "error"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// Span names.
const (
	SpanPipelineRun     = "pipeline.run"
	SpanPipelineStage   = "pipeline.stage.execute"
	SpanClientSend      = "client.send_message"
	SpanReportStoreSave = "reportstore.save"
)

// Metric names.
const (
	// MetricStageDuration is the histogram of stage durations in seconds.
	MetricStageDuration = "edaflow.stage.duration"

	// MetricStageCount counts terminal stage outcomes by status.
	MetricStageCount = "edaflow.stage.count"

	// MetricStageRetries counts stage retries.
	MetricStageRetries = "edaflow.stage.retries"

	// MetricRunDuration is the histogram of run durations in seconds.
	MetricRunDuration = "edaflow.run.duration"

	// MetricClientRequestCount counts LLM requests by outcome.
	MetricClientRequestCount = "edaflow.client.request.count"

	// MetricClientRequestDuration is the histogram of LLM request durations.
	MetricClientRequestDuration = "edaflow.client.request.duration"
)
