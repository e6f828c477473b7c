package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"
	CodeInternalError     Code = "INTERNAL_ERROR"
	CodeUnknownError      Code = "UNKNOWN_ERROR"

	CodeInvalidConfig    Code = "INVALID_CONFIG"
	CodeConfigLoadFailed Code = "CONFIG_LOAD_FAILED"
)

// Market data loading
const (
	CodeMappingLoadFailed Code = "MAPPING_LOAD_FAILED"
	CodeQuotesLoadFailed  Code = "QUOTES_LOAD_FAILED"
	CodeBinanceAPIError   Code = "BINANCE_API_ERROR"
)

// Graph and cycle breaking
const (
	CodeInvalidSampleRatio    Code = "INVALID_SAMPLE_RATIO"
	CodeCycleNotBreakable     Code = "CYCLE_NOT_BREAKABLE"
	CodeIterationLimitReached Code = "ITERATION_LIMIT_REACHED"
	CodeRunCancelled          Code = "RUN_CANCELLED"
)

// Export collaborators
const (
	CodeExportFailed      Code = "EXPORT_FAILED"
	CodeSnapshotWriteFail Code = "SNAPSHOT_WRITE_FAILED"
	CodeMetricsWriteFail  Code = "METRICS_WRITE_FAILED"

	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
