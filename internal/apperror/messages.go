package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRateLimitExceeded: "Rate limit exceeded",
	CodeInternalError:     "Internal error",
	CodeUnknownError:      "An unknown error occurred",

	CodeInvalidConfig:    "Invalid configuration",
	CodeConfigLoadFailed: "Failed to load configuration",

	CodeMappingLoadFailed: "Failed to load symbol mapping",
	CodeQuotesLoadFailed:  "Failed to load quotes",
	CodeBinanceAPIError:   "Binance API error",

	CodeInvalidSampleRatio:    "Sample ratio must be within [0, 1]",
	CodeCycleNotBreakable:     "Detected cycle cannot be broken by the removal policy",
	CodeIterationLimitReached: "Iteration limit reached before the graph became cycle-free",
	CodeRunCancelled:          "Run cancelled",

	CodeExportFailed:      "Export failed",
	CodeSnapshotWriteFail: "Failed to write graph snapshot",
	CodeMetricsWriteFail:  "Failed to write metrics",

	CodeCircuitOpen: "Circuit breaker is open",
}
