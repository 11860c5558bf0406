package errors

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Ingestion error codes (INGEST_*)
const (
	IngestMissingColumns ErrorCode = "INGEST_001"
	IngestMalformedRow   ErrorCode = "INGEST_002"
	IngestEmptyFile      ErrorCode = "INGEST_003"
	IngestInvalidAmount  ErrorCode = "INGEST_004"
	IngestInvalidDate    ErrorCode = "INGEST_005"
)

// Analysis error codes (ANALYSIS_*)
const (
	AnalysisEmptyPopulation  ErrorCode = "ANALYSIS_001"
	AnalysisInvalidDimension ErrorCode = "ANALYSIS_002"
	AnalysisInvalidWindow    ErrorCode = "ANALYSIS_003"
	AnalysisNoTransactions   ErrorCode = "ANALYSIS_004"
)

// Model error codes (MODEL_*)
const (
	ModelFitFailure        ErrorCode = "MODEL_001"
	ModelInsufficientData  ErrorCode = "MODEL_002"
	ModelDegenerateInput   ErrorCode = "MODEL_003"
)

// Configuration error codes (CONFIG_*)
const (
	ConfigMissingOption   ErrorCode = "CONFIG_001"
	ConfigMalformedOption ErrorCode = "CONFIG_002"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidDate   ErrorCode = "VALIDATION_005"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemConfigurationError ErrorCode = "SYSTEM_003"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_004"
	SystemServiceUnavailable ErrorCode = "SYSTEM_005"
	SystemUnexpectedError    ErrorCode = "SYSTEM_006"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	IngestMissingColumns: "Required columns are missing from the input",
	IngestMalformedRow:   "A row in the input could not be parsed",
	IngestEmptyFile:      "The input contains no transaction rows",
	IngestInvalidAmount:  "A transaction amount could not be parsed",
	IngestInvalidDate:    "A transaction date could not be parsed",

	AnalysisEmptyPopulation:  "No qualifying customers in the requested period",
	AnalysisInvalidDimension: "Unknown grouping dimension",
	AnalysisInvalidWindow:    "Analysis time window is malformed",
	AnalysisNoTransactions:   "No transactions found for the requested period",

	ModelFitFailure:       "Model fitting did not converge",
	ModelInsufficientData: "Not enough customers to fit a model",
	ModelDegenerateInput:  "Model input is degenerate",

	ConfigMissingOption:   "A required option is missing",
	ConfigMalformedOption: "An option value is malformed",

	ValidationGeneral:       "Validation failed",
	ValidationRequiredField: "Required field is missing",
	ValidationInvalidFormat: "Field format is invalid",
	ValidationOutOfRange:    "Value is out of the allowed range",
	ValidationInvalidDate:   "Date format is invalid",

	SystemInternalError:      "An internal error occurred",
	SystemDatabaseError:      "A database error occurred",
	SystemConfigurationError: "Service is misconfigured",
	SystemRateLimitExceeded:  "Too many requests",
	SystemServiceUnavailable: "Service is temporarily unavailable",
	SystemUnexpectedError:    "An unexpected error occurred",
}

// GetErrorMessage returns the default message for an error code
func GetErrorMessage(code ErrorCode) string {
	if message, ok := errorMessages[code]; ok {
		return message
	}
	return errorMessages[SystemUnexpectedError]
}
