package errors

// ErrorCode is the typed identifier for a failure category.  Codes are
// grouped by layer: 1xxx generic, 2xxx storage, 3xxx scoring engine,
// 4xxx retrieval service.  The numeric value is stable and may be emitted
// as a metric label or API error code.
type ErrorCode int

const (
	// CodeOK is the zero value reserved for "no error".
	CodeOK ErrorCode = 0

	// CodeUnknown marks an error that carries no AppError in its chain.
	CodeUnknown ErrorCode = 1

	// ── Generic (1xxx) ─────────────────────────────────────────────────────

	CodeInternal      ErrorCode = 1000
	CodeValidation    ErrorCode = 1001
	CodeNotFound      ErrorCode = 1002
	CodeConflict      ErrorCode = 1003
	CodeTimeout       ErrorCode = 1004
	CodeSerialization ErrorCode = 1005
	CodeUnavailable   ErrorCode = 1006
	CodeInvalidConfig ErrorCode = 1007

	// ── Storage (2xxx) ─────────────────────────────────────────────────────

	CodeDatabaseError  ErrorCode = 2000
	CodeCacheError     ErrorCode = 2001
	CodeMigrationError ErrorCode = 2002

	// ── Scoring engine (3xxx) ──────────────────────────────────────────────

	// CodeMalformedInput marks document/entity input that cannot be scored
	// (empty name, absent content).  It is always recovered locally: the
	// input contributes zero occurrences and the batch continues.
	CodeMalformedInput ErrorCode = 3000

	// CodeDictionaryInvalid marks a severity dictionary that fails
	// validation (wrong tier count, empty keyword set, non-positive weight).
	CodeDictionaryInvalid ErrorCode = 3001

	// CodeScoringFailed marks an unexpected per-entity scoring failure.
	// The batch skips the entity and continues.
	CodeScoringFailed ErrorCode = 3002

	// ── Retrieval service (4xxx) ───────────────────────────────────────────

	// CodeBackingUnavailable marks a transient failure of the backing data
	// source (network, timeout, 5xx).  Retried up to the retry budget and
	// then absorbed by the fallback snapshot.
	CodeBackingUnavailable ErrorCode = 4000

	// CodeNoDataSource marks permanent unavailability: the backing source
	// is exhausted and no snapshot was ever loaded.  This is the only
	// retrieval failure surfaced to callers.
	CodeNoDataSource ErrorCode = 4001

	// CodeSnapshotUnavailable marks a snapshot that could not be loaded at
	// startup.  The service still starts; only the fallback path is lost.
	CodeSnapshotUnavailable ErrorCode = 4002
)

var codeNames = map[ErrorCode]string{
	CodeOK:                  "OK",
	CodeUnknown:             "UNKNOWN",
	CodeInternal:            "INTERNAL",
	CodeValidation:          "VALIDATION",
	CodeNotFound:            "NOT_FOUND",
	CodeConflict:            "CONFLICT",
	CodeTimeout:             "TIMEOUT",
	CodeSerialization:       "SERIALIZATION",
	CodeUnavailable:         "UNAVAILABLE",
	CodeInvalidConfig:       "INVALID_CONFIG",
	CodeDatabaseError:       "DATABASE_ERROR",
	CodeCacheError:          "CACHE_ERROR",
	CodeMigrationError:      "MIGRATION_ERROR",
	CodeMalformedInput:      "MALFORMED_INPUT",
	CodeDictionaryInvalid:   "DICTIONARY_INVALID",
	CodeScoringFailed:       "SCORING_FAILED",
	CodeBackingUnavailable:  "BACKING_UNAVAILABLE",
	CodeNoDataSource:        "NO_DATA_SOURCE",
	CodeSnapshotUnavailable: "SNAPSHOT_UNAVAILABLE",
}

// String returns the canonical upper-snake name of the code.
func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "UNKNOWN"
}

// IsTransient reports whether the code describes a failure that is worth
// retrying.  The retrieval retry decorator consults this to avoid burning
// its retry budget on permanent failures such as validation errors.
func (c ErrorCode) IsTransient() bool {
	switch c {
	case CodeTimeout, CodeUnavailable, CodeBackingUnavailable, CodeDatabaseError, CodeCacheError:
		return true
	default:
		return false
	}
}
