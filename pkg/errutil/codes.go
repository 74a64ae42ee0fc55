package errutil

// CoreStatus classifies every failure the mirror layer can produce. Callers
// branch on the status, never on message text.
type CoreStatus string

const (
	// Read-path statuses.
	StatusNotFound      CoreStatus = "NOT_FOUND"      // no matching row, recoverable, shown as empty state
	StatusMalformedRow  CoreStatus = "MALFORMED_ROW"  // indexing-pipeline data bug, fatal to the read
	StatusInvalidPage   CoreStatus = "INVALID_PAGE"   // caller misuse, rejected before querying
	StatusInvalidFilter CoreStatus = "INVALID_FILTER" // caller misuse, rejected before querying

	// Write-path statuses.
	StatusSubmission    CoreStatus = "SUBMISSION_FAILED" // signer unavailable or refused to sign
	StatusChainRejected CoreStatus = "CHAIN_REJECTED"    // transaction aborted on-chain
	StatusTimeout       CoreStatus = "TIMEOUT"           // finality not observed within the bounded wait

	StatusInternal CoreStatus = "INTERNAL"
	StatusUnknown  CoreStatus = "UNKNOWN"
)
