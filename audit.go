package authcore

// Audit event types emitted by the engine. Stable strings; sinks and log
// pipelines key on them.
const (
	EventTokenIssue           = "token.issue"
	EventTokenRefresh         = "token.refresh"
	EventTokenRefreshRejected = "token.refresh_rejected"
	EventTokenReuseDetected   = "token.reuse_detected"
	EventTokenRevoke          = "token.revoke"
)
