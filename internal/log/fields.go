package log

// Field names shared across structured log calls.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldURL       = "url"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
)
