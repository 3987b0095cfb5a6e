package logging

// Structured log keys shared across packages.
const (
	FieldCursor     = "cursor"
	FieldHomework   = "homework"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
	FieldInterval   = "interval"
	FieldKind       = "kind"
	FieldVariable   = "variable"
	FieldChat       = "chat"
	FieldLevel      = "level"
	FieldEndpoint   = "endpoint"
)
