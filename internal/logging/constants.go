package logging

// Standard field names for structured log output.
const (
	FieldFile      = "file_path"
	FieldBank      = "bank"
	FieldField     = "field"
	FieldPages     = "pages"
	FieldDuration  = "duration_ms"
	FieldCount     = "count"
	FieldMissing   = "missing"
	FieldAddr      = "addr"
	FieldRequestID = "request_id"
)
