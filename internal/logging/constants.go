package logging

// Standard field names for structured log output.
const (
	FieldFile         = "file_path"
	FieldComponent    = "component"
	FieldCategory     = "category"
	FieldReason       = "reason"
	FieldOperation    = "operation"
	FieldState        = "state"
	FieldError        = "error"
	FieldDuration     = "duration_ms"
	FieldCount        = "count"
	FieldSamples      = "samples"
	FieldClasses      = "classes"
	FieldFeatures     = "features"
	FieldModelVersion = "model_version"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatus       = "status"
)
