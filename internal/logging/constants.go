package logging

// Standardized field names for structured logging.
// These constants keep log output consistent across the engine, the
// persistence layer and the CLI so that logs can be filtered by field.
const (
	FieldFile        = "file_path"
	FieldCategoryID  = "category_id"
	FieldCategory    = "category_type"
	FieldRowID       = "row_id"
	FieldRecordID    = "record_id"
	FieldRecordKind  = "record_kind"
	FieldMethod      = "method"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldFormula     = "formula"
	FieldToken       = "token"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldBackend     = "backend"
	FieldOutputFile  = "output_file"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldAccountIDs  = "account_ids"
	FieldOverlapping = "overlapping"
)
