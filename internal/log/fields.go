package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldEntryDate  = "entry_date"
	FieldEntryKind  = "entry_kind"
	FieldEntryID    = "entry_id"
	FieldRowIndex   = "row_index"
	FieldBackend    = "backend"
	FieldSheetsRef  = "sheets_ref"
	FieldBatchSize  = "batch_size"
)

// Component names used across the application
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentJournal = "journal"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
	ComponentCoach   = "coach"
	ComponentBackend = "backend"
)

// Operation names
const (
	OpAppend   = "append"
	OpRead     = "read"
	OpDelete   = "delete"
	OpList     = "list"
	OpSync     = "sync"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// Fields builds attribute lists for slog calls.
type Fields map[string]any

func NewFields() Fields {
	return make(Fields)
}

func (f Fields) WithComponent(component string) Fields {
	f[FieldComponent] = component
	return f
}

func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f Fields) WithEntry(date, kind string) Fields {
	f[FieldEntryDate] = date
	f[FieldEntryKind] = kind
	return f
}

func (f Fields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
