package log

// 结构化日志的字段名。
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldPath      = "path"
	FieldFile      = "file"
	FieldKind      = "kind"
	FieldCode      = "code"
	FieldRule      = "rule"
	FieldPhase     = "phase"
)
