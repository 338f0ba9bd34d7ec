package log

// Attribute keys for structured log records.
const (
	Action   = "action"
	Args     = "args"
	Cmd      = "cmd"
	Dest     = "dest"
	Dir      = "dir"
	Field    = "field"
	Filename = "filename"
	Key      = "key"
	Kind     = "kind"
	Name     = "name"
	Path     = "path"
	Pattern  = "pattern"
	Target   = "target"
	Template = "template"
)
