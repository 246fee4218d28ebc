package text

// FieldType is the declared type of one schema text field (spec §3).
type FieldType string

const (
	FieldString FieldType = "string"
	FieldInt    FieldType = "int"
	FieldFloat  FieldType = "float"
	FieldBool   FieldType = "bool"
	FieldDate   FieldType = "date"
)

// FieldConfig is one entry in a collection's ordered text-field list (spec
// §3): type, and per-field indexing/storage/tokenizer flags.
type FieldConfig struct {
	Name     string
	Type     FieldType
	Indexed  bool
	Stored   bool
	Analyzer string // defaults to AnalyzerName when Type == FieldString
}

// Config is a collection's text backend configuration (spec §3).
type Config struct {
	Fields []FieldConfig
}
