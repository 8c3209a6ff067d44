package types

type SchemaTable struct {
	Name       string
	PrimaryKey string
	Columns    []SchemaColumn
}

type SchemaColumn struct {
	Name             string
	Type             string
	Nullable         bool
	Default          string
	IsPrimary        bool
	IsUnique         bool
	IsAutoIncrement  bool
	EnumValues       []string // rendered as ENUM on MySQL, CHECK elsewhere
	ForeignKeyTable  string
	ForeignKeyColumn string
	OnDeleteAction   string
}

// Dependencies returns the tables referenced by foreign keys, excluding self references.
func (t SchemaTable) Dependencies() []string {
	var deps []string
	for _, col := range t.Columns {
		if col.ForeignKeyTable != "" && col.ForeignKeyTable != t.Name {
			deps = append(deps, col.ForeignKeyTable)
		}
	}
	return deps
}

func (t SchemaTable) Column(name string) (SchemaColumn, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return SchemaColumn{}, false
}
