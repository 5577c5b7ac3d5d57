package reqargs

// Provenance contains source information for validated arguments.
type Provenance struct {
	Fields []FieldProvenance
}

// FieldProvenance describes where an argument's value came from.
type FieldProvenance struct {
	Field      string   // Field name
	SourceName string   // "body", "query", ... or "default"
	Location   Location // NoLocation for defaults and direct Validate calls
	Secret     bool     // Whether field is secret
}

// Lookup returns the provenance of one field.
func (p *Provenance) Lookup(field string) (FieldProvenance, bool) {
	if p == nil {
		return FieldProvenance{}, false
	}
	for _, fp := range p.Fields {
		if fp.Field == field {
			return fp, true
		}
	}
	return FieldProvenance{}, false
}

func provenanceFor(f *Field, loc Location, fromDefault bool) FieldProvenance {
	fp := FieldProvenance{
		Field:    f.name,
		Location: loc,
		Secret:   f.secret,
	}
	switch {
	case fromDefault:
		fp.SourceName = "default"
	case loc.Valid():
		fp.SourceName = loc.String()
	default:
		fp.SourceName = "raw"
	}
	return fp
}
