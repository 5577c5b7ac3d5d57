package reqargs

import "testing"

func TestParseLocation(t *testing.T) {
	tests := map[string]Location{
		"body":        InBody,
		"JSON":        InBody,
		"query":       InQuery,
		"querystring": InQuery,
		"path":        InPath,
		"view_args":   InPath,
		" form ":      InForm,
		"file":        InFile,
		"files":       InFile,
	}
	for input, want := range tests {
		got, err := ParseLocation(input)
		if err != nil || got != want {
			t.Errorf("ParseLocation(%q) = %v, %v; want %v", input, got, err, want)
		}
	}

	if _, err := ParseLocation("headers"); err == nil {
		t.Error("ParseLocation(headers) expected error")
	}
}

func TestLocation_String(t *testing.T) {
	for _, loc := range Locations {
		parsed, err := ParseLocation(loc.String())
		if err != nil || parsed != loc {
			t.Errorf("%s does not parse back: %v, %v", loc, parsed, err)
		}
		if !loc.Valid() {
			t.Errorf("%s.Valid() = false", loc)
		}
	}
	if NoLocation.Valid() || NoLocation.String() != "none" {
		t.Error("NoLocation should be invalid and named none")
	}
	if Location(99).String() != "location(99)" {
		t.Errorf("Location(99).String() = %q", Location(99).String())
	}
}
