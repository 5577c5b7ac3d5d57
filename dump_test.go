package reqargs

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func dumpFixture(t *testing.T) *Arguments {
	t.Helper()
	schema := MustSchema([]*Field{
		String("name"),
		Int("limit").Default(10),
		String("api_key").Secret(),
		List("tags", StringType()),
	})
	args, err := ValidateResolved(Resolved{
		Values:  RawMapping{"name": "alice", "api_key": "s3cr3t", "tags": []string{"a", "b"}},
		Origins: map[string]Location{"name": InQuery, "api_key": InBody, "tags": InQuery},
	}, schema)
	if err != nil {
		t.Fatalf("ValidateResolved returned error: %v", err)
	}
	return args
}

func TestDumpArguments_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpArguments(&buf, dumpFixture(t)); err != nil {
		t.Fatalf("DumpArguments returned error: %v", err)
	}

	want := "name: \"alice\"\n" +
		"limit: 10\n" +
		"api_key: ***redacted***\n" +
		"tags: [\"a\", \"b\"]\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestDumpArguments_TextWithSources(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpArguments(&buf, dumpFixture(t), WithSources()); err != nil {
		t.Fatalf("DumpArguments returned error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		`name: "alice" (source: query)`,
		`limit: 10 (source: default)`,
		`api_key: ***redacted*** (source: body)`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "s3cr3t") {
		t.Error("secret value leaked into dump")
	}
}

func TestDumpArguments_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpArguments(&buf, dumpFixture(t), AsJSON(), WithIndent("")); err != nil {
		t.Fatalf("DumpArguments returned error: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("compact output spans several lines:\n%s", buf.String())
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["name"] != "alice" || got["api_key"] != redacted || got["limit"] != float64(10) {
		t.Errorf("unexpected JSON dump: %v", got)
	}
}

func TestDumpArguments_JSONWithSources(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpArguments(&buf, dumpFixture(t), AsJSON(), WithSources()); err != nil {
		t.Fatalf("DumpArguments returned error: %v", err)
	}

	var got map[string]map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["limit"]["source"] != "default" || got["name"]["source"] != "query" {
		t.Errorf("unexpected sources: %v", got)
	}
	if got["api_key"]["value"] != redacted {
		t.Errorf("api_key not redacted: %v", got["api_key"])
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestDumpArguments_Errors(t *testing.T) {
	if err := DumpArguments(&bytes.Buffer{}, nil); err == nil {
		t.Error("expected error for nil arguments")
	}
	if err := DumpArguments(failingWriter{}, dumpFixture(t)); err == nil {
		t.Error("expected write error")
	}
	if err := DumpArguments(failingWriter{}, dumpFixture(t), AsJSON()); err == nil {
		t.Error("expected write error for JSON")
	}
}
