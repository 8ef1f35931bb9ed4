package extension

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/extension.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// SchemaIssue is a single structural problem found in a descriptor.
type SchemaIssue struct {
	Path    string // instance location, e.g. "/ui/settings/url"
	Message string
	Keyword string
}

func (i SchemaIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("extension.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("extension.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// ValidateDescriptor checks the descriptor against the embedded schema.
// The error return is reserved for schema loading failures.
func ValidateDescriptor(d *Descriptor) ([]SchemaIssue, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(d.raw))
	if err != nil {
		return nil, fmt.Errorf("preparing %s for validation: %w", d.File, err)
	}
	err = schema.Validate(inst)
	if err == nil {
		return nil, nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}

	var issues []SchemaIssue
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		return []SchemaIssue{{Message: ve.Error()}}, nil
	}
	issues = dedupIssues(issues)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return issues, nil
}

func collectIssues(ve *jsonschema.ValidationError, issues *[]SchemaIssue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectIssues(cause, issues)
		}
		return
	}
	if ve.ErrorKind == nil {
		return
	}
	keyword := ""
	if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
		keyword = kw[len(kw)-1]
	}
	if keyword == "" || keyword == "$ref" || keyword == "allOf" {
		return
	}
	path := ""
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	*issues = append(*issues, SchemaIssue{
		Path:    path,
		Message: ve.ErrorKind.LocalizedString(printer),
		Keyword: keyword,
	})
}

func dedupIssues(issues []SchemaIssue) []SchemaIssue {
	seen := make(map[string]bool)
	var out []SchemaIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			out = append(out, issue)
		}
	}
	return out
}
