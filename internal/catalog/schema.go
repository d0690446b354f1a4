package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/entry.schema.json
var entrySchemaBytes []byte

var (
	entrySchema     *jsonschema.Schema
	entrySchemaOnce sync.Once
	entrySchemaErr  error
	schemaPrinter   = message.NewPrinter(language.English)
)

// schemaIssue is a single leaf violation reported by the entry schema.
type schemaIssue struct {
	Path    string
	Keyword string
	Message string
}

func (i schemaIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

func getEntrySchema() (*jsonschema.Schema, error) {
	entrySchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(entrySchemaBytes))
		if err != nil {
			entrySchemaErr = fmt.Errorf("unmarshaling entry schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("entry.schema.json", doc); err != nil {
			entrySchemaErr = fmt.Errorf("adding entry schema: %w", err)
			return
		}
		entrySchema, entrySchemaErr = c.Compile("entry.schema.json")
		if entrySchemaErr != nil {
			entrySchemaErr = fmt.Errorf("compiling entry schema: %w", entrySchemaErr)
		}
	})
	return entrySchema, entrySchemaErr
}

// validateEntry checks one decoded manifest entry against the embedded schema.
// A nil return means the entry conforms.
func validateEntry(raw any) error {
	schema, err := getEntrySchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so YAML scalars arrive as the validator expects them.
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("converting entry to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("preparing entry for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	var issues []schemaIssue
	collectIssues(ve, &issues)
	if len(issues) == 0 {
		return errors.New(ve.Error())
	}

	msgs := make([]string, 0, len(issues))
	seen := make(map[string]bool)
	for _, issue := range issues {
		s := issue.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		msgs = append(msgs, s)
	}
	return errors.New(strings.Join(msgs, "; "))
}

func collectIssues(ve *jsonschema.ValidationError, issues *[]schemaIssue) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collectIssues(cause, issues)
		}
		return
	}

	keyword := ""
	msg := ""
	if ve.ErrorKind != nil {
		if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
			keyword = kw[len(kw)-1]
		}
		msg = ve.ErrorKind.LocalizedString(schemaPrinter)
	}
	if keyword == "allOf" || keyword == "$ref" {
		return
	}

	path := ""
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	*issues = append(*issues, schemaIssue{Path: path, Keyword: keyword, Message: msg})
}
