package ai

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// classificationSchema constrains the numeric scores of a classification reply.
// Keys are optional; models routinely omit some of them and projections tolerate that.
const classificationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "tipo_documento": {"type": "string"},
    "area_direito": {"type": "string"},
    "modelo_ou_peca_real": {"type": "string"},
    "qualidade_clareza": {"type": "integer", "minimum": 1, "maximum": 10},
    "qualidade_estrutura": {"type": "integer", "minimum": 1, "maximum": 10},
    "risco": {"type": "integer", "minimum": 1, "maximum": 5},
    "resumo": {"type": "string"}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(classificationSchema))
	})
	return compiledSchema, schemaErr
}

// ValidateClassification checks a JSON document against the classification schema.
// Violations are reported as ErrSchemaViolation listing every failing field.
func ValidateClassification(doc string) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("failed to compile classification schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate reply: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(problems, "; "))
}
