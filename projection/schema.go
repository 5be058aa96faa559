package projection

import (
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/core"
)

// Column is one output column. Keys are dotted paths into the record tried in
// order; the first one present supplies the value. The key "id" always resolves
// to the record identity.
type Column struct {
	Name string
	Keys []string
}

// Schema is an ordered list of columns.
type Schema struct {
	Name    string
	Columns []Column
}

// Header returns the column names in order.
func (s *Schema) Header() []string {
	header := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		header[i] = c.Name
	}
	return header
}

// ClassificationSchema projects flat classification records.
var ClassificationSchema = &Schema{
	Name: "classification",
	Columns: []Column{
		{Name: "documento_id", Keys: []string{core.FieldID}},
		{Name: ai.KeyDocumentType, Keys: []string{ai.KeyDocumentType}},
		{Name: ai.KeyLegalArea, Keys: []string{ai.KeyLegalArea}},
		{Name: ai.KeyOrigin, Keys: []string{ai.KeyOrigin}},
		{Name: ai.KeyClarity, Keys: []string{ai.KeyClarity}},
		{Name: ai.KeyStructure, Keys: []string{ai.KeyStructure}},
		{Name: ai.KeyRisk, Keys: []string{ai.KeyRisk}},
		{Name: ai.KeySummary, Keys: []string{ai.KeySummary}},
	},
}

// LegacySchema projects records that nest the payload under "classification".
var LegacySchema = &Schema{
	Name: "legacy",
	Columns: []Column{
		{Name: "documento", Keys: []string{core.FieldID}},
		{Name: "área", Keys: []string{"classification.area"}},
		{Name: "tipo_peca", Keys: []string{"classification.tipo_peca"}},
		{Name: "tema", Keys: []string{"classification.tema"}},
		{Name: "tamanho", Keys: []string{"classification.tamanho"}},
		{Name: "qualidade", Keys: []string{"classification.qualidade"}},
		{Name: "notas", Keys: []string{"classification.notas"}},
	},
}

// EmbeddingSchema projects embedding records without the vector.
var EmbeddingSchema = &Schema{
	Name: "embedding",
	Columns: []Column{
		{Name: core.FieldDocID, Keys: []string{core.FieldDocID}},
		{Name: core.FieldChunkIndex, Keys: []string{core.FieldChunkIndex}},
		{Name: core.FieldContent, Keys: []string{core.FieldContent}},
		{Name: core.FieldStatus, Keys: []string{core.FieldStatus}},
	},
}

var schemas = []*Schema{ClassificationSchema, LegacySchema, EmbeddingSchema}

// SchemaNames lists the registered schemas.
func SchemaNames() []string {
	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = s.Name
	}
	return names
}

// LookupSchema returns the registered schema with the given name.
func LookupSchema(name string) (*Schema, error) {
	i := slices.IndexFunc(schemas, func(s *Schema) bool { return s.Name == name })
	if i < 0 {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownSchema, name, strings.Join(SchemaNames(), ", "))
	}
	return schemas[i], nil
}
