package ai

// DocumentTypes lists the values accepted for "tipo_documento".
var DocumentTypes = []string{
	"peticao_inicial",
	"contestacao",
	"recurso",
	"parecer",
	"contrato",
	"modelo_generico",
	"outro",
}

// LegalAreas lists the values accepted for "area_direito".
var LegalAreas = []string{
	"civil",
	"trabalhista",
	"tributario",
	"empresarial",
	"consumidor",
	"penal",
	"administrativo",
	"previdenciario",
	"outro",
}

// DocumentOrigins lists the values accepted for "modelo_ou_peca_real".
var DocumentOrigins = []string{
	"modelo",
	"peca_real",
}

// Classification payload keys.
const (
	KeyDocumentType = "tipo_documento"
	KeyLegalArea    = "area_direito"
	KeyOrigin       = "modelo_ou_peca_real"
	KeyClarity      = "qualidade_clareza"
	KeyStructure    = "qualidade_estrutura"
	KeyRisk         = "risco"
	KeySummary      = "resumo"
)

// KeySchemaErrors holds the schema violations of a reply that otherwise parsed.
const KeySchemaErrors = "schema_errors"
