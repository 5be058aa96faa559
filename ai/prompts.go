package ai

import (
	"fmt"
	"strings"
)

const classificationPromptTemplate = `
Você é um classificador de documentos jurídicos em português.

Receberá o ID do documento e o texto (ou parte) de uma peça/modelo jurídico.
Sua tarefa é ANALISAR e devolver EXCLUSIVAMENTE um JSON válido, neste formato:

{
  "id": "ID_DO_DOCUMENTO",
  "tipo_documento": "%s",
  "area_direito": "%s",
  "modelo_ou_peca_real": "%s",
  "qualidade_clareza": 1,
  "qualidade_estrutura": 1,
  "risco": 1,
  "resumo": "até 2 linhas explicando o conteúdo"
}

Regras:
- Use SEMPRE inteiros de 1 a 10 para qualidade_clareza e qualidade_estrutura (10 = excelente).
- Use SEMPRE inteiros de 1 a 5 para risco (1 = baixíssimo risco, 5 = alto risco/teses frágeis ou sensíveis).
- Se não tiver certeza, seja conservador.
- NUNCA retorne nada fora do JSON final.
`

// ClassificationSystemPrompt returns the system instructions sent with every document.
func ClassificationSystemPrompt() string {
	return fmt.Sprintf(classificationPromptTemplate,
		strings.Join(DocumentTypes, " | "),
		strings.Join(LegalAreas, " | "),
		strings.Join(DocumentOrigins, " | "))
}

// FormatClassificationInput builds the user message for one document.
func FormatClassificationInput(id, text string) string {
	return fmt.Sprintf("ID: %s\n\nTEXTO:\n%s", id, text)
}

// Message is one chat message of a request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ClassificationMessages returns the chat messages for classifying one document.
// Both the synchronous classifier and bulk request files use the same messages.
func ClassificationMessages(id, text string) []Message {
	return []Message{
		{Role: "system", Content: ClassificationSystemPrompt()},
		{Role: "user", Content: FormatClassificationInput(id, text)},
	}
}
