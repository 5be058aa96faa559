package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Classifier implements ai.Classifier using OpenAI-compatible chat APIs.
type Classifier struct {
	client llms.Model
	logger *slog.Logger
}

// newClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newClassifier(config *ai.Config) (*Classifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ClassifierHost),
		openai.WithToken(config.Token()),
		openai.WithModel(config.ClassifierModel),
	)
	if err != nil {
		return nil, err
	}

	return &Classifier{
		client: client,
		logger: slog.Default().With("component", "openai-classifier"),
	}, nil
}

// NewClassifier creates a new classifier using the provided configuration.
//
// Returns ai.Classifier interface to enforce abstraction.
func NewClassifier(config *ai.Config) (ai.Classifier, error) {
	return newClassifier(config)
}

// Classify sends the document to the chat model in JSON mode at temperature 0
// and returns the reply content unparsed. Failures the provider will repeat for
// the same request wrap ai.ErrRejected.
func (c *Classifier) Classify(ctx context.Context, id, text string) (string, error) {
	msgs := ai.ClassificationMessages(id, text)
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(msgs[0].Content)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(msgs[1].Content)},
		},
	}

	c.logger.Debug("classifying document", "id", id, "length", len(text))
	response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		c.logger.Debug("classification call failed", "id", id, "err", err)
		return "", classifyError(err)
	}

	if len(response.Choices) < 1 {
		c.logger.Warn("no choices returned from model", "id", id)
		return "", nil
	}
	return response.Choices[0].Content, nil
}
