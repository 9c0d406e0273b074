package ai

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/civicpulse/civicpulse/internal/ai/client"
	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/civicpulse/civicpulse/pkg/utils"
	"github.com/openai/openai-go"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/json"
	"go.uber.org/zap"
)

// ClassificationRequest contains the post fields sent for classification.
type ClassificationRequest struct {
	Content  string `json:"content"`
	Type     string `json:"type"`
	City     string `json:"city"`
	District string `json:"district,omitempty"`
}

// ClassificationResult is the model's classification of a single post.
type ClassificationResult struct {
	Category   string   `json:"category"   jsonschema_description:"Civic category of the post"`
	Confidence float64  `json:"confidence" jsonschema_description:"Certainty in the category, 0 to 1"`
	Severity   string   `json:"severity"   jsonschema_description:"Urgency for problem reports: low, medium, high or critical"`
	Tags       []string `json:"tags"       jsonschema_description:"Short lowercase topic labels"`
	Keywords   []string `json:"keywords"   jsonschema_description:"Notable terms lifted from the post text"`
	Sentiment  string   `json:"sentiment"  jsonschema_description:"Overall sentiment: positive, neutral or negative"`
}

// ClassificationSchema is the JSON schema for the classification response.
var ClassificationSchema = utils.GenerateSchema[ClassificationResult]()

// maxClassifyContentLength caps how much post text is sent to the model.
const maxClassifyContentLength = 2000

// validCategories are the categories the classifier may assign.
var validCategories = map[string]struct{}{
	"INFRASTRUCTURE": {},
	"TRANSPORT":      {},
	"ENVIRONMENT":    {},
	"SAFETY":         {},
	"COMMUNITY":      {},
	"GENERAL":        {},
}

// Classifier assigns civic categories to posts. Every failure path returns
// the conservative default classification; posting never blocks on AI.
type Classifier struct {
	chat   client.ChatCompletions
	minify *minify.M
	logger *zap.Logger
	model  string
}

// NewClassifier creates a new post classifier.
func NewClassifier(chat client.ChatCompletions, model string, logger *zap.Logger) *Classifier {
	// Create a minifier for JSON optimization
	m := minify.New()
	m.AddFunc(ApplicationJSON, json.Minify)

	return &Classifier{
		chat:   chat,
		minify: m,
		logger: logger.Named("ai_classifier"),
		model:  model,
	}
}

// ClassifyPost classifies a post's text into a civic category. On any API or
// parse failure it returns the default classification.
func (c *Classifier) ClassifyPost(ctx context.Context, post *types.Post) types.Classification {
	result, err := c.classify(ctx, post)
	if err != nil {
		c.logger.Warn("Classification failed, using default",
			zap.String("postId", post.ID.String()),
			zap.Error(err))

		return types.DefaultClassification()
	}

	return result
}

func (c *Classifier) classify(ctx context.Context, post *types.Post) (types.Classification, error) {
	req := ClassificationRequest{
		Content:  utils.TruncateString(utils.CompressAllWhitespace(post.Content), maxClassifyContentLength),
		Type:     string(post.Type),
		City:     post.City,
		District: post.District,
	}

	// Convert to JSON
	reqJSON, err := sonic.Marshal(req)
	if err != nil {
		return types.Classification{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Minify JSON to reduce token usage
	reqJSON, err = c.minify.Bytes(ApplicationJSON, reqJSON)
	if err != nil {
		return types.Classification{}, fmt.Errorf("failed to minify request: %w", err)
	}

	// Prepare chat completion parameters
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(ClassifierSystemPrompt),
			openai.UserMessage(ClassifierRequestPrompt + string(reqJSON)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "postClassification",
					Description: openai.String("Civic category classification of a post"),
					Schema:      ClassificationSchema,
					Strict:      openai.Bool(true),
				},
			},
		},
		Model:       c.model,
		Temperature: openai.Float(0.0),
		TopP:        openai.Float(0.2),
	}

	// Make API request
	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return types.Classification{}, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return types.Classification{}, fmt.Errorf("no response from model")
	}

	// Some providers wrap the JSON in prose despite the response format
	raw := utils.ExtractJSONObject(resp.Choices[0].Message.Content)
	if raw == "" {
		return types.Classification{}, fmt.Errorf("no JSON object in model response")
	}

	var result ClassificationResult
	if err := sonic.UnmarshalString(raw, &result); err != nil {
		return types.Classification{}, fmt.Errorf("JSON unmarshal error: %w", err)
	}

	return c.toClassification(result)
}

// toClassification validates the model output and converts it to the stored
// classification shape.
func (c *Classifier) toClassification(result ClassificationResult) (types.Classification, error) {
	if _, ok := validCategories[result.Category]; !ok {
		return types.Classification{}, fmt.Errorf("unknown category %q", result.Category)
	}

	if result.Confidence < 0 || result.Confidence > 1 {
		return types.Classification{}, fmt.Errorf("confidence %f out of range", result.Confidence)
	}

	severity := enum.Severity(result.Severity)
	if result.Severity != "" && !severity.IsValid() {
		c.logger.Debug("Dropping unknown severity", zap.String("severity", result.Severity))

		severity = ""
	}

	if result.Tags == nil {
		result.Tags = []string{}
	}

	if result.Keywords == nil {
		result.Keywords = []string{}
	}

	return types.Classification{
		Category:   result.Category,
		Confidence: result.Confidence,
		Severity:   severity,
		Tags:       result.Tags,
		Keywords:   result.Keywords,
		Sentiment:  result.Sentiment,
	}, nil
}
