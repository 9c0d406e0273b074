package ai

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/civicpulse/civicpulse/internal/ai/client"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/civicpulse/civicpulse/pkg/utils"
	"github.com/openai/openai-go"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/json"
	"go.uber.org/zap"
)

// InterestRequest contains the onboarding answers sent for extraction.
type InterestRequest struct {
	Persona string   `json:"persona"`
	City    string   `json:"city"`
	Answers []string `json:"answers"`
}

// InterestProfile is the extracted interest set for a new user.
type InterestProfile struct {
	Interests     []string `json:"interests"     jsonschema_description:"Broad civic topics the user cares about"`
	SuggestedTags []string `json:"suggestedTags" jsonschema_description:"Short feed filter tags in lowercase"`
}

// InterestSchema is the JSON schema for the interest extraction response.
var InterestSchema = utils.GenerateSchema[InterestProfile]()

// InterestExtractor derives interest tags from onboarding answers. Failures
// yield an empty profile; onboarding never blocks on AI.
type InterestExtractor struct {
	chat   client.ChatCompletions
	minify *minify.M
	logger *zap.Logger
	model  string
}

// NewInterestExtractor creates a new interest extractor.
func NewInterestExtractor(chat client.ChatCompletions, model string, logger *zap.Logger) *InterestExtractor {
	m := minify.New()
	m.AddFunc(ApplicationJSON, json.Minify)

	return &InterestExtractor{
		chat:   chat,
		minify: m,
		logger: logger.Named("ai_interests"),
		model:  model,
	}
}

// ExtractInterests derives an interest profile from free-text onboarding
// answers. On any API or parse failure it returns an empty profile.
func (e *InterestExtractor) ExtractInterests(
	ctx context.Context, persona enum.Persona, city string, answers []string,
) InterestProfile {
	profile, err := e.extract(ctx, persona, city, answers)
	if err != nil {
		e.logger.Warn("Interest extraction failed, using empty profile", zap.Error(err))

		return emptyProfile()
	}

	return profile
}

func (e *InterestExtractor) extract(
	ctx context.Context, persona enum.Persona, city string, answers []string,
) (InterestProfile, error) {
	if len(answers) == 0 {
		return emptyProfile(), nil
	}

	req := InterestRequest{
		Persona: string(persona),
		City:    city,
		Answers: answers,
	}

	reqJSON, err := sonic.Marshal(req)
	if err != nil {
		return InterestProfile{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqJSON, err = e.minify.Bytes(ApplicationJSON, reqJSON)
	if err != nil {
		return InterestProfile{}, fmt.Errorf("failed to minify request: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(ExtractorSystemPrompt),
			openai.UserMessage(ExtractorRequestPrompt + string(reqJSON)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "interestProfile",
					Description: openai.String("Civic interest profile of a new user"),
					Schema:      InterestSchema,
					Strict:      openai.Bool(true),
				},
			},
		},
		Model:       e.model,
		Temperature: openai.Float(0.2),
		TopP:        openai.Float(0.5),
	}

	resp, err := e.chat.New(ctx, params)
	if err != nil {
		return InterestProfile{}, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return InterestProfile{}, fmt.Errorf("no response from model")
	}

	raw := utils.ExtractJSONObject(resp.Choices[0].Message.Content)
	if raw == "" {
		return InterestProfile{}, fmt.Errorf("no JSON object in model response")
	}

	var profile InterestProfile
	if err := sonic.UnmarshalString(raw, &profile); err != nil {
		return InterestProfile{}, fmt.Errorf("JSON unmarshal error: %w", err)
	}

	if profile.Interests == nil {
		profile.Interests = []string{}
	}

	if profile.SuggestedTags == nil {
		profile.SuggestedTags = []string{}
	}

	return profile, nil
}

func emptyProfile() InterestProfile {
	return InterestProfile{
		Interests:     []string{},
		SuggestedTags: []string{},
	}
}
