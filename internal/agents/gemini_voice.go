package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/internal/risk"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

const voiceSystemPrompt = "You are a courteous vehicle service representative. " +
	"Write a short spoken phone script (under 80 words) informing the owner " +
	"about a predicted maintenance issue and inviting them to schedule service. " +
	"Plain sentences only, no markdown, no placeholders."

// GeminiVoiceAgent crafts scripts with the Gemini API and falls back to the
// template agent when the model is unreachable or returns nothing usable.
// Call simulation always delegates to the template agent.
type GeminiVoiceAgent struct {
	client   *genai.Client
	modelID  string
	fallback *TemplateVoiceAgent
	logger   *logging.Logger
}

// NewGeminiVoiceAgent creates a Gemini-backed voice agent.
func NewGeminiVoiceAgent(ctx context.Context, apiKey, modelID string, fallback *TemplateVoiceAgent, logger *logging.Logger) (*GeminiVoiceAgent, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("agents: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	if fallback == nil {
		fallback = NewTemplateVoiceAgent(logger)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("agents: failed to create gemini client: %w", err)
	}

	return &GeminiVoiceAgent{
		client:   client,
		modelID:  modelID,
		fallback: fallback,
		logger:   logger.Component("gemini_voice"),
	}, nil
}

func (a *GeminiVoiceAgent) CraftScript(ctx context.Context, issue *orchestrator.Issue, sample *telemetry.Sample) (*orchestrator.VoiceScript, error) {
	text, err := a.generate(ctx, issue, sample)
	if err != nil {
		a.logger.Warn("gemini script generation failed, using template", "error", err)
		return a.fallback.CraftScript(ctx, issue, sample)
	}

	return &orchestrator.VoiceScript{
		VehicleID:            issue.VehicleID,
		Script:               text,
		Urgency:              risk.Classify(issue.RiskScore).Urgency(),
		EstimatedDurationSec: estimateDuration(text),
	}, nil
}

func (a *GeminiVoiceAgent) CallOwner(ctx context.Context, vehicleID string, script *orchestrator.VoiceScript) (bool, error) {
	return a.fallback.CallOwner(ctx, vehicleID, script)
}

func (a *GeminiVoiceAgent) generate(ctx context.Context, issue *orchestrator.Issue, sample *telemetry.Sample) (string, error) {
	model := a.client.GenerativeModel(a.modelID)
	model.SetTemperature(0.4)
	model.SetMaxOutputTokens(256)
	model.SystemInstruction = genai.NewUserContent(genai.Text(voiceSystemPrompt))

	vehicleModel := "Unknown Model"
	if sample != nil && sample.VehicleModel != "" {
		vehicleModel = sample.VehicleModel
	}
	prompt := fmt.Sprintf(
		"Vehicle: %s. Predicted issue: %s (risk %.2f, expected within %d days). Basis: %s.",
		vehicleModel, issue.Component, issue.RiskScore, issue.HorizonDays, issue.Rationale,
	)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("agents: gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("agents: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("agents: gemini returned empty content")
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", errors.New("agents: gemini returned empty text")
	}
	return out, nil
}

// Close releases the underlying Gemini client.
func (a *GeminiVoiceAgent) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}
