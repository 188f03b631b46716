package bootstrap

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/driveline-ai/fleetguard/internal/agents"
	appconfig "github.com/driveline-ai/fleetguard/internal/config"
	"github.com/driveline-ai/fleetguard/internal/notify"
	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// BuildEmailSender selects the survey email provider from config. Returns
// nil when no provider is configured or its credentials are incomplete.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch strings.ToLower(strings.TrimSpace(cfg.EmailProvider)) {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			logger.Warn("sendgrid selected but no API key configured")
			return nil
		}
		return sender
	case "ses":
		if cfg.SESFromEmail == "" {
			logger.Warn("ses selected but no from address configured")
			return nil
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	case "", "stub":
		return nil
	default:
		logger.Warn("unknown email provider", "provider", cfg.EmailProvider)
		return nil
	}
}

// BuildVoiceAgent returns the script-crafting agent and a close function.
// With a Gemini key configured, scripts are generated by the model with the
// template agent as fallback; otherwise templates are used directly.
func BuildVoiceAgent(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (orchestrator.VoiceAgent, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}
	template := agents.NewTemplateVoiceAgent(logger)
	if cfg == nil || strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return template, func() {}, nil
	}

	gemini, err := agents.NewGeminiVoiceAgent(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID, template, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("gemini voice scripts enabled", "model", cfg.GeminiModelID)
	return gemini, func() { _ = gemini.Close() }, nil
}

// BuildCollaborators assembles the full agent set for the orchestrator.
// The returned close function releases any agent-held resources.
func BuildCollaborators(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (orchestrator.Collaborators, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}

	voice, closeVoice, err := BuildVoiceAgent(ctx, cfg, logger)
	if err != nil {
		return orchestrator.Collaborators{}, nil, err
	}

	feedbackOpts := []agents.FeedbackOption{}
	if sender := BuildEmailSender(cfg, awsCfg, logger); sender != nil && cfg.FeedbackOwnerEmail != "" {
		feedbackOpts = append(feedbackOpts, agents.WithEmailDelivery(sender, cfg.FeedbackOwnerEmail))
	}

	ports := orchestrator.Collaborators{
		Analyzer:  agents.NewRuleAnalyzer(logger),
		Predictor: agents.NewRulePredictor(logger),
		Voice:     voice,
		Scheduler: agents.NewSlotScheduler(logger),
		Feedback:  agents.NewSurveyFeedbackAgent(logger, feedbackOpts...),
		RCA:       agents.NewLogRCASubmitter(logger),
	}
	return ports, closeVoice, nil
}
