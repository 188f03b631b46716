package bootstrap

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/driveline-ai/fleetguard/internal/agents"
	appconfig "github.com/driveline-ai/fleetguard/internal/config"
	"github.com/driveline-ai/fleetguard/internal/ingest"
	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

func TestBuildEmailSenderRequiresCredentials(t *testing.T) {
	logger := logging.Default()
	if s := BuildEmailSender(&appconfig.Config{EmailProvider: "sendgrid"}, aws.Config{}, logger); s != nil {
		t.Fatalf("expected nil sender without sendgrid key")
	}
	if s := BuildEmailSender(&appconfig.Config{EmailProvider: "ses"}, aws.Config{}, logger); s != nil {
		t.Fatalf("expected nil sender without ses from address")
	}
	if s := BuildEmailSender(&appconfig.Config{}, aws.Config{}, logger); s != nil {
		t.Fatalf("expected nil sender without provider")
	}
}

func TestBuildVoiceAgentDefaultsToTemplates(t *testing.T) {
	voice, closeVoice, err := BuildVoiceAgent(context.Background(), &appconfig.Config{}, logging.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeVoice()
	if _, ok := voice.(*agents.TemplateVoiceAgent); !ok {
		t.Fatalf("expected template voice agent without gemini key, got %T", voice)
	}
}

func TestBuildCollaboratorsFillsEveryPort(t *testing.T) {
	ports, closePorts, err := BuildCollaborators(context.Background(), &appconfig.Config{}, aws.Config{}, logging.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closePorts()
	if ports.Analyzer == nil || ports.Predictor == nil || ports.Voice == nil ||
		ports.Scheduler == nil || ports.Feedback == nil || ports.RCA == nil {
		t.Fatalf("expected every collaborator to be wired: %+v", ports)
	}
}

type noopRunner struct{}

func (noopRunner) Run(context.Context, telemetry.Sample) (*orchestrator.Ledger, error) {
	return &orchestrator.Ledger{}, nil
}

func TestBuildIngestionMemoryMode(t *testing.T) {
	cfg := &appconfig.Config{UseMemoryQueue: true, WorkerCount: 1}
	ing := BuildIngestion(cfg, aws.Config{}, noopRunner{}, logging.Default())
	if ing == nil || ing.Publisher == nil || ing.Jobs == nil || ing.Worker == nil {
		t.Fatalf("expected full in-memory ingestion wiring, got %+v", ing)
	}
	if _, ok := ing.Jobs.(*ingest.MemoryJobStore); !ok {
		t.Fatalf("expected in-memory job store, got %T", ing.Jobs)
	}
}

func TestBuildIngestionDisabledWithoutQueue(t *testing.T) {
	if ing := BuildIngestion(&appconfig.Config{}, aws.Config{}, nil, logging.Default()); ing != nil {
		t.Fatalf("expected nil ingestion without queue config")
	}
}

func TestBuildQueueWorkerRequiresQueueURL(t *testing.T) {
	if _, err := BuildQueueWorker(&appconfig.Config{}, aws.Config{}, nil, logging.Default()); err == nil {
		t.Fatalf("expected error without queue url")
	}
}
