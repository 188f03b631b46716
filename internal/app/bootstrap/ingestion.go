package bootstrap

import (
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/driveline-ai/fleetguard/internal/config"
	"github.com/driveline-ai/fleetguard/internal/ingest"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// Ingestion bundles the async telemetry intake surface. Worker is non-nil
// only in memory-queue mode, where consumption happens in-process.
type Ingestion struct {
	Publisher *ingest.Publisher
	Jobs      ingest.JobRecorder
	Worker    *ingest.Worker
}

const memoryQueueBuffer = 64

// BuildIngestion wires the async intake path for the API process. Returns
// nil when no queue is configured, which disables async ingestion.
func BuildIngestion(cfg *appconfig.Config, awsCfg aws.Config, runner ingest.Runner, logger *logging.Logger) *Ingestion {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	if cfg.UseMemoryQueue {
		queue := ingest.NewMemoryQueue(memoryQueueBuffer)
		jobs := ingest.NewMemoryJobStore()
		logger.Info("async ingestion using in-memory queue")
		return &Ingestion{
			Publisher: ingest.NewPublisher(queue, jobs, logger),
			Jobs:      jobs,
			Worker: ingest.NewWorker(runner, queue, jobs, logger,
				ingest.WithWorkerCount(cfg.WorkerCount),
			),
		}
	}

	if strings.TrimSpace(cfg.TelemetryQueueURL) == "" {
		logger.Info("no telemetry queue configured; async ingestion disabled")
		return nil
	}

	queue := ingest.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.TelemetryQueueURL)
	jobs := ingest.NewJobStore(dynamodb.NewFromConfig(awsCfg), cfg.IngestionJobsTable, logger)
	return &Ingestion{
		Publisher: ingest.NewPublisher(queue, jobs, logger),
		Jobs:      jobs,
	}
}

// BuildQueueWorker wires the standalone SQS consumer used by the worker
// binary. Jobs are tracked in DynamoDB.
func BuildQueueWorker(cfg *appconfig.Config, awsCfg aws.Config, runner ingest.Runner, logger *logging.Logger) (*ingest.Worker, error) {
	if cfg == nil || strings.TrimSpace(cfg.TelemetryQueueURL) == "" {
		return nil, errors.New("bootstrap: TELEMETRY_QUEUE_URL is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	queue := ingest.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.TelemetryQueueURL)
	jobs := ingest.NewJobStore(dynamodb.NewFromConfig(awsCfg), cfg.IngestionJobsTable, logger)
	return ingest.NewWorker(runner, queue, jobs, logger,
		ingest.WithWorkerCount(cfg.WorkerCount),
	), nil
}
