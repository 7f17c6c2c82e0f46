// internal/workers/eligibility/calculate-income-threshold/handler.go
package calculateincomethreshold

import (
	"context"
	"encoding/json"
	"time"

	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/common/metrics"
	"eligibility-workers/internal/common/observability"
	"eligibility-workers/internal/common/validation"
	"eligibility-workers/internal/eligibility/assets"
	"eligibility-workers/internal/eligibility/threshold"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "calculate-income-threshold"

type Handler struct {
	config     *Config
	guidelines *threshold.Table
	obs        *observability.Observability
	errors     *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, guidelines *threshold.Table, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		guidelines: guidelines,
		obs:        obs,
		errors:     apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.run(ctx, job.Variables)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.FromDomainError(err).Code)).Inc()
		h.record(ctx, start, "failure")
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.record(ctx, start, "success")
}

func (h *Handler) run(ctx context.Context, variables string) (*Output, error) {
	if result := validation.IncomeThresholdSchema.ValidateJSON([]byte(variables)); !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Error())
	}
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	return h.Execute(ctx, &input)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	g, err := h.guidelines.Lookup(input.Jurisdiction, input.Year)
	if err != nil {
		return nil, err
	}

	baseline, err := g.Baseline(input.HouseholdSize)
	if err != nil {
		return nil, err
	}
	annual, err := threshold.AnnualThreshold(g, input.Percentage, input.HouseholdSize)
	if err != nil {
		return nil, err
	}
	monthly, err := threshold.MonthlyThreshold(g, input.Percentage, input.HouseholdSize)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("threshold calculated", map[string]interface{}{
		"requestId":     input.RequestID,
		"region":        g.Region,
		"householdSize": input.HouseholdSize,
		"percentage":    input.Percentage,
		"annualCents":   annual,
	})

	return &Output{
		AnnualThresholdCents:  annual,
		MonthlyThresholdCents: monthly,
		BaselineCents:         baseline,
		Region:                g.Region,
		GuidelineYear:         g.Year,
		AnnualThreshold:       assets.FormatCents(annual),
		MonthlyThreshold:      assets.FormatCents(monthly),
	}, nil
}

func (h *Handler) record(ctx context.Context, start time.Time, status string) {
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, elapsed, status)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}
