// internal/workers/eligibility/find-program-matches/handler.go
package findprogrammatches

import (
	"context"
	"encoding/json"
	"time"

	apperrors "eligibility-workers/internal/common/errors"
	"eligibility-workers/internal/common/logger"
	"eligibility-workers/internal/common/metrics"
	"eligibility-workers/internal/common/observability"
	"eligibility-workers/internal/common/validation"
	"eligibility-workers/internal/eligibility/matcher"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "find-program-matches"

// CandidateSource supplies the programs and rules in force for a jurisdiction.
type CandidateSource interface {
	ActiveCandidates(ctx context.Context, jurisdiction string, at time.Time) ([]matcher.Candidate, error)
}

type Handler struct {
	config     *Config
	candidates CandidateSource
	matcher    *matcher.Matcher
	obs        *observability.Observability
	errors     *apperrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, candidates CandidateSource, m *matcher.Matcher, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = &observability.Observability{}
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		candidates: candidates,
		matcher:    m,
		obs:        obs,
		errors:     apperrors.NewErrorHandler(log),
		logger:     log,
		now:        time.Now,
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

	input, err := parseInput(job.Variables)
	if err == nil {
		var output *Output
		if output, err = h.execute(ctx, input); err == nil {
			h.completeJob(ctx, client, job, output)
			h.record(ctx, start, "success")
			return
		}
	}

	h.errors.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.FromDomainError(err).Code)).Inc()
	h.record(ctx, start, "failure")
}

// parseInput checks the job variables against the schema before decoding.
func parseInput(variables string) (*Input, error) {
	if result := validation.FindMatchesSchema.ValidateJSON([]byte(variables)); !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Error())
	}
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	applicant := input.Applicant
	if applicant.EvaluatedAt.IsZero() {
		applicant.EvaluatedAt = h.now().UTC()
	}
	if err := applicant.Validate(); err != nil {
		return nil, err
	}

	candidates, err := h.candidates.ActiveCandidates(ctx, applicant.Jurisdiction, applicant.EvaluatedAt)
	if err != nil {
		return nil, err
	}

	result, err := h.matcher.FindMatches(applicant, candidates)
	if err != nil {
		return nil, err
	}

	metrics.EligibilityEvaluations.WithLabelValues(applicant.Jurisdiction).Inc()
	for _, m := range result.Matches {
		metrics.EligibilityMatches.WithLabelValues(m.Program.ProgramID, string(m.Status)).Inc()
	}
	for _, f := range result.Failures {
		metrics.EligibilityRuleFailures.WithLabelValues(f.Program.ProgramID).Inc()
		h.logger.Warn("program rule could not be evaluated", map[string]interface{}{
			"requestId": input.RequestID,
			"ruleId":    f.RuleID,
			"path":      f.Path,
			"reason":    f.Reason,
		})
	}
	h.obs.RecordMatches(ctx, applicant.Jurisdiction, len(result.Matches))

	h.logger.Debug("evaluation complete", map[string]interface{}{
		"requestId":  input.RequestID,
		"candidates": len(candidates),
		"matches":    len(result.Matches),
		"failures":   len(result.Failures),
	})

	return &Output{
		EvaluationID: uuid.NewString(),
		RequestID:    input.RequestID,
		Jurisdiction: applicant.Jurisdiction,
		Pathways:     result.Pathways,
		Matches:      result.Matches,
		MatchCount:   len(result.Matches),
		FailedRules:  result.Failures,
		EvaluatedAt:  applicant.EvaluatedAt,
	}, nil
}

func (h *Handler) record(ctx context.Context, start time.Time, status string) {
	elapsed := time.Since(start)
	if status == "success" {
		metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	}
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, elapsed, status)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
