package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codejudge/internal/common"
	"codejudge/internal/domain/model"
	"codejudge/internal/domain/repository"
	"codejudge/internal/platform/judge"

	"go.uber.org/zap"
)

// CompilerCache is the read-through catalog cache; a miss (or an unavailable
// cache) falls back to a live ListCompilers call.
type CompilerCache interface {
	Get(ctx context.Context) ([]model.Compiler, bool)
	Put(ctx context.Context, compilers []model.Compiler)
}

// VerdictNotifier receives the finished-submission event. Dispatch errors are
// logged by the orchestrator and never surfaced to the submitter.
type VerdictNotifier interface {
	Dispatch(ctx context.Context, n model.VerdictNotification) error
}

// SubmissionService drives one submission from compiler resolution through a
// bounded polling loop to a terminal verdict. Submissions are ephemeral: the
// value lives for the duration of the request and only the latest observed
// status is retained.
type SubmissionService struct {
	problemRepo repository.ProblemRepository
	userRepo    repository.UserRepository
	judge       judge.Client
	compilers   CompilerCache
	notifier    VerdictNotifier
	logger      *zap.Logger

	pollCeiling time.Duration
	tick        time.Duration // duration of one time-limit unit; one second in production
}

func NewSubmissionService(
	problemRepo repository.ProblemRepository,
	userRepo repository.UserRepository,
	judgeClient judge.Client,
	compilers CompilerCache,
	notifier VerdictNotifier,
	pollCeiling time.Duration,
	logger *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		problemRepo: problemRepo,
		userRepo:    userRepo,
		judge:       judgeClient,
		compilers:   compilers,
		notifier:    notifier,
		logger:      logger,
		pollCeiling: pollCeiling,
		tick:        time.Second,
	}
}

type SubmitRequest struct {
	SourceCode string `json:"source_code"`
	Language   string `json:"language"`
}

// Submit runs the full orchestration for one solution and blocks until a
// terminal verdict or the polling deadline.
func (s *SubmissionService) Submit(ctx context.Context, userID, problemID string, req SubmitRequest) (*model.Verdict, error) {
	if req.SourceCode == "" || req.Language == "" {
		return nil, common.Errorf("source_code and language are required: %w", common.ErrBadRequest)
	}

	problem, err := s.problemRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, err
	}
	if !problem.Synced() {
		return nil, common.ErrInvalidState
	}

	compiler, err := s.resolveCompiler(ctx, req.Language)
	if err != nil {
		return nil, err
	}

	// Not retried on failure: a second create would produce a duplicate
	// remote submission.
	remoteSubmissionID, err := s.judge.CreateSubmission(ctx, problem.RemoteProblemID, compiler.ID, req.SourceCode)
	if err != nil {
		return nil, err
	}

	sub := &model.Submission{
		RemoteSubmissionID: remoteSubmissionID,
		ProblemID:          problem.ID,
		CompilerID:         compiler.ID,
		SourceCode:         req.SourceCode,
	}

	verdict, err := s.pollToVerdict(ctx, problem, sub)
	if err != nil {
		return nil, err
	}

	s.notifyVerdict(ctx, userID, problem, verdict)
	return verdict, nil
}

// resolveCompiler matches the requested language against the judge's catalog,
// case-insensitively, consulting the cache first.
func (s *SubmissionService) resolveCompiler(ctx context.Context, language string) (*model.Compiler, error) {
	compilers, ok := s.compilers.Get(ctx)
	if !ok {
		var err error
		compilers, err = s.judge.ListCompilers(ctx)
		if err != nil {
			return nil, err
		}
		s.compilers.Put(ctx, compilers)
	}

	for i := range compilers {
		if strings.EqualFold(compilers[i].Name, language) {
			return &compilers[i], nil
		}
	}
	return nil, common.Errorf("language %q: %w", language, common.ErrCompilerNotFound)
}

// pollToVerdict fetches the submission status at a fixed interval equal to the
// problem's time limit until the status code crosses the terminal threshold.
// The loop is bounded: ten time limits, capped by the configured ceiling, and
// it aborts as soon as the caller's context is cancelled.
func (s *SubmissionService) pollToVerdict(ctx context.Context, problem *model.Problem, sub *model.Submission) (*model.Verdict, error) {
	limit := problem.TimeLimitSeconds
	if limit < 1 {
		limit = 1
	}
	interval := time.Duration(limit) * s.tick

	deadline := 10 * interval
	if s.pollCeiling > 0 && deadline > s.pollCeiling {
		deadline = s.pollCeiling
	}

	pollCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	for {
		status, err := s.judge.FetchSubmission(pollCtx, sub.RemoteSubmissionID)
		if err != nil {
			if pollCtx.Err() != nil {
				return nil, s.timeoutError(sub)
			}
			return nil, err
		}

		sub.StatusCode = status.Code
		sub.StatusName = status.Name
		if sub.Terminal() {
			return &model.Verdict{StatusCode: sub.StatusCode, StatusName: sub.StatusName}, nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-pollCtx.Done():
			timer.Stop()
			return nil, s.timeoutError(sub)
		case <-timer.C:
		}
	}
}

func (s *SubmissionService) timeoutError(sub *model.Submission) error {
	s.logger.Warn("submission never reached a terminal verdict",
		zap.String("remote_submission_id", sub.RemoteSubmissionID),
		zap.Int("last_status_code", sub.StatusCode),
		zap.String("last_status_name", sub.StatusName))
	return fmt.Errorf("submission %s: %w", sub.RemoteSubmissionID, common.ErrPollTimeout)
}

// notifyVerdict hands the result to the dispatcher. Failures here never affect
// the response to the submitter.
func (s *SubmissionService) notifyVerdict(ctx context.Context, userID string, problem *model.Problem, verdict *model.Verdict) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("cannot resolve submitter for notification",
			zap.String("user_id", userID), zap.Error(err))
		return
	}

	event := model.VerdictNotification{
		Recipient:   user.Email,
		ProblemName: problem.Name,
		StatusCode:  verdict.StatusCode,
		StatusName:  verdict.StatusName,
	}
	if err := s.notifier.Dispatch(ctx, event); err != nil {
		s.logger.Warn("verdict notification dispatch failed",
			zap.String("recipient", user.Email),
			zap.String("problem", problem.Name),
			zap.Error(err))
	}
}

// FetchSubmission is the passthrough read of a previously created remote
// submission's status.
func (s *SubmissionService) FetchSubmission(ctx context.Context, problemID, remoteSubmissionID string) (*model.Verdict, error) {
	if _, err := s.problemRepo.FindProblemByID(ctx, problemID); err != nil {
		return nil, err
	}
	status, err := s.judge.FetchSubmission(ctx, remoteSubmissionID)
	if err != nil {
		return nil, err
	}
	return &model.Verdict{StatusCode: status.Code, StatusName: status.Name}, nil
}
