package service

import (
	"context"

	"codejudge/internal/common"
	"codejudge/internal/domain/model"
	"codejudge/internal/domain/repository"
	"codejudge/internal/platform/judge"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const defaultTimeLimitSeconds = 1

// ProblemService is the registry that keeps local problem records consistent
// with the remote judge. It is the only component allowed to assign remote-id
// fields, and it orders every dual mutation remote-first so the local store
// never points at a remote resource that does not exist.
type ProblemService struct {
	problemRepo repository.ProblemRepository
	judge       judge.Client
	logger      *zap.Logger
}

func NewProblemService(problemRepo repository.ProblemRepository, judgeClient judge.Client, logger *zap.Logger) *ProblemService {
	return &ProblemService{
		problemRepo: problemRepo,
		judge:       judgeClient,
		logger:      logger,
	}
}

type CreateProblemRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	TimeLimitSeconds int    `json:"time_limit_seconds,omitempty"`
}

type UpdateProblemRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	TimeLimitSeconds int    `json:"time_limit_seconds,omitempty"`
}

type AddTestCaseRequest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

func (s *ProblemService) CreateProblem(ctx context.Context, req CreateProblemRequest) (*model.Problem, error) {
	if req.Name == "" || req.Description == "" {
		return nil, common.Errorf("name and description are required: %w", common.ErrBadRequest)
	}

	timeLimit := req.TimeLimitSeconds
	if timeLimit <= 0 {
		timeLimit = defaultTimeLimitSeconds
	}

	// Remote first. If the judge refuses, no local record may exist.
	created, err := s.judge.CreateProblem(ctx, req.Name, req.Description)
	if err != nil {
		return nil, err
	}

	problem := &model.Problem{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Slug:              slug.Make(req.Name),
		Description:       req.Description,
		TimeLimitSeconds:  timeLimit,
		RemoteProblemID:   created.ID,
		RemoteProblemCode: created.Code,
	}

	if err := s.problemRepo.CreateProblem(ctx, problem); err != nil {
		// Remote is now ahead of local. Log the assigned ids so the orphaned
		// remote problem can be reconciled; never the reverse situation.
		s.logger.Error("problem persisted remotely but not locally",
			zap.String("remote_problem_id", created.ID),
			zap.String("remote_problem_code", created.Code),
			zap.Error(err))
		return nil, err
	}
	return problem, nil
}

func (s *ProblemService) UpdateProblem(ctx context.Context, id string, req UpdateProblemRequest) (*model.Problem, error) {
	if req.Name == "" || req.Description == "" {
		return nil, common.Errorf("name and description are required: %w", common.ErrBadRequest)
	}

	problem, err := s.problemRepo.FindProblemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !problem.Synced() {
		return nil, common.ErrInvalidState
	}

	// Push remotely before touching the local record; a remote failure leaves
	// the local row unchanged.
	if err := s.judge.UpdateProblem(ctx, problem.RemoteProblemID, req.Name, req.Description); err != nil {
		return nil, err
	}

	problem.Name = req.Name
	problem.Slug = slug.Make(req.Name)
	problem.Description = req.Description
	if req.TimeLimitSeconds > 0 {
		problem.TimeLimitSeconds = req.TimeLimitSeconds
	}

	if err := s.problemRepo.UpdateProblem(ctx, problem); err != nil {
		s.logger.Error("problem updated remotely but not locally",
			zap.String("problem_id", problem.ID),
			zap.String("remote_problem_id", problem.RemoteProblemID),
			zap.Error(err))
		return nil, err
	}
	return problem, nil
}

func (s *ProblemService) DeleteProblem(ctx context.Context, id string) error {
	problem, err := s.problemRepo.FindProblemByID(ctx, id)
	if err != nil {
		return err
	}

	if problem.Synced() {
		if err := s.judge.DeleteProblem(ctx, problem.RemoteProblemID); err != nil {
			return err
		}
	}
	return s.problemRepo.DeleteProblem(ctx, id)
}

func (s *ProblemService) GetProblem(ctx context.Context, id string) (*model.Problem, error) {
	problem, err := s.problemRepo.FindProblemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	testCases, err := s.problemRepo.GetTestCasesByProblemID(ctx, id)
	if err != nil {
		return nil, err
	}
	problem.TestCases = testCases
	return problem, nil
}

func (s *ProblemService) ListProblems(ctx context.Context) ([]model.Problem, error) {
	return s.problemRepo.ListProblems(ctx)
}

func (s *ProblemService) AddTestCase(ctx context.Context, problemID string, req AddTestCaseRequest) (*model.TestCase, error) {
	if req.Input == "" || req.Output == "" {
		return nil, common.Errorf("input and output are required: %w", common.ErrBadRequest)
	}

	problem, err := s.problemRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, err
	}
	if !problem.Synced() {
		return nil, common.ErrInvalidState
	}

	remoteTestID, err := s.judge.CreateTestCase(ctx, problem.RemoteProblemID, req.Input, req.Output, problem.TimeLimitSeconds)
	if err != nil {
		return nil, err
	}

	tc := &model.TestCase{
		ID:           uuid.NewString(),
		ProblemID:    problem.ID,
		Input:        req.Input,
		Output:       req.Output,
		RemoteTestID: remoteTestID,
		Active:       true,
	}
	if err := s.problemRepo.AddTestCase(ctx, tc); err != nil {
		s.logger.Error("test case created remotely but not locally",
			zap.String("problem_id", problem.ID),
			zap.String("remote_test_id", remoteTestID),
			zap.Error(err))
		return nil, err
	}
	return tc, nil
}

// RemoveTestCase soft-deletes the remote test case before hard-deleting the
// local row. A crash between the two steps leaves the remote record inactive
// and the local row present, which a retry of the whole operation resolves.
func (s *ProblemService) RemoveTestCase(ctx context.Context, problemID, testCaseID string) error {
	problem, err := s.problemRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return err
	}
	tc, err := s.problemRepo.FindTestCase(ctx, problemID, testCaseID)
	if err != nil {
		return err
	}

	if tc.RemoteTestID != "" {
		if err := s.judge.SetTestCaseActive(ctx, problem.RemoteProblemID, tc.RemoteTestID, false); err != nil {
			return err
		}
	}
	return s.problemRepo.DeleteTestCase(ctx, problemID, testCaseID)
}
