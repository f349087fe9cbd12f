package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codejudge/internal/common"
	"codejudge/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemRepository interface {
	CreateProblem(ctx context.Context, problem *model.Problem) error
	UpdateProblem(ctx context.Context, problem *model.Problem) error
	DeleteProblem(ctx context.Context, id string) error
	FindProblemByID(ctx context.Context, id string) (*model.Problem, error)
	ListProblems(ctx context.Context) ([]model.Problem, error)

	AddTestCase(ctx context.Context, tc *model.TestCase) error
	FindTestCase(ctx context.Context, problemID, testCaseID string) (*model.TestCase, error)
	GetTestCasesByProblemID(ctx context.Context, problemID string) ([]model.TestCase, error)
	DeleteTestCase(ctx context.Context, problemID, testCaseID string) error
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) CreateProblem(ctx context.Context, p *model.Problem) error {
	query := `INSERT INTO problems (id, name, slug, description, time_limit_seconds, remote_problem_id, remote_problem_code)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.TimeLimitSeconds, p.RemoteProblemID, p.RemoteProblemCode)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.CreateProblem: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) UpdateProblem(ctx context.Context, p *model.Problem) error {
	query := `UPDATE problems SET
	            name = $1, slug = $2, description = $3, time_limit_seconds = $4, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Slug, p.Description, p.TimeLimitSeconds, p.ID)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.UpdateProblem: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProblemRepository) DeleteProblem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.DeleteProblem: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProblemRepository) FindProblemByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT id, name, slug, description, time_limit_seconds, remote_problem_id, remote_problem_code, created_at, updated_at
	          FROM problems WHERE id = $1`

	problem := &model.Problem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&problem.ID, &problem.Name, &problem.Slug, &problem.Description, &problem.TimeLimitSeconds,
		&problem.RemoteProblemID, &problem.RemoteProblemCode, &problem.CreatedAt, &problem.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindProblemByID: %w", err)
	}
	return problem, nil
}

func (r *pgProblemRepository) ListProblems(ctx context.Context) ([]model.Problem, error) {
	query := `SELECT id, name, slug, description, time_limit_seconds, remote_problem_id, remote_problem_code, created_at, updated_at
	          FROM problems ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblems query: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		var p model.Problem
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.TimeLimitSeconds,
			&p.RemoteProblemID, &p.RemoteProblemCode, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ListProblems scan: %w", err)
		}
		problems = append(problems, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblems rows.Err: %w", err)
	}
	return problems, nil
}

func (r *pgProblemRepository) AddTestCase(ctx context.Context, tc *model.TestCase) error {
	query := `INSERT INTO test_cases (id, problem_id, input, output, remote_test_id, active, sort_order)
	          VALUES ($1, $2, $3, $4, $5, $6,
	                  COALESCE((SELECT MAX(sort_order) FROM test_cases WHERE problem_id = $2), 0) + 1)`
	_, err := r.db.ExecContext(ctx, query, tc.ID, tc.ProblemID, tc.Input, tc.Output, tc.RemoteTestID, tc.Active)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.AddTestCase: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) FindTestCase(ctx context.Context, problemID, testCaseID string) (*model.TestCase, error) {
	query := `SELECT id, problem_id, input, output, remote_test_id, active, sort_order, created_at, updated_at
	          FROM test_cases WHERE problem_id = $1 AND id = $2`
	tc := &model.TestCase{}
	err := r.db.QueryRowContext(ctx, query, problemID, testCaseID).Scan(
		&tc.ID, &tc.ProblemID, &tc.Input, &tc.Output, &tc.RemoteTestID, &tc.Active, &tc.SortOrder,
		&tc.CreatedAt, &tc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindTestCase: %w", err)
	}
	return tc, nil
}

func (r *pgProblemRepository) GetTestCasesByProblemID(ctx context.Context, problemID string) ([]model.TestCase, error) {
	query := `SELECT id, problem_id, input, output, remote_test_id, active, sort_order, created_at, updated_at
	          FROM test_cases WHERE problem_id = $1 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, problemID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetTestCasesByProblemID query: %w", err)
	}
	defer rows.Close()

	var testCases []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.ProblemID, &tc.Input, &tc.Output, &tc.RemoteTestID, &tc.Active,
			&tc.SortOrder, &tc.CreatedAt, &tc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.GetTestCasesByProblemID scan: %w", err)
		}
		testCases = append(testCases, tc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.GetTestCasesByProblemID rows.Err: %w", err)
	}
	return testCases, nil
}

func (r *pgProblemRepository) DeleteTestCase(ctx context.Context, problemID, testCaseID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM test_cases WHERE problem_id = $1 AND id = $2`, problemID, testCaseID)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.DeleteTestCase: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}
