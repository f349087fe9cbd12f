package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codejudge/internal/common"
	"codejudge/internal/domain/model"
)

// Client is the typed wrapper over the remote judge's HTTP API. It retains no
// state between calls and never retries: CreateSubmission and CreateTestCase
// are not idempotent, and retry policy belongs to the caller.
type Client interface {
	CreateProblem(ctx context.Context, name, description string) (*CreatedProblem, error)
	UpdateProblem(ctx context.Context, remoteID, name, description string) error
	DeleteProblem(ctx context.Context, remoteID string) error

	CreateTestCase(ctx context.Context, remoteProblemID, input, output string, timeLimitSeconds int) (string, error)
	SetTestCaseActive(ctx context.Context, remoteProblemID, remoteTestID string, active bool) error

	ListCompilers(ctx context.Context) ([]model.Compiler, error)

	CreateSubmission(ctx context.Context, remoteProblemID string, compilerID int, sourceCode string) (string, error)
	FetchSubmission(ctx context.Context, remoteSubmissionID string) (*SubmissionStatus, error)
}

// Config carries everything the client needs; nothing is read from the
// environment here.
type Config struct {
	BaseURL       string
	AccessToken   string
	MasterJudgeID int
	TypeID        int
	TestJudgeID   int
	HTTPClient    *http.Client
}

type CreatedProblem struct {
	ID   string
	Code string
}

// SubmissionStatus is the last observed judge state for a remote submission.
// Codes at or below model.TerminalStatusThreshold are in-progress.
type SubmissionStatus struct {
	Code int
	Name string
	Raw  json.RawMessage
}

type httpJudgeClient struct {
	baseURL       string
	token         string
	masterJudgeID int
	typeID        int
	testJudgeID   int
	hc            *http.Client
}

func NewClient(cfg Config) Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &httpJudgeClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		token:         cfg.AccessToken,
		masterJudgeID: cfg.MasterJudgeID,
		typeID:        cfg.TypeID,
		testJudgeID:   cfg.TestJudgeID,
		hc:            hc,
	}
}

// flexID tolerates the judge returning resource ids as either JSON numbers or
// strings, depending on the endpoint.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (c *httpJudgeClient) CreateProblem(ctx context.Context, name, description string) (*CreatedProblem, error) {
	form := map[string]interface{}{
		"name":          name,
		"body":          description,
		"masterjudgeId": c.masterJudgeID,
		"typeId":        c.typeID,
	}
	var resp struct {
		ID   flexID `json:"id"`
		Code string `json:"code"`
	}
	if err := c.do(ctx, http.MethodPost, "/problems", form, &resp); err != nil {
		return nil, err
	}
	return &CreatedProblem{ID: string(resp.ID), Code: resp.Code}, nil
}

func (c *httpJudgeClient) UpdateProblem(ctx context.Context, remoteID, name, description string) error {
	form := map[string]interface{}{
		"name":          name,
		"body":          description,
		"masterjudgeId": c.masterJudgeID,
		"typeId":        c.typeID,
	}
	return c.do(ctx, http.MethodPut, "/problems/"+url.PathEscape(remoteID), form, nil)
}

func (c *httpJudgeClient) DeleteProblem(ctx context.Context, remoteID string) error {
	return c.do(ctx, http.MethodDelete, "/problems/"+url.PathEscape(remoteID), nil, nil)
}

func (c *httpJudgeClient) CreateTestCase(ctx context.Context, remoteProblemID, input, output string, timeLimitSeconds int) (string, error) {
	if timeLimitSeconds < 1 {
		timeLimitSeconds = 1
	}
	form := map[string]interface{}{
		"input":     input,
		"output":    output,
		"timeLimit": timeLimitSeconds,
		"judgeId":   c.testJudgeID,
	}
	var resp struct {
		Number flexID `json:"number"`
	}
	path := "/problems/" + url.PathEscape(remoteProblemID) + "/testcases"
	if err := c.do(ctx, http.MethodPost, path, form, &resp); err != nil {
		return "", err
	}
	return string(resp.Number), nil
}

func (c *httpJudgeClient) SetTestCaseActive(ctx context.Context, remoteProblemID, remoteTestID string, active bool) error {
	form := map[string]interface{}{"active": active}
	path := "/problems/" + url.PathEscape(remoteProblemID) + "/testcases/" + url.PathEscape(remoteTestID)
	return c.do(ctx, http.MethodPut, path, form, nil)
}

func (c *httpJudgeClient) ListCompilers(ctx context.Context) ([]model.Compiler, error) {
	var resp struct {
		Items []model.Compiler `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/compilers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *httpJudgeClient) CreateSubmission(ctx context.Context, remoteProblemID string, compilerID int, sourceCode string) (string, error) {
	form := map[string]interface{}{
		"problemId":  remoteProblemID,
		"compilerId": compilerID,
		"source":     sourceCode,
	}
	var resp struct {
		ID flexID `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/submissions", form, &resp); err != nil {
		return "", err
	}
	return string(resp.ID), nil
}

func (c *httpJudgeClient) FetchSubmission(ctx context.Context, remoteSubmissionID string) (*SubmissionStatus, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/submissions/"+url.PathEscape(remoteSubmissionID), nil, &raw); err != nil {
		return nil, err
	}
	var resp struct {
		Status struct {
			Code int    `json:"code"`
			Name string `json:"name"`
		} `json:"status"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding submission status: %w", err)
	}
	return &SubmissionStatus{Code: resp.Status.Code, Name: resp.Status.Name, Raw: raw}, nil
}

// do performs one request against the judge. The access token travels as a
// query parameter and is scrubbed from every error this method returns.
func (c *httpJudgeClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path + "?access_token=" + url.QueryEscape(c.token)

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding judge request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("building judge request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %s: %w", method, path, c.scrub(err.Error()), common.ErrRemoteUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := c.readRejection(resp.Body)
		if reqID := resp.Header.Get("X-Request-Id"); reqID != "" {
			return fmt.Errorf("%s %s: status %d: %s (request %s): %w",
				method, path, resp.StatusCode, msg, reqID, common.ErrRemoteRejected)
		}
		return fmt.Errorf("%s %s: status %d: %s: %w", method, path, resp.StatusCode, msg, common.ErrRemoteRejected)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding judge response for %s %s: %w", method, path, err)
	}
	return nil
}

func (c *httpJudgeClient) readRejection(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return "unreadable response body"
	}
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return c.scrub(strings.TrimSpace(string(data)))
}

func (c *httpJudgeClient) scrub(s string) string {
	if c.token == "" {
		return s
	}
	return strings.ReplaceAll(s, c.token, "[redacted]")
}
