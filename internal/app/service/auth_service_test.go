package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"codejudge/internal/common"
	"codejudge/internal/common/security"
	"codejudge/internal/domain/model"
)

func newAuthServiceForTest(repo *fakeUserRepo) *AuthService {
	return NewAuthService(repo, security.NewTokenIssuer([]byte("test-secret"), time.Hour))
}

func TestSignupAndLogin(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newAuthServiceForTest(repo)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("signup should return a token")
	}
	if resp.User.Role != model.RoleUser {
		t.Errorf("role = %q, want %q", resp.User.Role, model.RoleUser)
	}
	if resp.User.HashedPassword != "" {
		t.Error("response must not carry the password hash")
	}

	login, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("login user = %q, want %q", login.User.ID, resp.User.ID)
	}
}

func TestSignupAdminSetsAdminRole(t *testing.T) {
	t.Parallel()

	svc := newAuthServiceForTest(newFakeUserRepo())
	resp, err := svc.SignupAdmin(context.Background(), SignupRequest{Name: "Root", Email: "root@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("SignupAdmin: %v", err)
	}
	if resp.User.Role != model.RoleAdmin {
		t.Fatalf("role = %q, want %q", resp.User.Role, model.RoleAdmin)
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	t.Parallel()

	svc := newAuthServiceForTest(newFakeUserRepo())
	_, err := svc.Signup(context.Background(), SignupRequest{Name: "Ada", Email: "a@b.c", Password: "12345"})
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newAuthServiceForTest(newFakeUserRepo())
	ctx := context.Background()
	req := SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}

	if _, err := svc.Signup(ctx, req); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(ctx, req); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	svc := newAuthServiceForTest(newFakeUserRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "nope22"}); !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestLoginUnknownEmailIsUnauthorized(t *testing.T) {
	t.Parallel()

	svc := newAuthServiceForTest(newFakeUserRepo())
	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "hunter22"})
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized (not ErrNotFound)", err)
	}
}

func TestUpdateUserPermissions(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	repo.users["u1"] = &model.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: model.RoleUser}
	repo.users["u2"] = &model.User{ID: "u2", Name: "Bob", Email: "bob@example.com", Role: model.RoleUser}
	svc := NewUserService(repo)
	ctx := context.Background()

	// A user may not edit someone else.
	_, err := svc.UpdateUser(ctx, "u1", model.RoleUser, "u2", UpdateUserRequest{Name: "Mallory"})
	if !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	// An admin may.
	updated, err := svc.UpdateUser(ctx, "u9", model.RoleAdmin, "u2", UpdateUserRequest{Name: "Robert"})
	if err != nil {
		t.Fatalf("admin UpdateUser: %v", err)
	}
	if updated.Name != "Robert" {
		t.Errorf("name = %q, want Robert", updated.Name)
	}

	// And so may the user themselves.
	if _, err := svc.UpdateUser(ctx, "u1", model.RoleUser, "u1", UpdateUserRequest{Name: "Ada L"}); err != nil {
		t.Fatalf("self UpdateUser: %v", err)
	}
}
