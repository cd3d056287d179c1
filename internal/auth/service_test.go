package auth

import (
	"context"
	"testing"

	"github.com/angelmondragon/volunteerlinks-backend/internal/users"
	pkgAuth "github.com/angelmondragon/volunteerlinks-backend/pkg/auth"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/config"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/dbtest"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/security"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	client := dbtest.Open(t, []any{&models.User{}})
	svc, err := NewService(ServiceParams{
		UserRepo:  users.NewRepository(client.DB()),
		JWTConfig: config.JWTConfig{Secret: "secret", Issuer: "volunteerlinks", ExpirationMinutes: 15},
		PasswordConfig: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSignupAndSignin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Signup(ctx, SignupRequest{Name: "alice", Email: "Alice@Example.org", Password: "beach-cleanup", Role: "volunteer"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if created.Email != "alice@example.org" || created.Role != enums.UserRoleVolunteer {
		t.Fatalf("unexpected user %+v", created)
	}

	resp, err := svc.Signin(ctx, SigninRequest{Email: "alice@example.org", Password: "beach-cleanup", Role: "volunteer"})
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	if resp.Role != "volunteer" || resp.User.ID != created.ID {
		t.Fatalf("unexpected signin response %+v", resp)
	}
	if resp.User.LastLoginAt == nil {
		t.Fatal("expected last login to be recorded")
	}

	claims, err := pkgAuth.ParseAccessToken(config.JWTConfig{Secret: "secret", Issuer: "volunteerlinks"}, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID.String() != created.ID || claims.Role != enums.UserRoleVolunteer {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestSignupRejectsDuplicatesAndBadRoles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupRequest{Name: "omar", Email: "omar@example.org", Password: "organizer", Role: "admin"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, err := svc.Signup(ctx, SignupRequest{Name: "omar 2", Email: "OMAR@example.org", Password: "organizer", Role: "admin"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	_, err = svc.Signup(ctx, SignupRequest{Name: "x", Email: "x@example.org", Password: "password", Role: "owner"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for role, got %v", err)
	}

	_, err = svc.Signup(ctx, SignupRequest{Email: "y@example.org", Password: "password", Role: "volunteer"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}
}

func TestSigninErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupRequest{Name: "omar", Email: "omar@example.org", Password: "organizer", Role: "admin"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	cases := []struct {
		name string
		req  SigninRequest
		code pkgerrors.Code
	}{
		{name: "unknown email", req: SigninRequest{Email: "nobody@example.org", Password: "organizer", Role: "admin"}, code: pkgerrors.CodeNotFound},
		{name: "bad password", req: SigninRequest{Email: "omar@example.org", Password: "wrong-pass", Role: "admin"}, code: pkgerrors.CodeUnauthorized},
		{name: "role mismatch", req: SigninRequest{Email: "omar@example.org", Password: "organizer", Role: "volunteer"}, code: pkgerrors.CodeForbidden},
		{name: "invalid role", req: SigninRequest{Email: "omar@example.org", Password: "organizer", Role: "root"}, code: pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		_, err := svc.Signin(ctx, tc.req)
		if !pkgerrors.IsCode(err, tc.code) {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}

func TestSigninUpgradesStaleHash(t *testing.T) {
	client := dbtest.Open(t, []any{&models.User{}})
	repo := users.NewRepository(client.DB())
	jwtCfg := config.JWTConfig{Secret: "secret", Issuer: "volunteerlinks", ExpirationMinutes: 15}
	weak := config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	strong := weak
	strong.ArgonTime = 2

	legacy, err := NewService(ServiceParams{UserRepo: repo, JWTConfig: jwtCfg, PasswordConfig: weak})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	if _, err := legacy.Signup(ctx, SignupRequest{Name: "dana", Email: "dana@example.org", Password: "food-bank", Role: "admin"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	upgraded, err := NewService(ServiceParams{UserRepo: repo, JWTConfig: jwtCfg, PasswordConfig: strong})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := upgraded.Signin(ctx, SigninRequest{Email: "dana@example.org", Password: "food-bank", Role: "admin"}); err != nil {
		t.Fatalf("signin: %v", err)
	}

	stored, err := repo.FindByEmail(ctx, "dana@example.org")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if security.NeedsRehash(stored.PasswordHash, strong) {
		t.Fatal("expected stored hash to use the current costs")
	}
	if _, err := legacy.Signin(ctx, SigninRequest{Email: "dana@example.org", Password: "food-bank", Role: "admin"}); err != nil {
		t.Fatalf("upgraded hash must still verify: %v", err)
	}
}

func TestSignupStoresVolunteerProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	experience := "  food bank shifts  "

	volunteer, err := svc.Signup(ctx, SignupRequest{
		Name:            "alice",
		Email:           "alice@example.org",
		Password:        "beach-cleanup",
		Role:            "volunteer",
		Interests:       []string{"ocean", " ", "animals"},
		Strengths:       []string{"organizing"},
		PriorExperience: &experience,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if volunteer.Profile == nil {
		t.Fatal("expected volunteer profile")
	}
	if got := volunteer.Profile.Interests; len(got) != 2 || got[0] != "ocean" || got[1] != "animals" {
		t.Fatalf("unexpected interests %v", got)
	}
	if got := volunteer.Profile.PriorExperience; got == nil || *got != "food bank shifts" {
		t.Fatalf("unexpected prior experience %v", got)
	}

	admin, err := svc.Signup(ctx, SignupRequest{
		Name:      "omar",
		Email:     "omar@example.org",
		Password:  "organizer",
		Role:      "admin",
		Interests: []string{"ocean"},
	})
	if err != nil {
		t.Fatalf("signup admin: %v", err)
	}
	if admin.Profile != nil {
		t.Fatalf("expected no profile for admin, got %+v", admin.Profile)
	}

	_, err = svc.Signup(ctx, SignupRequest{
		Name:      "carol",
		Email:     "carol@example.org",
		Password:  "password",
		Role:      "volunteer",
		Interests: []string{"a", "b", "c", "d"},
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for four interests, got %v", err)
	}
}
