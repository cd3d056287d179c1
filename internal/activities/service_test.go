package activities

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/dbtest"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	client := dbtest.Open(t, []any{&models.Activity{}})
	svc, err := NewService(NewRepository(client.DB()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func beachCleanup() CreateActivityInput {
	image := "img/beach.png"
	return CreateActivityInput{
		Name:        "Beach Cleanup",
		Location:    "Santa Monica",
		Date:        "2026-04-18",
		Description: "Pick up litter along the shore",
		ImageRef:    &image,
	}
}

func TestCreateGetAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	admin := uuid.New()

	created, err := svc.Create(ctx, admin, beachCleanup())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.AdminID != admin.String() || created.ImageRef == nil {
		t.Fatalf("unexpected activity %+v", created)
	}

	if _, err := svc.Create(ctx, uuid.New(), CreateActivityInput{Name: "Food Drive", Location: "Downtown", Date: "2026-05-02", Description: "Sort donations"}); err != nil {
		t.Fatalf("create second: %v", err)
	}

	id := uuid.MustParse(created.ID)
	got, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Beach Cleanup" {
		t.Fatalf("unexpected name %q", got.Name)
	}

	all, err := svc.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(all))
	}
	mine, err := svc.List(ctx, &admin)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != created.ID {
		t.Fatalf("expected only the admin's activity, got %+v", mine)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Create(context.Background(), uuid.New(), CreateActivityInput{Name: "  "})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = svc.Create(context.Background(), uuid.Nil, beachCleanup())
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvalidID) {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}

func TestGetActivityErrors(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.GetActivity(context.Background(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.GetActivity(context.Background(), uuid.Nil); !pkgerrors.IsCode(err, pkgerrors.CodeInvalidID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
}

func TestUpdateAndDeleteRequireOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	admin := uuid.New()

	created, err := svc.Create(ctx, admin, beachCleanup())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := uuid.MustParse(created.ID)

	var patch UpdateActivityInput
	if err := json.Unmarshal([]byte(`{"location":"Venice Beach","image_ref":null}`), &patch); err != nil {
		t.Fatalf("decode patch: %v", err)
	}

	if _, err := svc.Update(ctx, uuid.New(), id, patch); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	updated, err := svc.Update(ctx, admin, id, patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Location != "Venice Beach" || updated.ImageRef != nil || updated.Name != "Beach Cleanup" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	blank := " "
	if _, err := svc.Update(ctx, admin, id, UpdateActivityInput{Name: &blank}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}

	if err := svc.Delete(ctx, uuid.New(), id); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
	if err := svc.Delete(ctx, admin, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, id); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
