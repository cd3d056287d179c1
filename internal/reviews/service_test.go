package reviews

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/internal/activities"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/dbtest"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
)

type fixture struct {
	svc        Service
	adminID    uuid.UUID
	activityID uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t, []any{&models.Activity{}, &models.Review{}, &models.ReviewReply{}})
	catalog, err := activities.NewService(activities.NewRepository(client.DB()))
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	adminID := uuid.New()
	activity, err := catalog.Create(context.Background(), adminID, activities.CreateActivityInput{
		Name:        "Beach Cleanup",
		Location:    "Santa Monica",
		Date:        "2026-04-18",
		Description: "Pick up litter along the shore",
	})
	if err != nil {
		t.Fatalf("create activity: %v", err)
	}
	svc, err := NewService(NewRepository(client.DB()), catalog)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return fixture{svc: svc, adminID: adminID, activityID: uuid.MustParse(activity.ID)}
}

func (f fixture) review(t *testing.T, author uuid.UUID, name string, rating int, text string) *ReviewDTO {
	t.Helper()
	review, err := f.svc.Create(context.Background(), CreateReviewInput{
		ActivityID: f.activityID,
		AuthorID:   author,
		AuthorName: name,
		Rating:     rating,
		Text:       text,
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	return review
}

func TestReviewsListInInsertionOrderWithAverage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.svc.Average(ctx, f.activityID)
	if err != nil {
		t.Fatalf("average before reviews: %v", err)
	}
	if empty.AverageRating != 0 || empty.ReviewCount != 0 {
		t.Fatalf("expected empty average, got %+v", empty)
	}

	f.review(t, uuid.New(), "Alice", 5, "  Great day outside ")
	f.review(t, uuid.New(), "Bob", 4, "Well organized")
	f.review(t, uuid.New(), "Cara", 4, "Bring sunscreen")

	list, err := f.svc.List(ctx, f.activityID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(list))
	}
	if list[0].Text != "Great day outside" || list[1].AuthorName != "Bob" || list[2].AuthorName != "Cara" {
		t.Fatalf("unexpected order %+v", list)
	}

	avg, err := f.svc.Average(ctx, f.activityID)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg.AverageRating != 4.33 || avg.ReviewCount != 3 || avg.ActivityID != f.activityID.String() {
		t.Fatalf("unexpected average %+v", avg)
	}

	other, err := f.svc.List(ctx, uuid.New())
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no reviews for another activity, got %d", len(other))
	}
}

func TestCreateReviewRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := uuid.New()

	cases := []struct {
		name  string
		input CreateReviewInput
		code  pkgerrors.Code
	}{
		{"missing activity", CreateReviewInput{AuthorID: author, AuthorName: "A", Rating: 3, Text: "ok"}, pkgerrors.CodeInvalidID},
		{"rating too low", CreateReviewInput{ActivityID: f.activityID, AuthorID: author, AuthorName: "A", Rating: 0, Text: "ok"}, pkgerrors.CodeValidation},
		{"rating too high", CreateReviewInput{ActivityID: f.activityID, AuthorID: author, AuthorName: "A", Rating: 6, Text: "ok"}, pkgerrors.CodeValidation},
		{"blank text", CreateReviewInput{ActivityID: f.activityID, AuthorID: author, AuthorName: "A", Rating: 3, Text: "  "}, pkgerrors.CodeValidation},
		{"blank author", CreateReviewInput{ActivityID: f.activityID, AuthorID: author, Rating: 3, Text: "ok"}, pkgerrors.CodeValidation},
		{"unknown activity", CreateReviewInput{ActivityID: uuid.New(), AuthorID: author, AuthorName: "A", Rating: 3, Text: "ok"}, pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, tc.input); !pkgerrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestRepliesFromActivityAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	review := f.review(t, uuid.New(), "Alice", 2, "Started late")
	reviewID := uuid.MustParse(review.ID)

	for _, text := range []string{"Sorry about that", "We moved the start time"} {
		if _, err := f.svc.Reply(ctx, ReplyInput{ReviewID: reviewID, AuthorID: f.adminID, AuthorName: "Org", Text: text}); err != nil {
			t.Fatalf("reply: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	replies, err := f.svc.Replies(ctx, reviewID)
	if err != nil {
		t.Fatalf("replies: %v", err)
	}
	if len(replies) != 2 || replies[0].Text != "Sorry about that" || replies[1].Text != "We moved the start time" {
		t.Fatalf("unexpected replies %+v", replies)
	}
	if replies[0].ReviewID != review.ID || replies[0].AuthorID != f.adminID.String() {
		t.Fatalf("unexpected reply owner %+v", replies[0])
	}

	_, err = f.svc.Reply(ctx, ReplyInput{ReviewID: reviewID, AuthorID: uuid.New(), AuthorName: "Other", Text: "me too"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for another admin, got %v", err)
	}
	_, err = f.svc.Reply(ctx, ReplyInput{ReviewID: uuid.New(), AuthorID: f.adminID, AuthorName: "Org", Text: "hello"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown review, got %v", err)
	}
	_, err = f.svc.Reply(ctx, ReplyInput{ReviewID: reviewID, AuthorID: f.adminID, AuthorName: "Org", Text: " "})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation for blank reply, got %v", err)
	}
	if _, err := f.svc.Replies(ctx, uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found listing replies of unknown review, got %v", err)
	}
}

type failingRepo struct {
	*Repository
}

func (failingRepo) Stats(context.Context, uuid.UUID) (RatingStats, error) {
	return RatingStats{}, errors.New("timeout")
}

func TestAverageStoreFailureIsDependency(t *testing.T) {
	client := dbtest.Open(t, []any{&models.Activity{}, &models.Review{}})
	catalog, err := activities.NewService(activities.NewRepository(client.DB()))
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	svc, err := NewService(failingRepo{NewRepository(client.DB())}, catalog)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.Average(context.Background(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
