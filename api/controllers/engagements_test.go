package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/volunteerlinks-backend/internal/engagements"
	"github.com/angelmondragon/volunteerlinks-backend/internal/notifications"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
)

type fakeEngagementService struct {
	requestJoinFn  func(ctx context.Context, input engagements.JoinInput) (*engagements.JoinResult, error)
	joinStatusFn   func(ctx context.Context, volunteerID, activityID uuid.UUID) (bool, error)
	decideFn       func(ctx context.Context, input engagements.DecisionInput) (*engagements.DecisionResult, error)
	completeFn     func(ctx context.Context, input engagements.CompletionInput) (*engagements.CompletionResult, error)
	pendingFn      func(ctx context.Context, volunteerID uuid.UUID) ([]engagements.PendingDTO, error)
	applicantsFn   func(ctx context.Context, adminID uuid.UUID, activityID *uuid.UUID) ([]engagements.PendingDTO, error)
	acceptedFn     func(ctx context.Context, adminID uuid.UUID) ([]engagements.CompletedDTO, error)
	completedForFn func(ctx context.Context, volunteerID uuid.UUID) ([]engagements.CompletedDTO, error)
	archivedForFn  func(ctx context.Context, volunteerID uuid.UUID) ([]engagements.ArchivedDTO, error)
}

func (f fakeEngagementService) RequestJoin(ctx context.Context, input engagements.JoinInput) (*engagements.JoinResult, error) {
	return f.requestJoinFn(ctx, input)
}

func (f fakeEngagementService) CheckJoinStatus(ctx context.Context, volunteerID, activityID uuid.UUID) (bool, error) {
	return f.joinStatusFn(ctx, volunteerID, activityID)
}

func (f fakeEngagementService) Decide(ctx context.Context, input engagements.DecisionInput) (*engagements.DecisionResult, error) {
	return f.decideFn(ctx, input)
}

func (f fakeEngagementService) Complete(ctx context.Context, input engagements.CompletionInput) (*engagements.CompletionResult, error) {
	return f.completeFn(ctx, input)
}

func (f fakeEngagementService) PendingFor(ctx context.Context, volunteerID uuid.UUID) ([]engagements.PendingDTO, error) {
	return f.pendingFn(ctx, volunteerID)
}

func (f fakeEngagementService) InboundApplicantsFor(ctx context.Context, adminID uuid.UUID, activityID *uuid.UUID) ([]engagements.PendingDTO, error) {
	return f.applicantsFn(ctx, adminID, activityID)
}

func (f fakeEngagementService) AcceptedFor(ctx context.Context, adminID uuid.UUID) ([]engagements.CompletedDTO, error) {
	return f.acceptedFn(ctx, adminID)
}

func (f fakeEngagementService) CompletedFor(ctx context.Context, volunteerID uuid.UUID) ([]engagements.CompletedDTO, error) {
	return f.completedForFn(ctx, volunteerID)
}

func (f fakeEngagementService) ArchivedFor(ctx context.Context, volunteerID uuid.UUID) ([]engagements.ArchivedDTO, error) {
	return f.archivedForFn(ctx, volunteerID)
}

func TestEngagementJoinForwardsCallerAndBody(t *testing.T) {
	volunteerID := uuid.New()
	activityID := uuid.New()
	var got engagements.JoinInput
	svc := fakeEngagementService{
		requestJoinFn: func(_ context.Context, input engagements.JoinInput) (*engagements.JoinResult, error) {
			got = input
			return &engagements.JoinResult{
				EngagementID: uuid.NewString(),
				State:        enums.EngagementStatePending,
				Fanout:       notifications.Queued(uuid.New()),
			}, nil
		},
	}

	req := newRequest(t, http.MethodPost, "/api/v1/engagements", map[string]any{
		"activity_id": activityID.String(),
		"interests":   []string{"outdoors"},
		"strengths":   []string{"lifting"},
	})
	req = asCaller(req, volunteerID, string(enums.UserRoleVolunteer), "Alice")
	rec := httptest.NewRecorder()

	EngagementJoin(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, volunteerID, got.VolunteerID)
	assert.Equal(t, activityID, got.ActivityID)
	assert.Equal(t, "Alice", got.VolunteerName)
	assert.Equal(t, []string{"outdoors"}, got.Interests)
	assert.Nil(t, got.Genre)
}

func TestEngagementJoinRejectsMalformedActivityID(t *testing.T) {
	svc := fakeEngagementService{
		requestJoinFn: func(context.Context, engagements.JoinInput) (*engagements.JoinResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	req := asCaller(newRequest(t, http.MethodPost, "/api/v1/engagements", map[string]any{"activity_id": "nope"}),
		uuid.New(), string(enums.UserRoleVolunteer), "Alice")
	rec := httptest.NewRecorder()

	EngagementJoin(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(pkgerrors.CodeInvalidID), env.Error.Code)
}

func TestEngagementJoinRejectsUnknownFields(t *testing.T) {
	svc := fakeEngagementService{}
	req := asCaller(newRequest(t, http.MethodPost, "/api/v1/engagements", `{"activity_id":"`+uuid.NewString()+`","state":"accepted"}`),
		uuid.New(), string(enums.UserRoleVolunteer), "Alice")
	rec := httptest.NewRecorder()

	EngagementJoin(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEngagementJoinRequiresCaller(t *testing.T) {
	req := newRequest(t, http.MethodPost, "/api/v1/engagements", map[string]any{"activity_id": uuid.NewString()})
	rec := httptest.NewRecorder()

	EngagementJoin(fakeEngagementService{}, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEngagementJoinConflict(t *testing.T) {
	svc := fakeEngagementService{
		requestJoinFn: func(context.Context, engagements.JoinInput) (*engagements.JoinResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "already joined")
		},
	}
	req := asCaller(newRequest(t, http.MethodPost, "/api/v1/engagements", map[string]any{"activity_id": uuid.NewString()}),
		uuid.New(), string(enums.UserRoleVolunteer), "Alice")
	rec := httptest.NewRecorder()

	EngagementJoin(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.False(t, env.Error.Retryable)
}

func TestEngagementJoinStatus(t *testing.T) {
	activityID := uuid.New()
	svc := fakeEngagementService{
		joinStatusFn: func(_ context.Context, _ uuid.UUID, got uuid.UUID) (bool, error) {
			assert.Equal(t, activityID, got)
			return true, nil
		},
	}
	req := asCaller(newRequest(t, http.MethodGet, "/api/v1/engagements/status?activityId="+activityID.String(), nil),
		uuid.New(), string(enums.UserRoleVolunteer), "Alice")
	rec := httptest.NewRecorder()

	EngagementJoinStatus(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status joinStatusResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &status))
	assert.True(t, status.Joined)
}

func TestEngagementJoinStatusRequiresActivity(t *testing.T) {
	req := asCaller(newRequest(t, http.MethodGet, "/api/v1/engagements/status", nil),
		uuid.New(), string(enums.UserRoleVolunteer), "Alice")
	rec := httptest.NewRecorder()

	EngagementJoinStatus(fakeEngagementService{}, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEngagementPendingReturnsEmptyArray(t *testing.T) {
	svc := fakeEngagementService{
		pendingFn: func(context.Context, uuid.UUID) ([]engagements.PendingDTO, error) {
			return nil, nil
		},
	}
	req := asCaller(newRequest(t, http.MethodGet, "/api/v1/engagements/pending", nil),
		uuid.New(), string(enums.UserRoleVolunteer), "Alice")
	rec := httptest.NewRecorder()

	EngagementPending(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))
}

func TestAdminApplicantsPassesActivityFilter(t *testing.T) {
	activityID := uuid.New()
	svc := fakeEngagementService{
		applicantsFn: func(_ context.Context, _ uuid.UUID, filter *uuid.UUID) ([]engagements.PendingDTO, error) {
			require.NotNil(t, filter)
			assert.Equal(t, activityID, *filter)
			return []engagements.PendingDTO{}, nil
		},
	}
	req := asCaller(newRequest(t, http.MethodGet, "/api/v1/admin/applicants?activityId="+activityID.String(), nil),
		uuid.New(), string(enums.UserRoleAdmin), "Bob")
	rec := httptest.NewRecorder()

	AdminApplicants(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestEngagementDecideParsesDecision(t *testing.T) {
	adminID := uuid.New()
	engagementID := uuid.New()
	completedID := engagementID.String()
	svc := fakeEngagementService{
		decideFn: func(_ context.Context, input engagements.DecisionInput) (*engagements.DecisionResult, error) {
			assert.Equal(t, adminID, input.ActorID)
			assert.Equal(t, engagementID, input.EngagementID)
			assert.Equal(t, enums.EngagementDecisionAccept, input.Decision)
			return &engagements.DecisionResult{
				EngagementID: engagementID.String(),
				Decision:     input.Decision,
				CompletedID:  &completedID,
			}, nil
		},
	}
	req := asCaller(newRequest(t, http.MethodPost, "/api/v1/engagements/decisions", map[string]any{
		"engagement_id": engagementID.String(),
		"decision":      "Accept",
	}), adminID, string(enums.UserRoleAdmin), "Bob")
	rec := httptest.NewRecorder()

	EngagementDecide(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result engagements.DecisionResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	require.NotNil(t, result.CompletedID)
	assert.Equal(t, completedID, *result.CompletedID)
}

func TestEngagementDecideRejectsUnknownDecision(t *testing.T) {
	svc := fakeEngagementService{
		decideFn: func(context.Context, engagements.DecisionInput) (*engagements.DecisionResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	req := asCaller(newRequest(t, http.MethodPost, "/api/v1/engagements/decisions", map[string]any{
		"engagement_id": uuid.NewString(),
		"decision":      "maybe",
	}), uuid.New(), string(enums.UserRoleAdmin), "Bob")
	rec := httptest.NewRecorder()

	EngagementDecide(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeEnvelope(t, rec).Error.Code)
}

func TestEngagementDecideLockHeldIsConflict(t *testing.T) {
	svc := fakeEngagementService{
		decideFn: func(context.Context, engagements.DecisionInput) (*engagements.DecisionResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "engagement is being decided")
		},
	}
	req := asCaller(newRequest(t, http.MethodPost, "/api/v1/engagements/decisions", map[string]any{
		"engagement_id": uuid.NewString(),
		"decision":      "reject",
	}), uuid.New(), string(enums.UserRoleAdmin), "Bob")
	rec := httptest.NewRecorder()

	EngagementDecide(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestEngagementCompleteNotFound(t *testing.T) {
	completedID := uuid.New()
	svc := fakeEngagementService{
		completeFn: func(_ context.Context, input engagements.CompletionInput) (*engagements.CompletionResult, error) {
			assert.Equal(t, completedID, input.CompletedID)
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "accepted engagement not found")
		},
	}
	req := asCaller(newRequest(t, http.MethodPost, "/api/v1/engagements/completions", map[string]any{
		"completed_id": completedID.String(),
	}), uuid.New(), string(enums.UserRoleAdmin), "Bob")
	rec := httptest.NewRecorder()

	EngagementComplete(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEngagementCompleteDependencyIsRetryable(t *testing.T) {
	svc := fakeEngagementService{
		completeFn: func(context.Context, engagements.CompletionInput) (*engagements.CompletionResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "store unavailable")
		},
	}
	req := asCaller(newRequest(t, http.MethodPost, "/api/v1/engagements/completions", map[string]any{
		"completed_id": uuid.NewString(),
	}), uuid.New(), string(enums.UserRoleAdmin), "Bob")
	rec := httptest.NewRecorder()

	EngagementComplete(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Error.Retryable)
}
