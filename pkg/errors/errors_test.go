package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeInvalidID, status: http.StatusBadRequest, publicMsg: "invalid identifier", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
		{code: CodeFanoutFailed, status: http.StatusOK, publicMsg: "notification delivery pending", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsCodeAndRetryable(t *testing.T) {
	store := Wrap(CodeDependency, stdErrors.New("conn reset"), "insert engagement")
	wrapped := fmt.Errorf("request join: %w", store)

	if !IsCode(wrapped, CodeDependency) {
		t.Fatalf("expected dependency code through fmt wrapping")
	}
	if IsCode(wrapped, CodeNotFound) {
		t.Fatalf("unexpected not found match")
	}
	if !IsRetryable(wrapped) {
		t.Fatalf("store failures should be retryable")
	}
	if IsRetryable(New(CodeConflict, "already applied")) {
		t.Fatalf("conflicts should not be retryable")
	}
	if IsRetryable(nil) {
		t.Fatalf("nil should not be retryable")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("boom"), "write notification")
	d := Dump(err)
	if d.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", d.Code)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", d.Chain)
	}
	if !d.Retryable || d.DB != nil {
		t.Fatalf("expected retryable dump without db detail, got %+v", d)
	}
}

func TestDumpExtractsDriverDetail(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_engagements_volunteer_activity", TableName: "engagements"}
	d := Dump(Wrap(CodeConflict, pgErr, "insert engagement"))
	if d.DB == nil || d.DB.Driver != "pgx" || d.DB.Constraint != "ux_engagements_volunteer_activity" {
		t.Fatalf("unexpected pg detail %+v", d.DB)
	}
	if d.Retryable {
		t.Fatal("conflict dump must not be retryable")
	}

	d = Dump(stdErrors.New("UNIQUE constraint failed: engagements.volunteer_id, engagements.activity_id"))
	if d.DB == nil || d.DB.Driver != "sqlite" || d.DB.Table != "engagements" {
		t.Fatalf("unexpected sqlite detail %+v", d.DB)
	}
	fields := d.Fields()
	if fields["db_table"] != "engagements" || fields["db_driver"] != "sqlite" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if _, ok := fields["db_code"]; ok {
		t.Fatal("empty driver code must be omitted")
	}
}

func TestFormattedConstructorsAndCodeOf(t *testing.T) {
	err := Newf(CodeStateConflict, "engagement is %s", "completed")
	if err.Message() != "engagement is completed" || err.Error() != "STATE_CONFLICT: engagement is completed" {
		t.Fatalf("unexpected formatted error %q", err.Error())
	}
	cause := stdErrors.New("timeout")
	wrapped := Wrapf(CodeDependency, cause, "load activity %d", 7)
	if !stdErrors.Is(wrapped, cause) || wrapped.Message() != "load activity 7" {
		t.Fatalf("unexpected wrapped error %v", wrapped)
	}
	if CodeOf(fmt.Errorf("outer: %w", wrapped)) != CodeDependency {
		t.Fatal("expected code through wrapping")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatal("untyped errors should report internal")
	}
	if !CodeRateLimit.Known() || Code("NOPE").Known() {
		t.Fatal("unexpected Known result")
	}
}
