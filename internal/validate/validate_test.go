package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/skillflow/skillflow/pkg/apperrors"
)

func TestPayload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		schema  string
		body    string
		wantErr bool
	}{
		{"department ok", Department, `{"name": "Engineering"}`, false},
		{"department missing name", Department, `{"description": "no name"}`, true},
		{"department empty name", Department, `{"name": ""}`, true},
		{"employee ok", Employee, `{"employee_code": "EMP001", "first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com"}`, false},
		{"employee bad email", Employee, `{"employee_code": "EMP001", "first_name": "Ada", "last_name": "Lovelace", "email": "not-an-email"}`, true},
		{"training ok", Training, `{"name": "Go Fundamentals", "duration_hours": 16}`, false},
		{"training negative hours", Training, `{"name": "Go Fundamentals", "duration_hours": -1}`, true},
		{"enrollment ok", Enrollment, `{"employee_id": 1, "training_id": 2}`, false},
		{"enrollment missing training", Enrollment, `{"employee_id": 1}`, true},
		{"progress ok", EnrollmentProgress, `{"progress": 50}`, false},
		{"progress over 100", EnrollmentProgress, `{"progress": 101}`, true},
		{"progress negative", EnrollmentProgress, `{"progress": -1}`, true},
		{"login ok", Login, `{"email": "hr@example.com", "password": "secret"}`, false},
		{"login missing password", Login, `{"email": "hr@example.com"}`, true},
		{"malformed json", Department, `{"name": `, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Payload(ctx, tc.schema, []byte(tc.body))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !errors.Is(err, apperrors.ErrValidation) {
					t.Fatalf("error not wrapped in ErrValidation: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPayloadUnknownSchema(t *testing.T) {
	if err := Payload(context.Background(), "no_such_schema", []byte(`{}`)); err == nil {
		t.Fatal("expected error for unknown schema")
	}
}
