package validator

import (
	"testing"

	"github.com/pauljones0/rental-board/internal/models"
)

func TestValidator_ValidateStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name       string
		listing    models.Listing
		wantErr    bool
		wantFields []string
	}{
		{
			name:    "Valid Listing",
			listing: models.Listing{ID: "w-101", Address: "12 Oak St", Status: "available"},
			wantErr: false,
		},
		{
			name:    "Minimal Listing",
			listing: models.Listing{ID: "7"},
			wantErr: false,
		},
		{
			name:       "Missing ID",
			listing:    models.Listing{Address: "12 Oak St"},
			wantErr:    true,
			wantFields: []string{"id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.listing)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
			fields := FailedFields(err)
			if len(fields) != len(tt.wantFields) {
				t.Fatalf("FailedFields() = %v, want %v", fields, tt.wantFields)
			}
			for i := range fields {
				if fields[i] != tt.wantFields[i] {
					t.Errorf("FailedFields()[%d] = %q, want %q", i, fields[i], tt.wantFields[i])
				}
			}
		})
	}
}

func TestValidator_ConditionalRules(t *testing.T) {
	type settings struct {
		Backend string `json:"backend" validate:"oneof=none firestore"`
		Project string `json:"project" validate:"required_if=Backend firestore"`
	}
	v := New()

	if err := v.ValidateStruct(settings{Backend: "none"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := v.ValidateStruct(settings{Backend: "firestore"})
	if err == nil {
		t.Fatal("expected error when project is missing for firestore")
	}
	if fields := FailedFields(err); len(fields) != 1 || fields[0] != "project" {
		t.Errorf("FailedFields() = %v, want [project]", fields)
	}
	if err := v.ValidateStruct(settings{Backend: "mongo"}); err == nil {
		t.Error("expected oneof violation")
	}
}
