package service

import (
	"strings"
	"testing"

	"civicreport/models"
)

func floatPtr(v float64) *float64 { return &v }

func validCreateRequest() models.CreateReportRequest {
	return models.CreateReportRequest{
		Title:       "pothole near the school gate",
		Description: "deep pothole, two wheelers swerving into traffic",
		Category:    models.CategoryPothole,
		Latitude:    floatPtr(27.7172),
		Longitude:   floatPtr(85.3240),
	}
}

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CreateReportRequest)
		fields []string
	}{
		{
			name:   "valid request",
			mutate: func(r *models.CreateReportRequest) {},
		},
		{
			name: "missing title",
			mutate: func(r *models.CreateReportRequest) {
				r.Title = "   "
			},
			fields: []string{"title"},
		},
		{
			name: "title too long",
			mutate: func(r *models.CreateReportRequest) {
				r.Title = strings.Repeat("x", 256)
			},
			fields: []string{"title"},
		},
		{
			name: "invalid category",
			mutate: func(r *models.CreateReportRequest) {
				r.Category = "noise"
			},
			fields: []string{"category"},
		},
		{
			name: "missing coordinates",
			mutate: func(r *models.CreateReportRequest) {
				r.Latitude = nil
				r.Longitude = nil
			},
			fields: []string{"latitude", "longitude"},
		},
		{
			name: "out of range coordinates",
			mutate: func(r *models.CreateReportRequest) {
				r.Latitude = floatPtr(91)
				r.Longitude = floatPtr(-200)
			},
			fields: []string{"latitude", "longitude"},
		},
		{
			name: "image without url",
			mutate: func(r *models.CreateReportRequest) {
				r.Images = []models.ReportImage{{Filename: "a.jpg"}}
			},
			fields: []string{"images"},
		},
		{
			name: "every violation reported at once",
			mutate: func(r *models.CreateReportRequest) {
				r.Title = ""
				r.Description = ""
				r.Category = ""
				r.Latitude = nil
				r.Longitude = nil
			},
			fields: []string{"title", "description", "category", "latitude", "longitude"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)

			err := validateCreate(&req)
			if len(tt.fields) == 0 {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}

			v, ok := err.(*models.ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if len(v.Violations) != len(tt.fields) {
				t.Fatalf("expected %d violations, got %d: %v",
					len(tt.fields), len(v.Violations), v.Violations)
			}
			for i, field := range tt.fields {
				if v.Violations[i].Field != field {
					t.Errorf("violation %d: expected field %s, got %s",
						i, field, v.Violations[i].Field)
				}
			}
		})
	}
}
