package nox

import "testing"

func TestFeatureOrderValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		order   FeatureOrder
		wantErr bool
	}{
		{name: "full nine-feature order", order: FeatureOrder(FieldNames())},
		{name: "subset order", order: FeatureOrder{"TIT", "TAT", "CDP"}},
		{name: "single feature", order: FeatureOrder{"TEY"}},
		{name: "empty order", order: FeatureOrder{}, wantErr: true},
		{name: "nil order", order: nil, wantErr: true},
		{name: "unknown feature", order: FeatureOrder{"TIT", "FUEL_FLOW"}, wantErr: true},
		{name: "lowercase feature", order: FeatureOrder{"tit"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected validation to fail for %v", tt.order)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected %v to validate, got %v", tt.order, err)
			}
		})
	}
}

func TestDecodeBandMetadata(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"features": ["TIT", "TAT", "CDP"], "model_version": "v1", "trained_at": "2024-11-02T10:00:00Z"}`)
	meta, err := decodeBandMetadata(raw)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(meta.Features) != 3 || meta.Features[0] != "TIT" {
		t.Errorf("expected features [TIT TAT CDP], got %v", meta.Features)
	}
	if meta.ModelVersion != "v1" {
		t.Errorf("expected model_version v1, got %q", meta.ModelVersion)
	}
	if meta.TrainedAt != "2024-11-02T10:00:00Z" {
		t.Errorf("unexpected trained_at %q", meta.TrainedAt)
	}

	if _, err := decodeBandMetadata([]byte(`{not json`)); err == nil {
		t.Error("expected decode error for malformed document")
	}
}
