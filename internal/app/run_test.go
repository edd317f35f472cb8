package app

import "testing"

func TestNewRunState(t *testing.T) {
	tests := []struct {
		name       string
		operation  string
		parameters string
	}{
		{
			name:       "with parameters",
			operation:  "Scan",
			parameters: "side=camera",
		},
		{
			name:       "empty parameters",
			operation:  "Reconcile",
			parameters: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunState(tt.operation, tt.parameters)

			if r.Operation != tt.operation {
				t.Errorf("Operation = %q, want %q", r.Operation, tt.operation)
			}
			if r.Parameters != tt.parameters {
				t.Errorf("Parameters = %q, want %q", r.Parameters, tt.parameters)
			}
			if r.Status != "success" {
				t.Errorf("Status = %q, want %q", r.Status, "success")
			}
			if r.ID != "" {
				t.Errorf("ID = %q, want empty before persisting", r.ID)
			}
			if r.Persisted() {
				t.Error("new run should not be persisted")
			}
		})
	}
}

func TestRunState_Persisted(t *testing.T) {
	r := newRunState("Archive", "")
	if r.Persisted() {
		t.Error("Persisted() = true before persisting")
	}
	r.ID = "run-1"
	if !r.Persisted() {
		t.Error("Persisted() = false after the store assigned an ID")
	}
}
