package models_test

import (
	"testing"

	"github.com/myrjola/huntdesk/internal/models"
	"github.com/stretchr/testify/require"
)

func TestStepName(t *testing.T) {
	tests := []struct {
		name   string
		step   int
		want   string
		wantOK bool
	}{
		{name: "first", step: 1, want: "Define opportunity", wantOK: true},
		{name: "fifth", step: 5, want: "PepsiCo value proposition", wantOK: true},
		{name: "last", step: 10, want: "Pilot & learn", wantOK: true},
		{name: "zero", step: 0, want: "", wantOK: false},
		{name: "eleven", step: 11, want: "", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := models.StepName(tt.step)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestStepNamesIsCopy(t *testing.T) {
	names := models.StepNames()
	names[0] = "changed"
	got, _ := models.StepName(1)
	require.Equal(t, "Define opportunity", got)
}
