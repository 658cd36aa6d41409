package workflow

import (
	"reflect"
	"testing"
)

func TestStepCompleted(t *testing.T) {
	tests := []struct {
		name string
		view SessionView
		step int
		want bool
	}{
		{
			name: "step 1 via worldview field",
			view: SessionView{Worldview: WorldviewPositivist},
			step: 1,
			want: true,
		},
		{
			name: "step 1 via saved worldview_id",
			view: SessionView{StepData: map[int]map[string]any{1: {"worldview_id": "pragmatist"}}},
			step: 1,
			want: true,
		},
		{
			name: "step 1 with bogus worldview_id",
			view: SessionView{StepData: map[int]map[string]any{1: {"worldview_id": "flat_earth"}}},
			step: 1,
			want: false,
		},
		{
			name: "step 2 with data",
			view: SessionView{StepData: map[int]map[string]any{2: {"topic": "teacher retention"}}},
			step: 2,
			want: true,
		},
		{
			name: "step 2 without data",
			view: SessionView{},
			step: 2,
			want: false,
		},
		{
			name: "step 7 empty map is incomplete",
			view: SessionView{StepData: map[int]map[string]any{7: {}}},
			step: 7,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StepCompleted(tt.view, tt.step); got != tt.want {
				t.Errorf("StepCompleted(step %d) = %v, want %v", tt.step, got, tt.want)
			}
		})
	}
}

func TestCompletedSteps(t *testing.T) {
	view := SessionView{
		Worldview: WorldviewPragmatist,
		StepData: map[int]map[string]any{
			2: {"topic": "x"},
			5: {"centralQuestion": "y"},
		},
	}
	got := CompletedSteps(view)
	want := []int{1, 2, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CompletedSteps() = %v, want %v", got, want)
	}

	if got := CompletedSteps(SessionView{}); got != nil {
		t.Errorf("empty session CompletedSteps() = %v, want nil", got)
	}
}
