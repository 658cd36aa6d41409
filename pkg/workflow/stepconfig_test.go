package workflow

import (
	"reflect"
	"testing"
)

func viewFor(wv Worldview, methodology Methodology, step int) SessionView {
	return SessionView{
		Worldview:         wv,
		ResolvedPath:      ResolvePath(wv),
		ChosenMethodology: methodology,
		ActiveStep:        step,
	}
}

func TestResolveConfigEarlyStepsAlwaysServed(t *testing.T) {
	// Steps 1-3 are shared across paths and never lock, even before a
	// worldview exists.
	for step := 1; step <= 3; step++ {
		res := ResolveConfig(SessionView{ResolvedPath: PathUnresolved}, step)
		if res.Locked {
			t.Errorf("step %d locked without worldview, want served", step)
		}
		if res.Config == nil || res.Config.Step != step {
			t.Errorf("step %d config missing or mislabeled", step)
		}
	}
}

func TestResolveConfigLockedWithoutWorldview(t *testing.T) {
	for step := 4; step <= 9; step++ {
		res := ResolveConfig(SessionView{ResolvedPath: PathUnresolved}, step)
		if !res.Locked {
			t.Fatalf("step %d must lock before a worldview is chosen", step)
		}
		if res.Directions == "" {
			t.Errorf("locked step %d carries no directions", step)
		}
		if res.Config != nil {
			t.Errorf("locked step %d leaked a config", step)
		}
	}
}

func TestResolveConfigSingleTrackPaths(t *testing.T) {
	tests := []struct {
		name string
		wv   Worldview
		path Path
	}{
		{name: "quantitative track", wv: WorldviewPositivist, path: PathQuantitative},
		{name: "qualitative track", wv: WorldviewTransformative, path: PathQualitative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for step := 4; step <= 9; step++ {
				res := ResolveConfig(viewFor(tt.wv, "", step), step)
				if res.Locked {
					t.Fatalf("step %d locked on %s path", step, tt.path)
				}
				if res.Config.Path != tt.path {
					t.Errorf("step %d path = %q, want %q", step, res.Config.Path, tt.path)
				}
				if res.Config.Schema == nil {
					t.Errorf("step %d has no schema", step)
				}
			}
		})
	}
}

func TestResolveConfigMixedDecisionPoint(t *testing.T) {
	// A pragmatist at step 4 without a chosen methodology sees both design
	// catalogs side by side.
	res := ResolveConfig(viewFor(WorldviewPragmatist, "", 4), 4)
	if res.Locked {
		t.Fatal("mixed step 4 must serve the decision schema, not lock")
	}

	decision, ok := res.Config.Schema.(MethodologyDecision)
	if !ok {
		t.Fatalf("mixed step 4 schema = %T, want MethodologyDecision", res.Config.Schema)
	}
	if len(decision.Quantitative) == 0 || len(decision.Qualitative) == 0 {
		t.Error("decision schema must expose both branches' design options")
	}

	// Steps 5-9 stay locked until the branch is confirmed.
	for step := 5; step <= 9; step++ {
		res := ResolveConfig(viewFor(WorldviewPragmatist, "", step), step)
		if !res.Locked {
			t.Errorf("mixed step %d must lock before the methodology decision", step)
		}
	}
}

func TestResolveConfigMixedInheritsChosenBranch(t *testing.T) {
	quantView := viewFor(WorldviewPragmatist, MethodologyQuantitative, 5)
	qualView := viewFor(WorldviewPragmatist, MethodologyQualitative, 5)

	for step := 4; step <= 9; step++ {
		quantRes := ResolveConfig(quantView, step)
		qualRes := ResolveConfig(qualView, step)
		if quantRes.Locked || qualRes.Locked {
			t.Fatalf("step %d locked after methodology decision", step)
		}
		// Path stays mixed even though the schema comes from the branch.
		if quantRes.Config.Path != PathMixed || qualRes.Config.Path != PathMixed {
			t.Errorf("step %d path must remain mixed", step)
		}

		branchQuant := ResolveConfig(viewFor(WorldviewPositivist, "", step), step)
		if quantRes.Config.Title != branchQuant.Config.Title {
			t.Errorf("step %d mixed-quant title = %q, want branch title %q",
				step, quantRes.Config.Title, branchQuant.Config.Title)
		}
		if !reflect.DeepEqual(quantRes.Config.Schema, branchQuant.Config.Schema) {
			t.Errorf("step %d mixed-quant schema diverges from quantitative branch", step)
		}
	}
}

func TestResolveConfigIsPure(t *testing.T) {
	view := viewFor(WorldviewPragmatist, MethodologyQualitative, 6)
	first := ResolveConfig(view, 6)
	for i := 0; i < 5; i++ {
		again := ResolveConfig(view, 6)
		if !reflect.DeepEqual(first, again) {
			t.Fatal("identical input produced different configs")
		}
	}
}

func TestSchemaFieldTypes(t *testing.T) {
	tests := []struct {
		schema Schema
		want   string
	}{
		{schema: SingleSelect{}, want: "single_select"},
		{schema: MultiSelect{}, want: "multi_select"},
		{schema: Fields{}, want: "fields"},
		{schema: MethodologyDecision{}, want: "methodology_decision"},
	}
	for _, tt := range tests {
		if got := tt.schema.FieldType(); got != tt.want {
			t.Errorf("FieldType() = %q, want %q", got, tt.want)
		}
	}
}
