package workflow

import (
	"testing"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name      string
		worldview Worldview
		want      Path
	}{
		{name: "positivist", worldview: WorldviewPositivist, want: PathQuantitative},
		{name: "post-positivist", worldview: WorldviewPostPositivist, want: PathQuantitative},
		{name: "constructivist", worldview: WorldviewConstructivist, want: PathQualitative},
		{name: "transformative", worldview: WorldviewTransformative, want: PathQualitative},
		{name: "pragmatist", worldview: WorldviewPragmatist, want: PathMixed},
		{name: "empty", worldview: "", want: PathUnresolved},
		{name: "unknown id", worldview: "nihilist", want: PathUnresolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePath(tt.worldview); got != tt.want {
				t.Errorf("ResolvePath(%q) = %q, want %q", tt.worldview, got, tt.want)
			}
		})
	}
}

func TestResolvePathIsDeterministic(t *testing.T) {
	for wv := range WorldviewLabels {
		first := ResolvePath(wv)
		for i := 0; i < 3; i++ {
			if got := ResolvePath(wv); got != first {
				t.Fatalf("ResolvePath(%q) changed between calls: %q then %q", wv, first, got)
			}
		}
	}
}

func TestIsValidMethodology(t *testing.T) {
	if !IsValidMethodology(MethodologyQuantitative) || !IsValidMethodology(MethodologyQualitative) {
		t.Error("both branches must be valid methodologies")
	}
	if IsValidMethodology("") {
		t.Error("empty methodology must be invalid")
	}
	if IsValidMethodology("mixed") {
		t.Error("mixed is a path, not a choosable methodology")
	}
}

func TestIsKnownWorldview(t *testing.T) {
	for wv := range WorldviewLabels {
		if !IsKnownWorldview(wv) {
			t.Errorf("worldview %q should be known", wv)
		}
	}
	if IsKnownWorldview("") || IsKnownWorldview("empiricist") {
		t.Error("unknown worldview ids must not validate")
	}
}
