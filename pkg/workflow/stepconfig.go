package workflow

// MinStep and MaxStep bound the 9-step research-design workflow.
const (
	MinStep = 1
	MaxStep = 9
)

// MethodologyDecisionStep is where mixed-path learners commit to a branch.
const MethodologyDecisionStep = 4

// Option is a single choosable value in a select schema.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is one free-form input in a Fields schema.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  string `json:"kind"` // "text" | "textarea"
}

// Schema is the sealed union of form schemas a step can serve. Adding a
// variant means adding a type here plus a case in every switch over Schema,
// which the compiler enforces via the unexported marker method.
type Schema interface {
	FieldType() string
	schema()
}

// SingleSelect asks for exactly one option.
type SingleSelect struct {
	Key     string
	Options []Option
}

// MultiSelect asks for any subset of options.
type MultiSelect struct {
	Key     string
	Options []Option
}

// Fields asks for a set of free-form inputs.
type Fields struct {
	Items []Field
}

// MethodologyDecision is the mixed-path Step 4 branch point: both option
// sets are exposed and the learner confirms one branch.
type MethodologyDecision struct {
	Quantitative []Option
	Qualitative  []Option
}

func (SingleSelect) FieldType() string        { return "single_select" }
func (MultiSelect) FieldType() string         { return "multi_select" }
func (Fields) FieldType() string              { return "fields" }
func (MethodologyDecision) FieldType() string { return "methodology_decision" }

func (SingleSelect) schema()        {}
func (MultiSelect) schema()         {}
func (Fields) schema()              {}
func (MethodologyDecision) schema() {}

// SessionView is the read-only slice of session state the resolver needs.
type SessionView struct {
	Worldview         Worldview
	ResolvedPath      Path
	ChosenMethodology Methodology // empty when unset
	ActiveStep        int
	StepData          map[int]map[string]any
}

// StepConfig is a servable step schema.
type StepConfig struct {
	Step       int
	Path       Path
	Title      string
	Directions string
	Schema     Schema
	Guidance   string // step-scoped tutor instructions fed to the model
}

// Result is either a config or a Locked directive. Locked is a valid
// terminal state for the caller to render, not an error.
type Result struct {
	Locked     bool
	Directions string // set when Locked
	Config     *StepConfig
}

// ResolveConfig returns the path-and-step-scoped form schema for the given
// session state. It is pure and read-only: identical input yields identical
// output.
func ResolveConfig(view SessionView, step int) Result {
	if step <= 3 {
		def := fixedSteps[step]
		return Result{Config: &StepConfig{
			Step:       step,
			Path:       view.ResolvedPath,
			Title:      def.title,
			Directions: def.directions,
			Schema:     def.schema,
			Guidance:   def.guidance,
		}}
	}

	if view.ResolvedPath == PathUnresolved || view.ResolvedPath == "" {
		return Result{
			Locked:     true,
			Directions: "Please complete Step 1 first and select your worldview.",
		}
	}

	if view.ResolvedPath == PathMixed {
		return resolveMixed(view, step)
	}

	def := pathSteps[view.ResolvedPath][step]
	return Result{Config: &StepConfig{
		Step:       step,
		Path:       view.ResolvedPath,
		Title:      def.title,
		Directions: def.directions,
		Schema:     def.schema,
		Guidance:   def.guidance,
	}}
}

// resolveMixed handles the Step 4 branch point and the 5-9 inheritance from
// the chosen branch.
func resolveMixed(view SessionView, step int) Result {
	if step == MethodologyDecisionStep {
		if view.ChosenMethodology == "" {
			return Result{Config: &StepConfig{
				Step:       step,
				Path:       PathMixed,
				Title:      "How will I study it?",
				Directions: "As a pragmatist you may draw on either tradition. Review both sets of designs and confirm the primary methodology for your study.",
				Schema: MethodologyDecision{
					Quantitative: designOptions(PathQuantitative),
					Qualitative:  designOptions(PathQualitative),
				},
				Guidance: mixedDecisionGuidance,
			}}
		}
		// After the decision, Step 4 narrows to the chosen branch only.
		def := pathSteps[Path(view.ChosenMethodology)][step]
		return Result{Config: &StepConfig{
			Step:       step,
			Path:       PathMixed,
			Title:      def.title,
			Directions: def.directions,
			Schema:     def.schema,
			Guidance:   def.guidance + "\n" + mixedAddendum,
		}}
	}

	// Steps 5-9 inherit the chosen branch's schema.
	if view.ChosenMethodology == "" {
		return Result{
			Locked:     true,
			Directions: "Please complete Step 4 first and choose your primary methodology.",
		}
	}
	def := pathSteps[Path(view.ChosenMethodology)][step]
	return Result{Config: &StepConfig{
		Step:       step,
		Path:       PathMixed,
		Title:      def.title,
		Directions: def.directions,
		Schema:     def.schema,
		Guidance:   def.guidance + "\n" + mixedAddendum,
	}}
}

func designOptions(p Path) []Option {
	def := pathSteps[p][MethodologyDecisionStep]
	ss := def.schema.(SingleSelect)
	return ss.Options
}
