package workflow

// Worldview is the learner's self-reported research paradigm (Step 1).
type Worldview string

const (
	WorldviewPositivist     Worldview = "positivist"
	WorldviewPostPositivist Worldview = "post_positivist"
	WorldviewConstructivist Worldview = "constructivist"
	WorldviewTransformative Worldview = "transformative"
	WorldviewPragmatist     Worldview = "pragmatist"
)

// WorldviewLabels maps worldview ids to their human-readable labels.
var WorldviewLabels = map[Worldview]string{
	WorldviewPositivist:     "Positivist",
	WorldviewPostPositivist: "Post-Positivist",
	WorldviewConstructivist: "Constructivist",
	WorldviewTransformative: "Transformative",
	WorldviewPragmatist:     "Pragmatist",
}

// WorldviewDescriptions holds the rich paradigm summaries injected into the
// tutor persona so the model can ground explanations in the learner's stance.
var WorldviewDescriptions = map[Worldview]string{
	WorldviewPositivist: "Positivist: Believes in an objective, knowable reality. Knowledge is gained " +
		"through observation, measurement, and empirical testing. Research should be value-free and " +
		"generalizable. Favours quantitative methods such as experiments, surveys, and statistical " +
		"analysis. The researcher remains detached and neutral.",
	WorldviewPostPositivist: "Post-Positivist: Acknowledges that reality exists but can only be imperfectly " +
		"known. All observation is fallible and theory-laden. Emphasises falsification, triangulation, " +
		"and critical multiplism. Uses primarily quantitative methods while recognising the limits of " +
		"absolute objectivity. The researcher strives for objectivity while acknowledging bias.",
	WorldviewConstructivist: "Constructivist (Interpretivist): Believes reality is socially constructed and that " +
		"multiple, equally valid realities exist. Knowledge is co-created between researcher and " +
		"participants. Values deep understanding of lived experiences, meaning-making, and context. " +
		"Favours qualitative methods such as interviews, observations, and narrative analysis. The " +
		"researcher is an active participant in the research process.",
	WorldviewTransformative: "Transformative: Centres issues of power, justice, and equity. Reality is shaped " +
		"by social, political, cultural, and economic forces. Research should serve marginalised " +
		"communities and promote social change. Uses qualitative and participatory methods. The " +
		"researcher is an advocate who collaborates with communities.",
	WorldviewPragmatist: "Pragmatist: Focuses on what works rather than committing to a single ontology. " +
		"The research question drives the choice of methods, whether quantitative, qualitative, or " +
		"both. Values practical consequences, real-world applicability, and problem-solving. Embraces " +
		"mixed methods and methodological flexibility.",
}

// IsKnownWorldview reports whether id is one of the five fixed worldviews.
func IsKnownWorldview(id Worldview) bool {
	_, ok := WorldviewLabels[id]
	return ok
}
