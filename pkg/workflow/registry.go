package workflow

// The static step catalog. Loaded once at process start (package init) and
// never mutated afterwards; everything the resolver serves derives from it.

type stepDef struct {
	title      string
	directions string
	schema     Schema
	guidance   string
}

const mixedDecisionGuidance = "The student follows a pragmatist worldview and has not yet committed to a " +
	"primary methodology. Explain the trade-offs between quantitative and qualitative designs for their " +
	"topic and help them reach a confident Step 4 decision."

const mixedAddendum = "Remember the student is on a mixed-methods pathway: point out where a secondary " +
	"strand from the other tradition could strengthen the design."

// fixedSteps are path-independent (Steps 1-3).
var fixedSteps = map[int]stepDef{
	1: {
		title:      "Who am I as a researcher?",
		directions: "Identify your worldview. Your paradigm shapes your ontology, epistemology, axiology, and methodology.",
		schema: SingleSelect{
			Key: "worldview_id",
			Options: []Option{
				{Value: "positivist", Label: "Positivist"},
				{Value: "post_positivist", Label: "Post-Positivist"},
				{Value: "constructivist", Label: "Constructivist"},
				{Value: "transformative", Label: "Transformative"},
				{Value: "pragmatist", Label: "Pragmatist"},
			},
		},
		guidance: "Help the student articulate their worldview. Discuss ontology, epistemology, axiology, and methodology implications with concrete examples.",
	},
	2: {
		title:      "What am I wondering about?",
		directions: "Define your research topic and your personal, practical, and intellectual goals.",
		schema: Fields{Items: []Field{
			{Key: "topic", Label: "Research topic", Kind: "textarea"},
			{Key: "goals", Label: "Research goals", Kind: "textarea"},
		}},
		guidance: "Help the student sharpen a researchable topic and separate personal, practical, and intellectual goals.",
	},
	3: {
		title:      "What do I already know?",
		directions: "Review topical research (prior studies) and the theoretical frameworks that support your study.",
		schema: Fields{Items: []Field{
			{Key: "topicalResearch", Label: "Topical research", Kind: "textarea"},
			{Key: "theoreticalFrameworks", Label: "Theoretical frameworks", Kind: "textarea"},
		}},
		guidance: "Guide the student through reviewing prior studies and selecting theoretical frameworks that fit their topic.",
	},
}

// pathSteps hold the branch-specific schemas for Steps 4-9. The mixed path
// resolves through these via the methodology decision, so only the two
// concrete branches are defined.
var pathSteps = map[Path]map[int]stepDef{
	PathQuantitative: {
		4: {
			title:      "How will I study it?",
			directions: "Choose a quantitative research design aligned with your worldview.",
			schema: SingleSelect{
				Key: "design",
				Options: []Option{
					{Value: "experimental", Label: "Experimental"},
					{Value: "quasi_experimental", Label: "Quasi-Experimental"},
					{Value: "survey", Label: "Survey"},
					{Value: "correlational", Label: "Correlational"},
				},
			},
			guidance: "Explain experimental, quasi-experimental, survey, and correlational designs and help the student match one to their question.",
		},
		5: {
			title:      "What is my research question?",
			directions: "Formulate a testable hypothesis with clearly identified variables.",
			schema: Fields{Items: []Field{
				{Key: "hypothesis", Label: "Hypothesis", Kind: "textarea"},
				{Key: "variables", Label: "Variables (independent / dependent)", Kind: "textarea"},
			}},
			guidance: "Help the student state a falsifiable hypothesis and identify independent, dependent, and control variables.",
		},
		6: {
			title:      "What data will I collect?",
			directions: "Select structured collection methods that fit your design.",
			schema: MultiSelect{
				Key: "methods",
				Options: []Option{
					{Value: "surveys", Label: "Surveys / questionnaires"},
					{Value: "tests", Label: "Tests and instruments"},
					{Value: "structured_observation", Label: "Structured observation"},
					{Value: "existing_datasets", Label: "Existing datasets"},
				},
			},
			guidance: "Discuss instrumentation, sampling, and measurement levels for the selected collection methods.",
		},
		7: {
			title:      "How will I analyze the data?",
			directions: "Choose statistical techniques appropriate to your design and data.",
			schema: MultiSelect{
				Key: "techniques",
				Options: []Option{
					{Value: "descriptive", Label: "Descriptive statistics"},
					{Value: "inferential", Label: "Inferential statistics"},
					{Value: "regression", Label: "Regression / modeling"},
				},
			},
			guidance: "Connect each chosen technique to the hypothesis and the measurement level of the variables.",
		},
		8: {
			title:      "How will I ensure trustworthiness?",
			directions: "Address validity and reliability.",
			schema: Fields{Items: []Field{
				{Key: "validity", Label: "Validity strategy", Kind: "textarea"},
				{Key: "reliability", Label: "Reliability strategy", Kind: "textarea"},
			}},
			guidance: "Cover internal, external, and construct validity plus reliability of instruments.",
		},
		9: {
			title:      "How will I be ethical?",
			directions: "Plan for IRB review, informed consent, and confidentiality.",
			schema: Fields{Items: []Field{
				{Key: "irb", Label: "IRB / review plan", Kind: "textarea"},
				{Key: "consent", Label: "Informed consent", Kind: "textarea"},
				{Key: "confidentiality", Label: "Confidentiality", Kind: "textarea"},
			}},
			guidance: "Walk through the Belmont principles of respect, beneficence, and justice as they apply to the study.",
		},
	},
	PathQualitative: {
		4: {
			title:      "How will I study it?",
			directions: "Choose a qualitative research design aligned with your worldview.",
			schema: SingleSelect{
				Key: "design",
				Options: []Option{
					{Value: "narrative", Label: "Narrative"},
					{Value: "phenomenology", Label: "Phenomenology"},
					{Value: "grounded_theory", Label: "Grounded Theory"},
					{Value: "ethnography", Label: "Ethnography"},
					{Value: "case_study", Label: "Case Study"},
				},
			},
			guidance: "Explain narrative, phenomenological, grounded theory, ethnographic, and case study designs and match one to the student's question.",
		},
		5: {
			title:      "What is my research question?",
			directions: "Formulate an open-ended central question with supporting sub-questions.",
			schema: Fields{Items: []Field{
				{Key: "centralQuestion", Label: "Central question", Kind: "textarea"},
				{Key: "subQuestions", Label: "Sub-questions", Kind: "textarea"},
			}},
			guidance: "Help the student phrase one broad central question plus a handful of open sub-questions, avoiding yes/no framing.",
		},
		6: {
			title:      "What data will I collect?",
			directions: "Select qualitative collection methods that fit your design.",
			schema: MultiSelect{
				Key: "methods",
				Options: []Option{
					{Value: "interviews", Label: "Interviews"},
					{Value: "focus_groups", Label: "Focus groups"},
					{Value: "observation", Label: "Participant observation"},
					{Value: "documents", Label: "Documents and artifacts"},
					{Value: "audiovisual", Label: "Audiovisual materials"},
				},
			},
			guidance: "Discuss purposeful sampling, saturation, and field access for the chosen methods.",
		},
		7: {
			title:      "How will I analyze the data?",
			directions: "Choose analysis approaches appropriate to your design.",
			schema: MultiSelect{
				Key: "techniques",
				Options: []Option{
					{Value: "thematic", Label: "Coding / thematic analysis"},
					{Value: "narrative_analysis", Label: "Narrative analysis"},
					{Value: "constant_comparison", Label: "Constant comparison"},
				},
			},
			guidance: "Explain coding cycles, memoing, and how themes are built from the data.",
		},
		8: {
			title:      "How will I ensure trustworthiness?",
			directions: "Address credibility, transferability, dependability, and confirmability (Lincoln & Guba).",
			schema: Fields{Items: []Field{
				{Key: "credibility", Label: "Credibility", Kind: "textarea"},
				{Key: "transferability", Label: "Transferability", Kind: "textarea"},
				{Key: "dependability", Label: "Dependability", Kind: "textarea"},
				{Key: "confirmability", Label: "Confirmability", Kind: "textarea"},
			}},
			guidance: "Cover member checking, triangulation, thick description, and audit trails.",
		},
		9: {
			title:      "How will I be ethical?",
			directions: "Plan for IRB review, informed consent, and confidentiality in close-contact research.",
			schema: Fields{Items: []Field{
				{Key: "irb", Label: "IRB / review plan", Kind: "textarea"},
				{Key: "consent", Label: "Informed consent", Kind: "textarea"},
				{Key: "confidentiality", Label: "Confidentiality", Kind: "textarea"},
			}},
			guidance: "Discuss relational ethics, anonymity in small samples, and ongoing consent during fieldwork.",
		},
	},
}
