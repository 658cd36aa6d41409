package prompt

import (
	"fmt"
	"sort"
	"strings"

	"research-tutor-be/pkg/llm"
	"research-tutor-be/pkg/rag"
	"research-tutor-be/pkg/workflow"
)

const maxStepValueChars = 300

// Input carries everything the builder folds into one model request.
type Input struct {
	View     workflow.SessionView
	Guidance string
	Query    string
	Passages []rag.Passage
	History  []llm.Message // oldest first
}

type Config struct {
	// CharBudget bounds the total characters across all messages. When the
	// assembled prompt exceeds it, the oldest history turns are evicted
	// first; the system messages and current query are never dropped.
	CharBudget    int
	HistoryWindow int
}

func DefaultConfig() Config {
	return Config{
		CharBudget:    24000,
		HistoryWindow: 20,
	}
}

// Builder assembles the tutor prompt for one chat exchange.
type Builder struct {
	input  Input
	config Config
}

func NewBuilder(input Input, config Config) *Builder {
	if config.CharBudget <= 0 {
		config.CharBudget = DefaultConfig().CharBudget
	}
	if config.HistoryWindow <= 0 {
		config.HistoryWindow = DefaultConfig().HistoryWindow
	}
	return &Builder{
		input:  input,
		config: config,
	}
}

// Build produces the ordered message list: persona, session context, the
// surviving history window, then the current question. Identical input
// yields an identical prompt.
func (b *Builder) Build() []llm.Message {
	system := b.buildSystemMessage()
	contextMsg := b.buildContextMessage()

	history := b.input.History
	if len(history) > b.config.HistoryWindow {
		history = history[len(history)-b.config.HistoryWindow:]
	}

	fixed := len(system) + len(contextMsg) + len(b.input.Query)
	remaining := b.config.CharBudget - fixed

	// Walk newest to oldest so eviction always removes the oldest turns.
	kept := 0
	for i := len(history) - 1; i >= 0; i-- {
		cost := len(history[i].Content)
		if cost > remaining {
			break
		}
		remaining -= cost
		kept++
	}
	history = history[len(history)-kept:]

	messages := make([]llm.Message, 0, len(history)+3)
	messages = append(messages,
		llm.Message{Role: "system", Content: system},
		llm.Message{Role: "system", Content: contextMsg},
	)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: b.input.Query})
	return messages
}

func (b *Builder) buildSystemMessage() string {
	var sb strings.Builder
	sb.WriteString(personaPreamble)

	step := b.input.View.ActiveStep
	if step >= workflow.MinStep && step <= workflow.MaxStep {
		fmt.Fprintf(&sb, "\nThe student is currently working on Step %d.\n", step)
	}
	if b.input.Guidance != "" {
		fmt.Fprintf(&sb, "\nStep-specific instructions:\n%s\n", b.input.Guidance)
	}
	return sb.String()
}

func (b *Builder) buildContextMessage() string {
	var sb strings.Builder
	sb.WriteString("Student context:\n")
	b.writeWorldviewProfile(&sb)
	sb.WriteString("\n\nStep inputs:\n")
	b.writeStepInputs(&sb)
	sb.WriteString("\n\nResource snippets:\n")
	b.writePassages(&sb)
	return sb.String()
}

func (b *Builder) writeWorldviewProfile(sb *strings.Builder) {
	view := b.input.View
	if view.Worldview == "" {
		sb.WriteString("The student has not yet selected a worldview.")
		return
	}

	label, ok := workflow.WorldviewLabels[view.Worldview]
	if !ok {
		label = string(view.Worldview)
	}
	fmt.Fprintf(sb, "Student's worldview: %s", label)

	path := string(view.ResolvedPath)
	if view.ResolvedPath == workflow.PathUnresolved {
		path = "not yet determined"
	}
	fmt.Fprintf(sb, "\nResearch methodology pathway: %s", path)

	if desc, ok := workflow.WorldviewDescriptions[view.Worldview]; ok && desc != "" {
		fmt.Fprintf(sb, "\nWorldview description: %s", desc)
	}
}

// writeStepInputs renders saved step data oldest step first. Steps 1-3 use
// their well-known field names; later steps render whatever was saved.
func (b *Builder) writeStepInputs(sb *strings.Builder) {
	view := b.input.View
	var lines []string

	if s1 := view.StepData[1]; s1 != nil {
		worldviewId := strings.TrimSpace(stringValue(s1["worldview_id"]))
		if worldviewId == "" {
			worldviewId = strings.TrimSpace(stringValue(s1["worldview"]))
		}
		if worldviewId != "" {
			label := worldviewId
			if l, ok := workflow.WorldviewLabels[workflow.Worldview(worldviewId)]; ok {
				label = l
			}
			lines = append(lines, fmt.Sprintf("Step 1 worldview: %s", label))
		}
	}

	if s2 := view.StepData[2]; s2 != nil {
		if topic := stringValue(s2["topic"]); topic != "" {
			lines = append(lines, fmt.Sprintf("Step 2 research topic: %s", topic))
		}
		if goals := stringValue(s2["goals"]); goals != "" {
			lines = append(lines, fmt.Sprintf("Step 2 research goals: %s", goals))
		}
	}

	if s3 := view.StepData[3]; s3 != nil {
		if topical := stringValue(s3["topicalResearch"]); topical != "" {
			lines = append(lines, fmt.Sprintf("Step 3 topical research: %s", topical))
		}
		if frameworks := stringValue(s3["theoreticalFrameworks"]); frameworks != "" {
			lines = append(lines, fmt.Sprintf("Step 3 theoretical frameworks: %s", frameworks))
		}
	}

	if view.ResolvedPath != workflow.PathUnresolved {
		lines = append(lines, fmt.Sprintf("Research path: %s", view.ResolvedPath))
	}
	if view.ChosenMethodology != "" {
		lines = append(lines, fmt.Sprintf("Chosen methodology (Step 4): %s", view.ChosenMethodology))
	}

	for step := 4; step <= workflow.MaxStep; step++ {
		data := view.StepData[step]
		if len(data) == 0 {
			continue
		}
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			val := stringValue(data[key])
			if val == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("Step %d %s: %s", step, key, truncateValue(val, maxStepValueChars)))
		}
	}

	if len(lines) == 0 {
		sb.WriteString("No step inputs saved yet.")
		return
	}
	sb.WriteString(strings.Join(lines, "\n"))
}

func (b *Builder) writePassages(sb *strings.Builder) {
	if len(b.input.Passages) == 0 {
		sb.WriteString("No matching passages.")
		return
	}
	blocks := make([]string, len(b.input.Passages))
	for i, p := range b.input.Passages {
		blocks[i] = fmt.Sprintf("[%d] Source: %s\n%s", i+1, p.SourceId, p.Content)
	}
	sb.WriteString(strings.Join(blocks, "\n\n"))
}

// truncateValue counts runes, not bytes, so a cut never leaves a broken
// multi-byte sequence in the prompt.
func truncateValue(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}

const personaPreamble = "You are a knowledgeable, supportive research-methods tutor embedded in an " +
	"introductory research methods learning platform. You help students scaffold " +
	"their research design through a 9-step process.\n\n" +

	"THE 9 STEPS:\n" +
	"1. Who am I as a researcher? — Identify your worldview/paradigm (positivist, " +
	"post-positivist, constructivist, transformative, pragmatist). Your worldview " +
	"shapes your ontology (what is real), epistemology (how we know), axiology " +
	"(role of values), and methodology (how we study).\n" +
	"2. What am I wondering about? — Define your research topic and goals " +
	"(personal, practical, intellectual).\n" +
	"3. What do I already know? — Review topical research (prior studies) and " +
	"theoretical frameworks that support your study.\n" +
	"4. How will I study it? — Choose a research design/methodology aligned with " +
	"your worldview (quantitative, qualitative, or mixed).\n" +
	"5. What is my research question? — Formulate your research question " +
	"(quantitative: hypothesis; qualitative: open-ended central issue).\n" +
	"6. What data will I collect? — Select data collection methods that fit your " +
	"design.\n" +
	"7. How will I analyze the data? — Choose appropriate analysis techniques.\n" +
	"8. How will I ensure trustworthiness? — Address validity/reliability " +
	"(quantitative) or credibility/transferability/dependability/confirmability " +
	"(qualitative, Lincoln & Guba).\n" +
	"9. How will I be ethical? — Plan for IRB, Belmont principles (respect, " +
	"beneficence, justice), informed consent, and confidentiality.\n\n" +

	"YOUR APPROACH:\n" +
	"- Be substantive: explain concepts, give examples, and connect ideas to the " +
	"student's specific worldview and topic. Do NOT just ask questions back.\n" +
	"- When explaining a worldview, discuss its ontology, epistemology, axiology, " +
	"and methodology implications with concrete examples.\n" +
	"- Lead with helpful content first, then ask 1-2 follow-up questions to " +
	"deepen understanding.\n" +
	"- Use the student's previous step inputs (topic, goals, worldview, etc.) " +
	"to give personalised guidance rather than generic advice.\n" +
	"- Reference specific methodologies, frameworks, and scholars when relevant.\n" +
	"- Use a warm, encouraging tone — the student may be new to research.\n" +
	"- Keep responses focused but thorough (2-4 paragraphs typically).\n" +
	"- At the end, append '**Quick references from our notes:**' with 2-5 " +
	"bullets sourced from the resource snippets provided.\n"
