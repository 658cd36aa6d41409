package prompt

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"research-tutor-be/pkg/llm"
	"research-tutor-be/pkg/rag"
	"research-tutor-be/pkg/workflow"
)

func sampleView() workflow.SessionView {
	return workflow.SessionView{
		Worldview:         workflow.WorldviewPragmatist,
		ResolvedPath:      workflow.PathMixed,
		ChosenMethodology: workflow.MethodologyQualitative,
		ActiveStep:        5,
		StepData: map[int]map[string]any{
			1: {"worldview_id": "pragmatist"},
			2: {"topic": "rural teacher retention", "goals": "practical"},
			5: {"centralQuestion": "Why do rural teachers stay?"},
		},
	}
}

func TestBuildMessageOrder(t *testing.T) {
	history := []llm.Message{
		{Role: "user", Content: "What is ontology?"},
		{Role: "assistant", Content: "Ontology concerns what is real."},
	}
	b := NewBuilder(Input{
		View:    sampleView(),
		Query:   "How do I phrase my central question?",
		History: history,
	}, DefaultConfig())

	messages := b.Build()
	if len(messages) != 5 {
		t.Fatalf("got %d messages, want 5", len(messages))
	}
	if messages[0].Role != "system" || messages[1].Role != "system" {
		t.Error("first two messages must be system messages")
	}
	if messages[2] != history[0] || messages[3] != history[1] {
		t.Error("history must sit between the system messages and the query")
	}
	last := messages[len(messages)-1]
	if last.Role != "user" || last.Content != "How do I phrase my central question?" {
		t.Errorf("final message must be the current query, got %+v", last)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	input := Input{
		View:  sampleView(),
		Query: "help",
		Passages: []rag.Passage{
			{SourceId: "designs.md", ChunkIndex: 0, Content: "Case studies examine bounded systems."},
		},
		History: []llm.Message{{Role: "user", Content: "hi"}},
	}
	first := NewBuilder(input, DefaultConfig()).Build()
	for i := 0; i < 5; i++ {
		again := NewBuilder(input, DefaultConfig()).Build()
		if !reflect.DeepEqual(first, again) {
			t.Fatal("identical input produced different prompts")
		}
	}
}

func TestBuildContextContent(t *testing.T) {
	b := NewBuilder(Input{
		View:  sampleView(),
		Query: "q",
		Passages: []rag.Passage{
			{SourceId: "worldviews.md", ChunkIndex: 2, Content: "Pragmatists focus on what works."},
			{SourceId: "designs.md", ChunkIndex: 0, Content: "Narrative research retells stories."},
		},
	}, DefaultConfig())

	contextMsg := b.Build()[1].Content
	for _, want := range []string{
		"Student's worldview: Pragmatist",
		"Research methodology pathway: mixed",
		"Step 2 research topic: rural teacher retention",
		"Chosen methodology (Step 4): qualitative",
		"Step 5 centralQuestion: Why do rural teachers stay?",
		"[1] Source: worldviews.md",
		"[2] Source: designs.md",
	} {
		if !strings.Contains(contextMsg, want) {
			t.Errorf("context message missing %q", want)
		}
	}
}

func TestBuildEmptySession(t *testing.T) {
	b := NewBuilder(Input{
		View:  workflow.SessionView{ResolvedPath: workflow.PathUnresolved, ActiveStep: 1},
		Query: "where do I start?",
	}, DefaultConfig())

	contextMsg := b.Build()[1].Content
	if !strings.Contains(contextMsg, "The student has not yet selected a worldview.") {
		t.Error("missing no-worldview line")
	}
	if !strings.Contains(contextMsg, "No step inputs saved yet.") {
		t.Error("missing empty step inputs line")
	}
	if !strings.Contains(contextMsg, "No matching passages.") {
		t.Error("missing empty passages line")
	}
}

func TestBuildBudgetEvictsOldestHistory(t *testing.T) {
	var history []llm.Message
	for i := 0; i < 10; i++ {
		history = append(history, llm.Message{
			Role:    "user",
			Content: fmt.Sprintf("turn-%02d ", i) + strings.Repeat("x", 500),
		})
	}

	b := NewBuilder(Input{
		View:    sampleView(),
		Query:   "q",
		History: history,
	}, Config{CharBudget: 7000, HistoryWindow: 20})

	messages := b.Build()
	var kept []string
	for _, m := range messages[2 : len(messages)-1] {
		kept = append(kept, m.Content[:7])
	}

	if len(kept) == 0 {
		t.Fatal("budget evicted all history despite room for some")
	}
	if len(kept) == len(history) {
		t.Fatal("budget kept everything, eviction never triggered")
	}
	// Survivors must be the newest contiguous suffix.
	wantFirst := fmt.Sprintf("turn-%02d", len(history)-len(kept))
	if kept[0] != wantFirst {
		t.Errorf("oldest surviving turn = %s, want %s", kept[0], wantFirst)
	}
	if kept[len(kept)-1] != fmt.Sprintf("turn-%02d", len(history)-1) {
		t.Error("newest turn must always survive eviction")
	}
}

func TestBuildSystemAndQueryNeverDropped(t *testing.T) {
	// A budget smaller than the fixed parts still yields system + query.
	b := NewBuilder(Input{
		View:    sampleView(),
		Query:   "essential question",
		History: []llm.Message{{Role: "user", Content: "old turn"}},
	}, Config{CharBudget: 10, HistoryWindow: 20})

	messages := b.Build()
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want system, context, query only", len(messages))
	}
	if messages[2].Content != "essential question" {
		t.Error("query must survive any budget")
	}
}

func TestBuildTruncatesLongStepValues(t *testing.T) {
	view := sampleView()
	view.StepData[6] = map[string]any{"methods": strings.Repeat("m", 400)}

	b := NewBuilder(Input{View: view, Query: "q"}, DefaultConfig())
	contextMsg := b.Build()[1].Content

	if strings.Contains(contextMsg, strings.Repeat("m", 400)) {
		t.Error("long step values must be truncated")
	}
	if !strings.Contains(contextMsg, strings.Repeat("m", 300)+"...") {
		t.Error("truncated value must keep the first 300 chars plus ellipsis")
	}
}

func TestBuildTruncationIsRuneSafe(t *testing.T) {
	view := sampleView()
	view.StepData[6] = map[string]any{"methods": strings.Repeat("ü", 400)}

	b := NewBuilder(Input{View: view, Query: "q"}, DefaultConfig())
	contextMsg := b.Build()[1].Content

	if !utf8.ValidString(contextMsg) {
		t.Fatal("truncation produced invalid UTF-8")
	}
	if !strings.Contains(contextMsg, strings.Repeat("ü", 300)+"...") {
		t.Error("truncation must cut on rune boundaries, keeping 300 runes")
	}
}

func TestBuildHistoryWindowCap(t *testing.T) {
	var history []llm.Message
	for i := 0; i < 30; i++ {
		history = append(history, llm.Message{Role: "user", Content: fmt.Sprintf("t%d", i)})
	}

	b := NewBuilder(Input{View: sampleView(), Query: "q", History: history},
		Config{CharBudget: 1 << 20, HistoryWindow: 20})

	messages := b.Build()
	gotHistory := len(messages) - 3
	if gotHistory != 20 {
		t.Errorf("history in prompt = %d turns, want window of 20", gotHistory)
	}
	if messages[2].Content != "t10" {
		t.Errorf("window must keep the newest 20 turns, first kept = %s", messages[2].Content)
	}
}
