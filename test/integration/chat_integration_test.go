package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-tutor-be/internal/config"
	"research-tutor-be/internal/dto"
	"research-tutor-be/internal/pkg/logger"
	"research-tutor-be/internal/repository/memory"
	"research-tutor-be/internal/repository/specification"
	"research-tutor-be/internal/repository/unitofwork"
	"research-tutor-be/internal/service"
	"research-tutor-be/pkg/llm"
	"research-tutor-be/pkg/rag"
	"research-tutor-be/pkg/rag/generate"
)

// scriptedLLM plays back fixed fragments so exchanges run without a model
// backend.
type scriptedLLM struct {
	fragments []string
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	var out string
	for _, f := range s.fragments {
		out += f
	}
	return out, nil
}

func (s *scriptedLLM) ChatStream(ctx context.Context, history []llm.Message, onFragment llm.FragmentFunc, options ...llm.Option) (int, error) {
	for i, f := range s.fragments {
		if err := onFragment(f); err != nil {
			return i, err
		}
	}
	return len(s.fragments), nil
}

type fixedEmbedding struct{}

func (fixedEmbedding) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (fixedEmbedding) Dimension() int { return 3 }

func newChatFixture(factory unitofwork.RepositoryFactory, provider llm.Provider) (service.IChatService, *memory.RuntimeRepository) {
	sysLogger := logger.NewIsolatedLogger("integration_test.log")
	runtimeRepo := memory.NewRuntimeRepository()
	chatSvc := service.NewChatService(
		factory,
		provider,
		rag.NewRetriever(fixedEmbedding{}, sysLogger),
		generate.NewManager(generate.Config{FragmentBuffer: 8, IdleTimeout: 5 * time.Second}),
		runtimeRepo,
		nil,
		sysLogger,
		config.AIConfig{LLMTemperature: 0.4},
		config.RAGConfig{TopK: 4, MaxPassageChars: 800, PromptCharBudget: 24000, HistoryWindow: 20},
	)
	return chatSvc, runtimeRepo
}

func countTurns(t *testing.T, factory unitofwork.RepositoryFactory, sessionId uuid.UUID) int {
	t.Helper()
	uow := factory.NewUnitOfWork(context.Background())
	turns, err := uow.ChatTurnRepository().FindAll(context.Background(),
		specification.BySessionID{SessionID: sessionId},
	)
	require.NoError(t, err)
	return len(turns)
}

func cleanupSession(t *testing.T, factory unitofwork.RepositoryFactory, sessionId uuid.UUID) {
	t.Helper()
	uow := factory.NewUnitOfWork(context.Background())
	_ = uow.ChatTurnRepository().DeleteBySessionIdUnscoped(context.Background(), sessionId)
	_ = uow.SessionRepository().Delete(context.Background(), sessionId)
}

func TestChatBusyRejectionPersistsNothing(t *testing.T) {
	factory := connect(t)
	ctx := context.Background()
	sysLogger := logger.NewIsolatedLogger("integration_test.log")

	sessionSvc := service.NewSessionService(factory, nil, sysLogger)
	created, err := sessionSvc.Create(ctx, "busy-test-owner", &dto.CreateSessionRequest{})
	require.NoError(t, err)
	defer cleanupSession(t, factory, created.Id)

	chatSvc, runtimeRepo := newChatFixture(factory, &scriptedLLM{fragments: []string{"never sent"}})

	before := countTurns(t, factory, created.Id)

	runtimeRepo.Save(&memory.GenerationState{
		SessionId: created.Id.String(),
		Status:    memory.StatusGenerating,
		StartedAt: time.Now(),
	})

	_, err = chatSvc.Send(ctx, &dto.SendChatRequest{SessionId: created.Id, Message: "am I too early?"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, generate.ErrBusy), "busy session must reject with the busy error")

	// The rejected question must not be recorded, so a retry cannot
	// duplicate it.
	assert.Equal(t, before, countTurns(t, factory, created.Id))

	// Once the state clears, the same request goes through.
	runtimeRepo.Delete(created.Id.String())
	resp, err := chatSvc.Send(ctx, &dto.SendChatRequest{SessionId: created.Id, Message: "am I too early?"})
	require.NoError(t, err)
	assert.Equal(t, "never sent", resp.Reply.Content)
}

func TestChatSendStepOverride(t *testing.T) {
	factory := connect(t)
	ctx := context.Background()
	sysLogger := logger.NewIsolatedLogger("integration_test.log")

	sessionSvc := service.NewSessionService(factory, nil, sysLogger)
	created, err := sessionSvc.Create(ctx, "step-override-owner", &dto.CreateSessionRequest{})
	require.NoError(t, err)
	defer cleanupSession(t, factory, created.Id)

	chatSvc, _ := newChatFixture(factory, &scriptedLLM{fragments: []string{"Revisit your ", "topic first."}})

	// Session sits at step 1; the caller pins this exchange to step 2.
	resp, err := chatSvc.Send(ctx, &dto.SendChatRequest{
		SessionId:  created.Id,
		Message:    "help me narrow my topic",
		ActiveStep: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Sent.Step, "learner turn carries the pinned step")
	assert.Equal(t, 2, resp.Reply.Step, "reply is tagged with the same step")
	assert.Equal(t, "Revisit your topic first.", resp.Reply.Content)
	assert.False(t, resp.Empty)
	// No active index build exists for a fresh corpus, so the answer is
	// ungrounded but still succeeds.
	assert.Empty(t, resp.Citations)

	// Without the override the session's own step tags the turn.
	resp, err = chatSvc.Send(ctx, &dto.SendChatRequest{
		SessionId: created.Id,
		Message:   "and without pinning?",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Sent.Step)
	assert.Equal(t, 1, resp.Reply.Step)
}
