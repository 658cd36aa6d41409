package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"research-tutor-be/internal/config"
	"research-tutor-be/internal/constant"
	"research-tutor-be/internal/dto"
	"research-tutor-be/internal/entity"
	"research-tutor-be/internal/pkg/logger"
	"research-tutor-be/internal/pkg/serverutils"
	"research-tutor-be/internal/repository/memory"
	"research-tutor-be/internal/repository/specification"
	"research-tutor-be/internal/repository/unitofwork"
	"research-tutor-be/pkg/events"
	"research-tutor-be/pkg/llm"
	pktNats "research-tutor-be/pkg/nats"
	"research-tutor-be/pkg/rag"
	"research-tutor-be/pkg/rag/generate"
	"research-tutor-be/pkg/rag/prompt"
	"research-tutor-be/pkg/workflow"
)

type IChatService interface {
	Send(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	SendStream(ctx context.Context, req *dto.SendChatRequest) (*ChatStream, error)
	History(ctx context.Context, sessionId uuid.UUID, step int) (*dto.ChatHistoryResponse, error)
}

// ChatStream hands an in-flight generation to the transport layer. Citations
// are known up front since retrieval finishes before the model starts.
type ChatStream struct {
	SessionId  uuid.UUID
	Sent       *dto.ChatTurnDTO
	Citations  []dto.CitationDTO
	Generation *generate.Generation
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.Provider
	retriever      *rag.Retriever
	genManager     *generate.Manager
	runtimeRepo    *memory.RuntimeRepository
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
	aiCfg          config.AIConfig
	ragCfg         config.RAGConfig
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.Provider,
	retriever *rag.Retriever,
	genManager *generate.Manager,
	runtimeRepo *memory.RuntimeRepository,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	aiCfg config.AIConfig,
	ragCfg config.RAGConfig,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		retriever:      retriever,
		genManager:     genManager,
		runtimeRepo:    runtimeRepo,
		eventPublisher: eventPublisher,
		logger:         log,
		aiCfg:          aiCfg,
		ragCfg:         ragCfg,
	}
}

// Send runs a full exchange synchronously: persist the learner turn, retrieve
// passages, generate, persist the reply. The reply only reaches the database
// when the generation finalized; an aborted run leaves just the learner turn.
func (s *chatService) Send(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	prepared, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	gen, err := s.genManager.Start(ctx, req.SessionId.String(), s.produceFunc(prepared.messages))
	if err != nil {
		return nil, err
	}
	s.markGenerating(req.SessionId)

	// Drain so the producer never blocks on a full buffer.
	for range gen.Fragments() {
	}
	result := gen.Wait()
	s.runtimeRepo.Delete(req.SessionId.String())

	if result.Outcome != generate.OutcomeFinalized {
		return nil, s.abortError(req.SessionId, result)
	}

	reply, err := s.finalizeReply(ctx, prepared, result)
	if err != nil {
		return nil, err
	}

	return &dto.SendChatResponse{
		SessionId: req.SessionId,
		Sent:      prepared.sent,
		Reply:     reply,
		Citations: prepared.citations,
		Empty:     result.FragmentCount == 0,
	}, nil
}

// SendStream starts a generation and returns it still running. Finalization
// happens in the background once the producer settles, so a client that
// disconnects mid-stream does not decide whether the reply is kept.
func (s *chatService) SendStream(ctx context.Context, req *dto.SendChatRequest) (*ChatStream, error) {
	prepared, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	// Detach from the request context: the generation outlives the HTTP
	// response writer when the client drops.
	gen, err := s.genManager.Start(context.Background(), req.SessionId.String(), s.produceFunc(prepared.messages))
	if err != nil {
		return nil, err
	}
	s.markGenerating(req.SessionId)

	go func() {
		result := gen.Wait()
		s.runtimeRepo.Delete(req.SessionId.String())

		if result.Outcome != generate.OutcomeFinalized {
			s.logger.Warn("chat", "Streamed generation aborted, partial reply discarded", map[string]interface{}{
				"session_id": req.SessionId.String(),
				"fragments":  result.FragmentCount,
			})
			return
		}
		if _, err := s.finalizeReply(context.Background(), prepared, result); err != nil {
			s.logger.Error("chat", "Failed to persist streamed reply", map[string]interface{}{
				"session_id": req.SessionId.String(),
				"error":      err.Error(),
			})
		}
	}()

	return &ChatStream{
		SessionId:  req.SessionId,
		Sent:       prepared.sent,
		Citations:  prepared.citations,
		Generation: gen,
	}, nil
}

// History returns a session's turns in order. A step > 0 narrows the
// result to the turns tagged with that step.
func (s *chatService) History(ctx context.Context, sessionId uuid.UUID, step int) (*dto.ChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFound("Session not found")
	}

	specs := []specification.Specification{
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	}
	if step > 0 {
		specs = append(specs, specification.ByStep{Step: step})
	}

	turns, err := uow.ChatTurnRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ChatTurnDTO, len(turns))
	for i, turn := range turns {
		out[i] = turnToDTO(turn)
	}
	return &dto.ChatHistoryResponse{
		SessionId: sessionId,
		Turns:     out,
	}, nil
}

// preparedExchange is everything assembled before the model runs.
type preparedExchange struct {
	session   *entity.Session
	step      int
	sent      *dto.ChatTurnDTO
	citations []dto.CitationDTO
	messages  []llm.Message
}

func (s *chatService) prepare(ctx context.Context, req *dto.SendChatRequest) (*preparedExchange, error) {
	// Reject before the learner turn is persisted, so a caller retrying a
	// busy rejection does not record the question twice. The generation
	// manager's semaphore stays the authoritative gate.
	if state, ok := s.runtimeRepo.Get(req.SessionId.String()); ok && state.Status == memory.StatusGenerating {
		return nil, generate.ErrBusy
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: req.SessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFound("Session not found")
	}

	// The caller may pin the exchange to a step they are revisiting;
	// otherwise the session's active step tags the turn.
	step := session.ActiveStep
	if req.ActiveStep >= workflow.MinStep && req.ActiveStep <= workflow.MaxStep {
		step = req.ActiveStep
	}

	userTurn := entity.ChatTurn{
		Id:        uuid.New(),
		SessionId: session.Id,
		Role:      constant.RoleUser,
		Content:   req.Message,
		Step:      step,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatTurnRepository().Create(ctx, &userTurn); err != nil {
		return nil, err
	}

	// Retrieval is best effort. A dead embedding backend or empty corpus
	// degrades the answer, it never blocks the exchange.
	passages, err := s.retriever.Execute(ctx, uow, req.Message, rag.RetrievalConfig{
		TopK:            s.ragCfg.TopK,
		DBThreshold:     0.0,
		CutoffScore:     s.ragCfg.CutoffScore,
		MaxPassageChars: s.ragCfg.MaxPassageChars,
	})
	if err != nil {
		s.logger.Warn("chat", "Retrieval failed, answering without passages", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
		passages = nil
	}

	citations := make([]dto.CitationDTO, len(passages))
	for i, p := range passages {
		citations[i] = dto.CitationDTO{
			SourceId:   p.SourceId,
			ChunkIndex: p.ChunkIndex,
			Score:      p.Score,
		}
	}

	recent, err := uow.ChatTurnRepository().FindRecent(ctx, session.Id, s.ragCfg.HistoryWindow+1)
	if err != nil {
		return nil, err
	}
	history := make([]llm.Message, 0, len(recent))
	for _, turn := range recent {
		if turn.Id == userTurn.Id {
			continue // the current question enters the prompt separately
		}
		if turn.Role != constant.RoleUser && turn.Role != constant.RoleAssistant {
			continue // workflow notices stay out of the model transcript
		}
		history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	var guidance string
	if resolved := workflow.ResolveConfig(session.View(), step); !resolved.Locked {
		guidance = resolved.Config.Guidance
	}

	builder := prompt.NewBuilder(prompt.Input{
		View:     session.View(),
		Guidance: guidance,
		Query:    req.Message,
		Passages: passages,
		History:  history,
	}, prompt.Config{
		CharBudget:    s.ragCfg.PromptCharBudget,
		HistoryWindow: s.ragCfg.HistoryWindow,
	})

	sent := turnToDTO(&userTurn)
	return &preparedExchange{
		session:   session,
		step:      step,
		sent:      &sent,
		citations: citations,
		messages:  builder.Build(),
	}, nil
}

func (s *chatService) produceFunc(messages []llm.Message) generate.ProduceFunc {
	opts := []llm.Option{llm.WithTemperature(s.aiCfg.LLMTemperature)}
	if s.aiCfg.LLMMaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(s.aiCfg.LLMMaxTokens))
	}
	return func(ctx context.Context, emit func(fragment string) error) (int, error) {
		return s.llmProvider.ChatStream(ctx, messages, llm.FragmentFunc(emit), opts...)
	}
}

func (s *chatService) finalizeReply(ctx context.Context, prepared *preparedExchange, result generate.Result) (*dto.ChatTurnDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session := prepared.session

	replyTurn := entity.ChatTurn{
		Id:        uuid.New(),
		SessionId: session.Id,
		Role:      constant.RoleAssistant,
		Content:   result.Text,
		Step:      prepared.step,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatTurnRepository().Create(ctx, &replyTurn); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.NewSessionEvent(events.TypeTurnFinalized, session.Id.String(), map[string]interface{}{
			"turn_id":   replyTurn.Id.String(),
			"step":      replyTurn.Step,
			"fragments": result.FragmentCount,
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("chat", "Failed to publish turn event", map[string]interface{}{
				"session_id": session.Id.String(),
				"error":      err.Error(),
			})
		}
	}

	dtoTurn := turnToDTO(&replyTurn)
	return &dtoTurn, nil
}

func (s *chatService) markGenerating(sessionId uuid.UUID) {
	s.runtimeRepo.Save(&memory.GenerationState{
		SessionId: sessionId.String(),
		Status:    memory.StatusGenerating,
		StartedAt: time.Now(),
	})
}

func (s *chatService) abortError(sessionId uuid.UUID, result generate.Result) error {
	s.logger.Warn("chat", "Generation aborted, partial reply discarded", map[string]interface{}{
		"session_id": sessionId.String(),
		"fragments":  result.FragmentCount,
	})
	if errors.Is(result.Err, generate.ErrStalled) {
		return serverutils.NewBackendUnavailable("The tutor stopped responding, please retry", result.Err)
	}
	return serverutils.NewBackendUnavailable("The tutor backend is unavailable, please retry", result.Err)
}

func turnToDTO(turn *entity.ChatTurn) dto.ChatTurnDTO {
	return dto.ChatTurnDTO{
		Id:        turn.Id,
		Role:      turn.Role,
		Content:   turn.Content,
		Step:      turn.Step,
		CreatedAt: turn.CreatedAt,
	}
}
