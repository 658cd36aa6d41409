package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"research-tutor-be/internal/constant"
	"research-tutor-be/internal/dto"
	"research-tutor-be/internal/entity"
	"research-tutor-be/internal/pkg/logger"
	"research-tutor-be/internal/pkg/serverutils"
	"research-tutor-be/internal/repository/specification"
	"research-tutor-be/internal/repository/unitofwork"
	"research-tutor-be/pkg/events"
	pktNats "research-tutor-be/pkg/nats"
	"research-tutor-be/pkg/workflow"
)

type ISessionService interface {
	Create(ctx context.Context, ownerRef string, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	Resume(ctx context.Context, ownerRef string) (*dto.ShowSessionResponse, error)
	List(ctx context.Context, ownerRef string, limit, offset int) ([]*dto.SessionSummaryResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowSessionResponse, error)
	SetWorldview(ctx context.Context, req *dto.SetWorldviewRequest) (*dto.SetWorldviewResponse, error)
	SetMethodology(ctx context.Context, req *dto.SetMethodologyRequest) (*dto.SetMethodologyResponse, error)
	AdvanceStep(ctx context.Context, req *dto.AdvanceStepRequest) (*dto.AdvanceStepResponse, error)
	SaveStepData(ctx context.Context, sessionId uuid.UUID, step int, data map[string]any) (*dto.StepDataResponse, error)
	GetStepData(ctx context.Context, sessionId uuid.UUID, step int) (*dto.StepDataResponse, error)
	GetStepConfig(ctx context.Context, sessionId uuid.UUID, step int) (*dto.StepConfigResponse, error)
}

type sessionService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *sessionService) Create(ctx context.Context, ownerRef string, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	title := "Research design session"
	if req != nil && req.Title != "" {
		title = req.Title
	}

	session := entity.Session{
		Id:         uuid.New(),
		OwnerRef:   ownerRef,
		Title:      title,
		ActiveStep: workflow.MinStep,
		StepData:   map[int]map[string]any{},
		CreatedAt:  time.Now(),
	}

	if err := uow.SessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	// Seed welcome turn so a fresh session opens with tutor context.
	welcome := entity.ChatTurn{
		Id:        uuid.New(),
		SessionId: session.Id,
		Role:      constant.RoleAssistant,
		Content:   constant.WelcomeMessage,
		Step:      workflow.MinStep,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatTurnRepository().Create(ctx, &welcome); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeSessionCreated, session.Id, nil)

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *sessionService) Resume(ctx context.Context, ownerRef string) (*dto.ShowSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByOwnerRef{OwnerRef: ownerRef},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFound("No session to resume")
	}
	return sessionToShowResponse(session), nil
}

func (s *sessionService) List(ctx context.Context, ownerRef string, limit, offset int) ([]*dto.SessionSummaryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.ByOwnerRef{OwnerRef: ownerRef},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.SessionSummaryResponse, len(sessions))
	for i, session := range sessions {
		out[i] = &dto.SessionSummaryResponse{
			Id:           session.Id,
			Title:        session.Title,
			Worldview:    string(session.Worldview),
			ResolvedPath: string(session.ResolvedPath()),
			ActiveStep:   session.ActiveStep,
			CreatedAt:    session.CreatedAt,
			UpdatedAt:    session.UpdatedAt,
		}
	}
	return out, nil
}

func (s *sessionService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFound("Session not found")
	}
	return sessionToShowResponse(session), nil
}

// mutate applies fn to the session under a row lock so two near-concurrent
// calls merge field-by-field instead of clobbering each other.
func (s *sessionService) mutate(ctx context.Context, sessionId uuid.UUID, fn func(sess *entity.Session) error) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin session mutation: %w", err)
	}

	session, err := uow.SessionRepository().FindOneForUpdate(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		_ = uow.Rollback()
		return nil, err
	}
	if session == nil {
		_ = uow.Rollback()
		return nil, serverutils.NewNotFound("Session not found")
	}

	if err := fn(session); err != nil {
		_ = uow.Rollback()
		return nil, err
	}

	now := time.Now()
	session.UpdatedAt = &now
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		_ = uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit session mutation: %w", err)
	}
	return session, nil
}

func (s *sessionService) SetWorldview(ctx context.Context, req *dto.SetWorldviewRequest) (*dto.SetWorldviewResponse, error) {
	worldview := workflow.Worldview(req.WorldviewId)
	if !workflow.IsKnownWorldview(worldview) {
		return nil, serverutils.NewBadRequest("Unknown worldview id: " + req.WorldviewId)
	}

	session, err := s.mutate(ctx, req.SessionId, func(sess *entity.Session) error {
		if sess.ChosenMethodology != "" && sess.Worldview != worldview {
			return serverutils.NewConflict("Worldview cannot change after a methodology was chosen")
		}
		sess.Worldview = worldview
		if sess.StepData == nil {
			sess.StepData = map[int]map[string]any{}
		}
		s1 := sess.StepData[1]
		if s1 == nil {
			s1 = map[string]any{}
		}
		s1["worldview_id"] = req.WorldviewId
		sess.StepData[1] = s1
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.appendSystemTurn(ctx, session, fmt.Sprintf("Worldview selected: %s", workflow.WorldviewLabels[worldview]))
	s.publishEvent(ctx, events.TypeWorldviewSelected, session.Id, map[string]interface{}{
		"worldview":     string(worldview),
		"resolved_path": string(session.ResolvedPath()),
	})

	return &dto.SetWorldviewResponse{
		SessionId:    session.Id,
		Worldview:    string(session.Worldview),
		ResolvedPath: string(session.ResolvedPath()),
	}, nil
}

func (s *sessionService) SetMethodology(ctx context.Context, req *dto.SetMethodologyRequest) (*dto.SetMethodologyResponse, error) {
	methodology := workflow.Methodology(req.Methodology)
	if !workflow.IsValidMethodology(methodology) {
		return nil, serverutils.NewBadRequest("Methodology must be quantitative or qualitative")
	}

	session, err := s.mutate(ctx, req.SessionId, func(sess *entity.Session) error {
		if sess.ResolvedPath() != workflow.PathMixed {
			return serverutils.NewUnprocessable("Methodology choice only applies to the mixed path")
		}
		if sess.ActiveStep < workflow.MethodologyDecisionStep {
			return serverutils.NewUnprocessable("Methodology is chosen at step 4 or later")
		}
		if sess.ChosenMethodology != "" {
			return serverutils.NewConflict("Methodology is already set for this session")
		}
		sess.ChosenMethodology = methodology

		if sess.StepData == nil {
			sess.StepData = map[int]map[string]any{}
		}
		s4 := sess.StepData[workflow.MethodologyDecisionStep]
		if s4 == nil {
			s4 = map[string]any{}
		}
		s4["chosen_methodology"] = req.Methodology
		sess.StepData[workflow.MethodologyDecisionStep] = s4
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.appendSystemTurn(ctx, session, fmt.Sprintf("Primary methodology chosen: %s", methodology))
	s.publishEvent(ctx, events.TypeMethodologySet, session.Id, map[string]interface{}{
		"methodology": string(methodology),
	})

	return &dto.SetMethodologyResponse{
		SessionId:         session.Id,
		ChosenMethodology: string(session.ChosenMethodology),
	}, nil
}

func (s *sessionService) AdvanceStep(ctx context.Context, req *dto.AdvanceStepRequest) (*dto.AdvanceStepResponse, error) {
	session, err := s.mutate(ctx, req.SessionId, func(sess *entity.Session) error {
		if req.Step < workflow.MinStep || req.Step > workflow.MaxStep {
			return serverutils.NewBadRequest("Step out of range")
		}
		sess.ActiveStep = req.Step
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeStepAdvanced, session.Id, map[string]interface{}{
		"active_step": session.ActiveStep,
	})

	return &dto.AdvanceStepResponse{
		SessionId:  session.Id,
		ActiveStep: session.ActiveStep,
	}, nil
}

func (s *sessionService) SaveStepData(ctx context.Context, sessionId uuid.UUID, step int, data map[string]any) (*dto.StepDataResponse, error) {
	if step < workflow.MinStep || step > workflow.MaxStep {
		return nil, serverutils.NewBadRequest("Step out of range")
	}

	session, err := s.mutate(ctx, sessionId, func(sess *entity.Session) error {
		if sess.StepData == nil {
			sess.StepData = map[int]map[string]any{}
		}
		existing := sess.StepData[step]
		if existing == nil {
			existing = map[string]any{}
		}
		// Field-level merge: absent keys keep their previous values.
		for k, v := range data {
			existing[k] = v
		}
		sess.StepData[step] = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeStepDataSaved, session.Id, map[string]interface{}{
		"step": step,
	})

	return &dto.StepDataResponse{
		SessionId: session.Id,
		Step:      step,
		Data:      session.StepData[step],
	}, nil
}

func (s *sessionService) GetStepData(ctx context.Context, sessionId uuid.UUID, step int) (*dto.StepDataResponse, error) {
	if step < workflow.MinStep || step > workflow.MaxStep {
		return nil, serverutils.NewBadRequest("Step out of range")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFound("Session not found")
	}

	data := session.StepData[step]
	if data == nil {
		data = map[string]any{}
	}
	return &dto.StepDataResponse{
		SessionId: session.Id,
		Step:      step,
		Data:      data,
	}, nil
}

func (s *sessionService) GetStepConfig(ctx context.Context, sessionId uuid.UUID, step int) (*dto.StepConfigResponse, error) {
	if step < workflow.MinStep || step > workflow.MaxStep {
		return nil, serverutils.NewBadRequest("Step out of range")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NewNotFound("Session not found")
	}

	result := workflow.ResolveConfig(session.View(), step)
	resp := &dto.StepConfigResponse{
		Step:   step,
		Locked: result.Locked,
	}
	if result.Locked {
		resp.Directions = result.Directions
		return resp, nil
	}

	resp.Config = &dto.StepConfigDTO{
		Step:       result.Config.Step,
		Path:       string(result.Config.Path),
		Title:      result.Config.Title,
		Directions: result.Config.Directions,
		Schema:     dto.SchemaToMap(result.Config.Schema),
	}
	return resp, nil
}

// appendSystemTurn records a workflow event in the chat log without a
// generation cycle. Failures are logged, not surfaced: the mutation that
// triggered the turn already committed.
func (s *sessionService) appendSystemTurn(ctx context.Context, session *entity.Session, content string) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	turn := entity.ChatTurn{
		Id:        uuid.New(),
		SessionId: session.Id,
		Role:      constant.RoleSystem,
		Content:   content,
		Step:      session.ActiveStep,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatTurnRepository().Create(ctx, &turn); err != nil {
		s.logger.Warn("session", "Failed to append system turn", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}
}

func (s *sessionService) publishEvent(ctx context.Context, eventType string, sessionId uuid.UUID, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewSessionEvent(eventType, sessionId.String(), data)
	// Notifications are auxiliary, a publish failure never fails the request.
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("session", "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func sessionToShowResponse(session *entity.Session) *dto.ShowSessionResponse {
	stepData := session.StepData
	if stepData == nil {
		stepData = map[int]map[string]any{}
	}
	return &dto.ShowSessionResponse{
		Id:                session.Id,
		Title:             session.Title,
		Worldview:         string(session.Worldview),
		ResolvedPath:      string(session.ResolvedPath()),
		ChosenMethodology: string(session.ChosenMethodology),
		ActiveStep:        session.ActiveStep,
		StepData:          stepData,
		CompletedSteps:    workflow.CompletedSteps(session.View()),
		CreatedAt:         session.CreatedAt,
		UpdatedAt:         session.UpdatedAt,
	}
}
