package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"research-tutor-be/internal/dto"
	"research-tutor-be/internal/pkg/logger"
	"research-tutor-be/internal/repository/specification"
	"research-tutor-be/internal/repository/unitofwork"
	"research-tutor-be/internal/service"
	"research-tutor-be/pkg/database"
	"research-tutor-be/pkg/workflow"
)

func connect(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	return unitofwork.NewRepositoryFactory(gormDB)
}

func TestGormConnection(t *testing.T) {
	factory := connect(t)
	uow := factory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.SessionRepository())
	assert.NotNil(t, uow.ChatTurnRepository())
	assert.NotNil(t, uow.CorpusChunkRepository())
	assert.NotNil(t, uow.IndexBuildRepository())

	t.Run("Check Session Repository", func(t *testing.T) {
		count, err := uow.SessionRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Session count: %d", count)
	})

	t.Run("Check Corpus Chunk Repository", func(t *testing.T) {
		count, err := uow.CorpusChunkRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Corpus chunk count: %d", count)
	})
}

// Walks the mixed-path workflow end to end: create, pick the pragmatist
// worldview, advance to step 4, choose a branch, verify steps 5-9 unlock.
func TestMixedPathWorkflow(t *testing.T) {
	factory := connect(t)
	ctx := context.Background()

	sysLogger := logger.NewIsolatedLogger("integration_test.log")
	sessions := service.NewSessionService(factory, nil, sysLogger)

	created, err := sessions.Create(ctx, "", &dto.CreateSessionRequest{Title: "integration"})
	require.NoError(t, err)

	// Steps 5-9 are locked before any worldview exists.
	cfg, err := sessions.GetStepConfig(ctx, created.Id, 5)
	require.NoError(t, err)
	assert.True(t, cfg.Locked)

	wv, err := sessions.SetWorldview(ctx, &dto.SetWorldviewRequest{
		SessionId:   created.Id,
		WorldviewId: "pragmatist",
	})
	require.NoError(t, err)
	assert.Equal(t, string(workflow.PathMixed), wv.ResolvedPath)

	// Methodology before step 4 is rejected with state unchanged.
	_, err = sessions.SetMethodology(ctx, &dto.SetMethodologyRequest{
		SessionId:   created.Id,
		Methodology: "qualitative",
	})
	require.Error(t, err)

	_, err = sessions.AdvanceStep(ctx, &dto.AdvanceStepRequest{SessionId: created.Id, Step: 4})
	require.NoError(t, err)

	// Step 4 now serves the two-branch decision schema.
	cfg, err = sessions.GetStepConfig(ctx, created.Id, 4)
	require.NoError(t, err)
	require.False(t, cfg.Locked)
	assert.Equal(t, "methodology_decision", cfg.Config.Schema["field_type"])

	set, err := sessions.SetMethodology(ctx, &dto.SetMethodologyRequest{
		SessionId:   created.Id,
		Methodology: "qualitative",
	})
	require.NoError(t, err)
	assert.Equal(t, "qualitative", set.ChosenMethodology)

	// Second choice is rejected: the branch commitment is final.
	_, err = sessions.SetMethodology(ctx, &dto.SetMethodologyRequest{
		SessionId:   created.Id,
		Methodology: "quantitative",
	})
	require.Error(t, err)

	// Worldview change after the commitment is rejected too.
	_, err = sessions.SetWorldview(ctx, &dto.SetWorldviewRequest{
		SessionId:   created.Id,
		WorldviewId: "positivist",
	})
	require.Error(t, err)

	// Steps 5-9 inherit the qualitative branch.
	for step := 5; step <= 9; step++ {
		cfg, err := sessions.GetStepConfig(ctx, created.Id, step)
		require.NoError(t, err)
		assert.False(t, cfg.Locked, "step %d", step)
		assert.Equal(t, string(workflow.PathMixed), cfg.Config.Path)
	}

	// Step data merges field by field.
	_, err = sessions.SaveStepData(ctx, created.Id, 2, map[string]any{"topic": "retention"})
	require.NoError(t, err)
	_, err = sessions.SaveStepData(ctx, created.Id, 2, map[string]any{"goals": "practical"})
	require.NoError(t, err)

	got, err := sessions.GetStepData(ctx, created.Id, 2)
	require.NoError(t, err)
	assert.Equal(t, "retention", got.Data["topic"])
	assert.Equal(t, "practical", got.Data["goals"])

	show, err := sessions.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Contains(t, show.CompletedSteps, 1)
	assert.Contains(t, show.CompletedSteps, 2)

	// The welcome turn plus the two system notices are on record.
	uow := factory.NewUnitOfWork(ctx)
	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: created.Id},
	)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(turns), 3)

	// Cleanup
	_ = uow.ChatTurnRepository().DeleteBySessionIdUnscoped(ctx, created.Id)
	_ = uow.SessionRepository().Delete(ctx, created.Id)
}
