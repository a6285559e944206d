//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreforge/loreforge/internal/domain"
	"github.com/loreforge/loreforge/internal/service"
	"github.com/loreforge/loreforge/internal/testutil"
)

func TestAgentRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	worlds := NewWorldRepository(pool)
	concepts := NewConceptRepository(pool)
	agents := NewAgentRepository(pool)

	world, _ := setupWorldAndConcept(ctx, t, worlds, concepts)

	agent := &domain.Agent{WorldID: world.ID, Name: "Loremaster"}
	require.NoError(t, agents.Create(ctx, agent))
	require.NotZero(t, agent.ID)

	retrieved, err := agents.GetByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loremaster", retrieved.Name)
	assert.Nil(t, retrieved.LastIndexedAt)
}

func TestAgentRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	agents := NewAgentRepository(pool)

	_, err := agents.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestAgentRepository_StampLastIndexed(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	worlds := NewWorldRepository(pool)
	concepts := NewConceptRepository(pool)
	agents := NewAgentRepository(pool)

	world, _ := setupWorldAndConcept(ctx, t, worlds, concepts)
	agent := &domain.Agent{WorldID: world.ID, Name: "Loremaster"}
	require.NoError(t, agents.Create(ctx, agent))

	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, agents.StampLastIndexed(ctx, agent.ID, at))

	retrieved, err := agents.GetByID(ctx, agent.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved.LastIndexedAt)
	assert.Equal(t, at, retrieved.LastIndexedAt.UTC())

	err = agents.StampLastIndexed(ctx, 9999, at)
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestTxRunner_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	worlds := NewWorldRepository(pool)
	concepts := NewConceptRepository(pool)
	agents := NewAgentRepository(pool)
	runner := NewTxRunner(pool)

	world, _ := setupWorldAndConcept(ctx, t, worlds, concepts)
	agent := &domain.Agent{WorldID: world.ID, Name: "Loremaster"}
	require.NoError(t, agents.Create(ctx, agent))

	boom := errors.New("boom")
	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Agents().StampLastIndexed(ctx, agent.ID, time.Now().UTC()); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	retrieved, err := agents.GetByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.Nil(t, retrieved.LastIndexedAt)
}

func TestSourceRepository_CreateListDelete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	worlds := NewWorldRepository(pool)
	concepts := NewConceptRepository(pool)
	agents := NewAgentRepository(pool)
	sources := NewSourceRepository(pool)

	world, _ := setupWorldAndConcept(ctx, t, worlds, concepts)
	agent := &domain.Agent{WorldID: world.ID, Name: "Archivist"}
	require.NoError(t, agents.Create(ctx, agent))

	inline := &domain.SpecialistSource{AgentID: agent.ID, Kind: domain.SourceKindText, Name: "Notes", Content: "some notes"}
	file := &domain.SpecialistSource{AgentID: agent.ID, Kind: domain.SourceKindFile, Name: "Chronicle", ObjectKey: "sources/chronicle.txt"}
	require.NoError(t, sources.Create(ctx, inline))
	require.NoError(t, sources.Create(ctx, file))

	listed, err := sources.ListByAgent(ctx, agent.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "some notes", listed[0].Content)
	assert.Equal(t, "sources/chronicle.txt", listed[1].ObjectKey)
	assert.Empty(t, listed[1].URL)

	require.NoError(t, sources.Delete(ctx, inline.ID))
	_, err = sources.GetByID(ctx, inline.ID)
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}
