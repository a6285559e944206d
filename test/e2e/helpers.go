//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loreforge/loreforge/internal/api/handlers"
	"github.com/loreforge/loreforge/internal/jobs"
	"github.com/loreforge/loreforge/internal/repository"
	"github.com/loreforge/loreforge/internal/server"
	"github.com/loreforge/loreforge/internal/service"
	"github.com/loreforge/loreforge/internal/sourcetext"
	"github.com/loreforge/loreforge/internal/testutil"
	"github.com/loreforge/loreforge/internal/vectorstore"
)

// Env holds all resources for an end-to-end run: a Postgres container with
// the real schema, the full service wiring on an in-memory vector store, a
// running job orchestrator, and the HTTP server in front of it.
type Env struct {
	T         *testing.T
	Ctx       context.Context
	PostgresC *testutil.PostgresContainer
	Pool      *pgxpool.Pool
	Server    *httptest.Server

	Worlds          *repository.WorldRepository
	Concepts        *repository.ConceptRepository
	Pages           *repository.PageRepository
	Characteristics *repository.CharacteristicRepository
	Agents          *repository.AgentRepository
	Sources         *repository.SourceRepository

	orchestrator *jobs.Orchestrator
	cancel       context.CancelFunc
}

// hashEmbedder derives a deterministic unit vector from the text so search
// is exercised end to end without an embedding API.
type hashEmbedder struct{}

func (hashEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		sum := sha256.Sum256([]byte(text))
		vec := make([]float32, 8)
		var norm float64
		for j := range vec {
			vec[j] = float32(sum[j]) / 255.0
			norm += float64(vec[j]) * float64(vec[j])
		}
		norm = math.Sqrt(norm)
		for j := range vec {
			vec[j] = float32(float64(vec[j]) / norm)
		}
		out[i] = vec
	}
	return out, nil
}

// Setup starts the container, migrates the schema, and wires the whole stack.
func Setup(t *testing.T) *Env {
	ctx, cancel := context.WithCancel(context.Background())

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	worldRepo := repository.NewWorldRepository(pool)
	conceptRepo := repository.NewConceptRepository(pool)
	pageRepo := repository.NewPageRepository(pool)
	characteristicRepo := repository.NewCharacteristicRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	sourceRepo := repository.NewSourceRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	store := vectorstore.NewMemoryStore()
	embedder := hashEmbedder{}
	resolver := sourcetext.NewResolver(nil)

	indexSvc := service.NewIndexService(store, embedder, pageRepo, conceptRepo, characteristicRepo, agentRepo, sourceRepo, resolver, txRunner)
	searchSvc := service.NewSearchService(store, embedder)
	crosslinkSvc := service.NewCrosslinkService(pageRepo)
	refSvc := service.NewReferenceIntegrityService(characteristicRepo)
	transferSvc := service.NewTransferService(store)

	jobStore, err := jobs.NewFileJobStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create job store: %v", err)
	}
	orchestrator := jobs.NewOrchestrator(jobStore, 2)
	jobs.RegisterHandlers(orchestrator, indexSvc, crosslinkSvc, refSvc)
	orchestrator.Start(ctx)

	router := server.NewRouter(server.RouterConfig{
		PageHandler:     handlers.NewPageHandler(pageRepo, orchestrator, indexSvc),
		SearchHandler:   handlers.NewSearchHandler(searchSvc, worldRepo, agentRepo),
		JobsHandler:     handlers.NewJobsHandler(orchestrator, agentRepo),
		TransferHandler: handlers.NewTransferHandler(transferSvc),
	})
	srv := httptest.NewServer(router)

	return &Env{
		T:               t,
		Ctx:             ctx,
		PostgresC:       pgC,
		Pool:            pool,
		Server:          srv,
		Worlds:          worldRepo,
		Concepts:        conceptRepo,
		Pages:           pageRepo,
		Characteristics: characteristicRepo,
		Agents:          agentRepo,
		Sources:         sourceRepo,
		orchestrator:    orchestrator,
		cancel:          cancel,
	}
}

// Cleanup tears everything down in reverse order.
func (e *Env) Cleanup() {
	e.Server.Close()
	e.orchestrator.Stop()
	e.cancel()
	e.Pool.Close()
	if err := e.PostgresC.Terminate(context.Background()); err != nil {
		e.T.Logf("failed to terminate postgres container: %v", err)
	}
}

// Response is a decoded API envelope.
type Response struct {
	Status int
	Data   json.RawMessage
	Err    string
}

func (e *Env) do(method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(e.Ctx, method, e.Server.URL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("invalid response body %q: %w", raw, err)
	}

	return &Response{Status: resp.StatusCode, Data: envelope.Data, Err: envelope.Error}, nil
}

func (e *Env) Get(path string) (*Response, error)            { return e.do(http.MethodGet, path, nil) }
func (e *Env) Post(path string, body any) (*Response, error) { return e.do(http.MethodPost, path, body) }
func (e *Env) Put(path string, body any) (*Response, error)  { return e.do(http.MethodPut, path, body) }
func (e *Env) Delete(path string) (*Response, error)         { return e.do(http.MethodDelete, path, nil) }
