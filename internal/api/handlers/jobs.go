package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loreforge/loreforge/internal/api"
	"github.com/loreforge/loreforge/internal/domain"
)

type JobsHandler struct {
	jobs   JobQueue
	agents AgentStore
}

func NewJobsHandler(jobs JobQueue, agents AgentStore) *JobsHandler {
	return &JobsHandler{jobs: jobs, agents: agents}
}

type JobSubmittedResponse struct {
	JobID string `json:"job_id"`
}

// SubmitWorldRebuild queues a full rebuild of the agent's world collection.
func (h *JobsHandler) SubmitWorldRebuild(w http.ResponseWriter, r *http.Request) {
	agentID, ok := urlID(r, "id")
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	agent, err := h.agents.GetByID(r.Context(), agentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	id, err := h.jobs.Submit(r.Context(), &domain.JobRecord{
		JobType: domain.JobTypeRebuildWorld,
		AgentID: agent.ID,
		WorldID: agent.WorldID,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, JobSubmittedResponse{JobID: id})
}

// SubmitSpecialistRebuild queues a rebuild of the agent's private collection.
func (h *JobsHandler) SubmitSpecialistRebuild(w http.ResponseWriter, r *http.Request) {
	agentID, ok := urlID(r, "id")
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	agent, err := h.agents.GetByID(r.Context(), agentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	id, err := h.jobs.Submit(r.Context(), &domain.JobRecord{
		JobType: domain.JobTypeRebuildSpecialist,
		AgentID: agent.ID,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, JobSubmittedResponse{JobID: id})
}

// Get polls a job record by id.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, job)
}
