package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quastix/smplx/internal/config"
	"github.com/quastix/smplx/internal/logging"
	"github.com/quastix/smplx/internal/optimization"
	"github.com/quastix/smplx/internal/optimization/gaussfit"
	"github.com/quastix/smplx/internal/optimization/neldermead"
	"github.com/quastix/smplx/internal/optimization/objectives"
)

// Logger defines the logging interface used by the server, keeping the
// concrete logging implementation swappable.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Job tracks one optimization run through its lifecycle. Access is guarded
// by the server's job mutex.
type Job struct {
	ID          string
	Objective   string
	Status      string // "pending", "running", "completed", "failed", "cancelled"
	StartTime   time.Time
	EndTime     *time.Time
	Result      *optimization.Result[float64]
	Error       string
	LastUpdated time.Time
}

// Server exposes the Nelder-Mead engine over HTTP and JSON-RPC: callers
// start jobs against a named benchmark objective or a double-Gaussian fit,
// then poll for the result. Solves are synchronous internally; the server
// runs each one on a bounded worker pool.
type Server struct {
	cfg       *config.Config
	logger    Logger
	metrics   *Metrics
	minimizer *neldermead.Minimizer[float64]

	jobs   map[string]*Job
	jobsMu sync.RWMutex
	sem    chan struct{}
}

// NewServer creates a server instance. Metrics are registered on reg, so
// tests can pass an isolated registry.
func NewServer(cfg *config.Config, logger Logger, reg prometheus.Registerer) *Server {
	minimizer := neldermead.New[float64]()
	if cfg.Optimization.PooledBuffers {
		minimizer = neldermead.NewPooled[float64]()
	}

	workers := cfg.Optimization.WorkerCount
	if workers < 1 {
		workers = 1
	}

	return &Server{
		cfg:       cfg,
		logger:    logger,
		metrics:   NewMetrics(reg),
		minimizer: minimizer,
		jobs:      make(map[string]*Job),
		sem:       make(chan struct{}, workers),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/optimization/{id}", s.handleCancel)
		r.Get("/objectives", s.handleObjectives)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// optimizeRequest is the wire form of a job submission. Pointer fields are
// optional overrides of the configured defaults.
type optimizeRequest struct {
	Objective          string    `json:"objective"`
	InitialGuess       []float64 `json:"initial_guess"`
	FunctionTolerance  *float64  `json:"function_tolerance,omitempty"`
	ParameterTolerance *float64  `json:"parameter_tolerance,omitempty"`
	MaxIterations      *int      `json:"max_iterations,omitempty"`
	InitialSimplexSize *float64  `json:"initial_simplex_size,omitempty"`
	PenaltyWeight      *float64  `json:"penalty_weight,omitempty"`
	LowerBounds        []float64 `json:"lower_bounds,omitempty"`
	UpperBounds        []float64 `json:"upper_bounds,omitempty"`

	// Samples select a double-Gaussian fit instead of a named objective.
	SampleX []float64 `json:"sample_x,omitempty"`
	SampleY []float64 `json:"sample_y,omitempty"`
}

// baseConfig builds the engine configuration from service defaults plus
// request overrides.
func (s *Server) baseConfig(req *optimizeRequest) optimization.Config[float64] {
	opt := s.cfg.Optimization
	cfg := optimization.Config[float64]{
		FunctionTolerance:  opt.FunctionTolerance,
		ParameterTolerance: opt.ParameterTolerance,
		MaxIterations:      opt.MaxIterations,
		InitialSimplexSize: opt.InitialSimplexSize,
		PenaltyWeight:      opt.PenaltyWeight,
	}
	if req.FunctionTolerance != nil {
		cfg.FunctionTolerance = *req.FunctionTolerance
	}
	if req.ParameterTolerance != nil {
		cfg.ParameterTolerance = *req.ParameterTolerance
	}
	if req.MaxIterations != nil {
		cfg.MaxIterations = *req.MaxIterations
	}
	if req.InitialSimplexSize != nil {
		cfg.InitialSimplexSize = *req.InitialSimplexSize
	}
	if req.PenaltyWeight != nil {
		cfg.PenaltyWeight = *req.PenaltyWeight
	}
	cfg.LowerBounds = req.LowerBounds
	cfg.UpperBounds = req.UpperBounds
	return cfg
}

// startJob validates the request, registers a pending job and launches the
// solve on the worker pool.
func (s *Server) startJob(req *optimizeRequest) (map[string]interface{}, error) {
	fitting := len(req.SampleX) > 0 || len(req.SampleY) > 0

	var objective optimization.Objective[float64]
	var guess []float64
	name := req.Objective

	if fitting {
		if len(req.SampleX) != len(req.SampleY) {
			return nil, fmt.Errorf("sample_x and sample_y must be equal length")
		}
		if len(req.SampleX) < 2 {
			return nil, fmt.Errorf("need at least 2 samples, got %d", len(req.SampleX))
		}
		name = "gaussfit"
		objective = gaussfit.Objective(req.SampleX, req.SampleY)
		guess = gaussfit.InitialGuess(req.SampleX, req.SampleY)
	} else {
		if req.Objective == "" {
			return nil, fmt.Errorf("objective is required")
		}
		fn, ok := objectives.Lookup(req.Objective)
		if !ok {
			return nil, fmt.Errorf("unknown objective %q", req.Objective)
		}
		if len(req.InitialGuess) == 0 {
			return nil, fmt.Errorf("initial_guess is required")
		}
		objective = fn
		guess = append([]float64(nil), req.InitialGuess...)
	}

	cfg := s.baseConfig(req)
	if fitting && len(cfg.LowerBounds) == 0 && len(cfg.UpperBounds) == 0 {
		cfg.LowerBounds = gaussfit.FitConfig().LowerBounds
	}

	id := fmt.Sprintf("opt_%d", time.Now().UnixNano())
	job := &Job{
		ID:          id,
		Objective:   name,
		Status:      "pending",
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
	}

	s.jobsMu.Lock()
	s.jobs[id] = job
	s.jobsMu.Unlock()

	s.metrics.jobsStarted.Inc()
	go s.runJob(job, objective, guess, cfg)

	return map[string]interface{}{
		"optimization_id": id,
		"status":          "pending",
	}, nil
}

// runJob executes one solve on the worker pool and records the outcome. A
// cancellation only marks the job; the solve itself always runs to
// completion and its result is discarded.
func (s *Server) runJob(job *Job, objective optimization.Objective[float64], guess []float64, cfg optimization.Config[float64]) {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	s.jobsMu.Lock()
	if job.Status == "cancelled" {
		s.jobsMu.Unlock()
		return
	}
	job.Status = "running"
	job.LastUpdated = time.Now()
	s.jobsMu.Unlock()

	start := time.Now()
	result, err := s.minimizer.Minimize(objective, guess, cfg)
	elapsed := time.Since(start)

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if job.Status == "cancelled" {
		return
	}

	now := time.Now()
	job.EndTime = &now
	job.LastUpdated = now

	if err != nil {
		job.Status = "failed"
		job.Error = err.Error()
		s.metrics.jobsFinished.WithLabelValues("failed").Inc()
		s.logger.Error("Optimization failed", map[string]interface{}{
			"optimization_id": job.ID,
			"error":           err.Error(),
		})
		return
	}

	job.Status = "completed"
	job.Result = &result
	s.metrics.jobsFinished.WithLabelValues("completed").Inc()
	s.metrics.evaluations.Add(float64(result.FunctionEvaluations))
	s.metrics.solveSeconds.Observe(elapsed.Seconds())

	s.logger.Info("Optimization completed", map[string]interface{}{
		"optimization_id": job.ID,
		"objective":       job.Objective,
		"converged":       result.Converged,
		"iterations":      result.Iterations,
		"evaluations":     result.FunctionEvaluations,
	})
}

// jobStatus builds the wire representation of a job.
func (s *Server) jobStatus(id string) (map[string]interface{}, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, fmt.Errorf("optimization not found")
	}

	response := map[string]interface{}{
		"optimization_id": job.ID,
		"objective":       job.Objective,
		"status":          job.Status,
		"start_time":      job.StartTime.Format(time.RFC3339),
		"last_update":     job.LastUpdated.Format(time.RFC3339),
	}
	if job.EndTime != nil {
		response["end_time"] = job.EndTime.Format(time.RFC3339)
	}
	if job.Error != "" {
		response["error"] = job.Error
	}
	if job.Result != nil {
		response["result"] = map[string]interface{}{
			"optimal_parameters":   job.Result.OptimalParameters,
			"optimal_value":        job.Result.OptimalValue,
			"iterations":           job.Result.Iterations,
			"function_evaluations": job.Result.FunctionEvaluations,
			"converged":            job.Result.Converged,
			"message":              job.Result.Message,
		}
	}

	return response, nil
}

// cancelJob marks a pending or running job as cancelled.
func (s *Server) cancelJob(id string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("optimization not found")
	}

	switch job.Status {
	case "completed", "failed", "cancelled":
		return fmt.Errorf("cannot cancel optimization with status: %s", job.Status)
	}

	now := time.Now()
	job.Status = "cancelled"
	job.EndTime = &now
	job.LastUpdated = now
	s.metrics.jobsFinished.WithLabelValues("cancelled").Inc()

	s.logger.Info("Optimization cancelled", map[string]interface{}{
		"optimization_id": id,
	})

	return nil
}

// handleJSONRPC handles JSON-RPC 2.0 requests.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string            `json:"jsonrpc"`
		ID      interface{}       `json:"id"`
		Method  string            `json:"method"`
		Params  []json.RawMessage `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, -32700, "Parse error", nil)
		return
	}

	if request.JSONRPC != "2.0" {
		s.respondWithError(w, -32600, "Invalid Request", nil)
		return
	}

	if len(request.Params) == 0 {
		s.respondWithError(w, -32602, "Invalid params", request.ID)
		return
	}

	var result interface{}
	var err error

	switch request.Method {
	case "optimization.start":
		var req optimizeRequest
		if err = json.Unmarshal(request.Params[0], &req); err == nil {
			result, err = s.startJob(&req)
		}
	case "optimization.status":
		var ref struct {
			OptimizationID string `json:"optimization_id"`
		}
		if err = json.Unmarshal(request.Params[0], &ref); err == nil {
			result, err = s.jobStatus(ref.OptimizationID)
		}
	case "optimization.cancel":
		var ref struct {
			OptimizationID string `json:"optimization_id"`
		}
		if err = json.Unmarshal(request.Params[0], &ref); err == nil {
			err = s.cancelJob(ref.OptimizationID)
		}
	default:
		s.respondWithError(w, -32601, "Method not found", request.ID)
		return
	}

	if err != nil {
		s.respondWithError(w, -32000, err.Error(), request.ID)
		return
	}

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// respondWithError sends a JSON-RPC 2.0 error response.
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Error("Request error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// handleOptimize handles POST /api/v1/optimize.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := s.startJob(&req)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(result)
}

// handleStatus handles GET /api/v1/status/{id}.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Missing optimization ID", http.StatusBadRequest)
		return
	}

	result, err := s.jobStatus(id)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// handleCancel handles DELETE /api/v1/optimization/{id}.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Missing optimization ID", http.StatusBadRequest)
		return
	}

	err := s.cancelJob(id)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "cancelled"})
}

// handleObjectives handles GET /api/v1/objectives.
func (s *Server) handleObjectives(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"objectives": objectives.Names()})
}

// Close marks every unfinished job as cancelled.
func (s *Server) Close() error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	now := time.Now()
	for _, job := range s.jobs {
		switch job.Status {
		case "pending", "running":
			job.Status = "cancelled"
			job.EndTime = &now
			job.LastUpdated = now
		}
	}
	return nil
}
