// Package main provides a local HTTP server for development and testing.
// It exposes the portfolio scoring pipeline over plain JSON endpoints so
// the engine can be exercised without the Lambda deployment.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"bnpl-portfolio-engine/internal/config"
	"bnpl-portfolio-engine/internal/engine"
	"bnpl-portfolio-engine/internal/handlers"
	"bnpl-portfolio-engine/internal/models"
	"bnpl-portfolio-engine/internal/services/database"
	"bnpl-portfolio-engine/internal/services/export"
	"bnpl-portfolio-engine/internal/utils"
)

// Server holds all dependencies
type Server struct {
	db     *database.DB
	engine *engine.Engine
	config *config.Config
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ScenarioRequest combines report parameters with a metric lever.
type ScenarioRequest struct {
	handlers.ReportRequest
	Lever models.ScenarioLever `json:"lever"`
}

func main() {
	// Initialize logger first
	if err := utils.InitLogger("info"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config from environment: %v", err)
		cfg = &config.Config{}
	}

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Server will start, report endpoints will fail until a database is available")
	}

	server := &Server{
		db:     db,
		config: cfg,
	}

	if db != nil {
		server.engine = engine.New(database.NewStore(db))
	}

	// Setup routes
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", server.healthHandler)
	mux.HandleFunc("/api/health", server.healthHandler)

	// Generate a portfolio report
	mux.HandleFunc("/api/report", server.reportHandler)

	// Generate a report and download it as a workbook
	mux.HandleFunc("/api/report/export", server.exportHandler)

	// Project a ranking under a hypothetical metric shift
	mux.HandleFunc("/api/scenario", server.scenarioHandler)

	// Benchmark profile for a market
	mux.HandleFunc("/api/benchmark", server.benchmarkHandler)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	port := getEnvOrDefault("PORT", "8080")
	addr := fmt.Sprintf("0.0.0.0:%s", port)

	log.Printf("BNPL Portfolio Engine API Server")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("Health: http://localhost:%s/health", port)

	log.Printf("Starting HTTP server on %s...", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disconnected"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err == nil {
			dbStatus = "connected"
		}
	}

	response := Response{
		Success: true,
		Message: "BNPL Portfolio Engine API is running",
		Data: map[string]interface{}{
			"status":    "healthy",
			"database":  dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
		},
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	report, ok := s.buildReport(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Report generated",
		Data:    report,
	})
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	report, ok := s.buildReport(w, r)
	if !ok {
		return
	}

	workbook, err := export.BuildWorkbook(report)
	if err != nil {
		utils.GetLogger().Error("Failed to build workbook", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   fmt.Sprintf("Failed to build workbook: %v", err),
		})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.ReportID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

func (s *Server) scenarioHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	var req ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	engineCfg, err := handlers.EngineConfig(s.config, req.ReportRequest)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	result, err := s.engine.Scenario(r.Context(), engineCfg, req.Lever)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   fmt.Sprintf("Failed to project scenario: %v", err),
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Scenario projected",
		Data:    result,
	})
}

func (s *Server) benchmarkHandler(w http.ResponseWriter, r *http.Request) {
	market := r.URL.Query().Get("market")
	if market == "" {
		market = s.config.DefaultMarket
	}

	profile, err := models.LookupBenchmark(market)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: profile})
}

// buildReport parses the request and runs the pipeline. It writes the error
// response itself and reports success through the second return value.
func (s *Server) buildReport(w http.ResponseWriter, r *http.Request) (*models.PortfolioReport, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	if s.engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return nil, false
	}

	var req handlers.ReportRequest
	if r.Body != nil {
		// An empty body means defaults, so decode errors on EOF are fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	engineCfg, err := handlers.EngineConfig(s.config, req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return nil, false
	}

	report, err := s.engine.BuildReport(r.Context(), engineCfg)
	if err != nil {
		utils.GetLogger().Error("Failed to build report", zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   fmt.Sprintf("Failed to build report: %v", err),
		})
		return nil, false
	}

	return report, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
