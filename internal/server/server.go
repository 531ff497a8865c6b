// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes proposal generation over HTTP. Every response uses
// the {code, message, data} envelope, including 404 and 405.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pdiddy/proposal-engine/internal/logging"
	"github.com/pdiddy/proposal-engine/internal/metrics"
	"github.com/pdiddy/proposal-engine/internal/proposal"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

// ServiceVersion is reported by /api_info.
const ServiceVersion = "2.0.0"

// ProposalService runs one generation.
type ProposalService interface {
	Generate(ctx context.Context, req types.ProposalRequest) (types.ProposalResult, error)
}

// Server wires HTTP handlers to the proposal generator.
type Server struct {
	router  chi.Router
	gen     ProposalService
	metrics *metrics.Metrics
	log     *zap.Logger
	timeout time.Duration
	// materialsRoot confines materialFiles reads; empty disables them.
	materialsRoot string
}

// New constructs a Server with middleware and routes. cfg.RequestTimeout
// bounds each generation request; zero means no limit beyond the client's.
// cfg.MaterialsRoot is the only directory materialFiles may be read from.
func New(gen ProposalService, m *metrics.Metrics, log *zap.Logger, cfg types.ServerConfig) *Server {
	s := &Server{
		gen:           gen,
		metrics:       m,
		log:           logging.OrNop(log),
		timeout:       cfg.RequestTimeout,
		materialsRoot: cfg.MaterialsRoot,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(s.metricsMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusNotFound, "接口不存在", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusMethodNotAllowed, "请求方法不被允许", nil)
	})

	r.Get("/health", s.health)
	r.Get("/api_info", s.apiInfo)
	r.Post("/generate_academic_report", s.generate)
	r.Post("/generate_academic_report_detailed", s.generateDetailed)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "学术论文生成服务运行正常",
	})
}

func (s *Server) apiInfo(w http.ResponseWriter, _ *http.Request) {
	params := map[string]string{
		"title":         "string - 论文标题",
		"details":       "string - 研究方案详情",
		"academicLevel": "string - 学术层次（本科/硕士/博士）",
		"country":       "string - 就读国家",
		"materialFiles": "array - 本地文件路径列表（可选）",
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service_name": "学术论文智能生成系统",
		"version":      ServiceVersion,
		"description":  "基于人工智能的学术论文开题报告和实验设计自动生成系统",
		"endpoints": map[string]any{
			"/health": map[string]string{"method": "GET", "description": "健康检查"},
			"/generate_academic_report": map[string]any{
				"method":      "POST",
				"description": "生成开题报告和实验设计",
				"parameters":  params,
			},
			"/generate_academic_report_detailed": map[string]any{
				"method":      "POST",
				"description": "生成开题报告和实验设计（详细版，包含所有中间结果）",
				"parameters":  "同上",
			},
			"/metrics": map[string]string{"method": "GET", "description": "Prometheus 指标"},
		},
		"supported_file_formats":    []string{"MD", "MARKDOWN", "TXT"},
		"supported_academic_levels": types.AcademicLevels,
		"supported_countries":       types.Countries,
	})
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	writeEnvelope(w, http.StatusOK, "生成成功", map[string]any{
		"proposal":             res.Proposal,
		"experiment_design":    res.ExperimentDesign,
		"zhihu_research_count": len(res.Research),
		"arxiv_papers_count":   len(res.Papers),
	})
}

func (s *Server) generateDetailed(w http.ResponseWriter, r *http.Request) {
	res, ok := s.run(w, r)
	if !ok {
		return
	}
	writeEnvelope(w, http.StatusOK, "生成成功", map[string]any{
		"proposal":          res.Proposal,
		"experiment_design": res.ExperimentDesign,
		"zhihu_research":    res.Research,
		"arxiv_papers":      res.Papers,
		"research_sources": map[string]int{
			"zhihu_count": len(res.Research),
			"arxiv_count": len(res.Papers),
		},
	})
}

// run decodes, validates, and executes a generation request. It writes the
// error envelope itself and reports false when the handler should stop.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (types.ProposalResult, bool) {
	log := s.log.With(zap.String("request_id", RequestID(r.Context())))

	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "请求数据不能为空", nil)
		return types.ProposalResult{}, false
	}

	req, err := proposal.Normalize(body.proposalRequest())
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, invalidMessage(err), nil)
		return types.ProposalResult{}, false
	}
	req.Materials, err = proposal.LoadMaterialsFrom(s.materialsRoot, body.materialFiles(), log)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return types.ProposalResult{}, false
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.gen.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, proposal.ErrInvalidRequest) {
			writeEnvelope(w, http.StatusBadRequest, invalidMessage(err), nil)
			return types.ProposalResult{}, false
		}
		log.Error("generation failed", zap.Error(err))
		writeEnvelope(w, http.StatusInternalServerError, "生成失败: "+err.Error(), nil)
		return types.ProposalResult{}, false
	}
	return res, true
}

func invalidMessage(err error) string {
	return strings.TrimPrefix(err.Error(), proposal.ErrInvalidRequest.Error()+": ")
}

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeEnvelope(w http.ResponseWriter, status int, msg string, data any) {
	writeJSON(w, status, envelope{Code: status, Message: msg, Data: data})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
