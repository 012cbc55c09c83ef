package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github-readme-generator/internal/common"
)

const (
	defaultListenAddress    = "127.0.0.1:0"
	defaultShutdownDuration = 5 * time.Second
	maxBodyBytes            = 1 << 20
	toolsPath               = "/tools"
	toolsPrefix             = "/tools/"
	errorFieldName          = "error"
)

// Config 传输层运行参数
type Config struct {
	Address         string
	ShutdownTimeout time.Duration
}

// Server 通过 HTTP 暴露工具列表和工具调用
type Server struct {
	config  Config
	service Service
	logger  *zap.Logger
}

// NewServer 创建服务端，未设置的参数使用默认值
func NewServer(cfg Config, svc Service, logger *zap.Logger) *Server {
	if cfg.Address == "" {
		cfg.Address = defaultListenAddress
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{config: cfg, service: svc, logger: logger}
}

// Handler 返回路由，测试时可以直接挂到 httptest 上
func (s *Server) Handler() http.Handler {
	router := http.NewServeMux()
	router.HandleFunc(toolsPath, s.handleList)
	router.HandleFunc(toolsPrefix, s.handleCall)
	return router
}

// Run 启动服务并阻塞到 ctx 取消；监听成功后通过 notify 回传实际地址
func (s *Server) Run(ctx context.Context, notify func(string)) error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Address, err)
	}
	address := listener.Addr().String()

	httpServer := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve tools: %w", err)
		}
		return nil
	})

	s.logger.Info("🚀 工具服务已启动", zap.String("address", address))
	if notify != nil {
		notify(address)
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown tools: %w", err)
		}
		s.logger.Info("👋 工具服务已关闭")
		return nil
	})

	return group.Wait()
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		Tools []Tool `json:"tools"`
	}{Tools: Tools()})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, toolsPrefix)
	handler, ok := handlers[name]
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{errorFieldName: fmt.Sprintf("unknown tool: %s", name)})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{errorFieldName: fmt.Sprintf("read request body: %v", err)})
		return
	}

	log := s.logger.With(zap.String("tool", name))
	log.Debug("🔧 调用工具")
	result, err := handler(r.Context(), s.service, body)
	if err != nil {
		log.Warn("⚠️ 参数无效", zap.Error(err))
		s.writeJSON(w, statusCodeFromError(err), map[string]string{errorFieldName: err.Error()})
		return
	}
	if !result.Success {
		log.Info("工具返回失败", zap.String("code", result.ErrorCode))
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	var buffer bytes.Buffer
	if err := json.NewEncoder(&buffer).Encode(payload); err != nil {
		s.logger.Error("❌ 响应序列化失败", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{errorFieldName: fmt.Sprintf("encode response: %v", err)})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buffer.Bytes())
}

func statusCodeFromError(err error) int {
	if common.HasCode(err, common.ErrCodeInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
