package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github-readme-generator/internal/common"
	"github-readme-generator/internal/domain"
)

// EventDocumentGenerated 投递给外部工作流的事件名
const EventDocumentGenerated = "document_generated"

const (
	maxResponseBytes = 1 << 20
	excerptLength    = 200
)

// Envelope webhook 请求体
type Envelope struct {
	Event     string      `json:"event"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Notifier 实现了 port.Notifier 接口
type Notifier struct {
	httpClient *http.Client
	logger     *zap.Logger
	nowFunc    func() time.Time
}

func NewNotifier(timeout time.Duration, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		nowFunc:    time.Now,
	}
}

// Notify 单次 POST，不重试；非 2xx 或网络错误返回 DELIVERY_ERROR
// 非 2xx 时同时返回带状态码的结果，方便调用方展示
func (n *Notifier) Notify(ctx context.Context, callbackURL string, payload interface{}) (*domain.DeliveryResult, error) {
	if err := validateURL(callbackURL); err != nil {
		return nil, err
	}

	body, err := json.Marshal(Envelope{
		Event:     EventDocumentGenerated,
		Timestamp: n.nowFunc().UTC().Format(time.RFC3339),
		Data:      payload,
	})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeInternal, "序列化 webhook 请求体失败", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(body))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDelivery, "构造 webhook 请求失败", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("📭 webhook 投递失败", zap.String("url", redact(callbackURL)), zap.Error(err))
		return nil, common.WrapError(common.ErrCodeDelivery, "webhook 请求失败", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDelivery, "读取 webhook 响应失败", err)
	}

	result := &domain.DeliveryResult{StatusCode: resp.StatusCode, Response: decodeResponse(raw)}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logger.Warn("📭 webhook 返回非 2xx", zap.Int("status", resp.StatusCode))
		return result, common.NewError(common.ErrCodeDelivery,
			fmt.Sprintf("webhook 返回状态码 %d: %s", resp.StatusCode, excerpt(raw)))
	}

	n.logger.Info("📬 webhook 投递成功", zap.String("url", redact(callbackURL)), zap.Int("status", resp.StatusCode))
	return result, nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("无效的回调地址: %q", raw))
	}
	return nil
}

// decodeResponse 能解析成 JSON 就返回结构化数据，否则返回原文
func decodeResponse(raw []byte) interface{} {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var decoded interface{}
	if err := json.Unmarshal(trimmed, &decoded); err == nil {
		return decoded
	}
	return string(trimmed)
}

func excerpt(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > excerptLength {
		return text[:excerptLength] + "..."
	}
	if text == "" {
		return "<empty body>"
	}
	return text
}

// redact 日志里不输出 query，webhook 地址里常带密钥
func redact(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "<invalid>"
	}
	parsed.RawQuery = ""
	parsed.User = nil
	return parsed.String()
}
