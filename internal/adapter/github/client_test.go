package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github-readme-generator/internal/common"
	"github-readme-generator/internal/config"
	"github-readme-generator/internal/domain"
)

// setupMockGitHubServer 创建一个模拟的 GitHub API 服务器
func setupMockGitHubServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.Config{
		GitHubToken:    "test-token",
		GitHubAPIURL:   server.URL + "/",
		RequestTimeout: 2 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestClient_GetRepository(t *testing.T) {
	var authHeader string
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		assert.Equal(t, "/repos/octo/demo", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"name":             "demo",
			"full_name":        "octo/demo",
			"description":      "A demo project",
			"html_url":         "https://github.com/octo/demo",
			"default_branch":   "main",
			"stargazers_count": 42,
			"owner":            map[string]interface{}{"login": "octo"},
			"license":          map[string]interface{}{"name": "MIT License", "spdx_id": "MIT"},
		})
	})

	meta, err := client.GetRepository(context.Background(), domain.NewRepoRef("octo", "demo"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", authHeader)
	assert.Equal(t, "demo", meta.Name)
	assert.Equal(t, "octo/demo", meta.FullName)
	assert.Equal(t, "A demo project", meta.Description)
	assert.Equal(t, "MIT License", meta.License)
	assert.Equal(t, "octo", meta.Owner)
	assert.Equal(t, "main", meta.DefaultBranch)
	assert.Equal(t, 42, meta.Stars)
}

func TestClient_GetRepository_DefaultLicense(t *testing.T) {
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]interface{}{"name": "demo"})
	})

	meta, err := client.GetRepository(context.Background(), domain.NewRepoRef("octo", "demo"))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLicense, meta.License)
	assert.Equal(t, "octo", meta.Owner)
}

func TestClient_ListDirectory(t *testing.T) {
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/demo/contents/", r.URL.Path)
		writeJSON(t, w, http.StatusOK, []map[string]interface{}{
			{"name": "src", "path": "src", "type": "dir", "size": 0},
			{"name": "package.json", "path": "package.json", "type": "file", "size": 312},
			{"name": "link", "path": "link", "type": "symlink", "size": 8},
		})
	})

	entries, err := client.ListDirectory(context.Background(), domain.NewRepoRef("octo", "demo"), "")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, domain.Entry{Name: "src", Path: "src", Kind: domain.EntryDir}, entries[0])
	assert.Equal(t, domain.Entry{Name: "package.json", Path: "package.json", Kind: domain.EntryFile, Size: 312}, entries[1])
	assert.Equal(t, domain.EntryFile, entries[2].Kind)
}

func TestClient_GetFile_DecodesBase64(t *testing.T) {
	raw := `{"name":"demo","scripts":{"dev":"vite"}}`
	client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/demo/contents/package.json", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"type":     "file",
			"name":     "package.json",
			"path":     "package.json",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(raw)),
		})
	})

	content, err := client.GetFile(context.Background(), domain.NewRepoRef("octo", "demo"), "package.json")
	require.NoError(t, err)
	assert.Equal(t, raw, string(content))
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		headers   map[string]string
		wantCodes []string
		transient bool
	}{
		{
			name:      "404 不可重试",
			status:    http.StatusNotFound,
			wantCodes: []string{common.ErrCodeUpstreamFetch, common.ErrCodeNotFound},
		},
		{
			name:      "速率限制",
			status:    http.StatusForbidden,
			headers:   map[string]string{"X-RateLimit-Remaining": "0", "X-RateLimit-Limit": "60"},
			wantCodes: []string{common.ErrCodeUpstreamFetch, common.ErrCodeRateLimited},
		},
		{
			name:      "5xx 为临时错误",
			status:    http.StatusBadGateway,
			wantCodes: []string{common.ErrCodeUpstreamFetch, common.ErrCodeUpstreamUnavailable},
			transient: true,
		},
		{
			name:      "401 直接失败",
			status:    http.StatusUnauthorized,
			wantCodes: []string{common.ErrCodeUpstreamFetch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := setupMockGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				writeJSON(t, w, tt.status, map[string]string{"message": http.StatusText(tt.status)})
			})

			_, err := client.ListDirectory(context.Background(), domain.NewRepoRef("octo", "demo"), "src")
			require.Error(t, err)
			for _, code := range tt.wantCodes {
				assert.True(t, common.HasCode(err, code), "缺少错误码 %s: %v", code, err)
			}
			assert.Equal(t, tt.transient, common.IsTransient(err))
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(&config.Config{
		GitHubAPIURL:   server.URL + "/",
		RequestTimeout: 50 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.GetRepository(context.Background(), domain.NewRepoRef("octo", "demo"))
	require.Error(t, err)
	assert.True(t, common.IsTransient(err))
}

func TestNewClient_AnonymousWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	_, err := NewClient(&config.Config{GitHubAPIURL: config.DefaultGitHubAPIURL}, zap.New(core))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(anonymousHourlyLimit), entries[0].ContextMap()["hourly_limit"])
}
