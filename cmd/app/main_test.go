package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github-readme-generator/internal/common"
	"github-readme-generator/internal/domain"
	"github-readme-generator/internal/transport/mcp"
)

const packageJSON = `{
  "name": "demo",
  "main": "index.js",
  "scripts": {"start": "react-scripts start", "test": "jest"},
  "dependencies": {"react": "^18.2.0"},
  "devDependencies": {"jest": "^29.0.0"}
}`

// setupFakeGitHub 只提供浅分析需要的三个接口
func setupFakeGitHub(t *testing.T) {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, body interface{}) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
	mux.HandleFunc("/repos/octo/demo", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"name":             "demo",
			"full_name":        "octo/demo",
			"description":      "A demo project",
			"html_url":         "https://github.com/octo/demo",
			"stargazers_count": 7,
			"owner":            map[string]interface{}{"login": "octo"},
			"license":          map[string]interface{}{"name": "MIT License"},
		})
	})
	mux.HandleFunc("/repos/octo/demo/contents/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{
			{"name": "package.json", "path": "package.json", "type": "file"},
			{"name": "src", "path": "src", "type": "dir"},
			{"name": ".github", "path": ".github", "type": "dir"},
		})
	})
	mux.HandleFunc("/repos/octo/demo/contents/package.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"type":     "file",
			"name":     "package.json",
			"path":     "package.json",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(packageJSON)),
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	t.Setenv("GITHUB_API_URL", server.URL+"/")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("LOG_LEVEL", "error")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	setupFakeGitHub(t)

	out, err := runCLI(t, "analyze", "https://github.com/octo/demo", "-o", "json")
	require.NoError(t, err)

	var result domain.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.True(t, result.Success)
	assert.Equal(t, "octo/demo", result.Analysis.FullName)
	assert.Equal(t, domain.ProjectFrontend, result.Analysis.ProjectType)
	assert.Contains(t, result.Analysis.Technologies, "React")
	assert.True(t, result.Analysis.HasCI)
	assert.Equal(t, domain.PackageManagerNPM, result.Analysis.PackageManager)
}

func TestAnalyzeCommand_YAML(t *testing.T) {
	setupFakeGitHub(t)

	out, err := runCLI(t, "analyze", "github.com/octo/demo", "--output", "yaml")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, "demo", decoded["analysis"].(map[string]interface{})["name"])
}

func TestAnalyzeCommand_InvalidReference(t *testing.T) {
	setupFakeGitHub(t)

	out, err := runCLI(t, "analyze", "https://gitlab.com/octo/demo")
	assert.ErrorIs(t, err, errOperationFailed)
	assert.Contains(t, out, common.ErrCodeInvalidReference)
}

func TestGenerateCommand_Copy(t *testing.T) {
	setupFakeGitHub(t)
	var copied string
	original := copyToClipboard
	copyToClipboard = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { copyToClipboard = original })

	out, err := runCLI(t, "generate", "https://github.com/octo/demo", "--tree=false", "--copy", "-l", "tr")
	require.NoError(t, err)

	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "React")
	assert.Equal(t, copied+"\n", out)
}

func TestHistoryCommand_WithoutDatabase(t *testing.T) {
	setupFakeGitHub(t)

	_, err := runCLI(t, "history", "https://github.com/octo/demo")
	assert.True(t, common.HasCode(err, common.ErrCodeNotFound))
}

func TestRootCommand_RejectsUnknownOutput(t *testing.T) {
	setupFakeGitHub(t)

	_, err := runCLI(t, "analyze", "https://github.com/octo/demo", "-o", "xml")
	assert.True(t, common.HasCode(err, common.ErrCodeInvalidInput))
}

func TestBuildContainer_ProvidesServer(t *testing.T) {
	setupFakeGitHub(t)

	container, err := buildContainer(&globalOptions{output: outputText})
	require.NoError(t, err)
	assert.NoError(t, container.Invoke(func(server *mcp.Server) {
		assert.NotNil(t, server)
	}))

	for _, name := range []string{"analyze", "generate", "trigger", "serve", "history"} {
		cmd, _, err := newRootCommand().Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
