package analyzer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github-readme-generator/internal/common"
	"github-readme-generator/internal/domain"
	"github-readme-generator/internal/port"
)

// MockHostingClient 模拟 HostingClient 接口
type MockHostingClient struct {
	mock.Mock
}

func (m *MockHostingClient) GetRepository(ctx context.Context, ref domain.RepoRef) (*domain.RepoMetadata, error) {
	args := m.Called(ctx, ref)
	meta, _ := args.Get(0).(*domain.RepoMetadata)
	return meta, args.Error(1)
}

func (m *MockHostingClient) ListDirectory(ctx context.Context, ref domain.RepoRef, path string) ([]domain.Entry, error) {
	args := m.Called(ctx, ref, path)
	entries, _ := args.Get(0).([]domain.Entry)
	return entries, args.Error(1)
}

func (m *MockHostingClient) GetFile(ctx context.Context, ref domain.RepoRef, path string) ([]byte, error) {
	args := m.Called(ctx, ref, path)
	content, _ := args.Get(0).([]byte)
	return content, args.Error(1)
}

// fakeTree 用内存目录模拟 GitHub，记录同时在途的请求数
type fakeTree struct {
	meta     *domain.RepoMetadata
	listings map[string][]domain.Entry
	files    map[string]string
	failures map[string]error
	delay    time.Duration

	inFlight    int64
	maxInFlight int64
}

func (f *fakeTree) GetRepository(ctx context.Context, ref domain.RepoRef) (*domain.RepoMetadata, error) {
	return f.meta, nil
}

func (f *fakeTree) ListDirectory(ctx context.Context, ref domain.RepoRef, path string) ([]domain.Entry, error) {
	current := atomic.AddInt64(&f.inFlight, 1)
	defer atomic.AddInt64(&f.inFlight, -1)
	for {
		observed := atomic.LoadInt64(&f.maxInFlight)
		if current <= observed || atomic.CompareAndSwapInt64(&f.maxInFlight, observed, current) {
			break
		}
	}

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err, ok := f.failures[path]; ok {
		return nil, err
	}
	return f.listings[path], nil
}

func (f *fakeTree) GetFile(ctx context.Context, ref domain.RepoRef, path string) ([]byte, error) {
	content, ok := f.files[path]
	if !ok {
		return nil, common.NewError(common.ErrCodeNotFound, path)
	}
	return []byte(content), nil
}

func dir(name, path string) domain.Entry {
	return domain.Entry{Name: name, Path: path, Kind: domain.EntryDir}
}

func file(name, path string, size int) domain.Entry {
	return domain.Entry{Name: name, Path: path, Kind: domain.EntryFile, Size: size}
}

func rateLimited() error {
	return common.WrapError(common.ErrCodeUpstreamFetch, "列出目录失败",
		common.NewError(common.ErrCodeRateLimited, "GitHub API 速率限制"))
}

func newTestAnalyzer(client port.HostingClient) *RepoAnalyzer {
	a := NewRepoAnalyzer(client, zap.NewNop())
	a.retryDelay = time.Millisecond
	a.nowFunc = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return a
}

func reactFixture() *fakeTree {
	return &fakeTree{
		meta: &domain.RepoMetadata{
			Name:        "demo",
			Description: "React demo",
			License:     "MIT License",
			Owner:       "octo",
		},
		listings: map[string][]domain.Entry{
			"": {
				dir("src", "src"),
				file("package.json", "package.json", 80),
				file("README.md", "README.md", 10),
			},
			"src": {
				file("main.tsx", "src/main.tsx", 100),
				dir("components", "src/components"),
			},
			"src/components": {
				file("App.tsx", "src/components/App.tsx", 200),
			},
		},
		files: map[string]string{
			"package.json": `{"dependencies":{"react":"^18"},"scripts":{"dev":"vite"}}`,
		},
	}
}

func TestRepoAnalyzer_ReactFrontend(t *testing.T) {
	a := newTestAnalyzer(reactFixture())

	analysis, err := a.Analyze(context.Background(), "https://github.com/octo/demo", false)
	require.NoError(t, err)

	assert.Contains(t, analysis.Technologies, "React")
	assert.Equal(t, domain.ProjectFrontend, analysis.ProjectType)
	assert.Equal(t, domain.PackageManagerNPM, analysis.PackageManager)
	assert.Equal(t, "index.js", analysis.MainFile)
	assert.Equal(t, "octo", analysis.Author)
	assert.Equal(t, "MIT License", analysis.License)
	assert.Equal(t, "https://github.com/octo/demo", analysis.URL)
	assert.False(t, analysis.HasTests)
	assert.False(t, analysis.HasCI)
	assert.False(t, analysis.Deep)
	assert.Empty(t, analysis.Notes)
	assert.Equal(t, "^18", analysis.Dependencies["react"])

	cmd, ok := analysis.Scripts.Get("dev")
	assert.True(t, ok)
	assert.Equal(t, "vite", cmd)

	// 浅分析时子目录不展开
	src := analysis.Structure.Children["src"]
	require.NotNil(t, src)
	assert.Equal(t, domain.NodeDir, src.Kind)
	assert.False(t, src.Expanded)
}

func TestRepoAnalyzer_AbsentManifest(t *testing.T) {
	client := &fakeTree{
		meta: &domain.RepoMetadata{Name: "tool", Owner: "octo"},
		listings: map[string][]domain.Entry{
			"": {file("main.py", "main.py", 10), dir("tests", "tests"), dir(".github", ".github")},
		},
	}
	a := newTestAnalyzer(client)

	analysis, err := a.Analyze(context.Background(), "github.com/octo/tool", false)
	require.NoError(t, err)

	assert.Equal(t, domain.PackageManagerUnknown, analysis.PackageManager)
	assert.NotNil(t, analysis.Dependencies)
	assert.Empty(t, analysis.Dependencies)
	assert.NotNil(t, analysis.DevDependencies)
	assert.Empty(t, analysis.DevDependencies)
	assert.Empty(t, analysis.Scripts)
	assert.Equal(t, "", analysis.MainFile)
	assert.Equal(t, domain.DefaultLicense, analysis.License)
	assert.Equal(t, []string{"Python"}, analysis.Technologies)
	assert.Equal(t, domain.ProjectLibrary, analysis.ProjectType)
	assert.True(t, analysis.HasTests)
	assert.True(t, analysis.HasCI)
	require.Len(t, analysis.Notes, 1)
	assert.Contains(t, analysis.Notes[0], common.ErrCodeManifestUnavailable)
}

func TestRepoAnalyzer_BrokenManifestIsNotFatal(t *testing.T) {
	client := reactFixture()
	client.files["package.json"] = `{"scripts": [`
	a := newTestAnalyzer(client)

	analysis, err := a.Analyze(context.Background(), "https://github.com/octo/demo", false)
	require.NoError(t, err)
	assert.Equal(t, domain.PackageManagerUnknown, analysis.PackageManager)
	assert.NotContains(t, analysis.Technologies, "React")
	require.Len(t, analysis.Notes, 1)
	assert.Contains(t, analysis.Notes[0], "invalid package.json")
}

func TestRepoAnalyzer_InvalidReference(t *testing.T) {
	client := new(MockHostingClient)
	a := newTestAnalyzer(client)

	_, err := a.Analyze(context.Background(), "https://gitlab.com/octo/demo", false)
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.ErrCodeInvalidReference))
	client.AssertNotCalled(t, "GetRepository", mock.Anything, mock.Anything)
}

func TestRepoAnalyzer_MandatoryFetchFailure(t *testing.T) {
	ref := domain.NewRepoRef("octo", "demo")

	t.Run("404 不重试", func(t *testing.T) {
		client := new(MockHostingClient)
		notFound := common.WrapError(common.ErrCodeUpstreamFetch, "获取仓库失败", common.NewError(common.ErrCodeNotFound, "404"))
		client.On("GetRepository", mock.Anything, ref).Return(nil, notFound).Once()
		client.On("ListDirectory", mock.Anything, ref, "").Return([]domain.Entry{}, nil).Maybe()

		_, err := newTestAnalyzer(client).Analyze(context.Background(), "https://github.com/octo/demo", false)
		require.Error(t, err)
		assert.True(t, common.HasCode(err, common.ErrCodeUpstreamFetch))
		client.AssertNumberOfCalls(t, "GetRepository", 1)
	})

	t.Run("5xx 重试后成功", func(t *testing.T) {
		client := new(MockHostingClient)
		flaky := common.WrapError(common.ErrCodeUpstreamFetch, "列出目录失败", common.NewError(common.ErrCodeUpstreamUnavailable, "502"))
		client.On("GetRepository", mock.Anything, ref).Return(&domain.RepoMetadata{Name: "demo", Owner: "octo"}, nil)
		client.On("ListDirectory", mock.Anything, ref, "").Return(nil, flaky).Once()
		client.On("ListDirectory", mock.Anything, ref, "").Return([]domain.Entry{file("go.mod", "go.mod", 1), file("main.go", "main.go", 1)}, nil).Once()

		analysis, err := newTestAnalyzer(client).Analyze(context.Background(), "https://github.com/octo/demo", false)
		require.NoError(t, err)
		assert.Equal(t, []string{"Go"}, analysis.Technologies)
		client.AssertNumberOfCalls(t, "ListDirectory", 2)
		client.AssertNotCalled(t, "GetFile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("普通错误也归类为上游错误", func(t *testing.T) {
		client := new(MockHostingClient)
		client.On("GetRepository", mock.Anything, ref).Return(&domain.RepoMetadata{Name: "demo"}, nil).Maybe()
		client.On("ListDirectory", mock.Anything, ref, "").Return(nil, errors.New("boom"))

		_, err := newTestAnalyzer(client).Analyze(context.Background(), "https://github.com/octo/demo", false)
		require.Error(t, err)
		assert.True(t, common.HasCode(err, common.ErrCodeUpstreamFetch))
	})
}

func TestRepoAnalyzer_DeepTraversal(t *testing.T) {
	a := newTestAnalyzer(reactFixture())

	analysis, err := a.Analyze(context.Background(), "https://github.com/octo/demo", true)
	require.NoError(t, err)
	assert.True(t, analysis.Deep)

	components := analysis.Structure.Children["src"].Children["components"]
	require.NotNil(t, components)
	assert.True(t, components.Expanded)
	assert.Equal(t, 200, components.Children["App.tsx"].Size)
	assert.Empty(t, analysis.Notes)
}

func TestRepoAnalyzer_RateLimitedSubtree(t *testing.T) {
	client := &fakeTree{
		meta: &domain.RepoMetadata{Name: "mono", Owner: "octo"},
		listings: map[string][]domain.Entry{
			"":              {dir("pkg", "pkg"), dir("docs", "docs"), file("go.mod", "go.mod", 5)},
			"pkg":           {dir("a", "pkg/a"), dir("b", "pkg/b"), file("pkg.go", "pkg/pkg.go", 1)},
			"pkg/a":         {file("a.go", "pkg/a/a.go", 2)},
			"docs":          {dir("guide", "docs/guide")},
			"docs/guide":    {file("intro.md", "docs/guide/intro.md", 3)},
			"pkg/b/ignored": {file("never.go", "pkg/b/ignored/never.go", 1)},
		},
		failures: map[string]error{"pkg/b": rateLimited()},
	}
	a := newTestAnalyzer(client)

	analysis, err := a.Analyze(context.Background(), "https://github.com/octo/mono", true)
	require.NoError(t, err)

	pkg := analysis.Structure.Children["pkg"]
	require.Equal(t, domain.NodeDir, pkg.Kind)
	assert.Equal(t, domain.NodeUnavailable, pkg.Children["b"].Kind)
	assert.Equal(t, "rate limited", pkg.Children["b"].Reason)

	// 同层和其他层的兄弟节点完整
	assert.Equal(t, 2, pkg.Children["a"].Children["a.go"].Size)
	assert.Equal(t, 1, pkg.Children["pkg.go"].Size)
	assert.Equal(t, 3, analysis.Structure.Children["docs"].Children["guide"].Children["intro.md"].Size)

	require.Len(t, analysis.Notes, 2)
	assert.Contains(t, analysis.Notes, "SUBTREE_UNAVAILABLE: pkg/b (rate limited)")
}

func TestRepoAnalyzer_ConcurrencyCap(t *testing.T) {
	listings := map[string][]domain.Entry{"": {}}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		listings[""] = append(listings[""], dir(name, name))
		listings[name] = []domain.Entry{dir("inner", name+"/inner")}
		listings[name+"/inner"] = []domain.Entry{file("x.txt", name+"/inner/x.txt", 1)}
	}
	client := &fakeTree{
		meta:     &domain.RepoMetadata{Name: "wide", Owner: "octo"},
		listings: listings,
		delay:    10 * time.Millisecond,
	}
	a := newTestAnalyzer(client)
	a.SetMaxGoroutines(3)

	analysis, err := a.Analyze(context.Background(), "https://github.com/octo/wide", true)
	require.NoError(t, err)

	assert.LessOrEqual(t, atomic.LoadInt64(&client.maxInFlight), int64(3))
	files, dirs, unavailable := analysis.Structure.Stats()
	assert.Equal(t, 10, files)
	assert.Equal(t, 20, dirs)
	assert.Equal(t, 0, unavailable)
}

func TestRepoAnalyzer_SetMaxGoroutines(t *testing.T) {
	a := NewRepoAnalyzer(new(MockHostingClient), nil)
	assert.Equal(t, 6, a.maxGoroutines)

	a.SetMaxGoroutines(0)
	assert.Equal(t, 6, a.maxGoroutines)

	a.SetMaxGoroutines(50)
	assert.Equal(t, 8, a.maxGoroutines)

	a.SetMaxGoroutines(1)
	assert.Equal(t, 1, a.maxGoroutines)
}
