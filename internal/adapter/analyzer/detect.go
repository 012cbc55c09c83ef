package analyzer

import (
	"path"
	"strings"

	"github-readme-generator/internal/domain"
)

// 检测规则都是数据表，新增规则只需要加一行

type labelRule struct {
	key   string
	label string
}

// dependencyLabels 依赖名 -> 技术标签，按表中顺序检测
var dependencyLabels = []labelRule{
	{"react", "React"},
	{"vue", "Vue.js"},
	{"angular", "Angular"},
	{"@angular/core", "Angular"},
	{"svelte", "Svelte"},
	{"next", "Next.js"},
	{"nuxt", "Nuxt.js"},
	{"vite", "Vite"},
	{"webpack", "Webpack"},
	{"typescript", "TypeScript"},
	{"tailwindcss", "Tailwind CSS"},
	{"express", "Express.js"},
	{"fastify", "Fastify"},
	{"nestjs", "NestJS"},
	{"@nestjs/core", "NestJS"},
}

// extensionLabels 顶层文件扩展名 -> 技术标签
var extensionLabels = map[string]string{
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".py":    "Python",
	".rs":    "Rust",
	".go":    "Go",
	".java":  "Java",
	".php":   "PHP",
	".rb":    "Ruby",
	".kt":    "Kotlin",
	".swift": "Swift",
	".cs":    "C#",
}

// configFileLabels 顶层配置文件名 -> 基础设施标签
var configFileLabels = map[string]string{
	"Dockerfile":          "Docker",
	"docker-compose.yml":  "Docker Compose",
	"docker-compose.yaml": "Docker Compose",
	"compose.yml":         "Docker Compose",
	"compose.yaml":        "Docker Compose",
	"vercel.json":         "Vercel",
	"netlify.toml":        "Netlify",
}

// uiFrameworks 判断 frontend 时只看运行时依赖
var uiFrameworks = []string{"react", "vue", "svelte", "@angular/core", "angular", "preact", "solid-js"}

// lockFiles 锁文件 -> 包管理器，先匹配的优先
var lockFiles = []struct {
	name    string
	manager domain.PackageManager
}{
	{"pnpm-lock.yaml", domain.PackageManagerPNPM},
	{"yarn.lock", domain.PackageManagerYarn},
}

const (
	ciDirectory      = ".github"
	defaultMainFile  = "index.js"
	cliEntryFileName = "cli.js"
	binDirectoryName = "bin"
)

// DetectTechnologies 根据顶层列表和 manifest 检测技术栈
// 纯函数：相同输入总是得到相同的结果，去重并保持首次发现的顺序
func DetectTechnologies(entries []domain.Entry, manifest *domain.Manifest) []string {
	technologies := make([]string, 0)
	seen := map[string]bool{}
	add := func(label string) {
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		technologies = append(technologies, label)
	}

	if manifest != nil {
		for _, rule := range dependencyLabels {
			if manifest.HasDependency(rule.key) {
				add(rule.label)
			}
		}
	}

	for _, entry := range entries {
		if entry.Kind != domain.EntryFile {
			continue
		}
		add(extensionLabels[strings.ToLower(path.Ext(entry.Name))])
	}

	for _, entry := range entries {
		add(configFileLabels[entry.Name])
	}

	return technologies
}

// ClassifyProject 按固定优先级判断项目类型，第一个命中的规则生效
func ClassifyProject(entries []domain.Entry, manifest *domain.Manifest) domain.ProjectType {
	if manifest != nil && (manifest.Scripts.Has("dev") || manifest.Scripts.Has("start")) {
		switch {
		case anyNameContains(entries, "server", "api"):
			return domain.ProjectFullstack
		case hasUIFramework(manifest):
			return domain.ProjectFrontend
		default:
			return domain.ProjectBackend
		}
	}

	if manifest.HasBin() || hasEntry(entries, cliEntryFileName) || hasEntry(entries, binDirectoryName) {
		return domain.ProjectCLI
	}

	// 其余情况 (包括声明了 main/module 的包) 都视为库
	return domain.ProjectLibrary
}

// HasTests 顶层有名字包含 test 或 spec 的条目 (不区分大小写)
func HasTests(entries []domain.Entry) bool {
	return anyNameContains(entries, "test", "spec")
}

// HasCI 顶层存在 .github 目录
func HasCI(entries []domain.Entry) bool {
	return hasEntry(entries, ciDirectory)
}

// DetectPackageManager 只有存在 manifest 时才判断，按锁文件区分 pnpm / yarn，否则是 npm
func DetectPackageManager(entries []domain.Entry, manifest *domain.Manifest) domain.PackageManager {
	if manifest == nil {
		return domain.PackageManagerUnknown
	}
	for _, lock := range lockFiles {
		if hasEntry(entries, lock.name) {
			return lock.manager
		}
	}
	return domain.PackageManagerNPM
}

// MainFile manifest 声明的入口，未声明时默认 index.js，没有 manifest 时为空
func MainFile(manifest *domain.Manifest) string {
	if manifest == nil {
		return ""
	}
	if manifest.Main != "" {
		return manifest.Main
	}
	return defaultMainFile
}

func hasUIFramework(manifest *domain.Manifest) bool {
	for _, name := range uiFrameworks {
		if manifest.HasRuntimeDependency(name) {
			return true
		}
	}
	return false
}

func hasEntry(entries []domain.Entry, name string) bool {
	for _, entry := range entries {
		if entry.Name == name {
			return true
		}
	}
	return false
}

func anyNameContains(entries []domain.Entry, needles ...string) bool {
	for _, entry := range entries {
		lower := strings.ToLower(entry.Name)
		for _, needle := range needles {
			if strings.Contains(lower, needle) {
				return true
			}
		}
	}
	return false
}
