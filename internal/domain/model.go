package domain

import "time"

// ProjectType 项目类型
type ProjectType string

const (
	ProjectFrontend  ProjectType = "frontend"
	ProjectBackend   ProjectType = "backend"
	ProjectFullstack ProjectType = "fullstack"
	ProjectCLI       ProjectType = "cli"
	ProjectLibrary   ProjectType = "library"
)

// PackageManager 包管理器
type PackageManager string

const (
	PackageManagerNPM     PackageManager = "npm"
	PackageManagerYarn    PackageManager = "yarn"
	PackageManagerPNPM    PackageManager = "pnpm"
	PackageManagerPip     PackageManager = "pip"
	PackageManagerCargo   PackageManager = "cargo"
	PackageManagerGo      PackageManager = "go"
	PackageManagerUnknown PackageManager = "unknown"
)

// IsNode 判断是否为 Node.js 生态的包管理器
func (p PackageManager) IsNode() bool {
	return p == PackageManagerNPM || p == PackageManagerYarn || p == PackageManagerPNPM
}

// EntryKind 目录项类型
type EntryKind string

const (
	EntryFile EntryKind = "file"
	EntryDir  EntryKind = "dir"
)

// Entry 目录列表中的一项
type Entry struct {
	Name string    `json:"name" yaml:"name"`
	Path string    `json:"path" yaml:"path"`
	Kind EntryKind `json:"type" yaml:"type"`
	Size int       `json:"size,omitempty" yaml:"size,omitempty"`
}

// RepoMetadata 仓库基础信息 (来自 GitHub)
type RepoMetadata struct {
	Name          string
	FullName      string
	Description   string
	License       string
	Owner         string
	DefaultBranch string
	HTMLURL       string
	Stars         int
}

// DefaultLicense 仓库未声明许可证时使用的标签
const DefaultLicense = "Not specified"

// Analysis 一次仓库分析的结果，构造后不再修改
type Analysis struct {
	Name            string            `json:"name" yaml:"name"`
	FullName        string            `json:"fullName" yaml:"fullName"`
	URL             string            `json:"url" yaml:"url"`
	Description     string            `json:"description" yaml:"description"`
	Technologies    []string          `json:"technologies" yaml:"technologies"`
	ProjectType     ProjectType       `json:"projectType" yaml:"projectType"`
	HasTests        bool              `json:"hasTests" yaml:"hasTests"`
	HasCI           bool              `json:"hasCI" yaml:"hasCI"`
	PackageManager  PackageManager    `json:"packageManager" yaml:"packageManager"`
	Structure       *Node             `json:"structure" yaml:"structure"`
	Dependencies    map[string]string `json:"dependencies" yaml:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies" yaml:"devDependencies"`
	Scripts         Scripts           `json:"scripts" yaml:"scripts"`
	License         string            `json:"license" yaml:"license"`
	Author          string            `json:"author" yaml:"author"`
	MainFile        string            `json:"mainFile" yaml:"mainFile"`
	DefaultBranch   string            `json:"defaultBranch" yaml:"defaultBranch"`
	Stars           int               `json:"stars" yaml:"stars"`
	Deep            bool              `json:"deep" yaml:"deep"`
	Notes           []string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	AnalyzedAt      time.Time         `json:"analyzedAt" yaml:"analyzedAt"`
}

// Language 文档语言
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageTurkish Language = "tr"
	LanguageMulti   Language = "multi"
)

// Style 文档风格
type Style string

const (
	StyleMinimal  Style = "minimal"
	StyleModern   Style = "modern"
	StyleDetailed Style = "detailed"
)

// RenderOptions 文档生成选项
type RenderOptions struct {
	Language      Language
	Style         Style
	AIProvider    string
	IncludeBadges bool
	IncludeTree   bool
}

// DefaultRenderOptions 与工具接口的默认值保持一致
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Language:      LanguageEnglish,
		Style:         StyleModern,
		AIProvider:    "openai",
		IncludeBadges: true,
		IncludeTree:   true,
	}
}

// DocumentMetadata 文档元数据
type DocumentMetadata struct {
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
	Language    Language  `json:"language" yaml:"language"`
	Style       Style     `json:"style" yaml:"style"`
	AIProvider  string    `json:"aiProvider,omitempty" yaml:"aiProvider,omitempty"`
}

// Document 生成的项目说明文档
type Document struct {
	Content  string           `json:"content" yaml:"content"`
	Metadata DocumentMetadata `json:"metadata" yaml:"metadata"`
}

// DeliveryResult webhook 投递结果
type DeliveryResult struct {
	StatusCode int         `json:"statusCode" yaml:"statusCode"`
	Response   interface{} `json:"response,omitempty" yaml:"response,omitempty"`
}

// Result 每个对外操作统一返回的成功/失败信封
type Result struct {
	Success   bool            `json:"success" yaml:"success"`
	Error     string          `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorCode string          `json:"errorCode,omitempty" yaml:"errorCode,omitempty"`
	Analysis  *Analysis       `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Document  *Document       `json:"document,omitempty" yaml:"document,omitempty"`
	Delivery  *DeliveryResult `json:"deliveryResult,omitempty" yaml:"deliveryResult,omitempty"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
}

// HistoryRecord 已生成文档的历史记录
type HistoryRecord struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	RepoFullName string    `json:"repoFullName" gorm:"index"`
	Language     string    `json:"language"`
	Style        string    `json:"style"`
	AnalysisJSON string    `json:"analysis" gorm:"type:text"`
	Content      string    `json:"content" gorm:"type:text"`
	GeneratedAt  time.Time `json:"generatedAt" gorm:"index"`
}
