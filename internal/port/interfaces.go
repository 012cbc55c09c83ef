package port

import (
	"context"

	"github-readme-generator/internal/domain"
)

// HostingClient (取件员): 负责从代码托管平台读取仓库信息
// 只读，不修改上游任何状态
type HostingClient interface {
	// 仓库元数据：名称、描述、许可证、所有者、默认分支
	GetRepository(ctx context.Context, ref domain.RepoRef) (*domain.RepoMetadata, error)

	// 列出某一层目录，path 为空表示仓库根目录
	ListDirectory(ctx context.Context, ref domain.RepoRef, path string) ([]domain.Entry, error)

	// 读取单个文件内容 (已做 base64 解码)
	GetFile(ctx context.Context, ref domain.RepoRef, path string) ([]byte, error)
}

// Analyzer (勘察员): 负责把仓库变成一份不可变的分析结果
type Analyzer interface {
	Analyze(ctx context.Context, repoRef string, deep bool) (*domain.Analysis, error)
}

// Generator (撰稿人): 负责把分析结果渲染成说明文档，纯函数，不访问网络
type Generator interface {
	Render(analysis *domain.Analysis, opts domain.RenderOptions) *domain.Document
}

// Notifier (信使): 负责把结果推送给外部工作流
type Notifier interface {
	// 单次投递，不重试，是否重试由调用方决定
	Notify(ctx context.Context, callbackURL string, payload interface{}) (*domain.DeliveryResult, error)
}

// HistoryStore (档案员): 负责记录生成过的文档
type HistoryStore interface {
	Save(ctx context.Context, record *domain.HistoryRecord) error

	// 按生成时间倒序返回某个仓库最近的记录
	ListByRepo(ctx context.Context, repoFullName string, limit int) ([]*domain.HistoryRecord, error)
}
