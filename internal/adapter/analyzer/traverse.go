package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github-readme-generator/internal/common"
	"github-readme-generator/internal/domain"
	"github-readme-generator/internal/port"
)

// traversal 一次深度遍历的状态
// 信号量只在网络请求期间持有，等待子目录时不占用名额，所以再深的树也不会死锁
type traversal struct {
	client port.HostingClient
	ref    domain.RepoRef
	sem    *semaphore.Weighted
	logger *zap.Logger
}

// traverse 从已获取的顶层列表开始递归展开所有目录
func (a *RepoAnalyzer) traverse(ctx context.Context, ref domain.RepoRef, entries []domain.Entry) (*domain.Node, error) {
	if ctx.Err() != nil {
		return nil, common.WrapError(common.ErrCodeUpstreamFetch, "深度遍历被取消", ctx.Err())
	}
	t := &traversal{
		client: a.client,
		ref:    ref,
		sem:    semaphore.NewWeighted(int64(a.maxGoroutines)),
		logger: a.logger,
	}
	return t.expand(ctx, entries), nil
}

// expand 并发展开同一层的子目录，全部结束后再合并到父节点
func (t *traversal) expand(ctx context.Context, entries []domain.Entry) *domain.Node {
	children := make(map[string]*domain.Node, len(entries))
	var mu sync.Mutex
	var g errgroup.Group

	for _, entry := range entries {
		if entry.Kind != domain.EntryDir {
			children[entry.Name] = domain.NewFileNode(entry.Size)
			continue
		}
		entry := entry
		g.Go(func() error {
			node := t.directory(ctx, entry)
			mu.Lock()
			children[entry.Name] = node
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return domain.NewDirNode(children)
}

// directory 获取失败时只把这一棵子树标记为不可用
func (t *traversal) directory(ctx context.Context, entry domain.Entry) *domain.Node {
	listing, err := t.list(ctx, entry.Path)
	if err != nil {
		reason := unavailableReason(err)
		t.logger.Warn("⚠️ 子目录不可用", zap.String("path", entry.Path), zap.String("reason", reason))
		return domain.NewUnavailableNode(reason)
	}
	return t.expand(ctx, listing)
}

func (t *traversal) list(ctx context.Context, path string) ([]domain.Entry, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)
	return t.client.ListDirectory(ctx, t.ref, path)
}

// unavailableReason 简短的失败原因，写进树节点和 notes
func unavailableReason(err error) string {
	switch {
	case common.HasCode(err, common.ErrCodeRateLimited):
		return "rate limited"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case common.HasCode(err, common.ErrCodeNotFound):
		return "not found"
	case common.IsTransient(err):
		return "upstream unavailable"
	}
	return "fetch failed"
}

// collectUnavailable 列出所有不可用子树的路径，按路径排序
func collectUnavailable(root *domain.Node) []string {
	type frame struct {
		node *domain.Node
		path string
	}
	var notes []string
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for name, child := range current.node.Children {
			childPath := name
			if current.path != "" {
				childPath = current.path + "/" + name
			}
			switch child.Kind {
			case domain.NodeUnavailable:
				notes = append(notes, fmt.Sprintf("%s: %s (%s)", common.ErrCodeSubtreeUnavailable, childPath, child.Reason))
			case domain.NodeDir:
				stack = append(stack, frame{node: child, path: childPath})
			}
		}
	}
	sort.Strings(notes)
	return notes
}
