package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github-readme-generator/internal/common"
)

// repoRefPattern 匹配 github.com/owner/repo，允许可选的协议头、www 前缀、.git 后缀以及多余路径
var repoRefPattern = regexp.MustCompile(
	`^(?:https?://)?(?i:www\.)?(?i:github\.com)/([A-Za-z0-9][A-Za-z0-9-]{0,38})/([A-Za-z0-9._-]+?)(?:\.git)?(?:[/?#].*)?$`,
)

// RepoRef 仓库标识 (owner + name)，解析后不可变
type RepoRef struct {
	owner string
	name  string
}

// ParseRepoRef 解析仓库地址，不匹配 host/owner/repo 时返回 INVALID_REFERENCE 错误
func ParseRepoRef(raw string) (RepoRef, error) {
	trimmed := strings.TrimSpace(raw)
	match := repoRefPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return RepoRef{}, common.NewError(common.ErrCodeInvalidReference, fmt.Sprintf("无效的 GitHub 仓库地址: %q", raw))
	}
	name := match[2]
	if name == "." || name == ".." {
		return RepoRef{}, common.NewError(common.ErrCodeInvalidReference, fmt.Sprintf("无效的仓库名: %q", raw))
	}
	return RepoRef{owner: match[1], name: name}, nil
}

// NewRepoRef 直接由 owner/name 构造，主要用于测试和内部调用
func NewRepoRef(owner, name string) RepoRef {
	return RepoRef{owner: owner, name: name}
}

func (r RepoRef) Owner() string { return r.owner }
func (r RepoRef) Name() string  { return r.name }

// FullName 返回 owner/name
func (r RepoRef) FullName() string {
	return r.owner + "/" + r.name
}

// URL 返回仓库的网页地址
func (r RepoRef) URL() string {
	return "https://github.com/" + r.FullName()
}

func (r RepoRef) String() string {
	return r.FullName()
}
