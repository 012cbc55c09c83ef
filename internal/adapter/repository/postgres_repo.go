package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github-readme-generator/internal/common"
	"github-readme-generator/internal/domain"
)

// defaultListLimit 未指定条数时返回的历史记录数
const defaultListLimit = 20

// maxListLimit 单次查询的上限
const maxListLimit = 100

// PostgresRepo 实现了 port.HistoryStore 接口
type PostgresRepo struct {
	db *gorm.DB
}

// NewPostgresRepo 初始化数据库连接并自动迁移表结构
func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "连接数据库失败", err)
	}

	// 自动建表，字段变化时同步更新
	if err := db.AutoMigrate(&domain.HistoryRecord{}); err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "数据库迁移失败", err)
	}

	return &PostgresRepo{db: db}, nil
}

// Save 写入一条历史记录，ID 为空时自动生成 UUID
func (r *PostgresRepo) Save(ctx context.Context, record *domain.HistoryRecord) error {
	if record == nil {
		return common.NewError(common.ErrCodeInvalidInput, "历史记录为空")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return common.WrapError(common.ErrCodeDatabase, "保存历史记录失败", err)
	}
	return nil
}

// ListByRepo 按生成时间倒序查询某个仓库的历史记录
func (r *PostgresRepo) ListByRepo(ctx context.Context, repoFullName string, limit int) ([]*domain.HistoryRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var records []*domain.HistoryRecord
	err := r.db.WithContext(ctx).
		Where("repo_full_name = ?", repoFullName).
		Order("generated_at desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "查询历史记录失败", err)
	}
	return records, nil
}
