package service

import "gorm.io/gorm"

// 事务辅助：tx 为空（mock 注入场景）时直接跳过
// 见 repository.BeginTx 对空 db 的约定

func txRollback(tx *gorm.DB) {
	if tx != nil {
		tx.Rollback()
	}
}

func txCommit(tx *gorm.DB) error {
	if tx == nil {
		return nil
	}
	return tx.Commit().Error
}
