// Package repository 负责对作品集数据表的全部查询。
// 每个仓储在构造时接收共享的 *gorm.DB 连接池，只通过它执行参数化语句。
package repository

import (
	"errors"

	"gorm.io/gorm"

	"portfolio/internal/errcode"
)

// translate 把驱动层错误映射为 errcode 分类。
func translate(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errcode.NotFound("%s", notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errcode.Conflict("%s", "duplicate value for a unique field")
	default:
		return err
	}
}

// affected 把未影响任何行的写操作转换为 NotFound。
func affected(tx *gorm.DB, notFound string) error {
	if tx.Error != nil {
		return translate(tx.Error, notFound)
	}
	if tx.RowsAffected == 0 {
		return errcode.NotFound("%s", notFound)
	}
	return nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
