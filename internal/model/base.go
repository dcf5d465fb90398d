package model

import "time"

// DateLayout DATE 列在接口中的文本格式
const DateLayout = "2006-01-02"

// CreatedModel 只追加表的审计字段
type CreatedModel struct {
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
