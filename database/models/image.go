package models

import "gorm.io/gorm"

// 生成请求的默认图片尺寸，模型响应未携带尺寸信息时使用
const (
	DefaultImageWidth  = 1000
	DefaultImageHeight = 1778
)

// Image 一次生成请求的持久化记录
// MediaReference/SecureURL 仅在上传完整成功后写入，
// 部分失败的上传不会以成功记录落库
type Image struct {
	gorm.Model
	Prompt string `gorm:"not null"`
	Title  string `gorm:"index"`

	MediaReference string `gorm:"uniqueIndex:idx_media_reference"`
	SecureURL      string

	Width  int `gorm:"not null"`
	Height int `gorm:"not null"`

	AltText string
	Tags    string

	// AuthorID 为空表示匿名生成
	AuthorID *uint `gorm:"index:idx_author_updated_at,priority:1"`
	Author   *User `gorm:"foreignKey:AuthorID"`
}
