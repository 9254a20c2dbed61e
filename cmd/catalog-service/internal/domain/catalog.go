package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxCatalogNameLength 名录名称最大长度
	MaxCatalogNameLength = 100

	// MaxCatalogDescriptionLength 名录描述最大长度
	MaxCatalogDescriptionLength = 500
)

// Catalog 观察名录领域模型
// 同一个所有者下名录名称唯一
type Catalog struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	OwnerID     string    `json:"owner_id" gorm:"uniqueIndex:idx_owner_name;index"`
	Name        string    `json:"name" gorm:"uniqueIndex:idx_owner_name;size:100"`
	Description string    `json:"description" gorm:"size:500"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"index"`
}

// TableName specifies the table name
func (Catalog) TableName() string {
	return "catalogs"
}

// NewCatalog 创建名录
func NewCatalog(ownerID, name, description string) (*Catalog, error) {
	catalog := &Catalog{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	return catalog, nil
}

// Validate 校验名录字段
func (c *Catalog) Validate() error {
	if c.OwnerID == "" {
		return ErrValidation
	}
	if c.Name == "" || len(c.Name) > MaxCatalogNameLength {
		return ErrInvalidCatalogName
	}
	if len(c.Description) > MaxCatalogDescriptionLength {
		return ErrInvalidDescription
	}
	return nil
}

// Rename 更新名录名称
func (c *Catalog) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxCatalogNameLength {
		return ErrInvalidCatalogName
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	return nil
}

// UpdateDescription 更新名录描述
func (c *Catalog) UpdateDescription(description string) error {
	description = strings.TrimSpace(description)
	if len(description) > MaxCatalogDescriptionLength {
		return ErrInvalidDescription
	}
	c.Description = description
	c.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 判断是否为所有者
func (c *Catalog) IsOwnedBy(userID string) bool {
	return c.OwnerID == userID
}

// CatalogUpdate 名录部分更新字段
// nil 表示该字段不更新
type CatalogUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// IsEmpty 是否没有任何待更新字段
func (u *CatalogUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil
}
