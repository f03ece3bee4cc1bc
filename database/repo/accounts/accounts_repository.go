package accounts

import (
	"errors"
	"log"

	"github.com/anoixa/pixelwise/database/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Repository 用户仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的用户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser 创建用户，密码以 bcrypt 哈希存储
func (r *Repository) CreateUser(username, password string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Password: string(hashed),
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByUsername 通过用户名获取用户
func (r *Repository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	return &user, err
}

// GetUserByID 通过ID获取用户
func (r *Repository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	return &user, err
}

// VerifyPassword 校验用户密码
func (r *Repository) VerifyPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

// CreateDefaultAdminUser 创建默认管理员用户（首次启动）
func (r *Repository) CreateDefaultAdminUser() {
	var count int64
	if err := r.db.Model(&models.User{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	if _, err := r.CreateUser("admin", "admin123"); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("Failed to create default admin user: %v", err)
		}
		return
	}
	log.Println("Created default admin user 'admin', please change the password immediately")
}
