package repositories

import (
	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/pkg/orm"
)

// UserRepository handles database operations for User.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	err := orm.DB().Model(&models.User{}).Where("email = ?", email).First(&user)
	return user, err
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(id uint) (models.User, error) {
	var user models.User
	err := orm.DB().Model(&models.User{}).Where("id = ?", id).First(&user)
	return user, err
}

// ExistsByEmail reports whether any user already owns the email.
func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := orm.DB().Model(&models.User{}).Where("email = ?", email).Count(&count)
	return count > 0, err
}

// Create persists a new user record.
func (r *UserRepository) Create(user *models.User) error {
	return orm.DB().Create(user)
}
