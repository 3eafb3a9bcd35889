package domain

import (
	"errors"

	"gorm.io/gorm"
)

// UserRole 用户角色，注册时确定后不可变更
type UserRole string

const (
	RoleAdmin         UserRole = "ADMIN"
	RoleInvestor      UserRole = "INVESTOR"
	RoleBusinessOwner UserRole = "BUSINESS_OWNER"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserNotFound       = errors.New("user not found")
)

// User 平台用户实体
type User struct {
	gorm.Model
	Email        string   `gorm:"column:email;type:varchar(191);uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"column:password_hash;type:varchar(128);not null" json:"-"`
	FullName     string   `gorm:"column:full_name;type:varchar(120)" json:"full_name"`
	Phone        string   `gorm:"column:phone;type:varchar(32)" json:"phone"`
	Role         UserRole `gorm:"column:role;type:varchar(20);not null" json:"role"`
}

func (User) TableName() string { return "users" }

// NewUser 创建用户，角色在此固定
func NewUser(email, passwordHash, fullName string, role UserRole) *User {
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         role,
	}
}

// ValidRegistrationRole 注册时允许的角色（ADMIN 仅能通过种子数据创建）
func ValidRegistrationRole(role UserRole) bool {
	return role == RoleInvestor || role == RoleBusinessOwner
}
