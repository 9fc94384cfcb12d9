package domain

import (
	"time"
)

type Role string

const (
	RoleStudent           Role = "アルバイト"
	RoleDepartmentManager Role = "部署担当者"
	RoleHRManager         Role = "労務担当者"
	RoleSystemAdmin       Role = "システム管理者"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	DepartmentID *int64    `json:"departmentID"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

func (u *User) CanApprove(kind ApprovalKind) bool {
	switch kind {
	case ApprovalKindDepartment:
		return u.Role == RoleDepartmentManager || u.Role == RoleSystemAdmin
	case ApprovalKindLabor:
		return u.Role == RoleHRManager || u.Role == RoleSystemAdmin
	default:
		return false
	}
}

type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
