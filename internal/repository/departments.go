package repository

import (
	"context"
	"time"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

func (r *Repository) CreateDepartment(department *domain.Department) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO departments (name)
		VALUES ($1)
		RETURNING id, created_at, version
	`

	if err := r.dbpool.QueryRowContext(ctx, query, department.Name).Scan(&department.ID, &department.CreatedAt, &department.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetDepartmentByID(id int64) (*domain.Department, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT name, created_at, version FROM departments WHERE id = $1
	`

	department := &domain.Department{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&department.Name, &department.CreatedAt, &department.Version); err != nil {
		return nil, err
	}

	return department, nil
}

func (r *Repository) GetAllDepartments() ([]*domain.Department, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, name, created_at, version FROM departments ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := make([]*domain.Department, 0)
	for rows.Next() {
		department := &domain.Department{}
		if err := rows.Scan(&department.ID, &department.Name, &department.CreatedAt, &department.Version); err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return departments, nil
}

// GetApproversForUser は申請者の所属部署の承認者（部署担当者）を返す。
// 所属部署が未設定の場合は部署を問わず部署担当者全員を返す
func (r *Repository) GetApproversForUser(user *domain.User) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, username, full_name, email, role, department_id, is_active, created_at, version
		FROM users
		WHERE role = $1 AND is_active = TRUE AND ($2::bigint IS NULL OR department_id = $2)
	`

	rows, err := r.dbpool.QueryContext(ctx, query, domain.RoleDepartmentManager, user.DepartmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	approvers := make([]*domain.User, 0)
	for rows.Next() {
		approver := &domain.User{}
		dst := []any{&approver.ID, &approver.Username, &approver.FullName, &approver.Email, &approver.Role, &approver.DepartmentID, &approver.IsActive, &approver.CreatedAt, &approver.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		approvers = append(approvers, approver)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return approvers, nil
}
