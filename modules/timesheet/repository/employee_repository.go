package repository

import (
	"context"
	"database/sql"

	"github.com/avishai12321/Trackera-sub000/core/database"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/entity"

	"github.com/google/uuid"
)

type EmployeeRepository interface {
	Create(ctx context.Context, emp *entity.Employee) (*entity.Employee, error)
	GetByUser(ctx context.Context, tenantID, userID uuid.UUID) (*entity.Employee, error)
}

type employeeRepository struct {
	db database.IDatabase
}

func NewEmployeeRepository(db database.IDatabase) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, emp *entity.Employee) (*entity.Employee, error) {
	query := `
		INSERT INTO employees (tenant_id, user_id, first_name, last_name, email, code)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id, user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		emp.TenantID, emp.UserID, emp.FirstName, emp.LastName, emp.Email, emp.Code,
	).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		logger.Error("EmployeeRepository:Create:Error", "error", err, "tenant_id", emp.TenantID, "user_id", emp.UserID)
		return nil, err
	}
	return emp, nil
}

func (r *employeeRepository) GetByUser(ctx context.Context, tenantID, userID uuid.UUID) (*entity.Employee, error) {
	var emp entity.Employee
	query := `
		SELECT id, tenant_id, user_id, first_name, last_name, email, code, created_at, updated_at
		FROM employees
		WHERE tenant_id = $1 AND user_id = $2
	`
	err := r.db.GetContext(ctx, &emp, query, tenantID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EmployeeRepository:GetByUser:Error", "error", err, "user_id", userID)
		return nil, err
	}
	return &emp, nil
}
