package service

import (
	"context"

	"github.com/avishai12321/Trackera-sub000/core/errors"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/entity"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Placeholder names for auto-provisioned employees whose profile carried
// no usable name parts.
const (
	PlaceholderFirstName = "Calendar"
	PlaceholderLastName  = "User"
)

type EmployeeService interface {
	// EnsureEmployee returns the employee profile for (tenant, user),
	// creating it when missing. Name parts default from the provider
	// profile, with deterministic placeholders when absent.
	EnsureEmployee(ctx context.Context, tenantID, userID uuid.UUID, firstName, lastName, email string) (*entity.Employee, error)
}

type employeeService struct {
	repo repository.EmployeeRepository
}

func NewEmployeeService(repo repository.EmployeeRepository) EmployeeService {
	return &employeeService{repo: repo}
}

func (s *employeeService) EnsureEmployee(ctx context.Context, tenantID, userID uuid.UUID, firstName, lastName, email string) (*entity.Employee, error) {
	existing, err := s.repo.GetByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to look up employee", err)
	}
	if existing != nil {
		return existing, nil
	}

	if firstName == "" {
		firstName = PlaceholderFirstName
	}
	if lastName == "" {
		lastName = PlaceholderLastName
	}

	emp := &entity.Employee{
		TenantID:  tenantID,
		UserID:    userID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Code:      slug.Make(firstName + " " + lastName),
	}

	created, err := s.repo.Create(ctx, emp)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to create employee", err)
	}

	logger.Info("EmployeeService:EnsureEmployee:Created",
		"tenant_id", tenantID, "user_id", userID, "employee_id", created.ID, "code", created.Code)
	return created, nil
}
