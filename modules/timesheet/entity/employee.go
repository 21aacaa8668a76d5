package entity

import (
	"github.com/avishai12321/Trackera-sub000/core/entity"

	"github.com/google/uuid"
)

// Employee is the profile time entries are logged against. One employee
// exists per (tenant, user); calendar flows auto-provision it when absent.
type Employee struct {
	entity.BaseEntity
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Code      string    `db:"code" json:"code"`
}

func (Employee) TableName() string {
	return "employees"
}
