package models

import (
	"github.com/schoolerp/backend/internal/domain/partner"
)

// ResponsibleModel is the persistence model for the Responsible domain entity.
type ResponsibleModel struct {
	AggregateModel
	Name     string `gorm:"type:varchar(200);not null"`
	Document string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Email    string `gorm:"type:varchar(200);index"`
	Phone    string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (ResponsibleModel) TableName() string {
	return "responsibles"
}

// ToDomain converts the persistence model to a domain Responsible entity.
func (m *ResponsibleModel) ToDomain() *partner.Responsible {
	return &partner.Responsible{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Document:          m.Document,
		Email:             m.Email,
		Phone:             m.Phone,
	}
}

// FromDomain populates the persistence model from a domain Responsible entity.
func (m *ResponsibleModel) FromDomain(r *partner.Responsible) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Name = r.Name
	m.Document = r.Document
	m.Email = r.Email
	m.Phone = r.Phone
}

// ResponsibleModelFromDomain creates a new persistence model from a domain Responsible entity.
func ResponsibleModelFromDomain(r *partner.Responsible) *ResponsibleModel {
	m := &ResponsibleModel{}
	m.FromDomain(r)
	return m
}
