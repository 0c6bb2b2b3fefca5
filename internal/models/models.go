package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	Email           string    `gorm:"uniqueIndex;not null"        json:"email"`
	PasswordHash    string    `gorm:"not null"                    json:"-"`
	Nombre          string    `gorm:"not null"                    json:"nombre"`
	ApellidoPaterno string    `gorm:"not null"                    json:"apellido_paterno"`
	ApellidoMaterno *string   `                                   json:"apellido_materno"`
	Role            string    `gorm:"not null;default:user"       json:"role"`
	IsActive        bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt       time.Time `                                   json:"created_at"`
	UpdatedAt       time.Time `                                   json:"updated_at"`
}

func (User) TableName() string { return "usuarios" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	Titulo           string    `gorm:"not null"                    json:"titulo"`
	Descripcion      string    `gorm:"not null"                    json:"descripcion"`
	Categoria        string    `gorm:"not null;index"              json:"categoria"`
	ImagenURL        string    `                                   json:"imagen_url"`
	Caracteristicas  []string  `gorm:"serializer:json;type:text"   json:"caracteristicas"`
	Aplicaciones     []string  `gorm:"serializer:json;type:text"   json:"aplicaciones"`
	Especificaciones []string  `gorm:"serializer:json;type:text"   json:"especificaciones"`
	IsActive         bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedBy        string    `                                   json:"created_by,omitempty"`
	CreatedAt        time.Time `                                   json:"created_at"`
	UpdatedAt        time.Time `                                   json:"updated_at"`
}

func (Product) TableName() string { return "productos" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

const (
	ServiceDictamen = "dictamen"
	ServiceTramite  = "tramite"

	StatusPending    = "pendiente"
	StatusInProgress = "en_proceso"
	StatusDone       = "completado"
	StatusCancelled  = "cancelado"
)

type ServiceRequest struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"              json:"id"`
	TipoServicio    string    `gorm:"not null;index"                    json:"tipo_servicio"`
	SubtipoServicio string    `gorm:"not null"                          json:"subtipo_servicio"`
	Email           string    `gorm:"not null"                          json:"email"`
	Nombre          string    `gorm:"not null"                          json:"nombre"`
	ApellidoPaterno string    `gorm:"not null"                          json:"apellido_paterno"`
	ApellidoMaterno *string   `                                         json:"apellido_materno"`
	Telefono        string    `gorm:"not null"                          json:"telefono"`
	NombreEmpresa   string    `gorm:"not null"                          json:"nombre_empresa"`
	Ubicacion       string    `gorm:"not null"                          json:"ubicacion"`
	Comentarios     *string   `                                         json:"comentarios"`
	Status          string    `gorm:"not null;default:pendiente;index"  json:"status"`
	ComentarioAdmin *string   `                                         json:"comentario_admin,omitempty"`
	CreatedAt       time.Time `                                         json:"created_at"`
	UpdatedAt       time.Time `                                         json:"updated_at"`
}

func (ServiceRequest) TableName() string { return "solicitudes_servicio" }

func (s *ServiceRequest) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusCancelled:
		return true
	}
	return false
}

func All() []any {
	return []any{&User{}, &Product{}, &ServiceRequest{}}
}
