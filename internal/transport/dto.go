package transport

import (
	"time"

	"github.com/mc-consultoria/proteccion-civil/internal/contact"
	"github.com/mc-consultoria/proteccion-civil/internal/models"
	"github.com/mc-consultoria/proteccion-civil/internal/util"
)

// Envelope wraps every /api response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

func OK(data any) Envelope { return Envelope{Success: true, Data: data} }

func Fail(msg string) Envelope { return Envelope{Success: false, Error: msg} }

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	Nombre          string `json:"nombre"`
	ApellidoPaterno string `json:"apellido_paterno"`
	ApellidoMaterno string `json:"apellido_materno"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Demo      bool         `json:"demo,omitempty"`
}

type ProfileResponse struct {
	UserResponse
	Demo bool `json:"demo,omitempty"`
}

type CreateProductRequest struct {
	Titulo           string   `json:"titulo"`
	Descripcion      string   `json:"descripcion"`
	Categoria        string   `json:"categoria"`
	ImagenURL        string   `json:"imagen_url"`
	Caracteristicas  []string `json:"caracteristicas"`
	Aplicaciones     []string `json:"aplicaciones"`
	Especificaciones []string `json:"especificaciones"`
}

type PatchProductRequest struct {
	Titulo           *string   `json:"titulo"`
	Descripcion      *string   `json:"descripcion"`
	Categoria        *string   `json:"categoria"`
	ImagenURL        *string   `json:"imagen_url"`
	Caracteristicas  *[]string `json:"caracteristicas"`
	Aplicaciones     *[]string `json:"aplicaciones"`
	Especificaciones *[]string `json:"especificaciones"`
}

type ProductListResponse struct {
	Items []models.Product `json:"items"`
	Meta  util.Meta        `json:"meta"`
	Demo  bool             `json:"demo,omitempty"`
}

type ProductResponse struct {
	Product *models.Product `json:"product"`
	Demo    bool            `json:"demo,omitempty"`
}

type ServiceRequestForm struct {
	TipoServicio    string `json:"tipo_servicio"`
	SubtipoServicio string `json:"subtipo_servicio"`
	Email           string `json:"email"`
	Nombre          string `json:"nombre"`
	ApellidoPaterno string `json:"apellido_paterno"`
	ApellidoMaterno string `json:"apellido_materno"`
	Telefono        string `json:"telefono"`
	NombreEmpresa   string `json:"nombre_empresa"`
	Ubicacion       string `json:"ubicacion"`
	Comentarios     string `json:"comentarios"`
}

type SubmissionResponse struct {
	Solicitud *models.ServiceRequest `json:"solicitud"`
	Stored    bool                   `json:"stored"`
	Contacto  contact.Links          `json:"contacto"`
}

type RequestListResponse struct {
	Items []models.ServiceRequest `json:"items"`
	Meta  util.Meta               `json:"meta"`
}

type UpdateStatusRequest struct {
	Status          string  `json:"status"`
	ComentarioAdmin *string `json:"comentario_admin"`
}
