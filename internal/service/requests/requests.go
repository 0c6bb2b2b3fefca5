package requests

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/mc-consultoria/proteccion-civil/internal/contact"
	"github.com/mc-consultoria/proteccion-civil/internal/events"
	"github.com/mc-consultoria/proteccion-civil/internal/logging"
	"github.com/mc-consultoria/proteccion-civil/internal/models"
	"github.com/mc-consultoria/proteccion-civil/internal/repo"
	"github.com/mc-consultoria/proteccion-civil/internal/util"
	"github.com/mc-consultoria/proteccion-civil/internal/validation"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("service request not found")
	ErrUnavailable = errors.New("request store unavailable")
)

var DictamenOptions = []string{
	"Dictamen Eléctrico",
	"Dictamen Estructural",
	"Dictamen de Sonido",
	"Dictamen de Gas",
	"Dictamen de Riesgo",
	"Dictamen Hidráulico",
}

var TramiteOptions = []string{
	"Factibilidad De Uso Y Destino De Suelo",
	"Licencia De Funcionamiento",
	"Aviso De Funcionamiento (COFEPRIS)",
	"Constancias DC-3 (STPS)",
	"Licencia De Anuncio",
	"Licencia De Construcción",
}

func OptionsFor(tipo string) []string {
	switch tipo {
	case models.ServiceDictamen:
		return slices.Clone(DictamenOptions)
	case models.ServiceTramite:
		return slices.Clone(TramiteOptions)
	}
	return nil
}

type RequestStore interface {
	CreateRequest(ctx context.Context, req *models.ServiceRequest) error
	ListRequests(ctx context.Context, f repo.RequestFilter, offset, limit int) (int64, []models.ServiceRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)
	UpdateRequestStatus(ctx context.Context, id uuid.UUID, status string, comentario *string) (*models.ServiceRequest, error)
}

var _ RequestStore = (*repo.GormRepo)(nil)

type Service struct {
	Repo    RequestStore
	Events  events.Publisher
	Contact contact.Info
}

type Form struct {
	TipoServicio    string
	SubtipoServicio string
	Email           string
	Nombre          string
	ApellidoPaterno string
	ApellidoMaterno string
	Telefono        string
	NombreEmpresa   string
	Ubicacion       string
	Comentarios     string
}

type Submission struct {
	Request *models.ServiceRequest
	Stored  bool
	Contact contact.Links
}

func (f Form) sanitized() Form {
	return Form{
		TipoServicio:    validation.SanitizeString(f.TipoServicio),
		SubtipoServicio: validation.SanitizeString(f.SubtipoServicio),
		Email:           validation.SanitizeEmail(f.Email),
		Nombre:          validation.SanitizeString(f.Nombre),
		ApellidoPaterno: validation.SanitizeString(f.ApellidoPaterno),
		ApellidoMaterno: validation.SanitizeString(f.ApellidoMaterno),
		Telefono:        validation.SanitizePhone(f.Telefono),
		NombreEmpresa:   validation.SanitizeString(f.NombreEmpresa),
		Ubicacion:       validation.SanitizeString(f.Ubicacion),
		Comentarios:     validation.SanitizeString(f.Comentarios),
	}
}

// Validate returns validation.Errors keyed by JSON field name, or nil.
func (f Form) Validate() error {
	errs := validation.Errors{}

	switch f.TipoServicio {
	case "":
		errs.Add("tipo_servicio", "Tipo de servicio es requerido")
	case models.ServiceDictamen, models.ServiceTramite:
		if f.SubtipoServicio != "" && !slices.Contains(OptionsFor(f.TipoServicio), f.SubtipoServicio) {
			errs.Add("subtipo_servicio", "Subtipo de servicio inválido")
		}
	default:
		errs.Add("tipo_servicio", "Tipo de servicio inválido")
	}
	validation.Required(errs, "subtipo_servicio", "Subtipo de servicio es requerido", f.SubtipoServicio)
	validation.Email(errs, "email", f.Email)
	validation.Name(errs, "nombre", "Nombre", f.Nombre)
	validation.Name(errs, "apellido_paterno", "Apellido paterno", f.ApellidoPaterno)
	validation.Phone(errs, "telefono", f.Telefono)
	validation.Company(errs, "nombre_empresa", f.NombreEmpresa)
	validation.Required(errs, "ubicacion", "Ubicación es requerida", f.Ubicacion)

	return errs.Err()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (f Form) inquiry() contact.ServiceInquiry {
	return contact.ServiceInquiry{
		TipoServicio:    f.TipoServicio,
		SubtipoServicio: f.SubtipoServicio,
		Nombre:          f.Nombre,
		ApellidoPaterno: f.ApellidoPaterno,
		ApellidoMaterno: f.ApellidoMaterno,
		Email:           f.Email,
		Telefono:        f.Telefono,
		NombreEmpresa:   f.NombreEmpresa,
		Ubicacion:       f.Ubicacion,
		Comentarios:     f.Comentarios,
	}
}

// Submit stores a request. When the store is down the request is not kept,
// and the caller gets the contact links to send it by hand.
func (s *Service) Submit(ctx context.Context, form Form) (*Submission, error) {
	l := logging.FromContext(ctx).With("svc", "requests.submit")

	form = form.sanitized()
	if err := form.Validate(); err != nil {
		l.Warn("service_request_rejected", "status", 422, "error", err)
		return nil, err
	}

	req := &models.ServiceRequest{
		TipoServicio:    form.TipoServicio,
		SubtipoServicio: form.SubtipoServicio,
		Email:           form.Email,
		Nombre:          form.Nombre,
		ApellidoPaterno: form.ApellidoPaterno,
		ApellidoMaterno: optional(form.ApellidoMaterno),
		Telefono:        form.Telefono,
		NombreEmpresa:   form.NombreEmpresa,
		Ubicacion:       form.Ubicacion,
		Comentarios:     optional(form.Comentarios),
		Status:          models.StatusPending,
	}

	stored := true
	if err := s.Repo.CreateRequest(ctx, req); err != nil {
		l.Warn("service_request_not_stored", "reason", "store unavailable", "error", err)
		stored = false
		req.ID = uuid.Nil
	}

	events.Publish(ctx, s.Events, events.TopicRequests, req.Email, map[string]any{
		"type":      "service_requested",
		"requestID": req.ID.String(),
		"tipo":      req.TipoServicio,
		"subtipo":   req.SubtipoServicio,
		"email":     req.Email,
		"stored":    stored,
	})

	l.Info("service_request_received", "stored", stored, "tipo", req.TipoServicio)
	return &Submission{Request: req, Stored: stored, Contact: s.Contact.ForService(form.inquiry())}, nil
}

type ListQuery struct {
	Page   int
	Limit  int
	Tipo   string
	Status string
}

type Page struct {
	Items  []models.ServiceRequest
	Total  int64
	Offset int
	Limit  int
}

func (s *Service) List(ctx context.Context, q ListQuery) (*Page, error) {
	if q.Tipo != "" && q.Tipo != models.ServiceDictamen && q.Tipo != models.ServiceTramite {
		return nil, fmt.Errorf("%w: unknown tipo %q", ErrValidation, q.Tipo)
	}
	if q.Status != "" && !models.ValidStatus(q.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, q.Status)
	}

	offset, limit := util.Calculate(q.Page, q.Limit)
	total, items, err := s.Repo.ListRequests(ctx, repo.RequestFilter{Tipo: q.Tipo, Status: q.Status}, offset, limit)
	if err != nil {
		logging.FromContext(ctx).Error("list_requests_error", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &Page{Items: items, Total: total, Offset: offset, Limit: limit}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.Repo.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return req, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, comentario *string) (*models.ServiceRequest, error) {
	l := logging.FromContext(ctx).With("svc", "requests.update_status", "request_id", id)

	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if comentario != nil {
		c := validation.SanitizeString(*comentario)
		comentario = &c
	}

	req, err := s.Repo.UpdateRequestStatus(ctx, id, status, comentario)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		l.Error("update_status_error", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	events.Publish(ctx, s.Events, events.TopicRequests, req.Email, map[string]any{
		"type":      "service_request_status_changed",
		"requestID": req.ID.String(),
		"status":    req.Status,
	})
	return req, nil
}
