package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mc-consultoria/proteccion-civil/internal/models"
)

type RequestFilter struct {
	Tipo   string
	Status string
}

func (r *GormRepo) CreateRequest(ctx context.Context, req *models.ServiceRequest) error {
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	return r.DB.WithContext(ctx).Create(req).Error
}

func (r *GormRepo) ListRequests(ctx context.Context, f RequestFilter, offset, limit int) (int64, []models.ServiceRequest, error) {
	q := r.DB.WithContext(ctx).Model(&models.ServiceRequest{})
	if f.Tipo != "" {
		q = q.Where("tipo_servicio = ?", f.Tipo)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.ServiceRequest, 0, limit)
	if err := q.Session(&gorm.Session{}).
		Order("created_at DESC").Order("id").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, notFound(err)
	}
	return &req, nil
}

func (r *GormRepo) UpdateRequestStatus(ctx context.Context, id uuid.UUID, status string, comentario *string) (*models.ServiceRequest, error) {
	updates := map[string]any{"status": status}
	if comentario != nil {
		updates["comentario_admin"] = *comentario
	}

	res := r.DB.WithContext(ctx).Model(&models.ServiceRequest{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetRequest(ctx, id)
}
