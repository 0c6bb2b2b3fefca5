package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mc-consultoria/proteccion-civil/internal/models"
)

type ProductFilter struct {
	Categoria string
	Search    string
}

type ProductPatch struct {
	Titulo           *string
	Descripcion      *string
	Categoria        *string
	ImagenURL        *string
	Caracteristicas  *[]string
	Aplicaciones     *[]string
	Especificaciones *[]string
}

func activeProducts(f ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_active = ?", true)
		if f.Categoria != "" {
			db = db.Where("categoria = ?", f.Categoria)
		}
		if q := strings.TrimSpace(f.Search); q != "" {
			like := "%" + strings.ToLower(q) + "%"
			db = db.Where("LOWER(titulo) LIKE ? OR LOWER(descripcion) LIKE ?", like, like)
		}
		return db
	}
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Scopes(activeProducts(f)).
		Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Scopes(activeProducts(f)).
		Order("created_at DESC").Order("id").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&prod).Error; err != nil {
		return nil, notFound(err)
	}
	return &prod, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	prod.IsActive = true
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uuid.UUID, p ProductPatch) (*models.Product, error) {
	prod, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Titulo != nil {
		prod.Titulo = *p.Titulo
	}
	if p.Descripcion != nil {
		prod.Descripcion = *p.Descripcion
	}
	if p.Categoria != nil {
		prod.Categoria = *p.Categoria
	}
	if p.ImagenURL != nil {
		prod.ImagenURL = *p.ImagenURL
	}
	if p.Caracteristicas != nil {
		prod.Caracteristicas = *p.Caracteristicas
	}
	if p.Aplicaciones != nil {
		prod.Aplicaciones = *p.Aplicaciones
	}
	if p.Especificaciones != nil {
		prod.Especificaciones = *p.Especificaciones
	}

	if err := r.DB.WithContext(ctx).Save(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

// DeactivateProduct hides a product from every listing; rows are never removed.
func (r *GormRepo) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error
	return total, err
}

// SeedProduct inserts prod unless a row with its ID already exists.
func (r *GormRepo) SeedProduct(ctx context.Context, prod *models.Product) (bool, error) {
	prod.IsActive = true
	tx := r.DB.WithContext(ctx).Where("id = ?", prod.ID).FirstOrCreate(prod)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
