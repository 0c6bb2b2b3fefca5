package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mc-consultoria/proteccion-civil/internal/models"
	"github.com/mc-consultoria/proteccion-civil/internal/repo"
)

// Served when the store cannot be reached, and inserted by cmd/seed.
var demoCatalog = []models.Product{
	{
		ID:               uuid.MustParse("3f1d2c8e-5b7a-4c1e-9a61-0c2f4b8d1a01"),
		ImagenURL:        "https://api.builder.io/api/v1/image/assets/TEMP/634821914597c753756f3402065b5bb2bb46ce22?width=800",
		Categoria:        "Equipo de Protección Personal (EPP)",
		Titulo:           "Cascos de seguridad con certificación NOM",
		Descripcion:      "Obligatorios en obras y zonas industriales",
		Caracteristicas:  []string{"Fabricados en polietileno de alta densidad", "Arnés ajustable"},
		Aplicaciones:     []string{"Construcción", "Electricidad"},
		Especificaciones: []string{"Cumple NOM-115-STPS"},
		IsActive:         true,
	},
	{
		ID:               uuid.MustParse("3f1d2c8e-5b7a-4c1e-9a61-0c2f4b8d1a02"),
		ImagenURL:        "https://api.builder.io/api/v1/image/assets/TEMP/e0ef1dd8e6a24f7a3644f43cb738a8ffc1221bf7?width=800",
		Categoria:        "Equipos de Emergencia",
		Titulo:           "Extintores recargados con ficha técnica",
		Descripcion:      "Agua, polvo químico seco, CO₂, para distintos tipos de fuego",
		Caracteristicas:  []string{"Recarga certificada", "Ficha técnica incluida"},
		Aplicaciones:     []string{"Oficinas", "Industrias"},
		Especificaciones: []string{"Certificación vigente"},
		IsActive:         true,
	},
	{
		ID:               uuid.MustParse("3f1d2c8e-5b7a-4c1e-9a61-0c2f4b8d1a03"),
		ImagenURL:        "https://api.builder.io/api/v1/image/assets/TEMP/d3441cc602f0d77036de8cece90a17ceddf5ba09?width=800",
		Categoria:        "Señalamientos",
		Titulo:           "Señalamientos de emergencia fotoluminiscentes",
		Descripcion:      "Rutas de evacuación, salidas de emergencia, zonas de seguridad",
		Caracteristicas:  []string{"Material fotoluminiscente", "Resistente a la intemperie"},
		Aplicaciones:     []string{"Edificios", "Centros comerciales"},
		Especificaciones: []string{"Norma oficial vigente"},
		IsActive:         true,
	},
}

func DemoCatalog() []models.Product {
	out := make([]models.Product, len(demoCatalog))
	for i, p := range demoCatalog {
		p.Caracteristicas = append([]string(nil), p.Caracteristicas...)
		p.Aplicaciones = append([]string(nil), p.Aplicaciones...)
		p.Especificaciones = append([]string(nil), p.Especificaciones...)
		out[i] = p
	}
	return out
}

func demoFind(id uuid.UUID) (*models.Product, bool) {
	for _, p := range DemoCatalog() {
		if p.ID == id {
			return &p, true
		}
	}
	return nil, false
}

func demoList(f repo.ProductFilter, offset, limit int) (int64, []models.Product) {
	q := strings.ToLower(strings.TrimSpace(f.Search))

	matched := make([]models.Product, 0, len(demoCatalog))
	for _, p := range DemoCatalog() {
		if f.Categoria != "" && p.Categoria != f.Categoria {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Titulo), q) && !strings.Contains(strings.ToLower(p.Descripcion), q) {
			continue
		}
		matched = append(matched, p)
	}

	total := int64(len(matched))
	if offset < 0 || offset >= len(matched) {
		return total, []models.Product{}
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return total, matched[offset:end]
}
