package dto

import "yamdb/internal/microservices/http-api/models"

// TaxonomyRequest creates a category or a genre.
type TaxonomyRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

// TaxonomyResponse is how categories and genres are rendered everywhere.
type TaxonomyResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func ToGenreResponse(g models.Genre) TaxonomyResponse {
	return TaxonomyResponse{Name: g.Name, Slug: g.Slug}
}

func ToCategoryResponse(c models.Category) TaxonomyResponse {
	return TaxonomyResponse{Name: c.Name, Slug: c.Slug}
}
