package dto

import (
	"encoding/json"

	"yamdb/internal/microservices/http-api/models"
)

// OptionalSlug distinguishes an absent field from an explicit null.
type OptionalSlug struct {
	Set   bool
	Value *string
}

func (o *OptionalSlug) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// TitleRequest is used by POST and PUT. Genre replaces every link when
// present and leaves links untouched when absent.
type TitleRequest struct {
	Name        string       `json:"name" binding:"required,max=256"`
	Year        *int         `json:"year" binding:"required"`
	Description string       `json:"description"`
	Category    OptionalSlug `json:"category"`
	Genre       *[]string    `json:"genre"`
}

// TitlePatchRequest is used by PATCH; every field is optional.
type TitlePatchRequest struct {
	Name        *string      `json:"name" binding:"omitempty,min=1,max=256"`
	Year        *int         `json:"year"`
	Description *string      `json:"description"`
	Category    OptionalSlug `json:"category"`
	Genre       *[]string    `json:"genre"`
}

// Patch expresses a full TitleRequest as a patch where every scalar field is set.
func (r TitleRequest) Patch() TitlePatchRequest {
	name, description := r.Name, r.Description
	return TitlePatchRequest{
		Name:        &name,
		Year:        r.Year,
		Description: &description,
		Category:    r.Category,
		Genre:       r.Genre,
	}
}

type TitleResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Year        int                `json:"year"`
	Rating      *int               `json:"rating"`
	Description string             `json:"description"`
	Genre       []TaxonomyResponse `json:"genre"`
	Category    *TaxonomyResponse  `json:"category"`
}

func ToTitleResponse(t models.Title, rating *int) TitleResponse {
	genres := make([]TaxonomyResponse, 0, len(t.Genres))
	for _, g := range t.Genres {
		genres = append(genres, ToGenreResponse(g))
	}
	var category *TaxonomyResponse
	if t.Category != nil {
		c := ToCategoryResponse(*t.Category)
		category = &c
	}
	return TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      rating,
		Description: t.Description,
		Genre:       genres,
		Category:    category,
	}
}
