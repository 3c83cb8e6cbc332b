package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

type LeagueDTO struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

type TeamDTO struct {
	ID     uint       `json:"id"`
	Name   string     `json:"name"`
	League *LeagueDTO `json:"league"`
}

type CategoryDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type VariantDTO struct {
	ID    uint   `json:"id"`
	Size  string `json:"size"`
	Stock int    `json:"stock"`
	SKU   string `json:"sku"`
}

type ProductDTO struct {
	ID          uint         `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Description string       `json:"description"`
	Price       string       `json:"price" example:"1500.00"`
	ImageURL    *string      `json:"image_url"`
	Category    *CategoryDTO `json:"category"`
	Team        *TeamDTO     `json:"team"`
	Variants    []VariantDTO `json:"variants"`
}

// ProductPageDTO mirrors a page number pagination envelope, Next and Previous are absolute urls or null.
type ProductPageDTO struct {
	Count    int64        `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []ProductDTO `json:"results"`
}

func NewCategoryDTO(c *model.Category) *CategoryDTO {
	if c == nil {
		return nil
	}
	return &CategoryDTO{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

func NewCategoryDTOs(categories []model.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(categories))
	for i := range categories {
		out = append(out, *NewCategoryDTO(&categories[i]))
	}
	return out
}

func NewVariantDTO(v *model.Variant) *VariantDTO {
	if v == nil {
		return nil
	}
	return &VariantDTO{ID: v.ID, Size: string(v.Size), Stock: v.Stock, SKU: v.SKU}
}

func newTeamDTO(t *model.Team) *TeamDTO {
	if t == nil {
		return nil
	}
	out := &TeamDTO{ID: t.ID, Name: t.Name}
	if t.League != nil {
		out.League = &LeagueDTO{ID: t.League.ID, Name: t.League.Name, Country: t.League.Country}
	}
	return out
}

func NewProductDTO(p *model.Product) ProductDTO {
	out := ProductDTO{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       model.AmountString(p.Price),
		Category:    NewCategoryDTO(p.Category),
		Team:        newTeamDTO(p.Team),
		Variants:    make([]VariantDTO, 0, len(p.Variants)),
	}
	if p.ImageURL != "" {
		url := p.ImageURL
		out.ImageURL = &url
	}
	for i := range p.Variants {
		out.Variants = append(out.Variants, *NewVariantDTO(&p.Variants[i]))
	}
	return out
}
