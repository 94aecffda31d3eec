package services

import (
	"asinity/internal/domain"
	"asinity/internal/repos"
)

// CatalogService is the read path: projections of single products and the
// public listing.
type CatalogService struct {
	Prods    *repos.ProductRepo
	Resolver Resolver
}

func NewCatalogService(prods *repos.ProductRepo, resolver Resolver) *CatalogService {
	return &CatalogService{Prods: prods, Resolver: resolver}
}

// GetProduct loads a product with its children and projects it.
func (s *CatalogService) GetProduct(asin string) (map[string]any, error) {
	p, err := s.Prods.GetByASIN(asin)
	if err != nil {
		return nil, err
	}
	return s.project(p)
}

func (s *CatalogService) project(p domain.Product) (map[string]any, error) {
	images, err := s.Prods.Images(p.ID)
	if err != nil {
		return nil, err
	}
	variants, err := s.Prods.Variants(p.ID)
	if err != nil {
		return nil, err
	}
	return BuildView(p, images, variants, s.Resolver)
}

// ListQuery mirrors the listing query parameters.
type ListQuery struct {
	Page      int
	PerPage   int
	MinPrice  *float64
	MaxPrice  *float64
	Brands    []string
	SortBy    string
	SortOrder string
}

// Listing is the paginated response envelope.
type Listing struct {
	Products []map[string]any `json:"products"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
	Total    int              `json:"total"`
	Pages    int              `json:"pages"`
	HasNext  bool             `json:"has_next"`
	HasPrev  bool             `json:"has_prev"`
	Brands   []string         `json:"brands"`
}

// List projects a page of listed products. Unlisted (zero price) products
// never appear.
func (s *CatalogService) List(q ListQuery) (Listing, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = 10
	}
	if q.SortBy == "" {
		q.SortBy = "ranking"
	}

	rows, total, err := s.Prods.List(repos.ListParams{
		MinPrice:  q.MinPrice,
		MaxPrice:  q.MaxPrice,
		Brands:    q.Brands,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Limit:     q.PerPage,
		Offset:    (q.Page - 1) * q.PerPage,
	})
	if err != nil {
		return Listing{}, err
	}

	products := make([]map[string]any, 0, len(rows))
	for _, p := range rows {
		view, err := s.project(p)
		if err != nil {
			return Listing{}, err
		}
		products = append(products, view)
	}

	brands, err := s.Prods.Brands()
	if err != nil {
		return Listing{}, err
	}

	pages := total / q.PerPage
	if total%q.PerPage != 0 {
		pages++
	}
	return Listing{
		Products: products,
		Page:     q.Page,
		PerPage:  q.PerPage,
		Total:    total,
		Pages:    pages,
		HasNext:  q.Page < pages,
		HasPrev:  q.Page > 1,
		Brands:   brands,
	}, nil
}

func (s *CatalogService) Asins() ([]string, error)  { return s.Prods.Asins() }
func (s *CatalogService) Brands() ([]string, error) { return s.Prods.Brands() }
