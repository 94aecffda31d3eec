package services

import (
	"database/sql"
	"errors"

	"asinity/internal/domain"
	"asinity/internal/repos"
)

// Resolver turns a variant's cross-reference key into the inlined summary of
// the referenced product. The projection builder takes one as a dependency;
// nil means "do not inline this sibling".
type Resolver interface {
	Resolve(siblingASIN string) (*domain.SiblingSummary, error)
}

// SiblingResolver resolves against the product store. A sibling that is
// absent, priced at zero (unlisted), or has no images yields no summary.
type SiblingResolver struct {
	Prods *repos.ProductRepo
}

func NewSiblingResolver(prods *repos.ProductRepo) *SiblingResolver {
	return &SiblingResolver{Prods: prods}
}

func (s *SiblingResolver) Resolve(siblingASIN string) (*domain.SiblingSummary, error) {
	p, err := s.Prods.GetByASIN(siblingASIN)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !p.Active() {
		return nil, nil
	}
	img, err := s.Prods.FirstImageURL(p.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.SiblingSummary{
		ASIN:  p.ASIN,
		Title: p.Title,
		Price: p.Price,
		Image: img,
		URL:   p.URL,
	}, nil
}
