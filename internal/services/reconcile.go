package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"asinity/internal/domain"
	"asinity/internal/repos"
	"asinity/internal/validate"
)

// Outcome reports what a reconcile did to the record.
type Outcome int

const (
	Created Outcome = iota
	Updated
)

// ReconcileService owns the write path. Every public method validates first,
// stages all mutations on one transaction and commits exactly once; a failed
// commit leaves no partial state behind.
type ReconcileService struct {
	DB    *sqlx.DB
	Prods *repos.ProductRepo
}

func NewReconcileService(db *sqlx.DB, prods *repos.ProductRepo) *ReconcileService {
	return &ReconcileService{DB: db, Prods: prods}
}

// scalarFields enumerates every overwritable product column with the value it
// takes from the payload. A field the payload leaves out lands on its zero
// default, except ranking which falls back to the unranked sentinel. The asin
// is identity and never rewritten here.
var scalarFields = []struct {
	name  string
	apply func(p *domain.Product, in domain.ProductPayload)
}{
	{"price", func(p *domain.Product, in domain.ProductPayload) { p.Price = in.Price }},
	{"url", func(p *domain.Product, in domain.ProductPayload) { p.URL = in.URL }},
	{"title", func(p *domain.Product, in domain.ProductPayload) { p.Title = in.Title }},
	{"brand", func(p *domain.Product, in domain.ProductPayload) { p.Brand = in.Brand }},
	{"model", func(p *domain.Product, in domain.ProductPayload) { p.Model = in.Model }},
	{"saving_percentage", func(p *domain.Product, in domain.ProductPayload) { p.SavingPercentage = in.SavingPercentage }},
	{"basis_price", func(p *domain.Product, in domain.ProductPayload) { p.BasisPrice = in.BasisPrice }},
	{"customer_opinion", func(p *domain.Product, in domain.ProductPayload) { p.CustomerOpinion = in.CustomerOpinion }},
	{"ranking", func(p *domain.Product, in domain.ProductPayload) {
		if in.Ranking != nil {
			p.Ranking = *in.Ranking
		} else {
			p.Ranking = domain.UnrankedSentinel
		}
	}},
}

func applyScalars(p *domain.Product, in domain.ProductPayload) {
	for _, f := range scalarFields {
		f.apply(p, in)
	}
}

func validatePayload(in domain.ProductPayload) error {
	if _, ok := validate.ASIN(in.ASIN); !ok {
		return domain.Invalid("asin", "required, up to 20 letters, digits, - or _")
	}
	if _, ok := validate.URL(in.URL); !ok {
		return domain.Invalid("url", "required http(s) url")
	}
	if in.Title == "" {
		return domain.Invalid("title", "required")
	}
	for i, img := range in.Images {
		if _, ok := validate.URL(img.URL); !ok {
			return domain.Invalid("images", fmt.Sprintf("entry %d: url required", i))
		}
	}
	for i, v := range in.Variants {
		if _, ok := validate.VariantType(v.Type); !ok {
			return domain.Invalid("variants", fmt.Sprintf("entry %d: bad type tag", i))
		}
		if _, ok := validate.Name(v.Name); !ok {
			return domain.Invalid("variants", fmt.Sprintf("entry %d: name required", i))
		}
		if _, ok := validate.ASIN(v.SiblingASIN); !ok {
			return domain.Invalid("variants", fmt.Sprintf("entry %d: bad sibling_asin", i))
		}
	}
	return nil
}

// reconcileOne stages one payload. With no existing record it builds a fresh
// product; otherwise it overwrites every scalar, replaces images only when
// the payload carries some, and always rebuilds the variant set from the
// payload (empty payload leaves zero variants).
func (s *ReconcileService) reconcileOne(tx *sqlx.Tx, existing *domain.Product, in domain.ProductPayload) (domain.Product, Outcome, error) {
	if existing == nil {
		p := domain.Product{ID: uuid.NewString(), ASIN: in.ASIN}
		applyScalars(&p, in)
		if err := s.Prods.Insert(tx, p); err != nil {
			return domain.Product{}, Created, err
		}
		if err := s.Prods.InsertImages(tx, p.ID, in.Images); err != nil {
			return domain.Product{}, Created, err
		}
		if err := s.Prods.InsertVariants(tx, p.ID, in.Variants); err != nil {
			return domain.Product{}, Created, err
		}
		return p, Created, nil
	}

	p := *existing
	applyScalars(&p, in)
	if err := s.Prods.UpdateScalars(tx, p); err != nil {
		return domain.Product{}, Updated, err
	}

	if len(in.Images) > 0 {
		if err := s.Prods.DeleteImages(tx, p.ID); err != nil {
			return domain.Product{}, Updated, err
		}
		if err := s.Prods.InsertImages(tx, p.ID, in.Images); err != nil {
			return domain.Product{}, Updated, err
		}
	}

	// Variants are cleared regardless of what the payload carries.
	if err := s.Prods.DeleteVariants(tx, p.ID); err != nil {
		return domain.Product{}, Updated, err
	}
	if len(in.Variants) > 0 {
		if err := s.Prods.InsertVariants(tx, p.ID, in.Variants); err != nil {
			return domain.Product{}, Updated, err
		}
	}
	return p, Updated, nil
}

// Create inserts one product; a known asin is a conflict.
func (s *ReconcileService) Create(in domain.ProductPayload) error {
	if err := validatePayload(in); err != nil {
		return err
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := s.Prods.ExistsASIN(tx, in.ASIN)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrConflict
	}
	if _, _, err := s.reconcileOne(tx, nil, in); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Update performs the full-replace update of one known product.
func (s *ReconcileService) Update(asin string, in domain.ProductPayload) error {
	if in.ASIN == "" {
		in.ASIN = asin
	}
	if in.ASIN != asin {
		return domain.Invalid("asin", "payload asin does not match the addressed product")
	}
	if err := validatePayload(in); err != nil {
		return err
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := s.Prods.GetByASINTx(tx, asin)
	if err != nil {
		return err
	}
	if _, _, err := s.reconcileOne(tx, &existing, in); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// BatchCreate stages every unseen payload and skips known asins, counting
// them as repeated. One commit covers the whole batch.
func (s *ReconcileService) BatchCreate(payloads []domain.ProductPayload) (domain.BatchCreateResult, error) {
	var res domain.BatchCreateResult
	for _, in := range payloads {
		if err := validatePayload(in); err != nil {
			return res, err
		}
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return res, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, in := range payloads {
		exists, err := s.Prods.ExistsASIN(tx, in.ASIN)
		if err != nil {
			return domain.BatchCreateResult{}, err
		}
		if exists {
			res.RepeatedCount++
			continue
		}
		if _, _, err := s.reconcileOne(tx, nil, in); err != nil {
			return domain.BatchCreateResult{}, err
		}
		res.CreatedCount++
	}
	if err := tx.Commit(); err != nil {
		return domain.BatchCreateResult{}, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

// BatchUpdate applies the full-replace update to every known asin and
// reports unknown ones in to_create instead of creating them.
func (s *ReconcileService) BatchUpdate(payloads []domain.ProductPayload) (domain.BatchUpdateResult, error) {
	res := domain.BatchUpdateResult{ToCreate: []string{}}
	for _, in := range payloads {
		if err := validatePayload(in); err != nil {
			return res, err
		}
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return res, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, in := range payloads {
		existing, err := s.Prods.GetByASINTx(tx, in.ASIN)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				res.ToCreate = append(res.ToCreate, in.ASIN)
				continue
			}
			return domain.BatchUpdateResult{ToCreate: []string{}}, err
		}
		if _, _, err := s.reconcileOne(tx, &existing, in); err != nil {
			return domain.BatchUpdateResult{ToCreate: []string{}}, err
		}
		res.UpdatedCount++
	}
	if err := tx.Commit(); err != nil {
		return domain.BatchUpdateResult{ToCreate: []string{}}, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

// Delete removes one product and its children.
func (s *ReconcileService) Delete(asin string) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := s.Prods.DeleteByASIN(tx, asin)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteAll removes every product and returns the count removed. A failed
// commit reports zero, never a partial count.
func (s *ReconcileService) DeleteAll() (int, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	n, err := s.Prods.DeleteAll(tx)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}
