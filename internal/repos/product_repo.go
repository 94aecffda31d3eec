package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"asinity/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) DB() *sqlx.DB { return r.db }

const productCols = `
  id, asin, price, url, title, brand, model, saving_percentage, basis_price,
  customer_opinion, ranking, created_at, COALESCE(updated_at,'') AS updated_at`

// ---------- Reads ----------

func (r *ProductRepo) GetByASIN(asin string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE asin = ?`, asin)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) Images(productID string) ([]domain.Image, error) {
	var out []domain.Image
	err := r.db.Select(&out, `
	  SELECT id, product_id, url, position
	  FROM product_images
	  WHERE product_id = ?
	  ORDER BY position, id
	`, productID)
	return out, err
}

func (r *ProductRepo) Variants(productID string) ([]domain.Variant, error) {
	var out []domain.Variant
	err := r.db.Select(&out, `
	  SELECT id, product_id, type, name, sibling_asin
	  FROM product_variants
	  WHERE product_id = ?
	  ORDER BY id
	`, productID)
	return out, err
}

// FirstImageURL returns sql.ErrNoRows for an image-less product.
func (r *ProductRepo) FirstImageURL(productID string) (string, error) {
	var url string
	err := r.db.Get(&url, `
	  SELECT url FROM product_images
	  WHERE product_id = ?
	  ORDER BY position, id
	  LIMIT 1
	`, productID)
	return url, err
}

func (r *ProductRepo) Asins() ([]string, error) {
	out := []string{}
	err := r.db.Select(&out, `SELECT asin FROM products ORDER BY asin`)
	return out, err
}

func (r *ProductRepo) Brands() ([]string, error) {
	out := []string{}
	err := r.db.Select(&out, `SELECT DISTINCT brand FROM products WHERE brand <> '' ORDER BY brand`)
	return out, err
}

// ListParams filter and order the public listing. Listed products always
// exclude zero-price (unlisted) rows.
type ListParams struct {
	MinPrice  *float64
	MaxPrice  *float64
	Brands    []string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// sortColumns whitelists what sort_by may name; anything else falls back to
// ranking.
var sortColumns = map[string]string{
	"asin":              "asin",
	"price":             "price",
	"title":             "title",
	"brand":             "brand",
	"ranking":           "ranking",
	"basis_price":       "basis_price",
	"saving_percentage": "saving_percentage",
}

func (r *ProductRepo) List(p ListParams) ([]domain.Product, int, error) {
	where := `price <> 0`
	args := []any{}
	if p.MinPrice != nil {
		where += ` AND price >= ?`
		args = append(args, *p.MinPrice)
	}
	if p.MaxPrice != nil {
		where += ` AND price <= ?`
		args = append(args, *p.MaxPrice)
	}
	if len(p.Brands) > 0 {
		in, inArgs, err := sqlx.In(`brand IN (?)`, p.Brands)
		if err != nil {
			return nil, 0, err
		}
		where += ` AND ` + in
		args = append(args, inArgs...)
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM products WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[p.SortBy]
	if !ok {
		col = "ranking"
	}
	dir := "ASC"
	if strings.EqualFold(p.SortOrder, "desc") {
		dir = "DESC"
	}

	q := `SELECT ` + productCols + ` FROM products WHERE ` + where +
		` ORDER BY ` + col + ` ` + dir + ` LIMIT ? OFFSET ?`
	args = append(args, p.Limit, p.Offset)

	var out []domain.Product
	err := r.db.Select(&out, q, args...)
	return out, total, err
}

// ---------- Mutations (staged on a caller-owned transaction) ----------

// ExistsASIN runs on the transaction so staged inserts earlier in the same
// batch are visible to later duplicate checks.
func (r *ProductRepo) ExistsASIN(tx *sqlx.Tx, asin string) (bool, error) {
	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM products WHERE asin = ?`, asin); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ProductRepo) GetByASINTx(tx *sqlx.Tx, asin string) (domain.Product, error) {
	var p domain.Product
	err := tx.Get(&p, `SELECT `+productCols+` FROM products WHERE asin = ?`, asin)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) Insert(tx *sqlx.Tx, p domain.Product) error {
	_, err := tx.Exec(`
	  INSERT INTO products
	    (id, asin, price, url, title, brand, model, saving_percentage,
	     basis_price, customer_opinion, ranking, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, p.ID, p.ASIN, p.Price, p.URL, p.Title, p.Brand, p.Model,
		p.SavingPercentage, p.BasisPrice, p.CustomerOpinion, p.Ranking)
	return err
}

func (r *ProductRepo) UpdateScalars(tx *sqlx.Tx, p domain.Product) error {
	_, err := tx.Exec(`
	  UPDATE products SET
	    price = ?, url = ?, title = ?, brand = ?, model = ?,
	    saving_percentage = ?, basis_price = ?, customer_opinion = ?,
	    ranking = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, p.Price, p.URL, p.Title, p.Brand, p.Model,
		p.SavingPercentage, p.BasisPrice, p.CustomerOpinion, p.Ranking, p.ID)
	return err
}

func (r *ProductRepo) InsertImages(tx *sqlx.Tx, productID string, images []domain.ImagePayload) error {
	for i, img := range images {
		if _, err := tx.Exec(`
		  INSERT INTO product_images(product_id, url, position) VALUES(?,?,?)
		`, productID, img.URL, i); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProductRepo) DeleteImages(tx *sqlx.Tx, productID string) error {
	_, err := tx.Exec(`DELETE FROM product_images WHERE product_id = ?`, productID)
	return err
}

func (r *ProductRepo) InsertVariants(tx *sqlx.Tx, productID string, variants []domain.VariantPayload) error {
	for _, v := range variants {
		if _, err := tx.Exec(`
		  INSERT INTO product_variants(product_id, type, name, sibling_asin) VALUES(?,?,?,?)
		`, productID, v.Type, v.Name, v.SiblingASIN); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProductRepo) DeleteVariants(tx *sqlx.Tx, productID string) error {
	_, err := tx.Exec(`DELETE FROM product_variants WHERE product_id = ?`, productID)
	return err
}

// DeleteByASIN removes one product and its children. Children are removed
// explicitly so the result does not depend on the connection's foreign_keys
// pragma.
func (r *ProductRepo) DeleteByASIN(tx *sqlx.Tx, asin string) (bool, error) {
	if _, err := tx.Exec(`
	  DELETE FROM product_images WHERE product_id IN (SELECT id FROM products WHERE asin = ?)
	`, asin); err != nil {
		return false, err
	}
	if _, err := tx.Exec(`
	  DELETE FROM product_variants WHERE product_id IN (SELECT id FROM products WHERE asin = ?)
	`, asin); err != nil {
		return false, err
	}
	res, err := tx.Exec(`DELETE FROM products WHERE asin = ?`, asin)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteAll removes every product and returns the count removed.
func (r *ProductRepo) DeleteAll(tx *sqlx.Tx) (int, error) {
	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`DELETE FROM product_images`); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`DELETE FROM product_variants`); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`DELETE FROM products`); err != nil {
		return 0, err
	}
	return n, nil
}
