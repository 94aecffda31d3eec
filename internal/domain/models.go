package domain

// UnrankedSentinel is the ranking a product gets when the payload carries
// none; it sorts unranked products last under the default ascending order.
const UnrankedSentinel = 10000000

type Product struct {
	ID               string  `db:"id"`
	ASIN             string  `db:"asin"`
	Price            float64 `db:"price"`
	URL              string  `db:"url"`
	Title            string  `db:"title"`
	Brand            string  `db:"brand"`
	Model            string  `db:"model"`
	SavingPercentage int     `db:"saving_percentage"`
	BasisPrice       float64 `db:"basis_price"`
	CustomerOpinion  string  `db:"customer_opinion"`
	Ranking          int     `db:"ranking"`
	CreatedAt        string  `db:"created_at"`
	UpdatedAt        string  `db:"updated_at"`
}

// Active reports whether the product may appear as a sibling in projections.
// A zero price marks an unlisted product.
func (p Product) Active() bool { return p.Price != 0 }

type Image struct {
	ID        int64  `db:"id"`
	ProductID string `db:"product_id"`
	URL       string `db:"url"`
	Position  int    `db:"position"`
}

// Variant cross-references a sibling product that shares the same item
// family. SiblingASIN is a reference key, not the owner's asin, and may
// dangle without a matching product row.
type Variant struct {
	ID          int64  `db:"id"`
	ProductID   string `db:"product_id"`
	Type        string `db:"type"`
	Name        string `db:"name"`
	SiblingASIN string `db:"sibling_asin"`
}

// SiblingSummary is the inlined view of an active sibling product.
type SiblingSummary struct {
	ASIN  string
	Title string
	Price float64
	Image string
	URL   string
}

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	Role  string `db:"role"` // USER | ADMIN
}
