package domain

// ProductPayload is the write shape for create and full-replace update.
// Scalars left out of the JSON body decode to their zero value and are
// written as such; Ranking is a pointer because an absent ranking falls back
// to UnrankedSentinel rather than zero.
type ProductPayload struct {
	ASIN             string           `json:"asin"`
	Price            float64          `json:"price"`
	URL              string           `json:"url"`
	Title            string           `json:"title"`
	Brand            string           `json:"brand"`
	Model            string           `json:"model"`
	SavingPercentage int              `json:"saving_percentage"`
	BasisPrice       float64          `json:"basis_price"`
	CustomerOpinion  string           `json:"customer_opinion"`
	Ranking          *int             `json:"ranking"`
	Images           []ImagePayload   `json:"images"`
	Variants         []VariantPayload `json:"variants"`
}

type ImagePayload struct {
	URL string `json:"url"`
}

type VariantPayload struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	SiblingASIN string `json:"sibling_asin"`
}

type BatchCreateResult struct {
	CreatedCount  int `json:"created_count"`
	RepeatedCount int `json:"repeated_count"`
}

type BatchUpdateResult struct {
	UpdatedCount int      `json:"updated_count"`
	ToCreate     []string `json:"to_create"`
}
