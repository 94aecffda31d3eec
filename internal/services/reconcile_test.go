package services_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"asinity/internal/domain"
	"asinity/internal/repos"
	"asinity/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// One connection so the in-memory database is shared across tx and pool.
	db.SetMaxOpenConns(1)
	schema := `
	CREATE TABLE products(
	  id TEXT PRIMARY KEY, asin TEXT NOT NULL UNIQUE,
	  price NUMERIC NOT NULL DEFAULT 0, url TEXT NOT NULL, title TEXT NOT NULL,
	  brand TEXT NOT NULL DEFAULT '', model TEXT NOT NULL DEFAULT '',
	  saving_percentage INTEGER NOT NULL DEFAULT 0,
	  basis_price NUMERIC NOT NULL DEFAULT 0,
	  customer_opinion TEXT NOT NULL DEFAULT '',
	  ranking INTEGER NOT NULL DEFAULT 10000000,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE product_images(
	  id INTEGER PRIMARY KEY AUTOINCREMENT, product_id TEXT NOT NULL,
	  url TEXT NOT NULL, position INTEGER NOT NULL);
	CREATE TABLE product_variants(
	  id INTEGER PRIMARY KEY AUTOINCREMENT, product_id TEXT NOT NULL,
	  type TEXT NOT NULL, name TEXT NOT NULL, sibling_asin TEXT NOT NULL);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func newSvcs(t *testing.T) (*sqlx.DB, *services.ReconcileService, *services.CatalogService) {
	t.Helper()
	db := memdb(t)
	prods := repos.NewProductRepo(db)
	rec := services.NewReconcileService(db, prods)
	cat := services.NewCatalogService(prods, services.NewSiblingResolver(prods))
	return db, rec, cat
}

func payloadA1() domain.ProductPayload {
	return domain.ProductPayload{
		ASIN:   "A1",
		Price:  10,
		URL:    "https://shop.test/A1",
		Title:  "Product A",
		Images: []domain.ImagePayload{{URL: "https://img.test/a1.jpg"}},
	}
}

func payloadB1() domain.ProductPayload {
	return domain.ProductPayload{
		ASIN:   "B1",
		Price:  5,
		URL:    "https://shop.test/B1",
		Title:  "Product B",
		Images: []domain.ImagePayload{{URL: "https://img.test/b1.jpg"}},
		Variants: []domain.VariantPayload{
			{Type: "color_name", Name: "Red", SiblingASIN: "A1"},
		},
	}
}

func TestCreate_RoundTripImagesInOrder(t *testing.T) {
	_, rec, cat := newSvcs(t)

	in := payloadA1()
	in.Images = []domain.ImagePayload{
		{URL: "https://img.test/1.jpg"},
		{URL: "https://img.test/2.jpg"},
		{URL: "https://img.test/3.jpg"},
	}
	if err := rec.Create(in); err != nil {
		t.Fatal(err)
	}

	view, err := cat.GetProduct("A1")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"https://img.test/1.jpg", "https://img.test/2.jpg", "https://img.test/3.jpg"}
	if !reflect.DeepEqual(view["images"], want) {
		t.Fatalf("want %v, got %v", want, view["images"])
	}
}

func TestCreate_DuplicateASINConflicts(t *testing.T) {
	_, rec, _ := newSvcs(t)
	if err := rec.Create(payloadA1()); err != nil {
		t.Fatal(err)
	}
	if err := rec.Create(payloadA1()); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestCreate_ValidationBeforeAnyMutation(t *testing.T) {
	db, rec, _ := newSvcs(t)

	in := payloadA1()
	in.Title = ""
	if err := rec.Create(in); !domain.IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("rejected payload must not touch the store, have %d rows", n)
	}
}

func TestProjection_SiblingScenario(t *testing.T) {
	_, rec, cat := newSvcs(t)

	if err := rec.Create(payloadA1()); err != nil {
		t.Fatal(err)
	}
	if err := rec.Create(payloadB1()); err != nil {
		t.Fatal(err)
	}

	view, err := cat.GetProduct("B1")
	if err != nil {
		t.Fatal(err)
	}
	groups, ok := view["variants"].(map[string]map[string]any)
	if !ok {
		t.Fatalf("variants missing: %v", view)
	}
	entry, ok := groups["color_name"]["product_A1"].(map[string]any)
	if !ok {
		t.Fatalf("product_A1 missing: %v", groups)
	}
	if entry["asin"] != "A1" || entry["price"] != 10.0 || entry["color"] != "Red" ||
		entry["image"] != "https://img.test/a1.jpg" || entry["url"] != "https://shop.test/A1" {
		t.Fatalf("bad sibling entry: %v", entry)
	}
}

func TestProjection_ZeroPriceSiblingExcluded(t *testing.T) {
	_, rec, cat := newSvcs(t)

	a := payloadA1()
	a.Price = 0
	if err := rec.Create(a); err != nil {
		t.Fatal(err)
	}
	if err := rec.Create(payloadB1()); err != nil {
		t.Fatal(err)
	}

	view, err := cat.GetProduct("B1")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := view["variants"]; ok {
		t.Fatalf("inactive sibling must not surface: %v", view["variants"])
	}
}

func TestProjection_ImagelessSiblingExcluded(t *testing.T) {
	_, rec, cat := newSvcs(t)

	a := payloadA1()
	a.Images = nil
	if err := rec.Create(a); err != nil {
		t.Fatal(err)
	}
	if err := rec.Create(payloadB1()); err != nil {
		t.Fatal(err)
	}

	view, err := cat.GetProduct("B1")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := view["variants"]; ok {
		t.Fatalf("image-less sibling must yield no summary: %v", view["variants"])
	}
}

func TestUpdate_FullReplaceIsIdempotent(t *testing.T) {
	db, rec, cat := newSvcs(t)

	if err := rec.Create(payloadA1()); err != nil {
		t.Fatal(err)
	}
	if err := rec.Create(payloadB1()); err != nil {
		t.Fatal(err)
	}

	in := payloadB1()
	if err := rec.Update("B1", in); err != nil {
		t.Fatal(err)
	}
	first, err := cat.GetProduct("B1")
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Update("B1", in); err != nil {
		t.Fatal(err)
	}
	second, err := cat.GetProduct("B1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("projections differ:\n%v\n%v", first, second)
	}

	// No accumulation: record counts match the payload exactly.
	var nImg, nVar int
	if err := db.Get(&nImg, `SELECT COUNT(*) FROM product_images pi JOIN products p ON p.id=pi.product_id WHERE p.asin='B1'`); err != nil {
		t.Fatal(err)
	}
	if err := db.Get(&nVar, `SELECT COUNT(*) FROM product_variants pv JOIN products p ON p.id=pv.product_id WHERE p.asin='B1'`); err != nil {
		t.Fatal(err)
	}
	if nImg != len(in.Images) || nVar != len(in.Variants) {
		t.Fatalf("want %d images, %d variants; got %d, %d", len(in.Images), len(in.Variants), nImg, nVar)
	}
}

func TestUpdate_AsymmetricCollectionReplace(t *testing.T) {
	db, rec, _ := newSvcs(t)

	if err := rec.Create(payloadB1()); err != nil {
		t.Fatal(err)
	}

	// Payload with no images and no variants: images survive, variants go.
	in := payloadB1()
	in.Images = nil
	in.Variants = nil
	if err := rec.Update("B1", in); err != nil {
		t.Fatal(err)
	}

	var nImg, nVar int
	if err := db.Get(&nImg, `SELECT COUNT(*) FROM product_images`); err != nil {
		t.Fatal(err)
	}
	if err := db.Get(&nVar, `SELECT COUNT(*) FROM product_variants`); err != nil {
		t.Fatal(err)
	}
	if nImg != 1 {
		t.Fatalf("prior images must be preserved, got %d", nImg)
	}
	if nVar != 0 {
		t.Fatalf("variants must be cleared, got %d", nVar)
	}
}

func TestUpdate_AbsentScalarsResetToDefaults(t *testing.T) {
	_, rec, _ := newSvcs(t)
	prods := repos.NewProductRepo(rec.DB)

	in := payloadA1()
	in.Brand = "ACME"
	r := 3
	in.Ranking = &r
	if err := rec.Create(in); err != nil {
		t.Fatal(err)
	}

	// Same product, brand and ranking left out of the payload.
	if err := rec.Update("A1", payloadA1()); err != nil {
		t.Fatal(err)
	}
	p, err := prods.GetByASIN("A1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Brand != "" {
		t.Fatalf("absent brand must reset to empty, got %q", p.Brand)
	}
	if p.Ranking != domain.UnrankedSentinel {
		t.Fatalf("absent ranking must reset to sentinel, got %d", p.Ranking)
	}
}

func TestUpdate_UnknownASINNotFound(t *testing.T) {
	_, rec, _ := newSvcs(t)
	if err := rec.Update("NOPE", payloadA1()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestBatchUpdate_ReportsUnknownAsToCreate(t *testing.T) {
	_, rec, _ := newSvcs(t)

	if err := rec.Create(payloadA1()); err != nil {
		t.Fatal(err)
	}
	if err := rec.Create(payloadB1()); err != nil {
		t.Fatal(err)
	}

	unknown := payloadA1()
	unknown.ASIN = "C1"
	res, err := rec.BatchUpdate([]domain.ProductPayload{payloadA1(), payloadB1(), unknown})
	if err != nil {
		t.Fatal(err)
	}
	if res.UpdatedCount != 2 {
		t.Fatalf("want updated_count=2, got %d", res.UpdatedCount)
	}
	if !reflect.DeepEqual(res.ToCreate, []string{"C1"}) {
		t.Fatalf("want to_create=[C1], got %v", res.ToCreate)
	}
}

func TestBatchCreate_CountsRepeats(t *testing.T) {
	_, rec, _ := newSvcs(t)

	if err := rec.Create(payloadA1()); err != nil {
		t.Fatal(err)
	}

	// A1 already stored; B1 appears twice within the batch.
	res, err := rec.BatchCreate([]domain.ProductPayload{payloadA1(), payloadB1(), payloadB1()})
	if err != nil {
		t.Fatal(err)
	}
	if res.CreatedCount != 1 || res.RepeatedCount != 2 {
		t.Fatalf("want created=1 repeated=2, got %+v", res)
	}
}

func TestDelete_OneAndAll(t *testing.T) {
	db, rec, _ := newSvcs(t)

	if err := rec.Create(payloadA1()); err != nil {
		t.Fatal(err)
	}
	if err := rec.Create(payloadB1()); err != nil {
		t.Fatal(err)
	}

	if err := rec.Delete("A1"); err != nil {
		t.Fatal(err)
	}
	if err := rec.Delete("A1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound on second delete, got %v", err)
	}

	n, err := rec.DeleteAll()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want deleted_count=1, got %d", n)
	}

	// Children removed with their owners.
	var orphans int
	if err := db.Get(&orphans, `SELECT COUNT(*) FROM product_images`); err != nil {
		t.Fatal(err)
	}
	if orphans != 0 {
		t.Fatalf("images must not outlive products, got %d", orphans)
	}
}
