package services

import "asinity/internal/domain"

// BuildView turns a stored product plus its children into the public view
// document. Two pure stages: rawView flattens scalars and images with empty
// fields omitted, groupVariants folds the variant list into
// type -> product_<asin> -> sibling summary. The variants key is absent when
// no variant resolves to an active sibling.
func BuildView(p domain.Product, images []domain.Image, variants []domain.Variant, r Resolver) (map[string]any, error) {
	view := rawView(p, images)

	groups, err := groupVariants(variants, r)
	if err != nil {
		return nil, err
	}
	if len(groups) > 0 {
		view["variants"] = groups
	}
	return view, nil
}

// rawView keeps only non-empty fields. The omission rule is uniform: empty
// strings and zero numerics are dropped alike, so an unlisted (price 0)
// product simply carries no price.
func rawView(p domain.Product, images []domain.Image) map[string]any {
	view := map[string]any{}

	putStr := func(key, v string) {
		if v != "" {
			view[key] = v
		}
	}
	putFloat := func(key string, v float64) {
		if v != 0 {
			view[key] = v
		}
	}
	putInt := func(key string, v int) {
		if v != 0 {
			view[key] = v
		}
	}

	putStr("asin", p.ASIN)
	putFloat("price", p.Price)
	putStr("url", p.URL)
	putStr("title", p.Title)
	putStr("brand", p.Brand)
	putStr("model", p.Model)
	putInt("saving_percentage", p.SavingPercentage)
	putFloat("basis_price", p.BasisPrice)
	putStr("customer_opinion", p.CustomerOpinion)
	putInt("ranking", p.Ranking)

	if len(images) > 0 {
		urls := make([]string, 0, len(images))
		for _, img := range images {
			urls = append(urls, img.URL)
		}
		view["images"] = urls
	}
	return view
}

// groupVariants resolves each variant's sibling and accumulates the
// summaries per type tag. Unresolvable variants contribute nothing. A
// repeated sibling asin under the same type overwrites the earlier entry
// (last write wins).
func groupVariants(variants []domain.Variant, r Resolver) (map[string]map[string]any, error) {
	groups := map[string]map[string]any{}
	for _, v := range variants {
		sib, err := r.Resolve(v.SiblingASIN)
		if err != nil {
			return nil, err
		}
		if sib == nil {
			continue
		}

		entry := map[string]any{
			"asin":  sib.ASIN,
			"title": sib.Title,
			"price": sib.Price,
			"image": sib.Image,
			"url":   sib.URL,
		}
		if v.Type == "color_name" {
			entry["color"] = v.Name
		}

		if groups[v.Type] == nil {
			groups[v.Type] = map[string]any{}
		}
		groups[v.Type]["product_"+sib.ASIN] = entry
	}
	return groups, nil
}
