package handlers

import (
	"github.com/jmoiron/sqlx"

	"asinity/internal/repos"
	"asinity/internal/services"
)

type Deps struct {
	AuthHandler     *AuthHandler
	ProductHandler  *ProductHandler
	ProductsHandler *ProductsHandler
	Auth            *services.AuthService
}

func NewDeps(db *sqlx.DB, auth *services.AuthService) *Deps {
	prodRepo := repos.NewProductRepo(db)

	resolver := services.NewSiblingResolver(prodRepo)
	catalogSvc := services.NewCatalogService(prodRepo, resolver)
	reconcileSvc := services.NewReconcileService(db, prodRepo)

	return &Deps{
		AuthHandler:     &AuthHandler{Auth: auth},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc, Reconcile: reconcileSvc},
		ProductsHandler: &ProductsHandler{Catalog: catalogSvc, Reconcile: reconcileSvc},
		Auth:            auth,
	}
}
