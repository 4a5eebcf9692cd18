package handlers

import (
	"comparador/internal/config"
	"comparador/internal/services"
)

type Deps struct {
	PageHandler   *PageHandler
	APIHandler    *APIHandler
	ReloadHandler *ReloadHandler
	ReloadHash    string
}

func NewDeps(cfg config.Config, catalog *services.CatalogService) *Deps {
	return &Deps{
		PageHandler:   &PageHandler{Catalog: catalog},
		APIHandler:    &APIHandler{Catalog: catalog},
		ReloadHandler: &ReloadHandler{Catalog: catalog},
		ReloadHash:    cfg.ReloadTokenHash,
	}
}
