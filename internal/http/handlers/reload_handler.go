package handlers

import (
	"github.com/gofiber/fiber/v2"

	"comparador/internal/log"
	"comparador/internal/services"
)

type ReloadHandler struct {
	Catalog *services.CatalogService
}

// Reload re-runs every dataset retrieval. ?purge=1 drops cached remote
// payloads first.
func (h *ReloadHandler) Reload(c *fiber.Ctx) error {
	purge := c.QueryBool("purge", false)
	snap, err := h.Catalog.Reload(c.UserContext(), purge)
	if err != nil {
		log.Error(c, "catalog.reload.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reload failed"})
	}

	failures := make([]string, 0, len(snap.Failures))
	for _, f := range snap.Failures {
		failures = append(failures, f.Error())
	}
	log.Audit(c, "catalog.reload", map[string]any{
		"snapshot": snap.ID.String(), "products": len(snap.Products), "failures": len(failures), "purge": purge,
	})
	return c.JSON(fiber.Map{
		"snapshot": snap.ID.String(),
		"products": len(snap.Products),
		"failures": failures,
	})
}
