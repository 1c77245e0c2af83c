package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/pages"
	apperrors "github.com/spec-kit/smart-hospital-client/pkg/util"
)

// PagesHandler serves page templates to clients using the http source.
type PagesHandler struct {
	source pages.TemplateSource
}

// NewPagesHandler constructs handler.
func NewPagesHandler(source pages.TemplateSource) *PagesHandler {
	return &PagesHandler{source: source}
}

// Get handles GET /pages/:name.
func (h *PagesHandler) Get(c *fiber.Ctx) error {
	name := c.Params("name")
	if !strings.HasSuffix(name, ".html") {
		return apperrors.NewNotFound("page", map[string]any{"page": name})
	}
	page := domain.Page(strings.TrimSuffix(name, ".html"))

	text, err := h.source.Fetch(c.UserContext(), page)
	if err != nil {
		if errors.Is(err, pages.ErrPageNotFound) {
			return apperrors.NewNotFound("page", map[string]any{"page": name})
		}
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(text)
}
