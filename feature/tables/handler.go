package tables

import (
	"errors"
	"strconv"

	"offrows/core/logger"
	"offrows/feature/tables/models"
	"offrows/feature/tables/sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler handles HTTP requests for tables, rows and views.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the tables routes. The sync route must come
// before the :id routes so "sync" is not parsed as a table id.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	tables := app.Group("/tables")
	tables.Post("/sync", h.HandleSync)
	tables.Get("/", h.HandleListTables)
	tables.Post("/", h.HandleCreateTable)
	tables.Get("/:id", h.HandleGetTable)
	tables.Put("/:id", h.HandleUpdateTable)
	tables.Delete("/:id", h.HandleDeleteTable)
	tables.Get("/:id/rows", h.HandleListRows)
	tables.Post("/:id/rows", h.HandleCreateRow)
	tables.Get("/:id/views", h.HandleListViews)
	tables.Post("/:id/views", h.HandleCreateView)

	rows := app.Group("/rows")
	rows.Get("/:id", h.HandleGetRow)
	rows.Put("/:id", h.HandleUpdateRow)
	rows.Delete("/:id", h.HandleDeleteRow)

	views := app.Group("/views")
	views.Get("/:id", h.HandleGetView)
	views.Put("/:id", h.HandleUpdateView)
	views.Delete("/:id", h.HandleDeleteView)
}

// HandleSync merges a client batch of tables, rows and views.
// @Summary Sync All Data
// @Description Merge a client-submitted batch of tables, rows and views into the server store.
// @Tags sync
// @Accept json
// @Produce json
// @Param batch body sync.Batch true "Client batch"
// @Success 200 {object} sync.Result "Canonical records and conflicts"
// @Failure 400 {object} map[string]string "Malformed batch"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /tables/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var batch sync.Batch
	if err := c.BodyParser(&batch); err != nil {
		l.Warn("Malformed sync batch", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := h.service.SyncAll(c.Context(), &batch)
	if err != nil {
		l.Error("Sync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// HandleListTables returns all tables.
// @Summary List Tables
// @Tags tables
// @Produce json
// @Success 200 {array} models.Table "Tables"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /tables [get]
func (h *Handler) HandleListTables(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	tables, err := h.service.ListTables(c.Context())
	if err != nil {
		l.Error("Table list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(tables)
}

// HandleCreateTable creates a table.
// @Summary Create Table
// @Tags tables
// @Accept json
// @Produce json
// @Param table body models.Table true "Table"
// @Success 201 {object} models.Table "Created table"
// @Failure 400 {object} map[string]string "Malformed table"
// @Failure 409 {object} map[string]string "Name already taken"
// @Router /tables [post]
func (h *Handler) HandleCreateTable(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var table models.Table
	if err := c.BodyParser(&table); err != nil {
		return badRequest(c, "invalid request body")
	}
	if table.Name == "" {
		return badRequest(c, "table name is required")
	}

	if err := h.service.CreateTable(c.Context(), &table); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "table name already exists",
			})
		}
		l.Error("Table create failed", zap.Error(err))
		return internalError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(table)
}

// HandleGetTable returns one table.
// @Summary Get Table
// @Tags tables
// @Produce json
// @Param id path int true "Table ID"
// @Success 200 {object} models.Table "Table"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /tables/{id} [get]
func (h *Handler) HandleGetTable(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid table id")
	}
	table, err := h.service.GetTable(c.Context(), id)
	if err != nil {
		return lookupError(c, h.service.logger, err, "table")
	}
	return c.JSON(table)
}

// HandleUpdateTable overwrites a table's document.
// @Summary Update Table
// @Tags tables
// @Accept json
// @Produce json
// @Param id path int true "Table ID"
// @Param table body models.Table true "Table"
// @Success 200 {object} models.Table "Updated table"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /tables/{id} [put]
func (h *Handler) HandleUpdateTable(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid table id")
	}
	var in models.Table
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	table, err := h.service.UpdateTable(c.Context(), id, &in)
	if err != nil {
		return lookupError(c, h.service.logger, err, "table")
	}
	return c.JSON(table)
}

// HandleDeleteTable removes a table with its rows and views.
// @Summary Delete Table
// @Tags tables
// @Param id path int true "Table ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /tables/{id} [delete]
func (h *Handler) HandleDeleteTable(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid table id")
	}
	if err := h.service.DeleteTable(c.Context(), id); err != nil {
		return lookupError(c, h.service.logger, err, "table")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListRows returns a table's rows in display order.
// @Summary List Rows
// @Tags rows
// @Produce json
// @Param id path int true "Table ID"
// @Success 200 {array} models.Row "Rows"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /tables/{id}/rows [get]
func (h *Handler) HandleListRows(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid table id")
	}
	if _, err := h.service.GetTable(c.Context(), id); err != nil {
		return lookupError(c, h.service.logger, err, "table")
	}
	rows, err := h.service.ListRows(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(rows)
}

// HandleCreateRow creates a row in a table.
// @Summary Create Row
// @Tags rows
// @Accept json
// @Produce json
// @Param id path int true "Table ID"
// @Param row body models.Row true "Row"
// @Success 201 {object} models.Row "Created row"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Duplicate content"
// @Router /tables/{id}/rows [post]
func (h *Handler) HandleCreateRow(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid table id")
	}
	var row models.Row
	if err := c.BodyParser(&row); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.service.CreateRow(c.Context(), id, &row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "a row with identical content already exists",
			})
		}
		l.Error("Row create failed", zap.Error(err))
		return lookupError(c, h.service.logger, err, "table")
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

// HandleGetRow returns one row.
// @Summary Get Row
// @Tags rows
// @Produce json
// @Param id path int true "Row ID"
// @Success 200 {object} models.Row "Row"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /rows/{id} [get]
func (h *Handler) HandleGetRow(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid row id")
	}
	row, err := h.service.GetRow(c.Context(), id)
	if err != nil {
		return lookupError(c, h.service.logger, err, "row")
	}
	return c.JSON(row)
}

// HandleUpdateRow overwrites a row's content.
// @Summary Update Row
// @Tags rows
// @Accept json
// @Produce json
// @Param id path int true "Row ID"
// @Param row body models.Row true "Row"
// @Success 200 {object} models.Row "Updated row"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /rows/{id} [put]
func (h *Handler) HandleUpdateRow(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid row id")
	}
	var in models.Row
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	row, err := h.service.UpdateRow(c.Context(), id, &in)
	if err != nil {
		return lookupError(c, h.service.logger, err, "row")
	}
	return c.JSON(row)
}

// HandleDeleteRow removes one row.
// @Summary Delete Row
// @Tags rows
// @Param id path int true "Row ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /rows/{id} [delete]
func (h *Handler) HandleDeleteRow(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid row id")
	}
	if err := h.service.DeleteRow(c.Context(), id); err != nil {
		return lookupError(c, h.service.logger, err, "row")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListViews returns a table's views.
// @Summary List Views
// @Tags views
// @Produce json
// @Param id path int true "Table ID"
// @Success 200 {array} models.View "Views"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /tables/{id}/views [get]
func (h *Handler) HandleListViews(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid table id")
	}
	if _, err := h.service.GetTable(c.Context(), id); err != nil {
		return lookupError(c, h.service.logger, err, "table")
	}
	views, err := h.service.ListViews(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}
	return c.JSON(views)
}

// HandleCreateView creates a view on a table.
// @Summary Create View
// @Tags views
// @Accept json
// @Produce json
// @Param id path int true "Table ID"
// @Param view body models.View true "View"
// @Success 201 {object} models.View "Created view"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /tables/{id}/views [post]
func (h *Handler) HandleCreateView(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid table id")
	}
	var view models.View
	if err := c.BodyParser(&view); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.service.CreateView(c.Context(), id, &view); err != nil {
		return lookupError(c, h.service.logger, err, "table")
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// HandleGetView returns one view.
// @Summary Get View
// @Tags views
// @Produce json
// @Param id path int true "View ID"
// @Success 200 {object} models.View "View"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /views/{id} [get]
func (h *Handler) HandleGetView(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid view id")
	}
	view, err := h.service.GetView(c.Context(), id)
	if err != nil {
		return lookupError(c, h.service.logger, err, "view")
	}
	return c.JSON(view)
}

// HandleUpdateView overwrites a view's document.
// @Summary Update View
// @Tags views
// @Accept json
// @Produce json
// @Param id path int true "View ID"
// @Param view body models.View true "View"
// @Success 200 {object} models.View "Updated view"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /views/{id} [put]
func (h *Handler) HandleUpdateView(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid view id")
	}
	var in models.View
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	view, err := h.service.UpdateView(c.Context(), id, &in)
	if err != nil {
		return lookupError(c, h.service.logger, err, "view")
	}
	return c.JSON(view)
}

// HandleDeleteView removes one view.
// @Summary Delete View
// @Tags views
// @Param id path int true "View ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /views/{id} [delete]
func (h *Handler) HandleDeleteView(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, "invalid view id")
	}
	if err := h.service.DeleteView(c.Context(), id); err != nil {
		return lookupError(c, h.service.logger, err, "view")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func pathID(c *fiber.Ctx) (int, error) {
	return strconv.Atoi(c.Params("id"))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func lookupError(c *fiber.Ctx, l *zap.Logger, err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": entity + " not found"})
	}
	logger.WithRayID(l, c).Error("Lookup failed", zap.String("entity", entity), zap.Error(err))
	return internalError(c, err)
}
