package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/traslados-api/internal/application/dto"
	apptransfer "github.com/jhoicas/traslados-api/internal/application/transfer"
	"github.com/jhoicas/traslados-api/internal/domain"
	domaintransfer "github.com/jhoicas/traslados-api/internal/domain/transfer"
)

// TransferHandler maneja las peticiones HTTP del ciclo de vida de traslados (protegido).
type TransferHandler struct {
	uc   *apptransfer.TransferUseCase
	docs *apptransfer.DocumentsUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *apptransfer.TransferUseCase, docs *apptransfer.DocumentsUseCase) *TransferHandler {
	return &TransferHandler{uc: uc, docs: docs}
}

// transferError mapea errores de dominio a respuestas HTTP.
// Las transiciones inválidas y las perdidas por concurrencia responden 409
// con el estado vigente, para que el cliente refresque y decida.
func transferError(c *fiber.Ctx, err error) error {
	var transition *domaintransfer.InvalidTransitionError
	if errors.As(err, &transition) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INVALID_TRANSITION",
			Message: transition.Error(),
			Field:   string(transition.Current),
		})
	}
	var qty *domaintransfer.ReceiptQuantityError
	if errors.As(err, &qty) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "RECEIPT_QUANTITY",
			Message: qty.Error(),
			Field:   qty.ItemID,
		})
	}
	var unknown *domaintransfer.UnknownReceiptItemError
	if errors.As(err, &unknown) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "UNKNOWN_RECEIPT_ITEM",
			Message: unknown.Error(),
			Field:   unknown.ItemID,
		})
	}
	var dup *domaintransfer.DuplicateReceiptItemError
	if errors.As(err, &dup) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code:    "DUPLICATE_RECEIPT_ITEM",
			Message: dup.Error(),
			Field:   dup.ItemID,
		})
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "traslado no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrSameWarehouseRoute),
		errors.Is(err, domain.ErrEmptyTransfer),
		errors.Is(err, domain.ErrTransferLocked),
		errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// Create godoc
// @Summary      Crear borrador de traslado
// @Description  Crea un traslado en estado DRAFT con sus líneas. Origen y destino deben ser bodegas distintas de la misma empresa.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Datos del traslado"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), companyID, GetUserID(c), in)
	if err != nil {
		return transferError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar traslados de la empresa
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado (DRAFT, PENDING_APPROVAL, APPROVED, IN_TRANSIT, RECEIVED, CANCELLED)"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.TransferListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.uc.List(c.Context(), companyID, c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener traslado por ID
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetByID(c.Context(), companyID, id)
	if err != nil {
		return transferError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "traslado no encontrado"})
	}
	return c.JSON(out)
}

// Submit godoc
// @Summary      Enviar traslado a aprobación
// @Description  DRAFT → PENDING_APPROVAL. Congela las líneas del traslado.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/submit [post]
func (h *TransferHandler) Submit(c *fiber.Ctx) error {
	return h.lifecycle(c, func(companyID, id string) (*dto.TransferResponse, error) {
		return h.uc.Submit(c.Context(), companyID, id)
	})
}

// Approve godoc
// @Summary      Aprobar traslado
// @Description  PENDING_APPROVAL → APPROVED. Requiere rol admin o aprobador.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	return h.lifecycle(c, func(companyID, id string) (*dto.TransferResponse, error) {
		return h.uc.Approve(c.Context(), companyID, GetRole(c), id)
	})
}

// Ship godoc
// @Summary      Despachar traslado
// @Description  APPROVED → IN_TRANSIT. La mercadería sale de la bodega origen.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	return h.lifecycle(c, func(companyID, id string) (*dto.TransferResponse, error) {
		return h.uc.Ship(c.Context(), companyID, id)
	})
}

// Cancel godoc
// @Summary      Cancelar traslado
// @Description  Permitido desde DRAFT, PENDING_APPROVAL y APPROVED. CANCELLED es terminal.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	return h.lifecycle(c, func(companyID, id string) (*dto.TransferResponse, error) {
		return h.uc.Cancel(c.Context(), companyID, id)
	})
}

// lifecycle factoriza el patrón común de las operaciones de transición.
func (h *TransferHandler) lifecycle(c *fiber.Ctx, op func(companyID, id string) (*dto.TransferResponse, error)) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := op(companyID, id)
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(out)
}

// Receive godoc
// @Summary      Recibir traslado con conciliación parcial
// @Description  IN_TRANSIT → RECEIVED. El cuerpo declara cantidades recibidas por línea; las líneas omitidas se asumen recibidas completas. Cantidades fuera de [0, despachado] rechazan toda la recepción.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del traslado"
// @Param        body  body  dto.ReceiveTransferRequest  true  "Cantidades recibidas por línea"
// @Success      200   {object}  dto.TransferResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.ReceiveTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Receive(c.Context(), companyID, GetUserID(c), id, in)
	if err != nil {
		return transferError(c, err)
	}
	return c.JSON(out)
}

// ExportCSV godoc
// @Summary      Exportar traslados a CSV
// @Description  CSV separado por punto y coma en Windows-1252, compatible con Excel.
// @Tags         transfers
// @Security     Bearer
// @Produce      text/csv
// @Param        status  query  string  false  "Filtrar por estado"
// @Success      200  {file}  file
// @Router       /api/transfers/export [get]
func (h *TransferHandler) ExportCSV(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	data, err := h.docs.ExportCSV(c.Context(), companyID, c.Query("status"))
	if err != nil {
		return transferError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=windows-1252")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="traslados_%s.csv"`, time.Now().Format("20060102")))
	return c.Send(data)
}

// DispatchNote godoc
// @Summary      Guía de despacho en PDF
// @Description  Disponible desde APPROVED en adelante. Incluye cantidades recibidas y clasificación por línea si el traslado ya fue recibido.
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/dispatch-note [get]
func (h *TransferHandler) DispatchNote(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	data, err := h.docs.DispatchNotePDF(c.Context(), companyID, id)
	if err != nil {
		return transferError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="guia_%s.pdf"`, id))
	return c.Send(data)
}

// Manifest godoc
// @Summary      Manifiesto de traslado en XML
// @Tags         transfers
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/manifest [get]
func (h *TransferHandler) Manifest(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	data, err := h.docs.ManifestXML(c.Context(), companyID, id)
	if err != nil {
		return transferError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	return c.Send(data)
}
