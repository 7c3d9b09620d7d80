package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/domain"
)

// errorMapping status y código público por error de dominio. El orden importa: se usa el primero que coincida.
var errorMapping = []struct {
	target  error
	status  int
	code    string
	message string
}{
	{domain.ErrValidation, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrInsufficientStock, fiber.StatusBadRequest, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrInvalidState, fiber.StatusBadRequest, "INVALID_STATE", "la solicitud ya no está pendiente"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con un recurso existente"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
	{domain.ErrTransaction, fiber.StatusServiceUnavailable, "TRANSACTION", "la transacción no pudo completarse, intente de nuevo"},
}

// ErrorWriter traduce errores de dominio al sobre {success:false, ...}.
type ErrorWriter struct {
	dev bool
	log zerolog.Logger
}

// NewErrorWriter dev=true agrega el detalle interno en los 500.
func NewErrorWriter(dev bool, log zerolog.Logger) *ErrorWriter {
	return &ErrorWriter{dev: dev, log: log}
}

// Respond escribe la respuesta de error correspondiente a err.
func (w *ErrorWriter) Respond(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if !errors.Is(err, m.target) {
			continue
		}
		body := dto.Fail(m.code, publicMessage(err, m.message))
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			body.Errors = verr.Fields
		}
		var serr *domain.InsufficientStockError
		if errors.As(err, &serr) {
			body.Data = fiber.Map{"available": serr.Available, "requested": serr.Requested}
		}
		if m.status == fiber.StatusServiceUnavailable {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(1))
		}
		return c.Status(m.status).JSON(body)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.Fail(codeForStatus(fe.Code), fe.Message))
	}

	w.log.Error().Err(err).Str("path", c.Path()).Str("request_id", requestID(c)).Msg("error interno")
	body := dto.Fail("INTERNAL", "error interno del servidor")
	if w.dev {
		body.Detail = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}

// Handler para fiber.Config.ErrorHandler (errores no capturados por los handlers y panics recuperados).
func (w *ErrorWriter) Handler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return w.Respond(c, err)
	}
}

// publicMessage usa el texto del error de dominio salvo para ValidationError, cuyo detalle va en errors.
func publicMessage(err error, fallback string) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return fallback
	}
	return err.Error()
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "INVALID_BODY"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	}
	if status >= 500 {
		return "INTERNAL"
	}
	return "ERROR"
}

func ok(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.OK(message, data))
}

func okPage(c *fiber.Ctx, message string, data any, page dto.PageRequest, total int) error {
	body := dto.OK(message, data)
	body.Pagination = &dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total}
	return c.JSON(body)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_BODY", "cuerpo inválido"))
}

// pageFromQuery lee limit/offset (o page/limit) con los valores por defecto del DTO.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset", 0)}
	if n := c.QueryInt("page", 0); n > 0 && c.Query("offset") == "" {
		p.DefaultPage()
		p.Offset = (n - 1) * p.Limit
	}
	p.DefaultPage()
	return p
}

// queryTime acepta RFC3339 o YYYY-MM-DD (UTC).
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, domain.NewValidationError(key, "fecha inválida, use YYYY-MM-DD o RFC3339")
	}
	return &t, nil
}
