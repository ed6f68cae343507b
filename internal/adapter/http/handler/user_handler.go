package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	. "cpfregistry/internal/adapter/http/helper"
	"cpfregistry/internal/adapter/spreadsheet"
	"cpfregistry/internal/core/domain"
	"cpfregistry/internal/core/model/request"
	"cpfregistry/internal/core/model/response"
	"cpfregistry/internal/core/port"
	"cpfregistry/internal/core/util"
	"cpfregistry/pkg/config"
	. "cpfregistry/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const spreadsheetField = "file"

type UserHandler struct {
	svc       port.UserService
	validator port.Validator
	Logger    *config.Logger
	now       func() time.Time
}

func NewUserHandler(svc port.UserService, validator port.Validator, logger *config.Logger) *UserHandler {
	if logger == nil {
		logger = config.NewNopLogger("cpfregistry")
	}

	return &UserHandler{
		svc:       svc,
		validator: validator,
		Logger:    logger,
		now:       time.Now,
	}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx, span := h.startSpan(c, "CreateUser")
	defer span.End()

	params, ok := bind[request.CreateUserRequest](c, h.validator)
	if !ok {
		return
	}

	user, err := h.svc.Build(params.Name, params.Email, params.Cpf)

	if err != nil {
		h.sendError(c, span, err, "Failed to build user")
		return
	}

	span.SetAttributes(attribute.String("user.id", user.ID()))

	if err := h.svc.Create(ctx, user); err != nil {
		h.sendError(c, span, err, "Failed to create user")
		return
	}

	SendSuccess(c, http.StatusCreated, response.NewUserResponse(user))
}

func (h *UserHandler) ImportSpreadsheet(c *gin.Context) {
	ctx, span := h.startSpan(c, "ImportSpreadsheet")
	defer span.End()

	header, err := c.FormFile(spreadsheetField)

	if err != nil {
		SendBadRequestError(c, spreadsheetField, "The spreadsheet file is required")
		return
	}

	file, err := header.Open()

	if err != nil {
		h.sendError(c, span, err, "Failed to open spreadsheet")
		return
	}
	defer file.Close()

	users, err := spreadsheet.Read(file, h.svc)

	if err != nil {
		h.sendError(c, span, err, "Failed to read spreadsheet")
		return
	}

	span.SetAttributes(attribute.Int("spreadsheet.users", len(users)))

	if err := h.svc.CreateFromBatch(ctx, users); err != nil {
		h.sendError(c, span, err, "Failed to create users from spreadsheet")
		return
	}

	SendSuccess(c, http.StatusCreated, response.SpreadsheetImportResponse{
		CreatedUsers: len(users),
		DateTime:     domain.FormatDateTime(h.now()),
	})
}

func (h *UserHandler) ExportSpreadsheet(c *gin.Context) {
	ctx, span := h.startSpan(c, "ExportSpreadsheet")
	defer span.End()

	users, err := h.svc.FindAll(ctx)

	if err != nil {
		h.sendError(c, span, err, "Failed to list users")
		return
	}

	content, err := spreadsheet.Content(users)

	if err != nil {
		h.sendError(c, span, err, "Failed to write spreadsheet")
		return
	}

	SendSuccess(c, http.StatusOK, response.SpreadsheetExportResponse{Csv: content})
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	ctx, span := h.startSpan(c, "GetAllUsers")
	defer span.End()

	users, err := h.svc.FindAll(ctx)

	if err != nil {
		h.sendError(c, span, err, "Failed to list users")
		return
	}

	span.SetAttributes(attribute.Int("users.count", len(users)))

	SendSuccess(c, http.StatusOK, response.NewUserResponses(users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	ctx, span := h.startSpan(c, "GetUser")
	defer span.End()

	details, err := h.svc.FindByID(ctx, c.Param("id"))

	if err != nil {
		h.sendError(c, span, err, "Failed to get user")
		return
	}

	SendSuccess(c, http.StatusOK, response.NewUserDetailsResponse(details))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	ctx, span := h.startSpan(c, "DeleteUser")
	defer span.End()

	if err := h.svc.DeleteUser(ctx, c.Param("id")); err != nil {
		h.sendError(c, span, err, "Failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) EditName(c *gin.Context) {
	ctx, span := h.startSpan(c, "EditName")
	defer span.End()

	params, ok := bind[request.EditNameRequest](c, h.validator)
	if !ok {
		return
	}

	edit, err := h.svc.EditName(ctx, c.Param("id"), params.Name)

	if err != nil {
		h.sendError(c, span, err, "Failed to edit user name")
		return
	}

	SendSuccess(c, http.StatusOK, response.EditNameResponse{
		Name:     edit.Value,
		DateTime: domain.FormatDateTime(edit.DateEdition),
	})
}

func (h *UserHandler) EditCpf(c *gin.Context) {
	ctx, span := h.startSpan(c, "EditCpf")
	defer span.End()

	params, ok := bind[request.EditCpfRequest](c, h.validator)
	if !ok {
		return
	}

	edit, err := h.svc.EditCpf(ctx, c.Param("id"), params.Cpf)

	if err != nil {
		h.sendError(c, span, err, "Failed to edit user cpf")
		return
	}

	SendSuccess(c, http.StatusOK, response.EditCpfResponse{
		Cpf:      edit.Value,
		DateTime: domain.FormatDateTime(edit.DateEdition),
	})
}

func (h *UserHandler) EditEmail(c *gin.Context) {
	ctx, span := h.startSpan(c, "EditEmail")
	defer span.End()

	params, ok := bind[request.EditEmailRequest](c, h.validator)
	if !ok {
		return
	}

	edit, err := h.svc.EditEmail(ctx, c.Param("id"), params.Email)

	if err != nil {
		h.sendError(c, span, err, "Failed to edit user email")
		return
	}

	SendSuccess(c, http.StatusOK, response.EditEmailResponse{
		Email:    edit.Value,
		DateTime: domain.FormatDateTime(edit.DateEdition),
	})
}

func (h *UserHandler) startSpan(c *gin.Context, operation string) (context.Context, trace.Span) {
	return CreateChildSpan(c.Request.Context(), "handler.user."+operation, []attribute.KeyValue{
		attribute.String("handler.operation", operation),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})
}

// sendError answers domain errors with their mapped status and anything else with 500.
func (h *UserHandler) sendError(c *gin.Context, span trace.Span, err error, message string) {
	if SendDomainError(c, err) {
		AddSpanRejection(span, err, c.Writer.Status())
		return
	}

	AddSpanError(span, err)

	h.Logger.Logger.Ctx(c.Request.Context()).Error(message,
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("user_id", c.Param("id")),
	)

	_ = c.Error(err)
	SendInternalError(c, message)
}

func bind[T any](c *gin.Context, validator port.Validator) (T, bool) {
	params, err := util.ParamsToMap[T](c)

	if err != nil {
		field, message := "request", "Invalid request parameters"

		var bindErr *util.BindError
		if errors.As(err, &bindErr) {
			field, message = bindErr.Field, bindErr.Error()
		}

		SendBadRequestError(c, field, message)
		return params, false
	}

	if err := validator.ValidateStruct(params); err != nil {
		SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validator.FormatValidationErrors(err))
		return params, false
	}

	return params, true
}
