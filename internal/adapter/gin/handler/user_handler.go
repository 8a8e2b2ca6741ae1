package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-console/internal/domain/user"
	"user-console/internal/usecase/user"
	apperrors "user-console/pkg/errors"
	"user-console/pkg/logger"
)

// TotalCountHeader carries the number of matches of a listing.
const TotalCountHeader = "X-Total-Count"

// UserHandler serves the users REST API.
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// UserRequest is the body of POST /users and PUT /users/:id.
type UserRequest struct {
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Company domain.Company `json:"company"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}

	u, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company.Name,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, u)
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	u, err := h.uc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badBody(c, err)
		return
	}

	u, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:      id,
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company.Name,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.uc.DeleteUser(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUsers handles GET /users. The body is a bare JSON array; the match
// count goes in X-Total-Count. Without limit every match is returned.
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Query: c.Query("query"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := resp.Users
	if users == nil {
		users = []domain.User{}
	}
	c.Header(TotalCountHeader, strconv.FormatInt(resp.Pagination.Total, 10))
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid user id", zap.String("id", idStr))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "User ID must be a positive number",
		})
		return 0, false
	}
	return id, true
}

func (h *UserHandler) badBody(c *gin.Context, err error) {
	logger.WithContext(c.Request.Context(), h.log).Warn("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_body",
		Message: "Request body must be a JSON user object",
	})
}

// handleError converts usecase errors to HTTP responses.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	resp := ErrorResponse{Error: errorCode(err), Message: err.Error()}

	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context(), h.log).Error("request failed", zap.Error(err))
		resp.Message = "An internal error occurred"
	}
	c.JSON(status, resp)
}

func errorCode(err error) string {
	var (
		ve *apperrors.ValidationError
		nf *apperrors.NotFoundError
		ae *apperrors.AlreadyExistsError
	)
	switch {
	case errors.As(err, &ve):
		return "validation_error"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &ae):
		return "already_exists"
	}
	return "internal_error"
}
