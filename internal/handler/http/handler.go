package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/aniladanir/portfolio-contact-service/docs"
	"github.com/aniladanir/portfolio-contact-service/internal/domain"
	"github.com/aniladanir/portfolio-contact-service/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// isoTimestamp is ISO 8601 in UTC with millisecond precision
const isoTimestamp = "2006-01-02T15:04:05.000Z07:00"

type Handler struct {
	contactSvc service.ContactService
	server     *http.Server
}

// @title Portfolio Contact API
// @version 1.0
// @description Stores and triages messages submitted through the portfolio contact form
// @host localhost:5000
// @BasePath /
func NewHttpHandler(addr string, svc service.ContactService, logger *slog.Logger, corsOrigins []string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		contactSvc: svc,
	}

	// create router
	router := gin.New()
	router.Use(requestLogger(logger), recovery(logger))
	router.Use(cors.New(corsConfig(corsOrigins)))

	// register routes
	router.GET("/", h.health)
	for _, base := range []string{"/contact", "/api/contact"} {
		contact := router.Group(base)
		contact.POST("", h.createMessage)
		contact.GET("", h.listMessages)
		contact.GET("/:id", h.getMessage)
		contact.PUT("/:id", h.updateMessage)
		contact.DELETE("/:id", h.deleteMessage)
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.NoRoute(routeNotFound)

	// create http server
	h.server = &http.Server{
		Addr:    addr,
		Handler: trimTrailingSlash(router.Handler()),
	}

	return h
}

func (h *Handler) Run() error {
	return h.server.ListenAndServe()
}

func (h *Handler) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type createMessageRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// updateMessageRequest lists the only mutable fields; anything else in the body is ignored
type updateMessageRequest struct {
	Name    *string               `json:"name"`
	Email   *string               `json:"email"`
	Subject *string               `json:"subject"`
	Message *string               `json:"message"`
	Status  *domain.MessageStatus `json:"status"`
}

func (r updateMessageRequest) patch() domain.MessagePatch {
	return domain.MessagePatch{
		Name:    r.Name,
		Email:   r.Email,
		Subject: r.Subject,
		Message: r.Message,
		Status:  r.Status,
	}
}

// Health godoc
// @Summary Health check
// @Tags System
// @Success 200 {object} Response
// @Router / [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Portfolio Backend Server is running",
		"timestamp": time.Now().UTC().Format(isoTimestamp),
	})
}

// CreateMessage godoc
// @Summary Submit a contact message
// @Description Stores a new message with status 'new'. All fields are required.
// @Tags Contact
// @Accept json
// @Produce json
// @Param message body createMessageRequest true "Contact form"
// @Success 201 {object} Response{data=domain.ContactMessage}
// @Failure 400 {object} Response
// @Failure 500 {object} Response
// @Router /contact [post]
func (h *Handler) createMessage(c *gin.Context) {
	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) || errors.Is(err, io.EOF) {
			fail(c, http.StatusBadRequest, "All fields are required")
			return
		}
		fail(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	msg, err := h.contactSvc.Create(c.Request.Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		h.respondError(c, err, "Error sending message. Please try again.")
		return
	}

	ok(c, http.StatusCreated, "Message sent successfully! I'll get back to you soon.", msg)
}

// ListMessages godoc
// @Summary List contact messages
// @Description Returns every message, newest first
// @Tags Contact
// @Produce json
// @Success 200 {object} Response{data=[]domain.ContactMessage}
// @Failure 500 {object} Response
// @Router /contact [get]
func (h *Handler) listMessages(c *gin.Context) {
	msgs, err := h.contactSvc.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error fetching messages")
		return
	}
	if msgs == nil {
		msgs = []domain.ContactMessage{}
	}

	okList(c, msgs, len(msgs))
}

// GetMessage godoc
// @Summary Get a contact message
// @Tags Contact
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} Response{data=domain.ContactMessage}
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /contact/{id} [get]
func (h *Handler) getMessage(c *gin.Context) {
	msg, err := h.contactSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Error fetching message")
		return
	}

	ok(c, http.StatusOK, "", msg)
}

// UpdateMessage godoc
// @Summary Update a contact message
// @Description Changes the status and/or text fields of a message. Status must be one of new, read, replied.
// @Tags Contact
// @Accept json
// @Produce json
// @Param id path string true "Message ID"
// @Param message body updateMessageRequest true "Fields to change"
// @Success 200 {object} Response{data=domain.ContactMessage}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /contact/{id} [put]
func (h *Handler) updateMessage(c *gin.Context) {
	var req updateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	msg, err := h.contactSvc.Update(c.Request.Context(), c.Param("id"), req.patch())
	if err != nil {
		h.respondError(c, err, "Error updating message")
		return
	}

	ok(c, http.StatusOK, "Message updated successfully", msg)
}

// DeleteMessage godoc
// @Summary Delete a contact message
// @Tags Contact
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} Response{data=domain.ContactMessage}
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /contact/{id} [delete]
func (h *Handler) deleteMessage(c *gin.Context) {
	msg, err := h.contactSvc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Error deleting message")
		return
	}

	ok(c, http.StatusOK, "Message deleted successfully", msg)
}

// respondError maps a service error onto the status code of its kind
func (h *Handler) respondError(c *gin.Context, err error, faultMsg string) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		fail(c, http.StatusBadRequest, vErr.Msg)
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, "Message not found")
	default:
		fault(c, faultMsg, err)
	}
}
