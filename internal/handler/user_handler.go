package handler

import (
	"connectsphere/internal/model"
	"connectsphere/internal/service"
	"connectsphere/pkg/jwt"
	"connectsphere/pkg/response"
	"connectsphere/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// Broadcaster pushes an event to every live connection.
type Broadcaster interface {
	Broadcast(event string, data any)
}

type UserHandler struct {
	service  *service.UserService
	notifier Broadcaster
}

func NewUserHandler(s *service.UserService, notifier Broadcaster) *UserHandler {
	return &UserHandler{service: s, notifier: notifier}
}

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register POST /api/register
func (h *UserHandler) Register(c *gin.Context) {
	var req credentials
	if !bind(c, &req) {
		return
	}
	res, err := h.service.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "registered", res)
}

// Login POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req credentials
	if !bind(c, &req) {
		return
	}
	res, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	if h.notifier != nil {
		h.notifier.Broadcast(websocket.EventUserStatus, websocket.UserStatusPayload{Username: res.Username, Status: model.StatusOnline})
	}
	response.SuccessWithMessage(c, "logged in", res)
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Profile(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}

// Update PUT /api/users/:username, email and mobile only
func (h *UserHandler) Update(c *gin.Context) {
	username, ok := owner(c, c.Param("username"))
	if !ok {
		return
	}
	var req struct {
		Email  string `json:"email"`
		Mobile string `json:"mobile"`
	}
	if !bind(c, &req) {
		return
	}
	if err := h.service.UpdateProfile(c.Request.Context(), username, req.Email, req.Mobile); err != nil {
		fail(c, err)
		return
	}
	user, err := h.service.Profile(c.Request.Context(), username)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}

// SetStatus PUT /api/users/:username/status
func (h *UserHandler) SetStatus(c *gin.Context) {
	username, ok := owner(c, c.Param("username"))
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	if err := h.service.SetStatus(c.Request.Context(), username, req.Status); err != nil {
		fail(c, err)
		return
	}
	if h.notifier != nil {
		h.notifier.Broadcast(websocket.EventUserStatus, websocket.UserStatusPayload{Username: username, Status: req.Status})
	}
	response.OK(c)
}

// SendCode POST /api/verify/send-code
func (h *UserHandler) SendCode(c *gin.Context) {
	var req struct {
		Type    string `json:"type" binding:"required,oneof=email mobile"`
		Contact string `json:"contact"`
	}
	if !bind(c, &req) {
		return
	}
	if err := h.service.SendVerificationCode(c.Request.Context(), req.Type, req.Contact); err != nil {
		fail(c, err)
		return
	}
	response.OK(c)
}

// ConfirmCode POST /api/verify/confirm-code
func (h *UserHandler) ConfirmCode(c *gin.Context) {
	var req struct {
		Type string `json:"type" binding:"required,oneof=email mobile"`
		Code string `json:"code"`
	}
	if !bind(c, &req) {
		return
	}
	if err := h.service.ConfirmVerificationCode(c.Request.Context(), jwt.GetUsername(c), req.Type, req.Code); err != nil {
		fail(c, err)
		return
	}
	response.OK(c)
}
