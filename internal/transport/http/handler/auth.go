package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"shopsync/internal/core/auth"
	"shopsync/internal/domain"
	syncsvc "shopsync/internal/sync"
)

type Auth struct {
	users *syncsvc.Users
	jwt   *auth.JWTer
}

func NewAuth(users *syncsvc.Users, jwt *auth.JWTer) *Auth {
	return &Auth{users: users, jwt: jwt}
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *Auth) Login(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "email and password are required")
		return
	}
	u, err := h.users.Login(c.Request.Context(), strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.jwt.Issue(u.ID, u.Role())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, session{Token: token, User: u})
}

func (h *Auth) Register(c *gin.Context) {
	var in domain.User
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid user payload")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		badRequest(c, "email and password are required")
		return
	}
	u, err := h.users.Register(c.Request.Context(), &in)
	if err != nil {
		fail(c, err)
		return
	}
	token, err := h.jwt.Issue(u.ID, u.Role())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, session{Token: token, User: u})
}

func (h *Auth) Me(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, u)
}

func (h *Auth) UpdateMe(c *gin.Context) {
	var in domain.User
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid user payload")
		return
	}
	// The subject comes from the token; the body cannot retarget the update.
	in.ID = currentUserID(c)
	u, err := h.users.Update(c.Request.Context(), &in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, u)
}
