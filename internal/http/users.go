package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/database/users"
)

// UsersController lists users and their books. It is only routed when
// login is enabled.
type UsersController struct {
	store UserStore
}

func NewUsersController(store UserStore) *UsersController {
	return &UsersController{store: store}
}

// ListUsers handles GET /api/users/
func (uc *UsersController) ListUsers(c *gin.Context) {
	list, err := uc.store.ListUsers()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}

	out := make([]UserResponse, 0, len(list))
	for i := range list {
		out = append(out, serializeUser(c, &list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetUser handles GET /api/users/:id/
func (uc *UsersController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := uc.store.GetUserByID(id)
	if errors.Is(err, users.ErrNotFound) {
		respondNotFound(c, "user")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, serializeUser(c, user))
}
