package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okravchenko/contactbook/internal/adapters/transport/http/middleware"
	"github.com/okravchenko/contactbook/internal/app/users"
)

type usersHandler struct {
	svc *users.Service
}

func (h *usersHandler) me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *usersHandler) updateAvatar(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	updated, err := h.svc.UpdateAvatar(
		c.Request.Context(),
		user,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
