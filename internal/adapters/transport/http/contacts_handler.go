package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/okravchenko/contactbook/internal/adapters/transport/http/middleware"
	"github.com/okravchenko/contactbook/internal/app/contacts"
	"github.com/okravchenko/contactbook/internal/app/dto"
	"github.com/okravchenko/contactbook/internal/domain/repo"
)

type contactsHandler struct {
	svc *contacts.Service
}

func (h *contactsHandler) list(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	result, err := h.svc.List(c.Request.Context(), user, repo.ContactFilter{
		FirstName: c.Query("first_name"),
		LastName:  c.Query("last_name"),
		Email:     c.Query("email"),
		Skip:      skip,
		Limit:     limit,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *contactsHandler) get(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	contact, err := h.svc.Get(c.Request.Context(), user, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *contactsHandler) create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	var body dto.ContactDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contact, err := h.svc.Create(c.Request.Context(), user, body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (h *contactsHandler) update(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	var body dto.ContactUpdateDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contact, err := h.svc.Update(c.Request.Context(), user, id, body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *contactsHandler) remove(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
		return
	}
	contact, err := h.svc.Delete(c.Request.Context(), user, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *contactsHandler) birthdays(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	result, err := h.svc.UpcomingBirthdays(c.Request.Context(), user, days)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
