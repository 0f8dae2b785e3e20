package controllers

import (
    "net/http"
    "strconv"
    "time"

    "github.com/gin-gonic/gin"

    "github.com/olehb/contactly/internal/middleware"
    "github.com/olehb/contactly/internal/models"
    "github.com/olehb/contactly/internal/repository"
)

type ContactController struct {
    Contacts *repository.ContactRepository
}

type contactRequest struct {
    FirstName      string `json:"first_name" binding:"required,max=50"`
    LastName       string `json:"last_name" binding:"required,max=50"`
    Email          string `json:"email" binding:"required,email"`
    PhoneNumber    string `json:"phone_number" binding:"required,max=20"`
    Birthday       string `json:"birthday" binding:"required"` // YYYY-MM-DD
    AdditionalInfo string `json:"additional_info" binding:"max=500"`
}

func contactResponse(contact models.Contact) gin.H {
    return gin.H{
        "id":              contact.ID,
        "first_name":      contact.FirstName,
        "last_name":       contact.LastName,
        "email":           contact.Email,
        "phone_number":    contact.PhoneNumber,
        "birthday":        contact.Birthday.Format("2006-01-02"),
        "additional_info": contact.AdditionalInfo,
        "created_at":      contact.CreatedAt,
        "updated_at":      contact.UpdatedAt,
    }
}

func contactListResponse(contacts []models.Contact) []gin.H {
    out := make([]gin.H, 0, len(contacts))
    for _, contact := range contacts {
        out = append(out, contactResponse(contact))
    }
    return out
}

func (ct *ContactController) List(c *gin.Context) {
    user, _ := middleware.CurrentUser(c)
    limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
    offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
    if limit <= 0 || limit > 100 {
        limit = 20
    }
    contacts, err := ct.Contacts.List(c.Request.Context(), user.ID, limit, offset)
    if err != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
        return
    }
    c.JSON(http.StatusOK, contactListResponse(contacts))
}

func (ct *ContactController) Get(c *gin.Context) {
    user, _ := middleware.CurrentUser(c)
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
        return
    }
    contact, err := ct.Contacts.Get(c.Request.Context(), user.ID, uint(id))
    if err != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
        return
    }
    if contact == nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
        return
    }
    c.JSON(http.StatusOK, contactResponse(*contact))
}

func (ct *ContactController) Create(c *gin.Context) {
    user, _ := middleware.CurrentUser(c)
    var req contactRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    birthday, err := time.Parse("2006-01-02", req.Birthday)
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "birthday must be YYYY-MM-DD"})
        return
    }
    contact := models.Contact{
        FirstName:      req.FirstName,
        LastName:       req.LastName,
        Email:          req.Email,
        PhoneNumber:    req.PhoneNumber,
        Birthday:       birthday,
        AdditionalInfo: req.AdditionalInfo,
        UserID:         user.ID,
    }
    if err := ct.Contacts.Create(c.Request.Context(), &contact); err != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
        return
    }
    c.JSON(http.StatusCreated, contactResponse(contact))
}

func (ct *ContactController) Update(c *gin.Context) {
    user, _ := middleware.CurrentUser(c)
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
        return
    }
    var req contactRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    birthday, err := time.Parse("2006-01-02", req.Birthday)
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "birthday must be YYYY-MM-DD"})
        return
    }
    contact, err := ct.Contacts.Get(c.Request.Context(), user.ID, uint(id))
    if err != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
        return
    }
    if contact == nil {
        c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
        return
    }
    contact.FirstName = req.FirstName
    contact.LastName = req.LastName
    contact.Email = req.Email
    contact.PhoneNumber = req.PhoneNumber
    contact.Birthday = birthday
    contact.AdditionalInfo = req.AdditionalInfo
    if err := ct.Contacts.Update(c.Request.Context(), contact); err != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
        return
    }
    c.JSON(http.StatusOK, contactResponse(*contact))
}

func (ct *ContactController) Delete(c *gin.Context) {
    user, _ := middleware.CurrentUser(c)
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contact id"})
        return
    }
    deleted, err := ct.Contacts.Delete(c.Request.Context(), user.ID, uint(id))
    if err != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
        return
    }
    if !deleted {
        c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
        return
    }
    c.Status(http.StatusNoContent)
}

func (ct *ContactController) Search(c *gin.Context) {
    user, _ := middleware.CurrentUser(c)
    query := c.Query("q")
    if query == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
        return
    }
    contacts, err := ct.Contacts.Search(c.Request.Context(), user.ID, query)
    if err != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
        return
    }
    c.JSON(http.StatusOK, contactListResponse(contacts))
}

func (ct *ContactController) UpcomingBirthdays(c *gin.Context) {
    user, _ := middleware.CurrentUser(c)
    days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
    if days <= 0 || days > 366 {
        days = 7
    }
    contacts, err := ct.Contacts.UpcomingBirthdays(c.Request.Context(), user.ID, days, time.Now().UTC())
    if err != nil {
        c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
        return
    }
    c.JSON(http.StatusOK, contactListResponse(contacts))
}
