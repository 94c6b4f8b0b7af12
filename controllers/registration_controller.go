package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agribridge/agribridge/models"
	"github.com/agribridge/agribridge/stores"
	"github.com/agribridge/agribridge/utils"
)

const registrationsCacheKey = "cache:registrations:list"

// RegistrationController serves the legacy registration API. Response bodies
// stay outside the envelope so existing clients keep working: a raw JSON
// array on list, the raw record on create, and {"error": ...} on failure.
type RegistrationController struct {
	regs *stores.RegistrationStore
}

// NewRegistrationController creates a new RegistrationController instance.
func NewRegistrationController(regs *stores.RegistrationStore) *RegistrationController {
	return &RegistrationController{regs: regs}
}

// List returns the full registration collection in storage order.
func (r *RegistrationController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(registrationsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	regs := r.regs.ListAll()
	utils.CacheSetJSON(registrationsCacheKey, regs, time.Hour)
	ctx.JSON(http.StatusOK, regs)
}

// Create appends one registration record.
func (r *RegistrationController) Create(ctx *gin.Context) {
	var in models.RegistrationInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "name and email required"})
		return
	}

	rec, err := r.regs.Append(in)
	if err != nil {
		if errors.Is(err, stores.ErrValidation) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "name and email required"})
			return
		}
		utils.Sugar.Errorf("failed to save registration: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save"})
		return
	}

	utils.CacheInvalidate(registrationsCacheKey)
	ctx.JSON(http.StatusCreated, rec)
}
