package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simplexsales/backend/dto"
	"github.com/simplexsales/backend/services"
)

func CreateQuotationRequest(quotations *services.QuotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticatedUserID(c)
		if !ok {
			return
		}

		var body dto.CreateQuotationDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "requestText is required"})
			return
		}

		qr, err := quotations.Create(c.Request.Context(), userID, c.Param("productId"), body.RequestText)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"quotationRequest": qr})
	}
}

func GetQuotationRequests(quotations *services.QuotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := quotations.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"quotationRequests": requests})
	}
}

func RespondToQuotationRequest(quotations *services.QuotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RespondQuotationDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "adminResponse is required"})
			return
		}

		qr, err := quotations.Respond(c.Request.Context(), c.Param("qrId"), body.AdminResponse)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Responded", "quotationRequest": qr})
	}
}
