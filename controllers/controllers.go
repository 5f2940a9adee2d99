package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simplexsales/backend/apperr"
)

func respondError(c *gin.Context, err error) {
	status, msg := apperr.Classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func authenticatedUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}
