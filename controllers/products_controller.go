package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simplexsales/backend/config"
	"github.com/simplexsales/backend/dto"
	"github.com/simplexsales/backend/services"
	"github.com/simplexsales/backend/utils"
)

func GetProducts(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		nameQuery := strings.TrimSpace(c.Query("q"))
		page := utils.ParseIntDefault(c.Query("page"), 1)
		limit := utils.ParseIntDefault(c.Query("limit"), 20)
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		items, total, err := products.List(c.Request.Context(), nameQuery, page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"products": items,
			"total":    total,
			"page":     page,
			"limit":    limit,
		})
	}
}

func GetProduct(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := products.Get(c.Request.Context(), c.Param("productId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

func AddProduct(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateProductDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		product, err := products.Create(c.Request.Context(), body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"product": product})
	}
}

func UpdateProduct(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateProductDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		product, err := products.Update(c.Request.Context(), c.Param("productId"), body)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

func DeleteProduct(products *services.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := products.Delete(c.Request.Context(), c.Param("productId")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}

// UploadProductImages streams multipart images to the media bucket and
// appends the resulting public URLs to the product.
func UploadProductImages(products *services.ProductService, cfg *config.Config, v *utils.FileValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
			return
		}
		files := form.File["images"]
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing images"})
			return
		}

		for _, fh := range files {
			if _, err := v.ValidateFile(fh); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		product, err := products.Get(ctx, c.Param("productId"))
		if err != nil {
			respondError(c, err)
			return
		}

		gcs, err := utils.NewGCSClient(ctx, cfg)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to init storage client"})
			return
		}
		defer gcs.Close()

		urls, err := utils.UploadProductImages(ctx, gcs, cfg.GCSBucket, product.PublicID, files)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updated, err := products.AppendImages(ctx, product.PublicID, urls)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product": updated, "imageUrls": urls})
	}
}
