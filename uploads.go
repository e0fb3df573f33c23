package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/taxfocuspk/invoicing_backend/config"
	"github.com/taxfocuspk/invoicing_backend/models"
	"github.com/taxfocuspk/invoicing_backend/utils"
)

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// uploadCompanyLogoHandler accepts a multipart logo image, stores the
// original plus a 256px thumbnail, and records the public URL on the
// company profile.
func uploadCompanyLogoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 5MB limit"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			respondError(c, err)
			return
		}

		mimeType := http.DetectContentType(data)
		if !imageMimeTypes[mimeType] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
			return
		}

		ownerId, _ := utils.GetOwnerIdFromContext(c.Request.Context())
		ext := strings.ToLower(path.Ext(fileHeader.Filename))
		if ext == "" {
			ext = ".jpg"
		}
		objectKey := fmt.Sprintf("logos/%d/%s%s", ownerId, utils.GenerateUniqueFilename(), ext)

		if err := utils.UploadBytesToGCS(c.Request.Context(), objectKey, data, mimeType); err != nil {
			config.LogError(logger, "uploads", "uploadCompanyLogoHandler", "upload original", objectKey, err)
			respondError(c, err)
			return
		}

		// thumbnail is best-effort; the original is what matters
		thumbKey := strings.TrimSuffix(objectKey, ext) + "_thumb" + ext
		if img, err := imaging.Decode(bytes.NewReader(data)); err == nil {
			thumb := imaging.Fit(img, 256, 256, imaging.Lanczos)
			var buf bytes.Buffer
			format := imaging.JPEG
			if mimeType == "image/png" {
				format = imaging.PNG
			}
			if err := imaging.Encode(&buf, thumb, format); err == nil {
				if err := utils.UploadBytesToGCS(c.Request.Context(), thumbKey, buf.Bytes(), mimeType); err != nil {
					config.LogError(logger, "uploads", "uploadCompanyLogoHandler", "upload thumbnail", thumbKey, err)
				}
			}
		}

		logoUrl := utils.PublicObjectURL(objectKey)
		company, err := models.UpdateCompanyLogo(c.Request.Context(), logoUrl)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"company":       company,
			"logo_url":      logoUrl,
			"thumbnail_url": utils.PublicObjectURL(thumbKey),
		})
	}
}
