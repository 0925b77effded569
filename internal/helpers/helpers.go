package helpers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	MarketplaceFolder = "campsum/marketplace"

	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	refreshTokenMaxAge = 3600 * 24 * 30
)

// ImageUploader stores remote or data-URI images and returns their public URLs.
type ImageUploader interface {
	UploadImages(ctx context.Context, images []string, folder string) ([]string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld}
}

func (cu *CloudinaryUploader) UploadImages(ctx context.Context, images []string, folder string) ([]string, error) {
	if cu == nil || cu.cld == nil {
		return nil, fmt.Errorf("image storage is not configured")
	}
	var urls []string
	for i, src := range images {
		if strings.TrimSpace(src) == "" {
			continue
		}
		res, err := cu.cld.Upload.Upload(ctx, src, uploader.UploadParams{
			Folder:         folder,
			Tags:           []string{"campsum"},
			UniqueFilename: api.Bool(true),
			Transformation: "q_auto",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image %d: %w", i, err)
		}
		if res.SecureURL == "" {
			return nil, fmt.Errorf("upload of image %d returned no url", i)
		}
		urls = append(urls, res.SecureURL)
	}
	return urls, nil
}

// FormatValidationError turns validator errors into "field is required"
// style messages keyed by the JSON field name.
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fieldErrorMessage(fe))
	}
	return strings.Join(messages, "; ")
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_without", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// RespondError writes {"error": ...} with the status mapped from err. Server
// errors are logged with the request id and replaced by fallback.
func RespondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := apperror.MapErrorToStatus(err)
	if status >= http.StatusInternalServerError && logger != nil {
		requestID, _ := c.Get("request_id")
		logger.Error("request failed",
			"request_id", requestID,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	c.JSON(status, gin.H{"error": apperror.PublicMessage(err, fallback)})
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func SetSessionCookies(c *gin.Context, accessToken, refreshToken string, expiresIn int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, accessToken, expiresIn, "/", "", secure, true)
	if refreshToken != "" {
		c.SetCookie(RefreshTokenCookie, refreshToken, refreshTokenMaxAge, "/", "", secure, true)
	}
}

func ClearSessionCookies(c *gin.Context, secure bool) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}
