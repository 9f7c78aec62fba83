package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ayesha86527/KisanDost/internal/domain/errs"
	"github.com/Ayesha86527/KisanDost/internal/domain/services"
	"github.com/Ayesha86527/KisanDost/internal/impl/config"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FarmerQueryController accepts a farmer's voice recording and/or a
// product image and returns the synthesized voice response.
type FarmerQueryController struct {
	pipeline services.PipelineService
	cfg      *config.Config
	logger   *zap.Logger
}

func NewFarmerQueryController(pipeline services.PipelineService, cfg *config.Config, logger *zap.Logger) *FarmerQueryController {
	return &FarmerQueryController{
		pipeline: pipeline,
		cfg:      cfg,
		logger:   logger,
	}
}

func (c *FarmerQueryController) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/farmer-query", c.HandleFarmerQuery)
}

// HandleFarmerQuery processes a multipart request with optional
// voice_file and image_file parts. At least one must be present.
func (c *FarmerQueryController) HandleFarmerQuery(ctx echo.Context) error {
	lang := ctx.FormValue("lang")
	if lang == "" {
		lang = config.DefaultLanguage
	}

	sessionKey := ctx.FormValue("session_id")
	if sessionKey == "" {
		sessionKey = uuid.New().String()
	}

	audioPath, err := c.saveUpload(ctx, "voice_file")
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}
	imagePath, err := c.saveUpload(ctx, "image_file")
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}

	c.logger.Info("Farmer query received",
		zap.String("session_key", sessionKey),
		zap.String("lang", lang),
		zap.Bool("has_voice", audioPath != ""),
		zap.Bool("has_image", imagePath != ""))

	result, err := c.pipeline.Run(ctx.Request().Context(), services.PipelineRequest{
		SessionKey: sessionKey,
		ImagePath:  imagePath,
		AudioPath:  audioPath,
		Languages:  []string{lang},
	})
	if err != nil {
		var validationErr *errs.ValidationError
		if errors.As(err, &validationErr) {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"detail": err.Error()})
		}
		c.logger.Error("Pipeline run failed",
			zap.String("session_key", sessionKey),
			zap.Error(err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"voice_response": result.VoiceResponses[lang],
	})
}

// saveUpload stages the named multipart file under the recording
// directory and returns its path, or "" when the part is absent.
func (c *FarmerQueryController) saveUpload(ctx echo.Context, field string) (string, error) {
	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || strings.Contains(err.Error(), "no such file") {
			return "", nil
		}
		return "", errs.ValidationErrorf("failed to read %s upload: %v", field, err)
	}
	return c.stageFile(fileHeader)
}

func (c *FarmerQueryController) stageFile(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", errs.InternalErrorf("failed to open upload %s: %v", fileHeader.Filename, err)
	}
	defer src.Close()

	destPath := filepath.Join(c.cfg.RecordingDir(), uuid.New().String()+filepath.Ext(fileHeader.Filename))
	dest, err := os.Create(destPath)
	if err != nil {
		return "", errs.InternalErrorf("failed to stage upload %s: %v", fileHeader.Filename, err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, src); err != nil {
		return "", errs.InternalErrorf("failed to write upload %s: %v", fileHeader.Filename, err)
	}
	return destPath, nil
}
