package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobboard-api/internal/api/metrics"
	"github.com/jobportal/jobboard-api/internal/core/domain"
	"github.com/jobportal/jobboard-api/internal/core/ports"
)

const cvFormField = "cv"

// CVHandler serves the CV upload, lookup and delete endpoints.
type CVHandler struct {
	service ports.CVService
}

func NewCVHandler(service ports.CVService) *CVHandler {
	return &CVHandler{service: service}
}

// Upload stores the multipart file as the CV of userId.
//
// @Summary      Upload CV
// @Description  Accepts PDF, DOC or DOCX up to 5 MiB. Replaces any previous CV.
// @Tags         cv
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        cv      formData  file    true  "CV document"
// @Param        userId  formData  string  true  "Owner of the CV; must be the caller"
// @Success      200  {object}  cvResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      413  {object}  errorResponse
// @Router       /cv [post]
func (h *CVHandler) Upload(c echo.Context) (err error) {
	defer func() { metrics.CVOperationsTotal.WithLabelValues("upload", outcome(err)).Inc() }()

	actorID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile(cvFormField)
	if err != nil {
		return fmt.Errorf("%w: no file uploaded", domain.ErrInvalidInput)
	}
	file, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	cv, err := h.service.Upload(c.Request().Context(), ports.UploadCVInput{
		ActorID:     actorID,
		UserID:      c.FormValue("userId"),
		FileName:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        file,
	})
	if err != nil {
		return err
	}

	metrics.CVUploadBytes.Observe(float64(cv.SizeBytes))
	return c.JSON(http.StatusOK, cvResponse{Success: true, Message: "CV uploaded successfully", Data: cv})
}

// Info returns the CV metadata of a user.
//
// @Summary      Get CV metadata
// @Tags         cv
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "User id"
// @Success      200  {object}  cvResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /cv/{userId} [get]
func (h *CVHandler) Info(c echo.Context) (err error) {
	defer func() { metrics.CVOperationsTotal.WithLabelValues("info", outcome(err)).Inc() }()

	actorID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	cv, err := h.service.Info(c.Request().Context(), actorID, c.Param("userId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cvResponse{Success: true, Data: cv})
}

// Delete removes the CV of a user.
//
// @Summary      Delete CV
// @Tags         cv
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path  string  true  "User id"
// @Success      200  {object}  cvResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /cv/{userId} [delete]
func (h *CVHandler) Delete(c echo.Context) (err error) {
	defer func() { metrics.CVOperationsTotal.WithLabelValues("delete", outcome(err)).Inc() }()

	actorID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), actorID, c.Param("userId")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cvResponse{Success: true, Message: "CV deleted successfully"})
}
