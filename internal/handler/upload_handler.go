package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/educrm-api/internal/service"
	appErrors "github.com/noah-isme/educrm-api/pkg/errors"
	"github.com/noah-isme/educrm-api/pkg/response"
)

const profilePictureField = "profilePicture"

// UploadHandler accepts file uploads.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// ProfilePicture godoc
// @Summary Upload profile picture
// @Description Image files up to 5MB; the response URL is served under /uploads
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param profilePicture formData file true "Image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /upload/profile-picture [post]
func (h *UploadHandler) ProfilePicture(c *gin.Context) {
	header, err := c.FormFile(profilePictureField)
	if err != nil {
		response.Error(c, appErrors.Validation("profile picture is required", []appErrors.FieldError{
			{Field: profilePictureField, Message: "is required"},
		}))
		return
	}
	res, err := h.uploads.SaveProfilePicture(c.Request.Context(), header)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}
