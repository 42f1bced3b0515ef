package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/made-ai/made/pkg/apierrors"
	"github.com/made-ai/made/pkg/models"
)

// classifyFileType maps an upload's declared MIME type to the
// file_type enum (§3); anything not matching a specific prefix falls
// back to the generic "file" bucket rather than being rejected, since
// every enum member is a legitimate attachment kind.
func classifyFileType(mimeType string) models.FileType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return models.FileTypeImage
	case mimeType == "application/pdf":
		return models.FileTypePDF
	case strings.HasPrefix(mimeType, "audio/"):
		return models.FileTypeAudio
	case strings.HasPrefix(mimeType, "video/"):
		return models.FileTypeVideo
	case strings.HasPrefix(mimeType, "text/"):
		return models.FileTypeText
	default:
		return models.FileTypeFile
	}
}

// handleUpload implements POST /upload (§6): each file in the
// multipart form's "files" field is staged under a fresh opaque token,
// ready to be named in a later /council/run or /superchat/chat request.
func (s *Server) handleUpload(c *gin.Context) {
	userID := extractUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		writeError(c, apierrors.NewFieldError("files", "malformed multipart form"))
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		writeError(c, apierrors.NewFieldError("files", "no files provided"))
		return
	}

	responses := make([]models.UploadResponse, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(c, fmt.Errorf("open %s: %w", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(c, fmt.Errorf("read %s: %w", fh.Filename, err))
			return
		}

		mimeType := fh.Header.Get("Content-Type")
		fileType := classifyFileType(mimeType)

		entry, err := s.staging.Put(userID, fh.Filename, mimeType, fileType, data)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File too large: %s", fh.Filename)})
			return
		}

		responses = append(responses, models.UploadResponse{
			ID:       entry.Token,
			Filename: entry.Filename,
			Size:     entry.Size,
			Type:     entry.FileType,
		})
	}

	c.JSON(http.StatusOK, responses)
}

// handleDownloadAttachment implements GET /attachments/{id} (§6),
// requiring the caller to own the conversation the attachment belongs
// to.
func (s *Server) handleDownloadAttachment(c *gin.Context) {
	userID := extractUserID(c)
	id, err := parseIntParam(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	att, data, err := s.store.GetAttachmentData(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, att.Filename))
	c.Data(http.StatusOK, att.MimeType, data)
}
