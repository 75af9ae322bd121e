package handler

import (
	"context"
	"mime/multipart"
	"net/http"

	"ocrweb/internal/server/service"
	"ocrweb/internal/task"
	"ocrweb/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TaskService defines the behavior consumed by the handlers.
type TaskService interface {
	Create(ctx context.Context, file multipart.File, header *multipart.FileHeader, lang string) (task.Task, error)
	Lookup(ctx context.Context, id string) (service.Report, bool)
	Artifact(id, filename string) (string, bool)
}

// LanguageOption is one entry of the recognition-language dropdown.
type LanguageOption struct {
	Value string
	Label string
}

// DefaultLanguages mirrors the reader profiles the OCR engine ships with.
var DefaultLanguages = []LanguageOption{
	{Value: "rus+eng", Label: "Russian + English"},
	{Value: "eng", Label: "English"},
	{Value: "rus", Label: "Russian"},
}

// TaskHandler manages the upload / status / download HTTP surface.
type TaskHandler struct {
	service   TaskService
	maxUpload int64
	log       *logrus.Logger
}

// NewTaskHandler builds the handler.
func NewTaskHandler(svc TaskService, maxUpload int64, log *logrus.Logger) *TaskHandler {
	if maxUpload <= 0 {
		maxUpload = 50 << 20
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TaskHandler{service: svc, maxUpload: maxUpload, log: log}
}

// HandleIndex renders the upload page.
func (h *TaskHandler) HandleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Languages": DefaultLanguages,
	})
}

// HandleUpload accepts a PDF and schedules background processing.
func (h *TaskHandler) HandleUpload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "invalid multipart payload",
		})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "missing file",
		})
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "file too large",
		})
		return
	}
	if !web.IsPDFUpload(header.Filename, header.Header.Get("Content-Type")) && !web.HasPDFMagic(file) {
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
			"error": "file must be a PDF",
		})
		return
	}

	lang := c.Request.FormValue("lang")
	created, err := h.service.Create(c.Request.Context(), file, header, lang)
	if err != nil {
		h.log.WithError(err).Error("upload rejected")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "could not accept upload",
		})
		return
	}

	h.log.WithFields(logrus.Fields{
		"task_id":  created.ID,
		"filename": created.Filename,
	}).Info("upload accepted")
	c.JSON(http.StatusOK, gin.H{
		"task_id":  created.ID,
		"filename": created.Filename,
		"size":     web.FormatFileSize(header.Size),
	})
}

// HandleResult reports task state: 200 done or failed, 202 processing,
// 404 unknown.
func (h *TaskHandler) HandleResult(c *gin.Context) {
	id := c.Param("task_id")
	rep, ok := h.service.Lookup(c.Request.Context(), id)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error": "task not found",
		})
		return
	}

	switch rep.Status {
	case task.StatusDone:
		c.JSON(http.StatusOK, gin.H{
			"status": string(task.StatusDone),
			"txt":    "/download/" + id + "/result.txt",
			"json":   "/download/" + id + "/result.json",
		})
	case task.StatusFailed:
		c.JSON(http.StatusOK, gin.H{
			"status": string(task.StatusFailed),
			"error":  rep.Error,
		})
	default:
		c.JSON(http.StatusAccepted, gin.H{
			"status": string(task.StatusProcessing),
		})
	}
}

// HandleDownload streams a result artifact as an attachment.
func (h *TaskHandler) HandleDownload(c *gin.Context) {
	id := c.Param("task_id")
	filename := c.Param("filename")

	path, ok := h.service.Artifact(id, filename)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error": "file not found",
		})
		return
	}
	c.FileAttachment(path, filename)
}
