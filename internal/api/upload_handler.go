package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	clamd "github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"devfolio/internal/api/middleware"
	"devfolio/internal/storage"
)

// ObjectStorage 抽象上传文件区，便于测试替换。
type ObjectStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GetObject(ctx context.Context, objectKey string) (io.ReadCloser, error)
	StatObject(ctx context.Context, objectKey string) (storage.ObjectInfo, error)
}

// uploadObjectPrefix 是上传文件在 Bucket 内的统一前缀，对外映射为 /uploads/。
const uploadObjectPrefix = "uploads/"

// uploadKind 描述某一类上传端点的限制。
type uploadKind struct {
	name         string
	maxBytes     int64
	allowedMIMEs []string
	rejectMsg    string
}

var (
	imageUploadKind = uploadKind{
		name:         "image",
		maxBytes:     5 * 1024 * 1024,
		allowedMIMEs: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		rejectMsg:    "only image files are allowed",
	}
	pdfUploadKind = uploadKind{
		name:         "pdf",
		maxBytes:     20 * 1024 * 1024,
		allowedMIMEs: []string{"application/pdf"},
		rejectMsg:    "only PDF files are allowed",
	}
	videoUploadKind = uploadKind{
		name:         "video",
		maxBytes:     100 * 1024 * 1024,
		allowedMIMEs: []string{"video/mp4", "video/webm", "video/quicktime"},
		rejectMsg:    "only video files are allowed",
	}
)

// UploadHandler 负责后台文件上传与公开回源。
type UploadHandler struct {
	Storage   ObjectStorage
	Logger    *slog.Logger
	ClamdAddr string
}

// NewUploadHandler 返回 UploadHandler 实例。
func NewUploadHandler(storageClient ObjectStorage, logger *slog.Logger, clamdAddr string) *UploadHandler {
	return &UploadHandler{
		Storage:   storageClient,
		Logger:    logger,
		ClamdAddr: clamdAddr,
	}
}

// UploadImage 处理图片上传。
func (h *UploadHandler) UploadImage(c *gin.Context) { h.handleUpload(c, imageUploadKind) }

// UploadPDF 处理 PDF 上传。
func (h *UploadHandler) UploadPDF(c *gin.Context) { h.handleUpload(c, pdfUploadKind) }

// UploadVideo 处理视频上传。
func (h *UploadHandler) UploadVideo(c *gin.Context) { h.handleUpload(c, videoUploadKind) }

func (h *UploadHandler) handleUpload(c *gin.Context, kind uploadKind) {
	logger := middleware.LoggerFromContext(c)
	if adminID, ok := adminIDFromContext(c); ok {
		logger = logger.With(slog.Uint64("admin_id", uint64(adminID)))
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "no file uploaded")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if !mimeAllowed(kind.allowedMIMEs, contentType) {
		UnsupportedMediaType(c, kind.rejectMsg)
		return
	}

	if file.Size > kind.maxBytes {
		PayloadTooLarge(c, fmt.Sprintf("file exceeds the %d MB limit for %s uploads", kind.maxBytes/(1024*1024), kind.name))
		return
	}

	// 病毒扫描可选：未配置 clamd 地址时直接跳过。
	if h.ClamdAddr != "" {
		if ok := h.scanFile(c, file, logger); !ok {
			return
		}
	}

	reader, err := file.Open()
	if err != nil {
		logger.Error("open upload file failed", slog.Any("error", err))
		Internal(c, "upload failed")
		return
	}
	defer reader.Close()

	objectName := fmt.Sprintf("%s%d-%s%s",
		uploadObjectPrefix,
		time.Now().UnixMilli(),
		uuid.NewString(),
		strings.ToLower(filepath.Ext(file.Filename)),
	)

	if _, err := h.Storage.UploadFile(c.Request.Context(), objectName, reader, file.Size, contentType); err != nil {
		logger.Error("upload file failed", slog.String("object", objectName), slog.Any("error", err))
		Internal(c, "upload failed")
		return
	}

	filename := path.Base(objectName)
	logger.Info("file uploaded",
		slog.String("kind", kind.name),
		slog.String("object", objectName),
		slog.Int64("size", file.Size),
	)
	c.JSON(http.StatusOK, gin.H{
		"url":      "/uploads/" + filename,
		"filename": filename,
		"size":     file.Size,
	})
}

// ServeUpload 把 Bucket 中的上传对象按原始字节流回给公网请求。
func (h *UploadHandler) ServeUpload(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" || strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		NotFound(c, "file not found")
		return
	}

	objectKey := uploadObjectPrefix + filename
	ctx := c.Request.Context()

	info, err := h.Storage.StatObject(ctx, objectKey)
	if err != nil {
		if storage.IsNoSuchKey(err) {
			NotFound(c, "file not found")
			return
		}
		middleware.LoggerFromContext(c).Error("stat upload failed", slog.String("object", objectKey), slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	reader, err := h.Storage.GetObject(ctx, objectKey)
	if err != nil {
		middleware.LoggerFromContext(c).Error("read upload failed", slog.String("object", objectKey), slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	defer reader.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, info.Size, contentType, reader, nil)
}

// scanFile 在持久化前把文件流送往 clamd。失败时已写好响应，调用方直接返回。
func (h *UploadHandler) scanFile(c *gin.Context, file *multipart.FileHeader, logger *slog.Logger) bool {
	clamdClient := clamd.NewClamd(h.ClamdAddr)

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return false
	}

	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(fileReader, abortChan)
	fileReader.Close()
	if err != nil {
		logger.Error("scan file failed", slog.Any("error", err))
		Internal(c, "failed to scan file")
		return false
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			BadRequest(c, "malicious file detected")
			return false
		}
	}
	return true
}

func mimeAllowed(allowed []string, contentType string) bool {
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, contentType) {
			return true
		}
	}
	return false
}
