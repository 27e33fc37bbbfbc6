package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/berkes/beancount-degiro/src/config"
	"github.com/berkes/beancount-degiro/src/logger"
	"github.com/berkes/beancount-degiro/src/security/validation"
	"github.com/berkes/beancount-degiro/src/services"
	"github.com/berkes/beancount-degiro/src/utils"
)

type ImportHandler struct {
	importService services.ImportService
}

func NewImportHandler(service services.ImportService) *ImportHandler {
	return &ImportHandler{importService: service}
}

// HandleImport accepts a multipart statement upload and responds with the
// rendered beancount text plus diagnostics.
func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	if err := validation.ValidateClientContentType(fileHeader.Header.Get("Content-Type")); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		logger.L.Warn("File content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.L.Info("Processing import request", "filename", fileHeader.Filename)
	result, err := h.importService.ProcessImport(file, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, services.ErrParsingFailed) {
			logger.L.Warn("Import failed due to statement parsing errors", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing statement file: %v", err), http.StatusBadRequest)
			return
		}
		logger.L.Error("Import failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, "Internal error processing statement", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}

// HandleLatestResult returns the most recent import result, if cached.
func (h *ImportHandler) HandleLatestResult(w http.ResponseWriter, r *http.Request) {
	result, found := h.importService.LatestResult()
	if !found {
		utils.SendJSONError(w, "No import processed yet", http.StatusNotFound)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

// HandleHealth is the unauthenticated liveness probe.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
