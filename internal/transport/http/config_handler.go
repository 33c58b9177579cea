package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gopkg.in/yaml.v2"

	apierrors "confgate/internal/errors"
	"confgate/internal/infrastructure"
	"confgate/internal/middleware"
	"confgate/internal/services"
)

// Schema output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ConfigHandler serves the configuration schema and resolution state
type ConfigHandler struct {
	service      ConfigInspector
	required     []string
	errorHandler *apierrors.ErrorHandler
	params       *middleware.QueryParamValidator
	logger       *slog.Logger
}

// NewConfigHandler creates a config handler. required marks the keys whose
// absence counts as a failure in the status report.
func NewConfigHandler(service ConfigInspector, required []string, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ConfigHandler {
	logger = infrastructure.WithComponent(logger, "config_handler")
	return &ConfigHandler{
		service:      service,
		required:     append([]string(nil), required...),
		errorHandler: errorHandler,
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger,
	}
}

// Routes sets up the config routes
func (h *ConfigHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/schema", h.Schema)
	r.Get("/schema/{key}", h.SchemaKey)
	r.Get("/status", h.Status)
	return r
}

// Schema handles GET /api/config/schema
func (h *ConfigHandler) Schema(w http.ResponseWriter, r *http.Request) {
	format, ok := h.params.ValidateEnum(w, r, "format", []string{FormatJSON, FormatYAML}, FormatJSON)
	if !ok {
		return
	}

	descriptions := h.service.Describe()
	if format == FormatYAML {
		out, err := yaml.Marshal(descriptions)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NewInternalAppError("failed to render schema", err))
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		w.Write(out)
		return
	}

	render.JSON(w, r, descriptions)
}

// SchemaKey handles GET /api/config/schema/{key}
func (h *ConfigHandler) SchemaKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	description, err := h.service.DescribeKey(key)
	if err != nil {
		if errors.Is(err, services.ErrUnknownKey) {
			h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("key "+key))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, description)
}

// StatusResponse is the body of GET /api/config/status
type StatusResponse struct {
	OK   bool                 `json:"ok"`
	Keys []services.KeyReport `json:"keys"`
}

// Status handles GET /api/config/status. ?keys=A,B limits the report.
func (h *ConfigHandler) Status(w http.ResponseWriter, r *http.Request) {
	var keys []string
	if raw := r.URL.Query().Get("keys"); raw != "" {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
	}

	reports := h.service.Check(r.Context(), keys, h.required, false)
	resp := StatusResponse{OK: true, Keys: reports}
	for _, report := range reports {
		if report.Failed() {
			resp.OK = false
			break
		}
	}

	render.JSON(w, r, resp)
}
