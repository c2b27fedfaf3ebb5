package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sagarc03/filetrail"
)

// DefaultMaxBodyBytes limits request bodies when HandlerConfig leaves it unset.
const DefaultMaxBodyBytes = 1 << 20

type Service interface {
	List(ctx context.Context, subject string) ([]filetrail.UserFile, error)
	FetchURL(ctx context.Context, subject string, id int64) (string, error)
	Create(ctx context.Context, subject string, nf filetrail.NewUserFile) (filetrail.CreatedUserFile, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age"`
}

type HandlerConfig struct {
	Verifier     TokenVerifier
	CORS         CORSConfig
	MaxBodyBytes int64
}

// Handler provides HTTP handlers for the user file API.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		config:  cfg,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/status", h.handleStatus)

	r.Group(func(r chi.Router) {
		r.Use(Intercept(AuthInterceptor(h.config.Verifier)))

		r.Get("/token", h.handleToken)
		r.Get("/user-files", h.handleList)
		r.Get("/user-files/{id}/fetch", h.handleFetch)
		r.Post("/user-files", h.handleCreate)
	})

	return r
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	subject := SubjectFromContext(r.Context())
	_ = WriteJSON(w, http.StatusOK, map[string]string{"msg": "Hello " + subject})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.List(r.Context(), SubjectFromContext(r.Context()))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, files)
}

func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	// a malformed id cannot name an owned file
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		HandleError(w, fmt.Errorf("parse id: %w", filetrail.ErrNotFound))
		return
	}

	url, err := h.service.FetchURL(r.Context(), SubjectFromContext(r.Context()), id)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := h.decodeBody(w, r)
	if err != nil {
		HandleError(w, err)
		return
	}

	nf, err := filetrail.DecodeNewUserFile(body)
	if err != nil {
		HandleError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), SubjectFromContext(r.Context()), nf)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, created)
}

// decodeBody reads a JSON object from the request body, bounded by the
// configured size limit.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)

	dec := json.NewDecoder(r.Body)

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("request body exceeds %d bytes: %w", tooLarge.Limit, filetrail.ErrInvalidInput)
		}
		return nil, fmt.Errorf("decode request body: %w: %w", filetrail.ErrInvalidInput, err)
	}

	if body == nil {
		return nil, fmt.Errorf("request body must be a JSON object: %w", filetrail.ErrInvalidInput)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("request body must hold a single JSON object: %w", filetrail.ErrInvalidInput)
	}

	return body, nil
}
