package transport

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"wardrobe/internal/domain"
	"wardrobe/internal/imaging"
	"wardrobe/internal/middleware"
	"wardrobe/internal/repository"
	"wardrobe/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ImageField is the multipart field carrying the item image
const ImageField = "image_url"

// DefaultMaxUploadBytes caps request bodies when no limit is configured
const DefaultMaxUploadBytes = 10 << 20

// MoveRequest represents the move request payload
type MoveRequest struct {
	Location string `json:"location" validate:"required,location"`
}

// MessageResponse is a confirmation returned by mutating endpoints
type MessageResponse struct {
	Message string `json:"message"`
	ID      *int64 `json:"id,omitempty"`
}

// ClothingItemResponse represents a clothing item in list and detail responses
type ClothingItemResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	MainColor      string  `json:"main_color"`
	SecondaryColor *string `json:"secondary_color"`
	ImageURL       *string `json:"image_url"`
	Location       string  `json:"location"`
	Count          int     `json:"count"`
	CreatedOn      string  `json:"created_on"`
}

// SearchResultResponse represents a clothing item in search results
type SearchResultResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	MainColor      string  `json:"main_color"`
	SecondaryColor *string `json:"secondary_color"`
	ImageURL       *string `json:"image_url"`
	Location       string  `json:"location"`
}

// ClothingHandler handles HTTP requests for clothing items
type ClothingHandler struct {
	clothingService service.ClothingService
	logger          *zap.Logger
	maxUploadBytes  int64
}

// NewClothingHandler creates a new ClothingHandler
func NewClothingHandler(clothingService service.ClothingService, logger *zap.Logger, maxUploadBytes int64) *ClothingHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &ClothingHandler{
		clothingService: clothingService,
		logger:          logger,
		maxUploadBytes:  maxUploadBytes,
	}
}

// RegisterRoutes registers all clothing routes
func (h *ClothingHandler) RegisterRoutes(r chi.Router) {
	r.Route("/clothing", func(r chi.Router) {
		r.Post("/", h.CreateItem)
		r.Get("/", h.ListItems)
		r.Get("/search", h.SearchItems)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetItem)
			r.Put("/", h.UpdateItem)
			r.Delete("/", h.DeleteItem)
			r.Put("/move", h.MoveItem)
		})
	})
}

// CreateItem handles item creation from a multipart or urlencoded form
func (h *ClothingHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	input, image, ok := h.parseClothingForm(w, r)
	if !ok {
		return
	}

	item, err := h.clothingService.CreateItem(r.Context(), input, image)
	if err != nil {
		h.handleServiceError(w, err, "Clothing item creation failed")
		return
	}

	h.logger.Info("Clothing item created", zap.Int64("item_id", item.ID), zap.Bool("has_image", item.ImageURL != nil))
	middleware.RespondWithJSON(w, http.StatusCreated, MessageResponse{
		Message: "Clothing item created!",
		ID:      &item.ID,
	})
}

// ListItems handles listing every clothing item
func (h *ClothingHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.clothingService.ListItems(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Failed to list clothing items")
		return
	}

	response := make([]ClothingItemResponse, len(items))
	for i, item := range items {
		response[i] = toItemResponse(item)
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// SearchItems handles substring search over names, categories and colours
func (h *ClothingHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	items, err := h.clothingService.SearchItems(r.Context(), query)
	if err != nil {
		h.handleServiceError(w, err, "Failed to search clothing items")
		return
	}

	response := make([]SearchResultResponse, len(items))
	for i, item := range items {
		response[i] = SearchResultResponse{
			ID:             item.ID,
			Name:           item.Name,
			Category:       item.Category,
			MainColor:      item.MainColor,
			SecondaryColor: item.SecondaryColor,
			ImageURL:       item.ImageURL,
			Location:       item.Location.String(),
		}
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// GetItem handles retrieving a single item
func (h *ClothingHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	item, err := h.clothingService.GetItem(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Failed to get clothing item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toItemResponse(item))
}

// UpdateItem handles replacing the fields of an item
func (h *ClothingHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	// Missing items are reported before the body is read
	if !h.requireItem(w, r, id, "Clothing item update failed") {
		return
	}

	input, image, ok := h.parseClothingForm(w, r)
	if !ok {
		return
	}

	if _, err := h.clothingService.UpdateItem(r.Context(), id, input, image); err != nil {
		h.handleServiceError(w, err, "Clothing item update failed")
		return
	}

	h.logger.Info("Clothing item updated", zap.Int64("item_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Clothing item updated!"})
}

// DeleteItem handles item deletion
func (h *ClothingHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	if err := h.clothingService.DeleteItem(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "Clothing item deletion failed")
		return
	}

	h.logger.Info("Clothing item deleted", zap.Int64("item_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Clothing item deleted!"})
}

// MoveItem handles relocating an item
func (h *ClothingHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	if !h.requireItem(w, r, id, "Clothing item move failed") {
		return
	}

	var req MoveRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Move validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.clothingService.MoveItem(r.Context(), id, req.Location); err != nil {
		h.handleServiceError(w, err, "Clothing item move failed")
		return
	}

	h.logger.Info("Clothing item moved", zap.Int64("item_id", id), zap.String("location", req.Location))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Clothing item moved!"})
}

// parseClothingForm reads and validates the clothing form fields and the
// optional image. It writes the error response itself and reports false on failure.
func (h *ClothingHandler) parseClothingForm(w http.ResponseWriter, r *http.Request) (domain.ClothingInput, *service.ImageUpload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var err error
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(h.maxUploadBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return domain.ClothingInput{}, nil, false
		}
		h.logger.Debug("Form parsing failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid form data")
		return domain.ClothingInput{}, nil, false
	}

	input := domain.ClothingInput{
		Name:      r.FormValue("name"),
		Category:  r.FormValue("category"),
		MainColor: r.FormValue("main_color"),
		Location:  r.FormValue("location"),
	}
	if secondary := r.FormValue("secondary_color"); secondary != "" {
		input.SecondaryColor = &secondary
	}

	if raw := r.FormValue("count"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			message := "Value must be an integer"
			if errors.Is(err, strconv.ErrRange) {
				message = "Value is out of range"
			}
			middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
				{Field: "count", Message: message},
			})
			return domain.ClothingInput{}, nil, false
		}
		count := int(parsed)
		input.Count = &count
	}

	if err := middleware.ValidateRequest(input); err != nil {
		h.logger.Debug("Clothing validation failed", zap.Error(err))
		middleware.RespondWithValidationErrors(w, middleware.FormatValidationErrors(err))
		return domain.ClothingInput{}, nil, false
	}

	image, err := formImage(r)
	if err != nil {
		h.logger.Debug("Image part unreadable", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image upload")
		return domain.ClothingInput{}, nil, false
	}

	return input, image, true
}

// formImage returns the uploaded image or nil when none was sent
func formImage(r *http.Request) (*service.ImageUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, header, err := r.FormFile(ImageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &service.ImageUpload{Reader: bytes.NewReader(data), Filename: header.Filename}, nil
}

// requireItem writes the error response and reports false when id cannot be loaded
func (h *ClothingHandler) requireItem(w http.ResponseWriter, r *http.Request, id int64, logMessage string) bool {
	if _, err := h.clothingService.GetItem(r.Context(), id); err != nil {
		h.handleServiceError(w, err, logMessage)
		return false
	}
	return true
}

func (h *ClothingHandler) handleServiceError(w http.ResponseWriter, err error, logMessage string) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.logger.Debug(logMessage, zap.Error(err))
		middleware.RespondWithValidationErrors(w, validationErr.Fields)
	case errors.Is(err, imaging.ErrInvalidImage):
		h.logger.Debug(logMessage, zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image")
	case errors.Is(err, repository.ErrClothingItemNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "clothing item not found")
	default:
		h.logger.Error(logMessage, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid clothing item id")
		return 0, false
	}
	return id, true
}

func toItemResponse(item *domain.ClothingItem) ClothingItemResponse {
	return ClothingItemResponse{
		ID:             item.ID,
		Name:           item.Name,
		Category:       item.Category,
		MainColor:      item.MainColor,
		SecondaryColor: item.SecondaryColor,
		ImageURL:       item.ImageURL,
		Location:       item.Location.String(),
		Count:          item.Count,
		CreatedOn:      item.CreatedOn.Format(domain.CreatedOnLayout),
	}
}
