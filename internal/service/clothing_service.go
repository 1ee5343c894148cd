package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"

	"wardrobe/internal/domain"
	"wardrobe/internal/imaging"
	"wardrobe/internal/repository"
	"wardrobe/internal/storage"
)

// ImageUpload is an image supplied alongside a create or update request
type ImageUpload struct {
	Reader   io.Reader
	Filename string
}

// ClothingService defines the interface for clothing item business logic
type ClothingService interface {
	CreateItem(ctx context.Context, input domain.ClothingInput, image *ImageUpload) (*domain.ClothingItem, error)
	GetItem(ctx context.Context, id int64) (*domain.ClothingItem, error)
	ListItems(ctx context.Context) ([]*domain.ClothingItem, error)
	SearchItems(ctx context.Context, query string) ([]*domain.ClothingItem, error)
	UpdateItem(ctx context.Context, id int64, input domain.ClothingInput, image *ImageUpload) (*domain.ClothingItem, error)
	MoveItem(ctx context.Context, id int64, location string) error
	DeleteItem(ctx context.Context, id int64) error
}

type clothingService struct {
	repo  repository.ClothingRepository
	store storage.ObjectStore
}

// NewClothingService creates a new instance of ClothingService
func NewClothingService(repo repository.ClothingRepository, store storage.ObjectStore) ClothingService {
	return &clothingService{
		repo:  repo,
		store: store,
	}
}

// CreateItem validates the input, stores the optional image and inserts the row
func (s *clothingService) CreateItem(ctx context.Context, input domain.ClothingInput, image *ImageUpload) (*domain.ClothingItem, error) {
	location, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.storeImage(ctx, input.Name, image)
	if err != nil {
		return nil, err
	}

	count := domain.DefaultCount
	if input.Count != nil {
		count = *input.Count
	}

	item := &domain.ClothingItem{
		Name:           input.Name,
		Category:       input.Category,
		MainColor:      input.MainColor,
		SecondaryColor: secondaryColor(input.SecondaryColor),
		ImageURL:       imageURL,
		Location:       location,
		Count:          count,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// GetItem retrieves a single clothing item
func (s *clothingService) GetItem(ctx context.Context, id int64) (*domain.ClothingItem, error) {
	return s.repo.FindByID(ctx, id)
}

// ListItems retrieves every clothing item
func (s *clothingService) ListItems(ctx context.Context) ([]*domain.ClothingItem, error) {
	return s.repo.List(ctx)
}

// SearchItems finds items containing query in a descriptive field
func (s *clothingService) SearchItems(ctx context.Context, query string) ([]*domain.ClothingItem, error) {
	return s.repo.Search(ctx, query)
}

// UpdateItem replaces the mutable fields of an existing item.
// A nil Count keeps the stored count and a nil image keeps the stored URL.
func (s *clothingService) UpdateItem(ctx context.Context, id int64, input domain.ClothingInput, image *ImageUpload) (*domain.ClothingItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	location, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.storeImage(ctx, input.Name, image)
	if err != nil {
		return nil, err
	}

	item.Name = input.Name
	item.Category = input.Category
	item.MainColor = input.MainColor
	item.SecondaryColor = secondaryColor(input.SecondaryColor)
	item.Location = location
	if input.Count != nil {
		item.Count = *input.Count
	}
	if imageURL != nil {
		item.ImageURL = imageURL
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// MoveItem changes only the location of an item
func (s *clothingService) MoveItem(ctx context.Context, id int64, location string) error {
	loc, err := domain.ParseLocation(location)
	if err != nil {
		return domain.NewValidationError("location", domain.LocationMessage())
	}

	return s.repo.UpdateLocation(ctx, id, loc)
}

// DeleteItem removes the item row. The stored image is left in place since
// other items with the same name share its key.
func (s *clothingService) DeleteItem(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// storeImage normalizes and uploads image under the key derived from name.
// It returns nil when no image was supplied.
func (s *clothingService) storeImage(ctx context.Context, name string, image *ImageUpload) (*string, error) {
	if image == nil || image.Reader == nil {
		return nil, nil
	}

	result, err := imaging.Normalize(image.Reader, name)
	if err != nil {
		return nil, err
	}

	url, err := s.store.Put(ctx, result.Key, bytes.NewReader(result.Data), result.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	return &url, nil
}

func validateInput(input domain.ClothingInput) (domain.Location, error) {
	var fields []domain.FieldError

	required := []struct {
		field string
		value string
	}{
		{"name", input.Name},
		{"category", input.Category},
		{"main_color", input.MainColor},
	}
	for _, r := range required {
		if r.value == "" {
			fields = append(fields, domain.FieldError{Field: r.field, Message: "This field is required"})
		}
	}

	location, err := domain.ParseLocation(input.Location)
	if err != nil {
		fields = append(fields, domain.FieldError{Field: "location", Message: domain.LocationMessage()})
	}

	if input.Count != nil {
		switch {
		case *input.Count < 0:
			fields = append(fields, domain.FieldError{Field: "count", Message: "Value must be greater than or equal to 0"})
		case *input.Count > math.MaxInt32:
			fields = append(fields, domain.FieldError{Field: "count", Message: "Value must be less than or equal to 2147483647"})
		}
	}

	if len(fields) > 0 {
		return "", &domain.ValidationError{Fields: fields}
	}
	return location, nil
}

// secondaryColor maps an empty value to NULL
func secondaryColor(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
