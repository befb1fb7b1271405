package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/dwiyanpr/product-catalog-api/internal/domain/entity"
	repo "github.com/dwiyanpr/product-catalog-api/internal/domain/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrForbidden means the caller is authenticated but does not own the
	// product.
	ErrForbidden     = errors.New("not the product owner")
	ErrTitleRequired = errors.New("title is required")
)

// bannerFolder scopes every uploaded image key in the blob store.
const bannerFolder = "products"

// ProductService implements ownership-scoped CRUD over products. Every
// method takes the resolved caller identity explicitly; nothing is read
// from ambient request state. ES is optional (nil disables search/index).
type ProductService struct {
	Repo    repo.ProductRepository
	Blobs   BlobStore
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewProductService(repo repo.ProductRepository, blobs BlobStore, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *ProductService {
	return &ProductService{Repo: repo, Blobs: blobs, Logger: logger, ES: es, ESIndex: esIndex}
}

// ProductView is the wire shape of a product. BannerImage is the expanded
// public URL, null when the product has no image.
type ProductView struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Cost        *float64  `json:"cost"`
	BannerImage *string   `json:"banner_image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *ProductService) view(p *entity.Product) ProductView {
	v := ProductView{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		Cost:        p.Cost,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.BannerImage != "" && s.Blobs != nil {
		url := s.Blobs.URL(p.BannerImage)
		v.BannerImage = &url
	}
	return v
}

type CreateProductInput struct {
	Title       string
	Description *string
	Cost        *float64
	Image       *ImageUpload
}

type UpdateProductInput struct {
	Title       string
	Description *string
	Cost        *float64
	Image       *ImageUpload
}

// List returns every product owned by the caller, oldest first.
func (s *ProductService) List(ctx context.Context, callerID string) ([]ProductView, error) {
	items, err := s.Repo.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, err
	}
	out := make([]ProductView, 0, len(items))
	for _, p := range items {
		out = append(out, s.view(p))
	}
	return out, nil
}

// Create stores the banner blob first and only then inserts the row, so a
// blob-store failure aborts the whole operation and no row ever references
// a blob that failed to store. The owner is always the caller; any
// client-supplied owner field never reaches this layer.
func (s *ProductService) Create(ctx context.Context, callerID string, in CreateProductInput) (*ProductView, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	key := ""
	if in.Image != nil {
		k, err := s.Blobs.Store(ctx, bannerFolder, in.Image.Filename, in.Image.ContentType, in.Image.Reader)
		if err != nil {
			return nil, fmt.Errorf("store banner: %w", err)
		}
		key = k
	}

	p := &entity.Product{
		UserID:      callerID,
		Title:       title,
		BannerImage: key,
		Cost:        in.Cost,
	}
	if in.Description != nil {
		p.Description = *in.Description
	}

	if err := s.Repo.Create(ctx, p); err != nil {
		// Roll back the stored blob; the insert already failed, so the
		// worst outcome of a failed delete is one orphaned object.
		if key != "" {
			s.deleteBlob(ctx, key)
		}
		return nil, err
	}

	s.indexProduct(ctx, p)
	v := s.view(p)
	return &v, nil
}

// Get fetches one product. Non-owners get ErrForbidden even though the row
// exists; guessable ids must not leak other users' data.
func (s *ProductService) Get(ctx context.Context, callerID, productID string) (*ProductView, error) {
	p, err := s.loadOwned(ctx, callerID, productID)
	if err != nil {
		return nil, err
	}
	v := s.view(p)
	return &v, nil
}

// Update replaces title and, when provided, description/cost/banner.
// Omitted fields keep their previous values. Image replacement order:
// best-effort delete of the old blob, store the new one (failure aborts
// before the row is touched), then update the row.
func (s *ProductService) Update(ctx context.Context, callerID, productID string, in UpdateProductInput) (*ProductView, error) {
	p, err := s.loadOwned(ctx, callerID, productID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	p.Title = title
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Cost != nil {
		p.Cost = in.Cost
	}

	if in.Image != nil {
		if p.BannerImage != "" {
			s.deleteBlob(ctx, p.BannerImage)
		}
		key, err := s.Blobs.Store(ctx, bannerFolder, in.Image.Filename, in.Image.ContentType, in.Image.Reader)
		if err != nil {
			return nil, fmt.Errorf("store banner: %w", err)
		}
		p.BannerImage = key
	}

	if err := s.Repo.Update(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	s.indexProduct(ctx, p)
	v := s.view(p)
	return &v, nil
}

// Destroy removes the banner blob (best-effort) and then the row.
func (s *ProductService) Destroy(ctx context.Context, callerID, productID string) error {
	p, err := s.loadOwned(ctx, callerID, productID)
	if err != nil {
		return err
	}

	if p.BannerImage != "" {
		s.deleteBlob(ctx, p.BannerImage)
	}
	if err := s.Repo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.removeFromIndex(ctx, p.ID)
	return nil
}

func (s *ProductService) loadOwned(ctx context.Context, callerID, productID string) (*entity.Product, error) {
	p, err := s.Repo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if p.UserID != callerID {
		return nil, ErrForbidden
	}
	return p, nil
}

// deleteBlob is best-effort cleanup: a failure is logged, never surfaced,
// because blocking the user-visible operation on it would be worse than a
// transient orphaned object.
func (s *ProductService) deleteBlob(ctx context.Context, key string) {
	if s.Blobs == nil || key == "" {
		return
	}
	if err := s.Blobs.Delete(ctx, key); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("banner blob delete failed")
	}
}

// --- Elasticsearch (optional, best-effort) ---

type productDoc struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Cost        *float64  `json:"cost"`
	BannerImage string    `json:"banner_image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *ProductService) indexProduct(ctx context.Context, p *entity.Product) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := productDoc{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		Cost:        p.Cost,
		BannerImage: p.BannerImage,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID).Warn("es index response error")
	}
}

func (s *ProductService) removeFromIndex(ctx context.Context, productID string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: productID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", productID).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match over title/description, filtered to the
// caller's own products so search never widens visibility.
func (s *ProductService) Search(ctx context.Context, callerID, q string, size int) ([]ProductView, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []ProductView{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "description"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": callerID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source productDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]ProductView, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		d := h.Source
		out = append(out, s.view(&entity.Product{
			ID:          d.ID,
			UserID:      d.UserID,
			Title:       d.Title,
			Description: d.Description,
			Cost:        d.Cost,
			BannerImage: d.BannerImage,
			CreatedAt:   d.CreatedAt,
			UpdatedAt:   d.UpdatedAt,
		}))
	}
	return out, nil
}
