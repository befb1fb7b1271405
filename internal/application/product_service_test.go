package application_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwiyanpr/product-catalog-api/internal/application"
	"github.com/dwiyanpr/product-catalog-api/internal/domain/entity"
	"github.com/dwiyanpr/product-catalog-api/internal/domain/repository"
)

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	order    []string
	failNext error
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: map[string]*entity.Product{}}
}

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.products[p.ID] = &cp
	r.order = append(r.order, p.ID)
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memProductRepo) ListByOwner(_ context.Context, userID string) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Product, 0)
	for _, id := range r.order {
		if p, ok := r.products[id]; ok && p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	if _, ok := r.products[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products)
}

// memBlobStore records stored objects and deletions; failure injection via
// storeErr/deleteErr.
type memBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	storeErr  error
	deleteErr error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: map[string][]byte{}}
}

func (b *memBlobStore) Store(_ context.Context, folder, filename, _ string, r io.Reader) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.storeErr != nil {
		return "", b.storeErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := folder + "/" + uuid.NewString() + "-" + filename
	b.objects[key] = data
	return key, nil
}

func (b *memBlobStore) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, key)
	if b.deleteErr != nil {
		return b.deleteErr
	}
	delete(b.objects, key)
	return nil
}

func (b *memBlobStore) URL(key string) string {
	return "https://blobs.test/" + key
}

func (b *memBlobStore) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

func (b *memBlobStore) objectCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

func newProductService() (*application.ProductService, *memProductRepo, *memBlobStore) {
	repo := newMemProductRepo()
	blobs := newMemBlobStore()
	return application.NewProductService(repo, blobs, nil, nil, ""), repo, blobs
}

func strptr(s string) *string   { return &s }
func f64ptr(f float64) *float64 { return &f }
func upload(name, body string) *application.ImageUpload {
	return &application.ImageUpload{
		Reader:      bytes.NewReader([]byte(body)),
		Filename:    name,
		ContentType: "image/png",
	}
}

func TestCreateAndList(t *testing.T) {
	svc, _, _ := newProductService()
	ctx := context.Background()
	owner := uuid.NewString()

	v, err := svc.Create(ctx, owner, application.CreateProductInput{
		Title: "Widget",
		Cost:  f64ptr(9.99),
	})
	require.NoError(t, err)
	assert.Equal(t, owner, v.UserID)
	assert.Equal(t, "Widget", v.Title)
	require.NotNil(t, v.Cost)
	assert.InDelta(t, 9.99, *v.Cost, 0.001)
	assert.Nil(t, v.BannerImage, "no image means null banner")

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Widget", list[0].Title)
}

func TestListEmptyIsNotNil(t *testing.T) {
	svc, _, _ := newProductService()

	list, err := svc.List(context.Background(), uuid.NewString())
	require.NoError(t, err)
	require.NotNil(t, list)
	assert.Len(t, list, 0)
}

func TestCreateRequiresTitle(t *testing.T) {
	svc, repo, _ := newProductService()
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.NewString(), application.CreateProductInput{Title: ""})
	assert.ErrorIs(t, err, application.ErrTitleRequired)

	_, err = svc.Create(ctx, uuid.NewString(), application.CreateProductInput{Title: "   "})
	assert.ErrorIs(t, err, application.ErrTitleRequired)

	assert.Equal(t, 0, repo.count())
}

func TestCreateWithImage(t *testing.T) {
	svc, _, blobs := newProductService()
	ctx := context.Background()

	v, err := svc.Create(ctx, uuid.NewString(), application.CreateProductInput{
		Title: "Widget",
		Image: upload("banner.png", "png-bytes"),
	})
	require.NoError(t, err)
	require.NotNil(t, v.BannerImage)
	assert.Contains(t, *v.BannerImage, "https://blobs.test/products/")
	assert.Equal(t, 1, blobs.objectCount())
}

func TestCreateBlobFailureAborts(t *testing.T) {
	svc, repo, blobs := newProductService()
	blobs.storeErr = errors.New("bucket unavailable")

	_, err := svc.Create(context.Background(), uuid.NewString(), application.CreateProductInput{
		Title: "Widget",
		Image: upload("banner.png", "png-bytes"),
	})
	require.Error(t, err)
	assert.Equal(t, 0, repo.count(), "no row when the blob store fails")
}

func TestCreateInsertFailureRollsBackBlob(t *testing.T) {
	svc, repo, blobs := newProductService()
	repo.failNext = errors.New("db down")

	_, err := svc.Create(context.Background(), uuid.NewString(), application.CreateProductInput{
		Title: "Widget",
		Image: upload("banner.png", "png-bytes"),
	})
	require.Error(t, err)
	require.Len(t, blobs.deleted, 1, "stored blob must be cleaned up after a failed insert")
	assert.Equal(t, 0, blobs.objectCount())
}

func TestOwnershipIsolation(t *testing.T) {
	svc, _, _ := newProductService()
	ctx := context.Background()
	alice := uuid.NewString()
	bob := uuid.NewString()

	v, err := svc.Create(ctx, alice, application.CreateProductInput{Title: "Alice's Widget"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, v.ID)
	assert.ErrorIs(t, err, application.ErrForbidden)

	_, err = svc.Update(ctx, bob, v.ID, application.UpdateProductInput{Title: "Stolen"})
	assert.ErrorIs(t, err, application.ErrForbidden)

	err = svc.Destroy(ctx, bob, v.ID)
	assert.ErrorIs(t, err, application.ErrForbidden)

	list, err := svc.List(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, list, 0)

	// Alice still sees her product untouched.
	got, err := svc.Get(ctx, alice, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice's Widget", got.Title)
}

func TestGetUnknownProduct(t *testing.T) {
	svc, _, _ := newProductService()

	_, err := svc.Get(context.Background(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, application.ErrProductNotFound)
}

func TestUpdatePartialKeepsOmittedFields(t *testing.T) {
	svc, _, _ := newProductService()
	ctx := context.Background()
	owner := uuid.NewString()

	v, err := svc.Create(ctx, owner, application.CreateProductInput{
		Title:       "Widget",
		Description: strptr("a fine widget"),
		Cost:        f64ptr(9.99),
	})
	require.NoError(t, err)

	// Only cost supplied; description must survive.
	updated, err := svc.Update(ctx, owner, v.ID, application.UpdateProductInput{
		Title: "Widget",
		Cost:  f64ptr(12.50),
	})
	require.NoError(t, err)
	assert.Equal(t, "a fine widget", updated.Description)
	require.NotNil(t, updated.Cost)
	assert.InDelta(t, 12.50, *updated.Cost, 0.001)
}

func TestUpdateRequiresTitle(t *testing.T) {
	svc, _, _ := newProductService()
	ctx := context.Background()
	owner := uuid.NewString()

	v, err := svc.Create(ctx, owner, application.CreateProductInput{Title: "Widget"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, owner, v.ID, application.UpdateProductInput{Title: "  "})
	assert.ErrorIs(t, err, application.ErrTitleRequired)
}

func TestUpdateReplacesImage(t *testing.T) {
	svc, _, blobs := newProductService()
	ctx := context.Background()
	owner := uuid.NewString()

	v, err := svc.Create(ctx, owner, application.CreateProductInput{
		Title: "Widget",
		Image: upload("old.png", "old-bytes"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, blobs.objectCount())

	updated, err := svc.Update(ctx, owner, v.ID, application.UpdateProductInput{
		Title: "Widget",
		Image: upload("new.png", "new-bytes"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.BannerImage)
	assert.NotEqual(t, *v.BannerImage, *updated.BannerImage)
	assert.Equal(t, 1, blobs.objectCount(), "old blob gone, new blob present")
	require.Len(t, blobs.deleted, 1)
}

func TestUpdateImageStoreFailureLeavesRow(t *testing.T) {
	svc, repo, blobs := newProductService()
	ctx := context.Background()
	owner := uuid.NewString()

	v, err := svc.Create(ctx, owner, application.CreateProductInput{Title: "Widget"})
	require.NoError(t, err)

	blobs.storeErr = errors.New("bucket unavailable")
	_, err = svc.Update(ctx, owner, v.ID, application.UpdateProductInput{
		Title: "Renamed",
		Image: upload("new.png", "new-bytes"),
	})
	require.Error(t, err)

	stored, err := repo.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", stored.Title, "row untouched when the new blob fails to store")
}

func TestDestroyDeletesBlobAndRow(t *testing.T) {
	svc, repo, blobs := newProductService()
	ctx := context.Background()
	owner := uuid.NewString()

	v, err := svc.Create(ctx, owner, application.CreateProductInput{
		Title: "Widget",
		Image: upload("banner.png", "png-bytes"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Destroy(ctx, owner, v.ID))
	assert.Equal(t, 0, repo.count())
	assert.Equal(t, 0, blobs.objectCount())
}

func TestDestroySurvivesBlobDeleteFailure(t *testing.T) {
	svc, repo, blobs := newProductService()
	ctx := context.Background()
	owner := uuid.NewString()

	v, err := svc.Create(ctx, owner, application.CreateProductInput{
		Title: "Widget",
		Image: upload("banner.png", "png-bytes"),
	})
	require.NoError(t, err)

	blobs.deleteErr = errors.New("bucket unavailable")
	require.NoError(t, svc.Destroy(ctx, owner, v.ID), "blob delete is best-effort")
	assert.Equal(t, 0, repo.count())
}

func TestSearchWithoutESReturnsEmpty(t *testing.T) {
	svc, _, _ := newProductService()

	out, err := svc.Search(context.Background(), uuid.NewString(), "widget", 10)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Len(t, out, 0)
}
