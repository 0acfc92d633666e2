package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/avelns/shortlinkd/internal/app/model"
)

var (
	// ErrLinkNotFound signals that the requested short link does not exist.
	ErrLinkNotFound = errors.New("link not found")
	// ErrSlugTaken signals that a link with the same slug already exists.
	// It also covers the race where two creations pass the existence check
	// concurrently: the table's primary key rejects the second insert.
	ErrSlugTaken = errors.New("slug already taken")
)

// LinkRepository defines the data access contract for short links.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetBySlug(ctx context.Context, slug string) (*model.Link, error)
	List(ctx context.Context, limit, offset int, search string) ([]model.Link, error)
	UpdateStatus(ctx context.Context, slug, status string) (int64, error)
	UpdateInterstitial(ctx context.Context, slug string, interstitial bool) (int64, error)
	IncrementVisits(ctx context.Context, slug string) error
	Delete(ctx context.Context, slug string) error
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *linkRepository) GetBySlug(ctx context.Context, slug string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) List(ctx context.Context, limit, offset int, search string) ([]model.Link, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&model.Link{})
	if search != "" {
		q = q.Where("slug LIKE ?", "%"+search+"%")
	}

	var result []model.Link
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateStatus overwrites the status field. A missing slug is not an error;
// the returned count is zero in that case.
func (r *linkRepository) UpdateStatus(ctx context.Context, slug, status string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("slug = ?", slug).
		Update("status", status)
	return result.RowsAffected, result.Error
}

// UpdateInterstitial overwrites the interstitial flag. A missing slug is not
// an error; the returned count is zero in that case.
func (r *linkRepository) UpdateInterstitial(ctx context.Context, slug string, interstitial bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("slug = ?", slug).
		Update("interstitial", interstitial)
	return result.RowsAffected, result.Error
}

func (r *linkRepository) IncrementVisits(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("slug = ?", slug).
		Update("visit_count", gorm.Expr("visit_count + 1")).Error
}

func (r *linkRepository) Delete(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&model.Link{}).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
