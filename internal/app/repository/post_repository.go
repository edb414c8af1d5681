package repository

import (
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
	"gorm.io/gorm"
)

type PostRepository interface {
	FindAll() ([]model.Post, error)
	FindByID(id uint) (*model.Post, error)
	Create(post *model.Post) error
	Update(post *model.Post) error
	Delete(post *model.Post) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// FindAll returns posts newest first.
func (r *postRepository) FindAll() ([]model.Post, error) {
	var posts []model.Post
	if err := r.db.Order("created_at DESC").Order("id DESC").Find(&posts).Error; err != nil {
		logger.Error("Failed to list posts", err)
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) FindByID(id uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.First(&post, id).Error; err != nil {
		logLookupError("Failed to find post by ID", err, map[string]interface{}{
			"post_id": id,
		})
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(post *model.Post) error {
	if err := r.db.Create(post).Error; err != nil {
		logger.Error("Failed to create post", err, map[string]interface{}{
			"user_id": post.UserID,
		})
		return err
	}

	logger.Info("Post created", map[string]interface{}{
		"post_id": post.ID,
		"user_id": post.UserID,
	})
	return nil
}

func (r *postRepository) Update(post *model.Post) error {
	if err := r.db.Save(post).Error; err != nil {
		logger.Error("Failed to update post", err, map[string]interface{}{
			"post_id": post.ID,
		})
		return err
	}
	return nil
}

func (r *postRepository) Delete(post *model.Post) error {
	if err := r.db.Delete(post).Error; err != nil {
		logger.Error("Failed to delete post", err, map[string]interface{}{
			"post_id": post.ID,
		})
		return err
	}
	return nil
}
