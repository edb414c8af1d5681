package service

import (
	"errors"

	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/repository"
	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

type PostInput struct {
	Title           string
	Content         string
	IsForVolunteers bool
}

type PostService interface {
	List() ([]model.Post, error)
	Get(id uint) (*model.Post, error)
	Create(authorID uint, input PostInput) (*model.Post, error)
	Update(id uint, input PostInput) (*model.Post, error)
	Delete(id uint) (*model.Post, error)
}

type postService struct {
	repo repository.PostRepository
}

func NewPostService(repo repository.PostRepository) PostService {
	return &postService{repo: repo}
}

func (s *postService) List() ([]model.Post, error) {
	return s.repo.FindAll()
}

func (s *postService) Get(id uint) (*model.Post, error) {
	post, err := s.repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	return post, err
}

func (s *postService) Create(authorID uint, input PostInput) (*model.Post, error) {
	post := &model.Post{
		Title:           input.Title,
		Content:         input.Content,
		IsForVolunteers: input.IsForVolunteers,
		UserID:          authorID,
	}
	if err := s.repo.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update keeps the original author.
func (s *postService) Update(id uint, input PostInput) (*model.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	post.Title = input.Title
	post.Content = input.Content
	post.IsForVolunteers = input.IsForVolunteers
	if err := s.repo.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(id uint) (*model.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(post); err != nil {
		return nil, err
	}
	return post, nil
}
