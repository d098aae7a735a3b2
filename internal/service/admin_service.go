package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/avolkov/eventory/internal/domain"
)

// AdminService covers the flat admin-managed entities: users, categories
// and compilations.
type AdminService struct {
	users domain.UserStore
	cats  domain.CategoryStore
	comps domain.CompilationStore
}

func NewAdminService(users domain.UserStore, cats domain.CategoryStore, comps domain.CompilationStore) *AdminService {
	return &AdminService{users: users, cats: cats, comps: comps}
}

func (s *AdminService) CreateUser(ctx context.Context, name, email string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, fmt.Errorf("%w: invalid email %q", domain.ErrValidation, email)
	}
	return s.users.CreateUser(ctx, domain.User{Name: name, Email: email})
}

func (s *AdminService) ListUsers(ctx context.Context, ids []int64, from, size int) ([]domain.User, error) {
	return s.users.ListUsers(ctx, ids, from, size)
}

func (s *AdminService) DeleteUser(ctx context.Context, id int64) error {
	return s.users.DeleteUser(ctx, id)
}

func (s *AdminService) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.cats.CreateCategory(ctx, domain.Category{Name: name})
}

func (s *AdminService) UpdateCategory(ctx context.Context, id int64, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return s.cats.UpdateCategory(ctx, domain.Category{ID: id, Name: name})
}

func (s *AdminService) DeleteCategory(ctx context.Context, id int64) error {
	return s.cats.DeleteCategory(ctx, id)
}

func (s *AdminService) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return s.cats.GetCategory(ctx, id)
}

func (s *AdminService) ListCategories(ctx context.Context, from, size int) ([]domain.Category, error) {
	return s.cats.ListCategories(ctx, from, size)
}

func (s *AdminService) CreateCompilation(ctx context.Context, title string, pinned bool, eventIDs []int64) (domain.Compilation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Compilation{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	return s.comps.CreateCompilation(ctx, title, pinned, eventIDs)
}

func (s *AdminService) UpdateCompilation(ctx context.Context, id int64, p domain.CompilationPatch) (domain.Compilation, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return domain.Compilation{}, fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
	}
	return s.comps.UpdateCompilation(ctx, id, p)
}

func (s *AdminService) DeleteCompilation(ctx context.Context, id int64) error {
	return s.comps.DeleteCompilation(ctx, id)
}

func (s *AdminService) GetCompilation(ctx context.Context, id int64) (domain.Compilation, error) {
	return s.comps.GetCompilation(ctx, id)
}

func (s *AdminService) ListCompilations(ctx context.Context, pinned *bool, from, size int) ([]domain.Compilation, error) {
	return s.comps.ListCompilations(ctx, pinned, from, size)
}
