package main

import (
	"context"

	"go.uber.org/zap"
)

type UserServiceProvider interface {
	CreateUser(ctx context.Context, in UserInput) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context, p PageRequest) ([]User, Pagination, error)
	UpdateUser(ctx context.Context, id string, u UserUpdate) (User, error)
}

var _ UserServiceProvider = (*UserService)(nil)

type UserService struct {
	logger   *zap.Logger
	config   *Config
	clock    Clocker
	ids      UIDHandler
	store    DocumentStore
	validate *Validator
}

func NewUserService(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, store DocumentStore, validate *Validator) *UserService {
	return &UserService{logger: logger, config: config, clock: clock, ids: ids, store: store, validate: validate}
}

func (s *UserService) CreateUser(ctx context.Context, in UserInput) (User, error) {
	if err := s.validate.Struct(in); err != nil {
		return User{}, err
	}
	now := s.clock.Now()
	user := User{
		ID:              s.ids.Generate(UserIDPrefix),
		Name:            in.Name,
		Email:           in.Email,
		Phone:           in.Phone,
		Address:         in.Address,
		ProfileImageURL: in.ProfileImageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, UsersCollection, user.ID, user); err != nil {
		return User{}, storeError("create user", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (User, error) {
	user, err := getDocument[User](ctx, s.store, UsersCollection, id)
	return user, storeFailure("get user", err, ErrUserNotFound)
}

func (s *UserService) ListUsers(ctx context.Context, p PageRequest) ([]User, Pagination, error) {
	users, err := queryDocuments[User](ctx, s.store, UsersCollection, Query{OrderBy: "createdAt", Desc: true})
	if err != nil {
		return nil, Pagination{}, storeError("list users", err)
	}
	items, meta := paginate(users, p.normalize(s.config.Pagination))
	return items, meta, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, u UserUpdate) (User, error) {
	if err := s.validate.Struct(u); err != nil {
		return User{}, err
	}
	now := s.clock.Now()
	user, err := mutateDocument(ctx, s.store, UsersCollection, id, func(current *User) error {
		u.applyTo(current)
		current.UpdatedAt = now
		return nil
	})
	return user, storeFailure("update user", err, ErrUserNotFound)
}
