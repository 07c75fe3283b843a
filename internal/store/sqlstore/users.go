package sqlstore

import (
	"context"

	"github.com/nevroth/nevroth/internal/models"
)

func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) error {
	query := s.rebind("INSERT INTO users (email, full_name, password, created_at) VALUES (?, ?, ?, ?) RETURNING id")
	err := s.db.QueryRowContext(ctx, query, user.Email, user.FullName, user.Password, user.CreatedAt.UTC()).Scan(&user.ID)
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := s.rebind("SELECT id, email, full_name, password, created_at FROM users WHERE email = ?")

	err := s.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.FullName, &user.Password, &user.CreatedAt)
	if err != nil {
		return nil, dbError(err)
	}
	return &user, nil
}

func (s *SQLStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := s.rebind("SELECT id, email, full_name, password, created_at FROM users WHERE id = ?")

	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email, &user.FullName, &user.Password, &user.CreatedAt)
	if err != nil {
		return nil, dbError(err)
	}
	return &user, nil
}
