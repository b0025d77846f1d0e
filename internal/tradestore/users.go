package tradestore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pixeltrade/pixeltrade/internal/model"
)

func (s *Store) CreateUser(user *model.User) error {
	res, err := s.db.NamedExec(`insert into users
		(ID, CreatedAt, Username, Name, Email, Age, Password, Balance)
		values (:ID, :CreatedAt, :Username, :Name, :Email, :Age, :Password, :Balance)`, user)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	} else if rows != 1 {
		return fmt.Errorf("expected 1 row to be affected, got %d", rows)
	}
	return nil
}

func (s *Store) GetUser(id model.UserID) (*model.User, error) {
	user := &model.User{}
	err := s.db.Get(user, `select * from users where ID = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorUserNotFound
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByUsername(username string) (*model.User, error) {
	user := &model.User{}
	err := s.db.Get(user, `select * from users where Username = ? collate nocase`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorUserNotFound
		}
		return nil, fmt.Errorf("fetching user by username: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(email string) (*model.User, error) {
	user := &model.User{}
	err := s.db.Get(user, `select * from users where Email = ? collate nocase`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorUserNotFound
		}
		return nil, fmt.Errorf("fetching user by email: %w", err)
	}
	return user, nil
}

func (s *Store) UpdateUserProfile(id model.UserID, name *string, email *string) error {
	res, err := s.db.Exec(`update users set
		Name = coalesce(?, Name),
		Email = coalesce(?, Email)
		where ID = ?`, name, email, id)
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrorUserNotFound
	}
	return nil
}

func (s *Store) UpdateUserPassword(id model.UserID, hashed string) error {
	res, err := s.db.Exec(`update users set Password = ? where ID = ?`, hashed, id)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrorUserNotFound
	}
	return nil
}
