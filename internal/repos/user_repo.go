package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"asinity/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT id,email,name,password_hash,role FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT id,email,name,password_hash,role FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Insert(u domain.User) error {
	_, err := r.DB.Exec(`
	  INSERT INTO users(id,email,name,password_hash,role) VALUES(?,?,?,?,?)
	`, u.ID, u.Email, u.Name, u.Hash, u.Role)
	return err
}

func (r *UserRepo) EmailTaken(email string) (bool, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	return n > 0, nil
}
