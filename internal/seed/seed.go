package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "usermgmt/internal/errors"
	"usermgmt/internal/model"
	"usermgmt/internal/service"
)

// UserEntry is one user in a seed file.
type UserEntry struct {
	Name     string     `yaml:"name"`
	Email    string     `yaml:"email"`
	Password string     `yaml:"password"`
	Role     model.Role `yaml:"role"`
}

type usersFile struct {
	Users []UserEntry `yaml:"users"`
}

// Registrar creates users; service.AuthService satisfies it.
type Registrar interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.UserResponse, error)
}

// Result summarises a seed run.
type Result struct {
	Created int
	Skipped int
}

// LoadFile reads seed users from a YAML file.
func LoadFile(path string) ([]UserEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML document with a top-level users list.
func Parse(data []byte) ([]UserEntry, error) {
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return uf.Users, nil
}

// Users registers every entry that does not exist yet. Entries without an
// email or password, and emails already taken, are skipped.
func Users(ctx context.Context, reg Registrar, entries []UserEntry) (Result, error) {
	var res Result
	for _, u := range entries {
		if u.Email == "" || u.Password == "" {
			res.Skipped++
			continue
		}
		if u.Role != "" && !u.Role.IsValid() {
			return res, fmt.Errorf("seed user %s: invalid role %q", u.Email, u.Role)
		}

		_, err := reg.Register(ctx, service.RegisterInput{
			Name:     u.Name,
			Email:    u.Email,
			Password: u.Password,
			Role:     u.Role,
		})
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, apperrors.ErrDuplicateEmail):
			res.Skipped++
		default:
			return res, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	return res, nil
}
