// Package auth реализует вход администратора панели.
//
// Учётная запись администратора одна и задаётся конфигурацией: имя и
// bcrypt-хэш пароля. Абоненты хотспота в панель не входят, их пароли
// проверяет сам роутер.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/hotspot-billing/internal/lib/jwt"
	"github.com/magabrotheeeer/hotspot-billing/internal/lib/password"
)

// ErrInvalidCredentials возвращается при неверном имени или пароле.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service проверяет учётные данные администратора и выдаёт токены сессии.
type Service struct {
	adminUsername     string
	adminPasswordHash string
	jwtMaker          jwt.Maker
	log               *slog.Logger
}

// New создает новый Service.
func New(adminUsername, adminPasswordHash string, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		adminUsername:     adminUsername,
		adminPasswordHash: adminPasswordHash,
		jwtMaker:          jwtMaker,
		log:               log,
	}
}

// Login проверяет имя и пароль администратора и возвращает JWT сессии.
// Неверное имя и неверный пароль дают одну и ту же ошибку.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if username != s.adminUsername {
		return "", ErrInvalidCredentials
	}
	if err := password.CompareHash(s.adminPasswordHash, rawPassword); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(username)
	if err != nil {
		return "", err
	}
	s.log.Info("admin logged in", slog.String("username", username))
	return token, nil
}
