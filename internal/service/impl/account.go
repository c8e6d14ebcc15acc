package core

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/sidereusnuntius/postdiaspora/internal/domain"
	"github.com/sidereusnuntius/postdiaspora/internal/service"
	"github.com/sidereusnuntius/postdiaspora/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

// AuthenticateAdmin compares the credentials with the administrator account of the configuration.
func (s *AppService) AuthenticateAdmin(ctx context.Context, user, password string) (a domain.Account, authenticated bool, err error) {
	user = strings.ToLower(strings.TrimSpace(user))

	if err = validate.LoginForm(user, password); err != nil {
		err = fmt.Errorf("%w: %s", service.ErrInvalidInput, err)
		return
	}

	// The hash is always compared so that a wrong username takes as long as a wrong password.
	hashErr := bcrypt.CompareHashAndPassword([]byte(s.Config.AdminPasswordHash), []byte(password))
	sameUser := subtle.ConstantTimeCompare([]byte(user), []byte(strings.ToLower(s.Config.AdminUsername))) == 1
	if hashErr != nil || !sameUser {
		return
	}

	return domain.Account{
		Username: s.Config.AdminUsername,
		Admin:    true,
	}, true, nil
}
