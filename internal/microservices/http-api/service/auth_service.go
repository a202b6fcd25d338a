package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/mailer"
	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/shared"
	"yamdb/pkg/apperror"
	"yamdb/pkg/validator"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	msgUsernameTaken = "a user with this username already exists"
	msgEmailTaken    = "a user with this email already exists"
	msgInvalidCode   = "invalid or already used confirmation code"
)

type AuthService interface {
	// Signup creates an unconfirmed user, or re-issues the code when the same
	// username and email pair is already registered, and emails the code.
	Signup(ctx context.Context, username, email string) (*models.User, error)
	// RedeemToken exchanges a confirmation code for an access token.
	RedeemToken(ctx context.Context, username, code string) (string, error)
	ValidateToken(tokenString string) (*shared.AuthClaims, error)
	// ResolveActor validates the token and loads the user it names.
	ResolveActor(ctx context.Context, tokenString string) (policy.Actor, error)
}

type authService struct {
	userRepo       repository.UserRepository
	mailer         mailer.Sender
	cooldown       Cooldown
	jwtSecret      string
	accessTokenTTL time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	sender mailer.Sender,
	cooldown Cooldown,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		mailer:         sender,
		cooldown:       cooldown,
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	if err := validator.ValidateUsername(username); err != nil {
		metrics.RecordSignup("rejected")
		return nil, apperror.Validation("username", err.Error())
	}
	email = normalizeEmail(email)
	if email == "" {
		metrics.RecordSignup("rejected")
		return nil, apperror.Validation("email", "this field is required")
	}

	cooldownKey := "signup:" + email
	held := false
	if s.cooldown != nil {
		ok, err := s.cooldown.Acquire(ctx, cooldownKey)
		if err != nil {
			// fail open, the cooldown is a convenience
			log.Warn().Err(err).Msg("signup cooldown unavailable")
		} else if !ok {
			metrics.RecordSignup("throttled")
			return nil, apperror.New(http.StatusTooManyRequests, "a confirmation code was sent recently, try again later", apperror.ErrRateLimitExceeded)
		} else {
			held = true
		}
	}

	user, created, err := s.issueCode(ctx, username, email)
	if err != nil && database.IsUniqueViolation(err) {
		// lost an insert race against an identical request; the row exists now
		user, created, err = s.issueCode(ctx, username, email)
	}
	if err != nil {
		// no code went out, so the email may try again right away
		if held {
			s.releaseCooldown(ctx, cooldownKey)
		}
		if database.IsUniqueViolation(err) {
			err = apperror.Conflict(map[string][]string{
				"non_field_errors": {"a user with this username or email already exists"},
			})
		}
		if apperror.MapErrorToStatus(err) < http.StatusInternalServerError {
			metrics.RecordSignup("rejected")
		} else {
			metrics.RecordSignup("failed")
		}
		return nil, err
	}

	if created {
		metrics.RecordSignup("created")
	} else {
		metrics.RecordSignup("resent")
	}
	return user, nil
}

func (s *authService) releaseCooldown(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cooldown.Release(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("signup cooldown not released")
	}
}

// issueCode runs one signup attempt in a transaction. The username row is
// locked so concurrent re-requests for one user are serialized, and the
// code is emailed before commit so a delivery failure leaves nothing behind.
func (s *authService) issueCode(ctx context.Context, username, email string) (*models.User, bool, error) {
	var user *models.User
	var created bool

	err := s.userRepo.Transaction(ctx, func(tx repository.UserRepository) error {
		existing, err := tx.FindByUsernameForUpdate(ctx, username)
		switch {
		case err == nil:
			if existing.Email != email {
				fields := map[string][]string{"username": {msgUsernameTaken}}
				if owner, err := tx.FindByEmail(ctx, email); err == nil && owner.ID != existing.ID {
					fields["email"] = []string{msgEmailTaken}
				}
				return apperror.Conflict(fields)
			}
			user = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			if _, err := tx.FindByEmail(ctx, email); err == nil {
				return apperror.Conflict(map[string][]string{"email": {msgEmailTaken}})
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("find user by email: %w", err)
			}
			user = &models.User{Username: username, Email: email, Role: models.RoleUser}
			if err := tx.Create(ctx, user); err != nil {
				return err
			}
			created = true
		default:
			return fmt.Errorf("find user by username: %w", err)
		}

		code, err := auth.GenerateConfirmationCode()
		if err != nil {
			return err
		}
		hash, err := auth.HashConfirmationCode(code)
		if err != nil {
			return fmt.Errorf("hash confirmation code: %w", err)
		}
		if err := tx.SetConfirmationCode(ctx, user.ID, hash); err != nil {
			return err
		}
		user.ConfirmationCode = hash

		if err := s.mailer.Send(ctx, confirmationMessage(user, code)); err != nil {
			log.Error().Err(err).Str("username", user.Username).Msg("confirmation email failed")
			return apperror.Delivery(err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

func confirmationMessage(user *models.User, code string) mailer.Message {
	return mailer.Message{
		To:      user.Email,
		Subject: "Your confirmation code",
		Body: fmt.Sprintf(
			"Hello %s,\n\nyour confirmation code is:\n\n%s\n\nExchange it for an access token at /api/v1/auth/token.\n",
			user.Username, code,
		),
	}
}

func (s *authService) RedeemToken(ctx context.Context, username, code string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.RecordTokenExchange("unknown_user")
		}
		return "", notFound(err, "user")
	}

	if err := auth.VerifyConfirmationCode(user.ConfirmationCode, code); err != nil {
		metrics.RecordTokenExchange("invalid_code")
		return "", apperror.Validation("confirmation_code", msgInvalidCode)
	}

	// compare-and-clear so two concurrent redemptions cannot both succeed
	consumed, err := s.userRepo.ConsumeConfirmationCode(ctx, user.ID, user.ConfirmationCode)
	if err != nil {
		return "", err
	}
	if !consumed {
		metrics.RecordTokenExchange("invalid_code")
		return "", apperror.Validation("confirmation_code", msgInvalidCode)
	}
	user.ConfirmationCode = ""
	user.IsConfirmed = true

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	metrics.RecordTokenExchange("issued")
	return token, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := shared.AuthClaims{
		UserID:   user.ID,
		UserName: user.Username,
		Role:     policy.Resolve(user.Role, user.IsSuperuser).String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*shared.AuthClaims, error) {
	claims := &shared.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) ResolveActor(ctx context.Context, tokenString string) (policy.Actor, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return policy.Anonymous(), apperror.Unauthorized(err.Error())
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.Anonymous(), apperror.Unauthorized("user not found")
		}
		return policy.Anonymous(), err
	}
	return policy.ActorFor(user), nil
}
