package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/token"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type LoginResult struct {
	AccessToken    string
	AccessPayload  *token.Payload
	RefreshToken   string
	RefreshPayload *token.Payload
	User           *model.User
	// CartMerged is true when a guest cart existed and was folded into the user cart
	CartMerged bool
}

type IAuthService interface {
	// Register creates an account.
	//
	// Errors:
	//   - apperr.BadRequestCode 400: username or password missing, or username taken
	Register(ctx context.Context, username, password, email string) (*model.User, error)
	/*
		Login checks the credentials and issues an access and a refresh token.
		When sessionID names a guest cart it is merged into the user cart; merge failures are
		logged and reported only through LoginResult.CartMerged, never as a login error.

		Errors:
		  - apperr.UnauthenticatedCode 401: unknown user or wrong password
	*/
	Login(ctx context.Context, username, password, sessionID string) (*LoginResult, error)
	// ReNewToken exchanges a refresh token for a new access token.
	//
	// Errors:
	//   - apperr.UnauthenticatedCode 401: token invalid, expired, or not a refresh token
	ReNewToken(ctx context.Context, refreshToken string) (string, *token.Payload, error)
}

type AuthService struct {
	store           db.IStore
	tokenMaker      token.Maker
	accessDuration  time.Duration
	refreshDuration time.Duration
	metrics         metrics.IRecorder
}

func NewAuthService(store db.IStore, tokenMaker token.Maker, accessDuration, refreshDuration time.Duration, recorder metrics.IRecorder) *AuthService {
	mustNotNil(store, "auth service initialization failed: store cannot be nil")
	mustNotNil(tokenMaker, "auth service initialization failed: tokenMaker cannot be nil")
	return &AuthService{
		store:           store,
		tokenMaker:      tokenMaker,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		metrics:         orNopRecorder(recorder),
	}
}

func (s *AuthService) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.New(apperr.BadRequestCode, "username & password required")
	}
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, apperr.New(apperr.BadRequestCode, "username already exists")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{Username: username, PasswordHash: string(hash), Email: strings.TrimSpace(email)}
	if err := s.store.CreateUser(ctx, user); err != nil {
		// lost a race against a concurrent register
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.New(apperr.BadRequestCode, "username already exists")
		}
		return nil, err
	}
	return user, nil
}

var errBadCredentials = apperr.New(apperr.UnauthenticatedCode, "No active account found with the given credentials")

func (s *AuthService) Login(ctx context.Context, username, password, sessionID string) (res *LoginResult, err error) {
	defer observe(s.metrics, "login", time.Now(), &err)

	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errBadCredentials
	}

	accessToken, accessPayload, err := s.tokenMaker.CreateToken(user.ID, user.Username, token.AccessToken, s.accessDuration)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshPayload, err := s.tokenMaker.CreateToken(user.ID, user.Username, token.RefreshToken, s.refreshDuration)
	if err != nil {
		return nil, err
	}

	res = &LoginResult{
		AccessToken:    accessToken,
		AccessPayload:  accessPayload,
		RefreshToken:   refreshToken,
		RefreshPayload: refreshPayload,
		User:           user,
	}
	if sessionID != "" {
		merged, err := s.mergeGuestCart(ctx, user.ID, sessionID)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Uint("user_id", user.ID).Str("session_id", sessionID).Msg("guest cart merge failed")
		}
		res.CartMerged = merged
	}
	return res, nil
}

/*
mergeGuestCart folds the guest cart into the user cart in one transaction, then deletes the guest cart.
A variant already in the user cart gets min(sum, stock); a line that would drop below 1 is left as is.
New lines are created with the guest quantity.
*/
func (s *AuthService) mergeGuestCart(ctx context.Context, userID uint, sessionID string) (bool, error) {
	merged := false
	err := s.store.ExecTx(ctx, func(tx db.IStore) error {
		guest, err := tx.GetCartBySession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil
			}
			return err
		}
		guest, err = tx.LoadCart(ctx, guest.ID)
		if err != nil {
			return err
		}
		userCart, err := tx.GetOrCreateUserCart(ctx, userID)
		if err != nil {
			return err
		}

		for _, it := range guest.Items {
			existing, err := tx.GetCartItemByVariant(ctx, userCart.ID, it.VariantID)
			switch {
			case err == nil:
				stock := existing.Quantity + it.Quantity
				if it.Variant != nil {
					stock = it.Variant.Stock
				}
				qty := min(existing.Quantity+it.Quantity, stock)
				if qty < 1 || qty == existing.Quantity {
					continue
				}
				if err := tx.UpdateCartItemQuantity(ctx, existing.ID, qty); err != nil {
					return err
				}
			case errors.Is(err, apperr.ErrNotFound):
				if err := tx.CreateCartItem(ctx, &model.CartItem{CartID: userCart.ID, VariantID: it.VariantID, Quantity: it.Quantity}); err != nil {
					return err
				}
			default:
				return err
			}
		}

		if err := tx.DeleteCart(ctx, guest.ID); err != nil {
			return err
		}
		merged = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return merged, nil
}

func (s *AuthService) ReNewToken(ctx context.Context, refreshToken string) (string, *token.Payload, error) {
	if refreshToken == "" {
		return "", nil, apperr.New(apperr.UnauthenticatedCode, "refresh token required")
	}
	payload, err := s.tokenMaker.VertifyToken(refreshToken)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.UnauthenticatedCode, err, "Token is invalid or expired")
	}
	if payload.TokenType != token.RefreshToken {
		return "", nil, apperr.New(apperr.UnauthenticatedCode, "Token has wrong type")
	}
	if _, err := s.store.GetUserByID(ctx, payload.UserID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, apperr.New(apperr.UnauthenticatedCode, "User not found")
		}
		return "", nil, err
	}

	accessToken, accessPayload, err := s.tokenMaker.CreateToken(payload.UserID, payload.Username, token.AccessToken, s.accessDuration)
	if err != nil {
		return "", nil, err
	}
	return accessToken, accessPayload, nil
}

var _ IAuthService = (*AuthService)(nil)
