package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/infra/token"
	mock_token "github.com/RoyceAzure/lab/storefront/internal/infra/token/mock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

const testTokenKey = "12345678901234567890123456789012"

func newAuthService(t *testing.T, f *fixture) *AuthService {
	t.Helper()
	maker, err := token.NewPasetoMaker(testTokenKey)
	require.NoError(t, err)
	return NewAuthService(f.store, maker, 4*time.Hour, 7*24*time.Hour, nil)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newAuthService(t, f)

	user, err := svc.Register(ctx, "  shyam ", "s3cret!", "shyam@example.com")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "shyam", user.Username)
	require.NotEqual(t, "s3cret!", user.PasswordHash)

	_, err = svc.Register(ctx, "shyam", "other", "")
	require.ErrorIs(t, err, apperr.ErrBadRequest)
	require.Equal(t, "username already exists", apperr.MessageOf(err))

	_, err = svc.Register(ctx, "", "pw", "")
	require.Equal(t, "username & password required", apperr.MessageOf(err))
	_, err = svc.Register(ctx, "gita", "", "")
	require.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestLoginAndRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newAuthService(t, f)
	_, err := svc.Register(ctx, "shyam", "s3cret!", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "shyam", "wrong", "")
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, err = svc.Login(ctx, "nobody", "s3cret!", "")
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	res, err := svc.Login(ctx, "shyam", "s3cret!", "")
	require.NoError(t, err)
	require.False(t, res.CartMerged)
	require.Equal(t, token.AccessToken, res.AccessPayload.TokenType)
	require.Equal(t, token.RefreshToken, res.RefreshPayload.TokenType)
	require.WithinDuration(t, time.Now().Add(7*24*time.Hour), res.RefreshPayload.ExpiredAt, time.Minute)

	access, payload, err := svc.ReNewToken(ctx, res.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.Equal(t, res.User.ID, payload.UserID)
	require.Equal(t, token.AccessToken, payload.TokenType)

	// an access token cannot be used as a refresh token
	_, _, err = svc.ReNewToken(ctx, res.AccessToken)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
	_, _, err = svc.ReNewToken(ctx, "garbage")
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestLoginMergesGuestCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newAuthService(t, f)
	carts := NewCartService(f.store, nil)
	_, err := svc.Register(ctx, "shyam", "s3cret!", "")
	require.NoError(t, err)
	user, err := f.store.GetUserByUsername(ctx, "shyam")
	require.NoError(t, err)

	shirt := f.product("Barcelona Home", "1500.00", 4)
	scarf := f.product("Club Scarf", "500.00", 10)

	// user already holds 5 when stock was higher, guest adds 2 more; the merge caps at the current stock of 4
	_, err = carts.AddItem(ctx, CartOwner{UserID: user.ID}, shirt.Variants[0].ID, 4)
	require.NoError(t, err)
	userCart, err := f.store.GetCartByUser(ctx, user.ID)
	require.NoError(t, err)
	existing, err := f.store.GetCartItemByVariant(ctx, userCart.ID, shirt.Variants[0].ID)
	require.NoError(t, err)
	require.NoError(t, f.store.UpdateCartItemQuantity(ctx, existing.ID, 5))

	guest := CartOwner{SessionID: "guest-1"}
	_, err = carts.AddItem(ctx, guest, shirt.Variants[0].ID, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, guest, scarf.Variants[0].ID, 3)
	require.NoError(t, err)

	res, err := svc.Login(ctx, "shyam", "s3cret!", "guest-1")
	require.NoError(t, err)
	require.True(t, res.CartMerged)

	merged, err := carts.GetCart(ctx, CartOwner{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, merged.Items, 2)
	quantities := map[uint]int{}
	for _, it := range merged.Items {
		quantities[it.VariantID] = it.Quantity
	}
	require.Equal(t, 4, quantities[shirt.Variants[0].ID])
	require.Equal(t, 3, quantities[scarf.Variants[0].ID])

	_, err = f.store.GetCartBySession(ctx, "guest-1")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	// no guest cart left, second login is a no-op
	res, err = svc.Login(ctx, "shyam", "s3cret!", "guest-1")
	require.NoError(t, err)
	require.False(t, res.CartMerged)
}

func TestLoginMergeFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newAuthService(t, f)
	carts := NewCartService(f.store, nil)
	_, err := svc.Register(ctx, "shyam", "s3cret!", "")
	require.NoError(t, err)
	p := f.product("Chelsea Away", "1400.00", 3)
	_, err = carts.AddItem(ctx, CartOwner{SessionID: "guest-2"}, p.Variants[0].ID, 1)
	require.NoError(t, err)

	f.store.failNext("DeleteCart", errors.New("deadlock detected"))
	res, err := svc.Login(ctx, "shyam", "s3cret!", "guest-2")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.False(t, res.CartMerged)

	// rolled back: guest cart intact, user cart untouched
	guestCart, err := carts.GetCart(ctx, CartOwner{SessionID: "guest-2"})
	require.NoError(t, err)
	require.Len(t, guestCart.Items, 1)
	userCart, err := carts.GetCart(ctx, CartOwner{UserID: res.User.ID})
	require.NoError(t, err)
	require.Empty(t, userCart.Items)
}

func TestLoginTokenFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ctrl := gomock.NewController(t)
	maker := mock_token.NewMockMaker(ctrl)
	svc := NewAuthService(f.store, maker, time.Hour, time.Hour, nil)

	registrar := newAuthService(t, f)
	_, err := registrar.Register(ctx, "shyam", "s3cret!", "")
	require.NoError(t, err)

	maker.EXPECT().
		CreateToken(gomock.Any(), "shyam", token.AccessToken, time.Hour).
		Times(1).
		Return("", nil, errors.New("key rotated"))

	_, err = svc.Login(ctx, "shyam", "s3cret!", "")
	require.Error(t, err)
	require.Equal(t, apperr.InternalErrorCode, apperr.CodeOf(err))
}
