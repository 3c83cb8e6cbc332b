package db

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

type UserRepo struct {
	db *DbDao
}

func NewUserRepo(db *DbDao) *UserRepo {
	return &UserRepo{db: db}
}

// Create - duplicate username surfaces as a conflict
func (r *UserRepo) CreateUser(ctx context.Context, user *model.User) error {
	return translateErr(r.db.WithContext(ctx).Create(user).Error, "user")
}

func (r *UserRepo) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateErr(err, "user")
	}
	return &user, nil
}

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateErr(err, "user")
	}
	return &user, nil
}

type AddressRepo struct {
	db *DbDao
}

func NewAddressRepo(db *DbDao) *AddressRepo {
	return &AddressRepo{db: db}
}

func (r *AddressRepo) ListAddresses(ctx context.Context, userID uint) ([]model.Address, error) {
	var addresses []model.Address
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&addresses).Error
	return addresses, err
}

func (r *AddressRepo) CreateAddress(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

// Read - address owned by userID, someone else's address is reported as not found
func (r *AddressRepo) GetAddress(ctx context.Context, userID, addressID uint) (*model.Address, error) {
	var address model.Address
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error
	if err != nil {
		return nil, translateErr(err, "address")
	}
	return &address, nil
}
