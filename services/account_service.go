package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/kendall-kelly/ecotainment-api/logging"
	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/utils"
	"gorm.io/gorm"
)

const MinPasswordLength = 6

// RegisterInput is a self-service sign-up
type RegisterInput struct {
	Email       *string
	PhoneNumber *string
	Username    string
	Password    string
}

// Credentials identify an account by email or phone number
type Credentials struct {
	Email       *string
	PhoneNumber *string
	Password    string
}

// ProfileInput holds profile changes; nil fields are left unchanged
type ProfileInput struct {
	Email          *string
	PhoneNumber    *string
	Username       *string
	Password       *string
	ProfilePicture *multipart.FileHeader
}

// AddressInput holds the writable address fields
type AddressInput struct {
	RecipientName   string
	PhoneNumber     string
	Province        *string
	CityOrDistrict  string
	DetailedAddress string
}

// AuthResult is returned by sign-up and sign-in
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AccountService owns users and their address book
type AccountService struct {
	db     *gorm.DB
	tokens *TokenService
	images ImageService
}

func NewAccountService(db *gorm.DB, tokens *TokenService, images ImageService) *AccountService {
	return &AccountService{db: db, tokens: tokens, images: images}
}

// Register creates a user account and signs a token for it
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalize(in.Email)
	phone := normalize(in.PhoneNumber)

	fields := utils.FieldErrors{}
	if email == nil && phone == nil {
		fields.Add("email", "Either email or phone_number is required.")
	}
	if len(in.Password) < MinPasswordLength {
		fields.Add("password", fmt.Sprintf("The password must be at least %d characters.", MinPasswordLength))
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = defaultUsername(email, phone)
	}

	user := models.User{
		Email:       email,
		PhoneNumber: phone,
		Username:    username,
		Password:    hash,
		Role:        models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email or phone number already registered", ErrConflict)
		}
		return nil, err
	}

	logging.FromContext(ctx).Info("user registered", "user_id", user.ID)
	return s.issue(&user)
}

// Authenticate checks credentials and signs a token
func (s *AccountService) Authenticate(ctx context.Context, in Credentials) (*AuthResult, error) {
	email := normalize(in.Email)
	phone := normalize(in.PhoneNumber)
	if email == nil && phone == nil {
		return nil, newValidationError("email", "Either email or phone_number is required.")
	}
	if in.Password == "" {
		return nil, newValidationError("password", "The password field is required.")
	}

	query := s.db.WithContext(ctx)
	if email != nil {
		query = query.Where("email = ?", *email)
	} else {
		query = query.Where("phone_number = ?", *phone)
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(user.Password, in.Password) {
		return nil, ErrInvalidCredentials
	}

	s.attachURL(ctx, &user)
	return s.issue(&user)
}

// Logout revokes every token issued to the user so far
func (s *AccountService) Logout(ctx context.Context, userID uint) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	logging.FromContext(ctx).Info("user logged out", "user_id", userID)
	return nil
}

// GetUser returns the user with its addresses
func (s *AccountService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	s.attachURL(ctx, &user)
	return &user, nil
}

// UpdateProfile applies the non-nil fields of in
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	fields := utils.FieldErrors{}
	if in.Password != nil && len(*in.Password) < MinPasswordLength {
		fields.Add("password", fmt.Sprintf("The password must be at least %d characters.", MinPasswordLength))
	}
	if in.Username != nil && strings.TrimSpace(*in.Username) == "" {
		fields.Add("username", "The username field may not be empty.")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if email := normalize(in.Email); email != nil {
		updates["email"] = *email
	}
	if phone := normalize(in.PhoneNumber); phone != nil {
		updates["phone_number"] = *phone
	}
	if in.Username != nil {
		updates["username"] = strings.TrimSpace(*in.Username)
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password"] = hash
	}

	var oldPicture string
	if user.ProfilePicture != nil {
		oldPicture = *user.ProfilePicture
	}
	var newPicture *string
	if in.ProfilePicture != nil {
		if s.images == nil {
			return nil, errors.New("image storage is not configured")
		}
		key, err := s.images.UploadImage(ctx, FolderProfilePictures, in.ProfilePicture)
		if err != nil {
			var uploadErr *utils.FileUploadError
			if errors.As(err, &uploadErr) {
				return nil, newValidationError("profile_picture", uploadErr.Message)
			}
			return nil, err
		}
		newPicture = &key
		updates["profile_picture"] = key
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			releaseImage(ctx, s.images, newPicture)
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: email or phone number already registered", ErrConflict)
			}
			return nil, err
		}
	}
	if newPicture != nil {
		releaseImage(ctx, s.images, &oldPicture)
	}

	return s.GetUser(ctx, userID)
}

// ListAddresses returns the user's addresses
func (s *AccountService) ListAddresses(ctx context.Context, userID uint) ([]models.Address, error) {
	addresses := []models.Address{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&addresses).Error
	return addresses, err
}

// AddAddress appends an address to the user's address book
func (s *AccountService) AddAddress(ctx context.Context, userID uint, in AddressInput) (*models.Address, error) {
	address := models.Address{
		UserID:          userID,
		RecipientName:   strings.TrimSpace(in.RecipientName),
		PhoneNumber:     strings.TrimSpace(in.PhoneNumber),
		Province:        in.Province,
		CityOrDistrict:  strings.TrimSpace(in.CityOrDistrict),
		DetailedAddress: strings.TrimSpace(in.DetailedAddress),
	}
	if err := s.db.WithContext(ctx).Create(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

// UpdateAddress replaces an owned address; another user's address reads as not found
func (s *AccountService) UpdateAddress(ctx context.Context, userID, addressID uint, in AddressInput) (*models.Address, error) {
	address, err := s.ownedAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(address).Updates(map[string]interface{}{
		"recipient_name":   strings.TrimSpace(in.RecipientName),
		"phone_number":     strings.TrimSpace(in.PhoneNumber),
		"province":         in.Province,
		"city_or_district": strings.TrimSpace(in.CityOrDistrict),
		"detailed_address": strings.TrimSpace(in.DetailedAddress),
	}).Error
	if err != nil {
		return nil, err
	}
	return s.ownedAddress(ctx, userID, addressID)
}

// DeleteAddress removes an owned address. Placed transactions keep their snapshot.
func (s *AccountService) DeleteAddress(ctx context.Context, userID, addressID uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).Delete(&models.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin account, or promotes an existing
// account with that email. It is a no-op when email is empty.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.Role != models.RoleAdmin {
			if err := s.db.WithContext(ctx).Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
				return nil, err
			}
		}
		return &user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("admin password must be at least %d characters", MinPasswordLength)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user = models.User{
		Email:    &email,
		Username: defaultUsername(&email, nil),
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("admin account created", "user_id", user.ID)
	return &user, nil
}

func (s *AccountService) ownedAddress(ctx context.Context, userID, addressID uint) (*models.Address, error) {
	var address models.Address
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (s *AccountService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AccountService) attachURL(ctx context.Context, user *models.User) {
	user.ProfileURL = imageURL(ctx, s.images, user.ProfilePicture)
}

// normalize trims the value and lower-cases emails; empty becomes nil
func normalize(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	if strings.Contains(v, "@") {
		v = strings.ToLower(v)
	}
	return &v
}

func defaultUsername(email, phone *string) string {
	if email != nil {
		if local, _, ok := strings.Cut(*email, "@"); ok && local != "" {
			return local
		}
		return *email
	}
	if phone != nil {
		return *phone
	}
	return ""
}
