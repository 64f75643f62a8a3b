package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/kendall-kelly/ecotainment-api/logging"
	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/utils"
	"gorm.io/gorm"
)

// BankInput holds bank fields; nil fields are left unchanged on update
type BankInput struct {
	Name                *string
	AccountNumber       *string
	AccountHolder       *string
	PaymentInstructions *string
	Logo                *multipart.FileHeader
}

// BankService manages payment destinations
type BankService struct {
	db     *gorm.DB
	images ImageService
}

func NewBankService(db *gorm.DB, images ImageService) *BankService {
	return &BankService{db: db, images: images}
}

func (s *BankService) List(ctx context.Context) ([]models.Bank, error) {
	banks := []models.Bank{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&banks).Error; err != nil {
		return nil, err
	}
	for i := range banks {
		banks[i].LogoURL = imageURL(ctx, s.images, banks[i].Logo)
	}
	return banks, nil
}

func (s *BankService) Get(ctx context.Context, id uint) (*models.Bank, error) {
	var bank models.Bank
	err := s.db.WithContext(ctx).First(&bank, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	bank.LogoURL = imageURL(ctx, s.images, bank.Logo)
	return &bank, nil
}

func (s *BankService) Create(ctx context.Context, in BankInput) (*models.Bank, error) {
	fields := utils.FieldErrors{}
	requireText(fields, "name", in.Name)
	requireText(fields, "account_number", in.AccountNumber)
	requireText(fields, "account_holder", in.AccountHolder)
	requireText(fields, "payment_instructions", in.PaymentInstructions)
	validateBankInput(in, fields)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	bank := models.Bank{
		Name:                strings.TrimSpace(*in.Name),
		AccountNumber:       strings.TrimSpace(*in.AccountNumber),
		AccountHolder:       strings.TrimSpace(*in.AccountHolder),
		PaymentInstructions: *in.PaymentInstructions,
	}
	if in.Logo != nil {
		key, err := s.uploadLogo(ctx, in.Logo)
		if err != nil {
			return nil, err
		}
		bank.Logo = &key
	}

	if err := s.db.WithContext(ctx).Create(&bank).Error; err != nil {
		releaseImage(ctx, s.images, bank.Logo)
		return nil, err
	}

	logging.FromContext(ctx).Info("bank created", "bank_id", bank.ID)
	bank.LogoURL = imageURL(ctx, s.images, bank.Logo)
	return &bank, nil
}

func (s *BankService) Update(ctx context.Context, id uint, in BankInput) (*models.Bank, error) {
	fields := utils.FieldErrors{}
	validateBankInput(in, fields)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	bank, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.AccountNumber != nil {
		updates["account_number"] = strings.TrimSpace(*in.AccountNumber)
	}
	if in.AccountHolder != nil {
		updates["account_holder"] = strings.TrimSpace(*in.AccountHolder)
	}
	if in.PaymentInstructions != nil {
		updates["payment_instructions"] = *in.PaymentInstructions
	}

	oldLogo := bank.Logo
	var newLogo *string
	if in.Logo != nil {
		key, err := s.uploadLogo(ctx, in.Logo)
		if err != nil {
			return nil, err
		}
		newLogo = &key
		updates["logo"] = key
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.Bank{ID: id}).Updates(updates).Error; err != nil {
			releaseImage(ctx, s.images, newLogo)
			return nil, err
		}
	}
	if newLogo != nil {
		releaseImage(ctx, s.images, oldLogo)
	}

	return s.Get(ctx, id)
}

// Delete removes a bank and releases its logo
func (s *BankService) Delete(ctx context.Context, id uint) error {
	bank, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Bank{}, id).Error; err != nil {
		return err
	}
	releaseImage(ctx, s.images, bank.Logo)
	logging.FromContext(ctx).Info("bank deleted", "bank_id", id)
	return nil
}

func (s *BankService) uploadLogo(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if s.images == nil {
		return "", errors.New("image storage is not configured")
	}
	key, err := s.images.UploadImage(ctx, FolderBankLogos, fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			return "", newValidationError("logo", uploadErr.Message)
		}
		return "", err
	}
	return key, nil
}

func requireText(fields utils.FieldErrors, name string, value *string) {
	if value == nil || strings.TrimSpace(*value) == "" {
		fields.Add(name, "The "+name+" field is required.")
	}
}

func validateBankInput(in BankInput, fields utils.FieldErrors) {
	if in.Name != nil && len(*in.Name) > 255 {
		fields.Add("name", "The name may not be greater than 255 characters.")
	}
	if in.AccountNumber != nil && len(*in.AccountNumber) > 50 {
		fields.Add("account_number", "The account_number may not be greater than 50 characters.")
	}
	if in.AccountHolder != nil && len(*in.AccountHolder) > 255 {
		fields.Add("account_holder", "The account_holder may not be greater than 255 characters.")
	}
}
