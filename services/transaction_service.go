package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/kendall-kelly/ecotainment-api/logging"
	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var terminalStatuses = []string{string(models.StatusCompleted), string(models.StatusCanceled)}

// TransactionItemInput is one requested line of a new transaction
type TransactionItemInput struct {
	ProductID uint
	Quantity  int
}

// CreateTransactionInput describes a checkout.
// AddressID, when set, takes precedence over Shipping.
type CreateTransactionInput struct {
	TotalAmount int64
	AddressID   *uint
	Shipping    *models.ShippingSnapshot
	Items       []TransactionItemInput
}

func (in CreateTransactionInput) validate() error {
	fields := utils.FieldErrors{}
	if in.TotalAmount < 0 {
		fields.Add("total_amount", "The total_amount must be at least 0.")
	}
	if len(in.Items) == 0 {
		fields.Add("items", "The items field is required.")
	}
	for i, item := range in.Items {
		if item.ProductID == 0 {
			fields.Add(fmt.Sprintf("items.%d.product_id", i), "The product_id field is required.")
		}
		if item.Quantity < 1 {
			fields.Add(fmt.Sprintf("items.%d.quantity", i), "The quantity must be at least 1.")
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// TransactionService is the order lifecycle engine. It creates transactions,
// moves them through their statuses and applies completion side effects.
type TransactionService struct {
	db        *gorm.DB
	images    ImageService
	publisher EventPublisher
	now       func() time.Time
}

func NewTransactionService(db *gorm.DB, images ImageService, publisher EventPublisher) *TransactionService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &TransactionService{db: db, images: images, publisher: publisher, now: time.Now}
}

// Create persists a pending transaction together with all of its items
func (s *TransactionService) Create(ctx context.Context, userID uint, in CreateTransactionInput) (*models.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var txn models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shipping, err := shippingFor(tx, userID, in)
		if err != nil {
			return err
		}

		ids := distinctProductIDs(in.Items)
		var found int64
		if err := tx.Model(&models.Product{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			return err
		}
		if int(found) != len(ids) {
			return fmt.Errorf("%w: product", ErrReferenceNotFound)
		}

		txn = models.Transaction{
			UserID:           userID,
			TotalAmount:      in.TotalAmount,
			Status:           models.StatusPending,
			ShippingSnapshot: shipping,
		}
		for _, item := range in.Items {
			txn.Items = append(txn.Items, models.TransactionItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}

	transactionsCreated.Inc()
	logging.FromContext(ctx).Info("transaction created",
		"transaction_id", txn.ID, "user_id", userID, "items", len(txn.Items))

	return s.load(ctx, txn.ID)
}

func shippingFor(tx *gorm.DB, userID uint, in CreateTransactionInput) (models.ShippingSnapshot, error) {
	if in.AddressID != nil {
		var address models.Address
		err := tx.Where("id = ? AND user_id = ?", *in.AddressID, userID).First(&address).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ShippingSnapshot{}, fmt.Errorf("%w: address", ErrReferenceNotFound)
		}
		if err != nil {
			return models.ShippingSnapshot{}, err
		}
		return address.Snapshot(), nil
	}
	if in.Shipping != nil {
		return *in.Shipping, nil
	}
	return models.ShippingSnapshot{}, nil
}

func distinctProductIDs(items []TransactionItemInput) []uint {
	seen := make(map[uint]struct{}, len(items))
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Transition moves a transaction to next. Only non-admin callers are held to
// ownership. Terminal transactions never move again, and entering completed
// increments product sales and writes purchase history in the same database
// transaction as the status change.
func (s *TransactionService) Transition(ctx context.Context, id uint, caller models.Identity, next models.TransactionStatus) (*models.Transaction, error) {
	if !next.IsValid() {
		return nil, newValidationError("status", "The selected status is invalid.")
	}

	var txn models.Transaction
	var previous models.TransactionStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTransaction(tx, id, &txn); err != nil {
			return err
		}
		if !models.IsAdmin(caller) && txn.UserID != caller.UserID {
			return ErrForbidden
		}
		if txn.Status.IsTerminal() {
			return ErrInvalidTransition
		}
		previous = txn.Status

		// The status guard in the WHERE clause makes a concurrent terminal move lose here.
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status NOT IN ?", txn.ID, terminalStatuses).
			Update("status", string(next))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		if next != models.StatusCompleted {
			return nil
		}

		if err := tx.Preload("Items").First(&txn, txn.ID).Error; err != nil {
			return err
		}
		for _, item := range txn.Items {
			// Unscoped so soft-deleted products still accumulate their sales
			err := tx.Unscoped().Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("total_sales", gorm.Expr("total_sales + ?", item.Quantity)).Error
			if err != nil {
				return err
			}
		}

		history := models.PurchaseHistory{UserID: txn.UserID, TransactionID: txn.ID}
		if err := tx.Create(&history).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrInvalidTransition
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	transactionTransitions.WithLabelValues(string(next)).Inc()
	logger := logging.FromContext(ctx)
	logger.Info("transaction status changed",
		"transaction_id", id, "from", previous, "to", next, "actor_id", caller.UserID)

	if next == models.StatusCompleted {
		s.publishCompleted(ctx, &txn)
	}

	return s.load(ctx, id)
}

// AttachPaymentProof stores proofKey on a pending transaction and moves it to
// waiting_for_confirmation. The previous proof blob is released after commit.
func (s *TransactionService) AttachPaymentProof(ctx context.Context, id uint, caller models.Identity, proofKey string) (*models.Transaction, error) {
	if proofKey == "" {
		return nil, newValidationError("payment_proof", "The payment_proof field is required.")
	}

	var txn models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTransaction(tx, id, &txn); err != nil {
			return err
		}
		if !models.IsAdmin(caller) && txn.UserID != caller.UserID {
			return ErrForbidden
		}
		if txn.Status != models.StatusPending {
			return ErrInvalidState
		}

		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", txn.ID, string(models.StatusPending)).
			Updates(map[string]interface{}{
				"payment_proof": proofKey,
				"status":        string(models.StatusWaitingForConfirmation),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidState
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if txn.PaymentProof != nil && *txn.PaymentProof != proofKey {
		releaseImage(ctx, s.images, txn.PaymentProof)
	}
	transactionTransitions.WithLabelValues(string(models.StatusWaitingForConfirmation)).Inc()
	logging.FromContext(ctx).Info("payment proof attached", "transaction_id", id, "user_id", caller.UserID)

	return s.load(ctx, id)
}

// UploadPaymentProof stores the uploaded image and attaches it. The stored
// blob is released again when the transaction rejects it.
func (s *TransactionService) UploadPaymentProof(ctx context.Context, id uint, caller models.Identity, fileHeader *multipart.FileHeader) (*models.Transaction, error) {
	if s.images == nil {
		return nil, errors.New("image storage is not configured")
	}

	// reject before touching storage; AttachPaymentProof rechecks under the lock
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.IsAdmin(caller) && current.UserID != caller.UserID {
		return nil, ErrForbidden
	}
	if current.Status != models.StatusPending {
		return nil, ErrInvalidState
	}

	key, err := s.images.UploadImage(ctx, FolderPaymentProofs, fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			return nil, newValidationError("payment_proof", uploadErr.Message)
		}
		return nil, err
	}

	txn, err := s.AttachPaymentProof(ctx, id, caller, key)
	if err != nil {
		releaseImage(ctx, s.images, &key)
		return nil, err
	}
	return txn, nil
}

// ListForUser returns the caller's transactions, newest first
func (s *TransactionService) ListForUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.withItems(s.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	s.attachURLs(ctx, txns)
	return txns, nil
}

// ListAll returns every transaction with its owner, newest first
func (s *TransactionService) ListAll(ctx context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.withItems(s.db.WithContext(ctx)).
		Preload("User").
		Order("created_at DESC, id DESC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	s.attachURLs(ctx, txns)
	return txns, nil
}

// Get returns one transaction visible to caller
func (s *TransactionService) Get(ctx context.Context, id uint, caller models.Identity) (*models.Transaction, error) {
	txn, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.IsAdmin(caller) && txn.UserID != caller.UserID {
		return nil, ErrForbidden
	}
	return txn, nil
}

func lockTransaction(tx *gorm.DB, id uint, txn *models.Transaction) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(txn, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *TransactionService) withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Preload("Items.Product", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	})
}

func (s *TransactionService) load(ctx context.Context, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.withItems(s.db.WithContext(ctx)).First(&txn, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	txns := []models.Transaction{txn}
	s.attachURLs(ctx, txns)
	return &txns[0], nil
}

func (s *TransactionService) attachURLs(ctx context.Context, txns []models.Transaction) {
	for i := range txns {
		txns[i].PaymentProofURL = imageURL(ctx, s.images, txns[i].PaymentProof)
		for j := range txns[i].Items {
			if p := txns[i].Items[j].Product; p != nil {
				p.ImageURL = imageURL(ctx, s.images, p.Image)
			}
		}
	}
}

// publishCompleted runs after commit; failures never affect the stored state
func (s *TransactionService) publishCompleted(ctx context.Context, txn *models.Transaction) {
	event := TransactionEvent{
		Type:          EventTransactionCompleted,
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		TotalAmount:   txn.TotalAmount,
		OccurredAt:    s.now().UTC(),
	}
	for _, item := range txn.Items {
		event.Items = append(event.Items, TransactionEventItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		eventPublishFailures.Inc()
		logging.FromContext(ctx).Warn("failed to publish transaction event",
			"transaction_id", txn.ID, "event", event.Type, "error", err)
	}
}
