package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-shop-manager/internal/apperr"
	"go-shop-manager/internal/auth"
	"go-shop-manager/internal/logger"
	"go-shop-manager/internal/models"
	"go-shop-manager/internal/validate"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseInput struct {
	ProductID  uint       `json:"product_id" validate:"required"`
	SupplierID uint       `json:"supplier_id" validate:"required"`
	Quantity   int        `json:"quantity" validate:"gt=0"`
	Date       *time.Time `json:"date"`
}

type SaleInput struct {
	ProductID uint       `json:"product_id" validate:"required"`
	Quantity  int        `json:"quantity" validate:"gt=0"`
	Date      *time.Time `json:"date"`
}

// Recorder creates and removes purchases and sales, moving the ledger with
// each one.
type Recorder struct {
	db     *gorm.DB
	ledger *Ledger
	locker Locker
	now    func() time.Time
	log    *logrus.Entry
}

type Option func(*Recorder)

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

func WithLocker(l Locker) Option {
	return func(r *Recorder) { r.locker = l }
}

func NewRecorder(db *gorm.DB, opts ...Option) *Recorder {
	r := &Recorder{
		db:     db,
		locker: NewLocalLocker(),
		now:    time.Now,
		log:    logger.For("inventory"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ledger = NewLedger(func() time.Time { return r.now().UTC() })
	return r
}

func (r *Recorder) Ledger() *Ledger {
	return r.ledger
}

// withProduct runs fn in one transaction while holding the product's lock.
func (r *Recorder) withProduct(ctx context.Context, productID uint, fn func(tx *gorm.DB) error) error {
	release, err := r.locker.Lock(ctx, productID)
	if err != nil {
		return fmt.Errorf("lock product %d: %w", productID, err)
	}
	defer release()

	return r.db.WithContext(ctx).Transaction(fn)
}

// stamp picks the record time; records are stored in UTC.
func (r *Recorder) stamp(d *time.Time) time.Time {
	if d != nil && !d.IsZero() {
		return d.UTC()
	}
	return r.now().UTC()
}

func loadProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	if err := tx.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product", id)
		}
		return nil, err
	}
	return &product, nil
}

// --- Purchases ---

// RecordPurchase books stock in. TotalCost uses the cost price at call time.
func (r *Recorder) RecordPurchase(ctx context.Context, in PurchaseInput) (*models.Purchase, error) {
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var purchase models.Purchase
	err = r.withProduct(ctx, in.ProductID, func(tx *gorm.DB) error {
		product, err := loadProduct(tx, in.ProductID)
		if err != nil {
			return err
		}
		var supplier models.Supplier
		if err := tx.First(&supplier, in.SupplierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("supplier", in.SupplierID)
			}
			return err
		}

		supplierID := supplier.ID
		purchase = models.Purchase{
			ProductID:    product.ID,
			SupplierID:   &supplierID,
			UserID:       caller.UserID,
			Quantity:     in.Quantity,
			TotalCost:    product.CostPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
			PurchaseDate: r.stamp(in.Date),
		}
		if err := tx.Omit(clause.Associations).Create(&purchase).Error; err != nil {
			return err
		}

		_, err = r.ledger.Adjust(ctx, tx, product.ID, in.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"purchase_id": purchase.ID,
		"product_id":  purchase.ProductID,
		"quantity":    purchase.Quantity,
		"user_id":     caller.UserID,
	}).Info("purchase recorded")
	return &purchase, nil
}

// DeletePurchase removes a purchase. Stock is only taken back when the ledger
// still holds at least the purchased quantity; otherwise the ledger is left
// as is and the record is deleted anyway.
func (r *Recorder) DeletePurchase(ctx context.Context, id uint) error {
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return err
	}

	var purchase models.Purchase
	if err := r.db.WithContext(ctx).First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("purchase", id)
		}
		return err
	}

	reversed := false
	err = r.withProduct(ctx, purchase.ProductID, func(tx *gorm.DB) error {
		qty, found, err := r.ledger.Get(ctx, tx, purchase.ProductID)
		if err != nil {
			return err
		}
		if found && qty >= purchase.Quantity {
			if _, err := r.ledger.Adjust(ctx, tx, purchase.ProductID, -purchase.Quantity); err != nil {
				return err
			}
			reversed = true
		}

		res := tx.Delete(&models.Purchase{}, purchase.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// deleted by someone else between the read and the lock
			return apperr.NotFound("purchase", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	entry := r.log.WithFields(logrus.Fields{
		"purchase_id": purchase.ID,
		"product_id":  purchase.ProductID,
		"quantity":    purchase.Quantity,
		"user_id":     caller.UserID,
	})
	if reversed {
		entry.Info("purchase deleted")
	} else {
		entry.Warn("purchase deleted without stock reversal: ledger below purchased quantity")
	}
	return nil
}

func (r *Recorder) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Supplier").
		Order("purchase_date DESC").
		Order("id DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

// --- Sales ---

// RecordSale books stock out. It fails with ErrInsufficientStock, changing
// nothing, when the ledger holds less than requested.
func (r *Recorder) RecordSale(ctx context.Context, in SaleInput) (*models.Sale, error) {
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var sale models.Sale
	err = r.withProduct(ctx, in.ProductID, func(tx *gorm.DB) error {
		product, err := loadProduct(tx, in.ProductID)
		if err != nil {
			return err
		}

		available, _, err := r.ledger.Get(ctx, tx, product.ID)
		if err != nil {
			return err
		}
		if in.Quantity > available {
			return fmt.Errorf("%w: %s has %d, requested %d", apperr.ErrInsufficientStock, product.Name, available, in.Quantity)
		}

		sale = models.Sale{
			ProductID:   product.ID,
			UserID:      caller.UserID,
			Quantity:    in.Quantity,
			TotalAmount: product.Price.Mul(decimal.NewFromInt(int64(in.Quantity))),
			SaleDate:    r.stamp(in.Date),
		}
		if err := tx.Omit(clause.Associations).Create(&sale).Error; err != nil {
			return err
		}

		_, err = r.ledger.Adjust(ctx, tx, product.ID, -in.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"sale_id":    sale.ID,
		"product_id": sale.ProductID,
		"quantity":   sale.Quantity,
		"user_id":    caller.UserID,
	}).Info("sale recorded")
	return &sale, nil
}

// DeleteSale removes a sale and always puts its quantity back on the ledger,
// with no upper bound.
func (r *Recorder) DeleteSale(ctx context.Context, id uint) error {
	caller, err := auth.CallerFrom(ctx)
	if err != nil {
		return err
	}

	var sale models.Sale
	if err := r.db.WithContext(ctx).First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("sale", id)
		}
		return err
	}

	err = r.withProduct(ctx, sale.ProductID, func(tx *gorm.DB) error {
		res := tx.Delete(&models.Sale{}, sale.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("sale", id)
		}
		_, err := r.ledger.Adjust(ctx, tx, sale.ProductID, sale.Quantity)
		return err
	})
	if err != nil {
		return err
	}

	r.log.WithFields(logrus.Fields{
		"sale_id":    sale.ID,
		"product_id": sale.ProductID,
		"quantity":   sale.Quantity,
		"user_id":    caller.UserID,
	}).Info("sale deleted")
	return nil
}

func (r *Recorder) ListSales(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("sale_date DESC").
		Order("id DESC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// --- Stock levels ---

// Quantity returns the on-hand quantity for one product (0 without a row).
func (r *Recorder) Quantity(ctx context.Context, productID uint) (int, error) {
	var inv models.Inventory
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if _, err := loadProduct(r.db.WithContext(ctx), productID); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return inv.Quantity, nil
}

func (r *Recorder) ListInventory(ctx context.Context) ([]models.Inventory, error) {
	var rows []models.Inventory
	err := r.db.WithContext(ctx).
		Preload("Product").
		Order("quantity ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
