// Package catalog stores products and suppliers. Names are unique at creation
// time; updates and deletes only need a valid id.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-shop-manager/internal/apperr"
	"go-shop-manager/internal/logger"
	"go-shop-manager/internal/models"
	"go-shop-manager/internal/validate"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductInput struct {
	Name      string          `json:"name" validate:"required,max=100"`
	Category  string          `json:"category" validate:"required,max=50"`
	Price     decimal.Decimal `json:"price" validate:"gt=0"`
	CostPrice decimal.Decimal `json:"cost_price" validate:"gt=0"`
}

type SupplierInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Contact string `json:"contact" validate:"required,max=50"`
	Phone   string `json:"phone" validate:"required,max=30"`
	Address string `json:"address" validate:"required,max=200"`
}

type Store struct {
	db          *gorm.DB
	phoneRegion string
}

func NewStore(db *gorm.DB, phoneRegion string) *Store {
	return &Store{db: db, phoneRegion: phoneRegion}
}

func (p *ProductInput) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
}

func (s *SupplierInput) normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Contact = strings.TrimSpace(s.Contact)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Address = strings.TrimSpace(s.Address)
}

// --- Products ---

// CreateProduct inserts the product together with its zero inventory row.
func (s *Store) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	product := models.Product{
		Name:      in.Name,
		Category:  in.Category,
		Price:     in.Price,
		CostPrice: in.CostPrice,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("LOWER(name) = LOWER(?)", in.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("product %q already exists", in.Name)
		}

		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		return tx.Create(&models.Inventory{
			ProductID:   product.ID,
			Quantity:    0,
			LastUpdated: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.For("catalog").WithField("product_id", product.ID).Info("product created")
	return &product, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product", id)
		}
		return nil, err
	}
	return &product, nil
}

// FindProductByName is a case-insensitive exact match.
func (s *Store) FindProductByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product", name)
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Category = in.Category
	product.Price = in.Price
	product.CostPrice = in.CostPrice
	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdatePrice changes only the sale price. Recorded sales keep their amounts.
func (s *Store) UpdatePrice(ctx context.Context, id uint, price decimal.Decimal) (*models.Product, error) {
	if !price.IsPositive() {
		return nil, apperr.Validation("price must be greater than 0")
	}
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(product).Update("price", price).Error; err != nil {
		return nil, err
	}
	product.Price = price
	return product, nil
}

// DeleteProduct removes the product and every purchase, sale and inventory row
// that references it.
func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product", id)
			}
			return err
		}

		for _, dep := range []any{&models.Sale{}, &models.Purchase{}, &models.Inventory{}} {
			if err := tx.Where("product_id = ?", id).Delete(dep).Error; err != nil {
				return fmt.Errorf("delete dependents: %w", err)
			}
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		return err
	}

	logger.For("catalog").WithField("product_id", id).Info("product deleted")
	return nil
}

// --- Suppliers ---

func (s *Store) CreateSupplier(ctx context.Context, in SupplierInput) (*models.Supplier, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	phone, err := NormalizePhone(in.Phone, s.phoneRegion)
	if err != nil {
		return nil, err
	}

	supplier := models.Supplier{
		Name:    in.Name,
		Contact: in.Contact,
		Phone:   phone,
		Address: in.Address,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Supplier{}).Where("LOWER(name) = LOWER(?)", in.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("supplier %q already exists", in.Name)
		}
		return tx.Create(&supplier).Error
	})
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	if err := s.db.WithContext(ctx).Order("name").Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (s *Store) GetSupplier(ctx context.Context, id uint) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.db.WithContext(ctx).First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("supplier", id)
		}
		return nil, err
	}
	return &supplier, nil
}

func (s *Store) UpdateSupplier(ctx context.Context, id uint, in SupplierInput) (*models.Supplier, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	phone, err := NormalizePhone(in.Phone, s.phoneRegion)
	if err != nil {
		return nil, err
	}

	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.Name = in.Name
	supplier.Contact = in.Contact
	supplier.Phone = phone
	supplier.Address = in.Address
	if err := s.db.WithContext(ctx).Save(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

// DeleteSupplier detaches the supplier's purchases before removing it; the
// purchases and their stock stay.
func (s *Store) DeleteSupplier(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var supplier models.Supplier
		if err := tx.First(&supplier, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("supplier", id)
			}
			return err
		}
		if err := tx.Model(&models.Purchase{}).Where("supplier_id = ?", id).Update("supplier_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&supplier).Error
	})
}
