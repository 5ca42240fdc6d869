// Package finance records expenses and non-sales income. It does not touch
// inventory.
package finance

import (
	"context"
	"strings"
	"time"

	"go-shop-manager/internal/apperr"
	"go-shop-manager/internal/models"
	"go-shop-manager/internal/validate"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EntryInput struct {
	Description string          `json:"description" validate:"required,max=200"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Category    string          `json:"category" validate:"required,max=50"`
	Date        *time.Time      `json:"date"`
}

type Journal struct {
	db  *gorm.DB
	now func() time.Time
}

func NewJournal(db *gorm.DB, now func() time.Time) *Journal {
	if now == nil {
		now = time.Now
	}
	return &Journal{db: db, now: now}
}

func (j *Journal) prepare(in *EntryInput) (time.Time, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if err := validate.Struct(*in); err != nil {
		return time.Time{}, err
	}
	if in.Date != nil && !in.Date.IsZero() {
		return in.Date.UTC(), nil
	}
	return j.now().UTC(), nil
}

func (j *Journal) CreateExpense(ctx context.Context, in EntryInput) (*models.Expense, error) {
	at, err := j.prepare(&in)
	if err != nil {
		return nil, err
	}
	expense := models.Expense{
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		ExpenseDate: at,
	}
	if err := j.db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (j *Journal) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := j.db.WithContext(ctx).Order("expense_date DESC").Order("id DESC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (j *Journal) DeleteExpense(ctx context.Context, id uint) error {
	return j.delete(ctx, &models.Expense{}, "expense", id)
}

func (j *Journal) CreateIncome(ctx context.Context, in EntryInput) (*models.Income, error) {
	at, err := j.prepare(&in)
	if err != nil {
		return nil, err
	}
	income := models.Income{
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		IncomeDate:  at,
	}
	if err := j.db.WithContext(ctx).Create(&income).Error; err != nil {
		return nil, err
	}
	return &income, nil
}

func (j *Journal) ListIncomes(ctx context.Context) ([]models.Income, error) {
	var incomes []models.Income
	if err := j.db.WithContext(ctx).Order("income_date DESC").Order("id DESC").Find(&incomes).Error; err != nil {
		return nil, err
	}
	return incomes, nil
}

func (j *Journal) DeleteIncome(ctx context.Context, id uint) error {
	return j.delete(ctx, &models.Income{}, "income", id)
}

func (j *Journal) delete(ctx context.Context, model any, what string, id uint) error {
	res := j.db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(what, id)
	}
	return nil
}
