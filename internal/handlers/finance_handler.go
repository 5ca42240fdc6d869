package handlers

import (
	"net/http"

	"go-shop-manager/internal/finance"

	"github.com/gin-gonic/gin"
)

type FinanceHandler struct {
	journal *finance.Journal
}

func NewFinanceHandler(journal *finance.Journal) *FinanceHandler {
	return &FinanceHandler{journal: journal}
}

func (h *FinanceHandler) GetExpenses(c *gin.Context) {
	expenses, err := h.journal.ListExpenses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (h *FinanceHandler) AddExpense(c *gin.Context) {
	var input finance.EntryInput
	if !bindJSON(c, &input) {
		return
	}
	expense, err := h.journal.CreateExpense(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (h *FinanceHandler) DeleteExpense(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.journal.DeleteExpense(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

func (h *FinanceHandler) GetIncomes(c *gin.Context) {
	incomes, err := h.journal.ListIncomes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, incomes)
}

func (h *FinanceHandler) AddIncome(c *gin.Context) {
	var input finance.EntryInput
	if !bindJSON(c, &input) {
		return
	}
	income, err := h.journal.CreateIncome(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, income)
}

func (h *FinanceHandler) DeleteIncome(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.journal.DeleteIncome(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Income deleted successfully"})
}
