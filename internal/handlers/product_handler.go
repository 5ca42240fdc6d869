package handlers

import (
	"net/http"

	"go-shop-manager/internal/catalog"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	store *catalog.Store
}

func NewCatalogHandler(store *catalog.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// --- GET: List all products ---
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	products, err := h.store.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	product, err := h.store.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// --- POST: Add a new product ---
func (h *CatalogHandler) AddProduct(c *gin.Context) {
	var input catalog.ProductInput
	if !bindJSON(c, &input) {
		return
	}
	product, err := h.store.CreateProduct(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// --- PUT: Replace name, category and prices ---
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input catalog.ProductInput
	if !bindJSON(c, &input) {
		return
	}
	product, err := h.store.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// --- DELETE: Remove a product with its stock, purchases and sales ---
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// --- Suppliers ---

func (h *CatalogHandler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.store.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func (h *CatalogHandler) GetSupplier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	supplier, err := h.store.GetSupplier(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (h *CatalogHandler) AddSupplier(c *gin.Context) {
	var input catalog.SupplierInput
	if !bindJSON(c, &input) {
		return
	}
	supplier, err := h.store.CreateSupplier(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (h *CatalogHandler) UpdateSupplier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input catalog.SupplierInput
	if !bindJSON(c, &input) {
		return
	}
	supplier, err := h.store.UpdateSupplier(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Supplier updated successfully", "supplier": supplier})
}

// DeleteSupplier keeps the supplier's purchases; they lose the reference.
func (h *CatalogHandler) DeleteSupplier(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
}
