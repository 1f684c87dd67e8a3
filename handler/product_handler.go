package handler

import (
	"go-shop-api/common"
	"go-shop-api/model"
	"go-shop-api/service"
	"net/http"
	"strconv"
)

// ProductHandler serves the storefront catalog. Adding and removing
// products is restricted to administrators by the router.
type ProductHandler struct {
	service *service.ProductService
	audit   *service.AuditService
}

func NewProductHandler(s *service.ProductService, audit *service.AuditService) *ProductHandler {
	return &ProductHandler{service: s, audit: audit}
}

type productResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Product *model.Product `json:"product"`
}

type removedProductResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

// AddProduct godoc
// @Summary      Add a product
// @Description  The product gets the next id after the current highest. Negative prices are stored as 0.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload body model.AddProductRequest true "Product"
// @Success      201  {object}  productResponse
// @Failure      400  {object}  common.AppError "Validation failed"
// @Failure      401  {object}  common.AppError
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Failure      500  {object}  common.AppError
// @Router       /api/products/addproduct [post]
func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.AddProductRequest
	if appErr := common.DecodeJSON(r, &req); appErr != nil {
		return appErr
	}

	product, err := h.service.AddProduct(r.Context(), req)
	if err != nil {
		return mapServiceError(err)
	}

	adminID, _ := userIDFrom(r)
	recordAudit(h.audit, r, adminID, model.AuditActionProductAdd, "Product added", map[string]any{
		"product_id": product.ID,
		"name":       product.Name,
	})

	common.WriteJSON(w, http.StatusCreated, productResponse{
		Success: true,
		Message: "Product added successfully",
		Product: product,
	})
	return nil
}

// RemoveProduct godoc
// @Summary      Remove a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload body model.RemoveProductRequest true "Product id"
// @Success      200  {object}  removedProductResponse
// @Failure      400  {object}  common.AppError "Invalid product id"
// @Failure      401  {object}  common.AppError
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Failure      404  {object}  common.AppError "Product not found"
// @Router       /api/products/removeproduct [post]
func (h *ProductHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RemoveProductRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	product, err := h.service.RemoveProduct(r.Context(), req.ID)
	if err != nil {
		return mapServiceError(err)
	}

	adminID, _ := userIDFrom(r)
	recordAudit(h.audit, r, adminID, model.AuditActionProductDel, "Product removed", map[string]any{
		"product_id": product.ID,
		"name":       product.Name,
	})

	common.WriteJSON(w, http.StatusOK, removedProductResponse{
		Success: true,
		Message: "Product removed successfully",
		Name:    product.Name,
	})
	return nil
}

// AllProducts godoc
// @Summary      List products
// @Description  Newest first. limit is clamped to [1,50].
// @Tags         products
// @Produce      json
// @Param        page   query  int  false  "Page number (default 1)"
// @Param        limit  query  int  false  "Page size (default 10, max 50)"
// @Success      200  {array}   model.Product
// @Failure      500  {object}  common.AppError
// @Router       /api/products/allproducts [get]
func (h *ProductHandler) AllProducts(w http.ResponseWriter, r *http.Request) *common.AppError {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	products, err := h.service.AllProducts(r.Context(), page, limit)
	return h.writeList(w, products, err)
}

// NewCollections godoc
// @Summary      Newest products
// @Tags         products
// @Produce      json
// @Success      200  {array}   model.Product
// @Failure      500  {object}  common.AppError
// @Router       /api/products/newcollections [get]
func (h *ProductHandler) NewCollections(w http.ResponseWriter, r *http.Request) *common.AppError {
	products, err := h.service.NewCollections(r.Context())
	return h.writeList(w, products, err)
}

// PopularInWomen godoc
// @Summary      Products in the women category
// @Tags         products
// @Produce      json
// @Success      200  {array}   model.Product
// @Failure      500  {object}  common.AppError
// @Router       /api/products/popularinwomen [get]
func (h *ProductHandler) PopularInWomen(w http.ResponseWriter, r *http.Request) *common.AppError {
	products, err := h.service.PopularInWomen(r.Context())
	return h.writeList(w, products, err)
}

func (h *ProductHandler) writeList(w http.ResponseWriter, products []*model.Product, err error) *common.AppError {
	if err != nil {
		return mapServiceError(err)
	}
	if products == nil {
		products = []*model.Product{}
	}
	common.WriteJSON(w, http.StatusOK, products)
	return nil
}
