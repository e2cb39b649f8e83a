package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/shopfront/backend/internal/application/partner"
)

// SellerHandler is the admin seller panel
type SellerHandler struct {
	BaseHandler
	sellers *partnerapp.SellerService
}

// NewSellerHandler creates a new SellerHandler
func NewSellerHandler(svc *partnerapp.SellerService) *SellerHandler {
	return &SellerHandler{sellers: svc}
}

// List godoc
// @ID           listSellers
// @Summary      List sellers
// @Description  List sellers
// @Tags         sellers
// @Produce      json
// @Param        search query string false "Search by name or email"
// @Param        status query string false "Status filter"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]partnerapp.SellerResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sellers [get]
func (h *SellerHandler) List(c *gin.Context) {
	var filter partnerapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	sellers, total, err := h.sellers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, sellers, total, page, size)
}

// Get godoc
// @ID           getSeller
// @Summary      Get a seller
// @Description  Get a seller
// @Tags         sellers
// @Produce      json
// @Param        id path string true "Seller ID" format(uuid)
// @Success      200 {object} dto.Response{data=partnerapp.SellerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sellers/{id} [get]
func (h *SellerHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	seller, err := h.sellers.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seller)
}

// Create godoc
// @ID           createSeller
// @Summary      Create a seller
// @Description  Create a seller
// @Tags         sellers
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreateSellerRequest true "Create seller request"
// @Success      201 {object} dto.Response{data=partnerapp.SellerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sellers [post]
func (h *SellerHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSellerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	seller, err := h.sellers.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, seller)
}

// Update godoc
// @ID           updateSeller
// @Summary      Update a seller
// @Description  Update a seller
// @Tags         sellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Seller ID" format(uuid)
// @Param        request body partnerapp.UpdateSellerRequest true "Update seller request"
// @Success      200 {object} dto.Response{data=partnerapp.SellerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sellers/{id} [put]
func (h *SellerHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateSellerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	seller, err := h.sellers.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seller)
}

// SetStatus godoc
// @ID           setSellerStatus
// @Summary      Change a seller's status
// @Description  Change a seller's status
// @Tags         sellers
// @Accept       json
// @Produce      json
// @Param        id path string true "Seller ID" format(uuid)
// @Param        request body partnerapp.SetStatusRequest true "Set status request"
// @Success      200 {object} dto.Response{data=partnerapp.SellerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sellers/{id}/status [put]
func (h *SellerHandler) SetStatus(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req partnerapp.SetStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	seller, err := h.sellers.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seller)
}

// Delete godoc
// @ID           deleteSeller
// @Summary      Delete a seller
// @Description  A seller that still owns shops answers SELLER_HAS_SHOPS.
// @Tags         sellers
// @Produce      json
// @Param        id path string true "Seller ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sellers/{id} [delete]
func (h *SellerHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.sellers.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ShopHandler is the admin shop panel
type ShopHandler struct {
	BaseHandler
	shops *partnerapp.ShopService
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(svc *partnerapp.ShopService) *ShopHandler {
	return &ShopHandler{shops: svc}
}

// List godoc
// @ID           listShops
// @Summary      List shops
// @Description  List shops
// @Tags         shops
// @Produce      json
// @Param        search query string false "Search by name or email"
// @Param        status query string false "Status filter"
// @Param        seller_id query string false "Seller filter" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]partnerapp.ShopResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/shops [get]
func (h *ShopHandler) List(c *gin.Context) {
	var filter partnerapp.ShopListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	shops, total, err := h.shops.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, shops, total, page, size)
}

// Get godoc
// @ID           getShop
// @Summary      Get a shop
// @Description  Get a shop
// @Tags         shops
// @Produce      json
// @Param        id path string true "Shop ID" format(uuid)
// @Success      200 {object} dto.Response{data=partnerapp.ShopResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/shops/{id} [get]
func (h *ShopHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	shop, err := h.shops.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shop)
}

// Create godoc
// @ID           createShop
// @Summary      Create a shop
// @Description  Create a shop
// @Tags         shops
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreateShopRequest true "Create shop request"
// @Success      201 {object} dto.Response{data=partnerapp.ShopResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/shops [post]
func (h *ShopHandler) Create(c *gin.Context) {
	var req partnerapp.CreateShopRequest
	if !h.bindJSON(c, &req) {
		return
	}
	shop, err := h.shops.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, shop)
}

// Update godoc
// @ID           updateShop
// @Summary      Update a shop
// @Description  Update a shop
// @Tags         shops
// @Accept       json
// @Produce      json
// @Param        id path string true "Shop ID" format(uuid)
// @Param        request body partnerapp.UpdateShopRequest true "Update shop request"
// @Success      200 {object} dto.Response{data=partnerapp.ShopResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/shops/{id} [put]
func (h *ShopHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateShopRequest
	if !h.bindJSON(c, &req) {
		return
	}
	shop, err := h.shops.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shop)
}

// SetStatus godoc
// @ID           setShopStatus
// @Summary      Change a shop's status
// @Description  Change a shop's status
// @Tags         shops
// @Accept       json
// @Produce      json
// @Param        id path string true "Shop ID" format(uuid)
// @Param        request body partnerapp.SetStatusRequest true "Set status request"
// @Success      200 {object} dto.Response{data=partnerapp.ShopResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/shops/{id}/status [put]
func (h *ShopHandler) SetStatus(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req partnerapp.SetStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	shop, err := h.shops.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shop)
}

// Delete godoc
// @ID           deleteShop
// @Summary      Delete a shop
// @Description  Delete a shop
// @Tags         shops
// @Produce      json
// @Param        id path string true "Shop ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/shops/{id} [delete]
func (h *ShopHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.shops.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CustomerHandler is the admin customer panel. Customers are created at
// first checkout, so there is no create endpoint.
type CustomerHandler struct {
	BaseHandler
	customers *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(svc *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: svc}
}

// List godoc
// @ID           listCustomers
// @Summary      List customers
// @Description  List customers
// @Tags         customers
// @Produce      json
// @Param        search query string false "Search by name or email"
// @Param        status query string false "Status filter"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]partnerapp.CustomerResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var filter partnerapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	customers, total, err := h.customers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, customers, total, page, size)
}

// Get godoc
// @ID           getCustomer
// @Summary      Get a customer
// @Description  Get a customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=partnerapp.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	customer, err := h.customers.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Update godoc
// @ID           updateCustomer
// @Summary      Update a customer
// @Description  Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body partnerapp.UpdateCustomerRequest true "Update customer request"
// @Success      200 {object} dto.Response{data=partnerapp.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// SetStatus godoc
// @ID           setCustomerStatus
// @Summary      Change a customer's status
// @Description  Change a customer's status
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body partnerapp.SetStatusRequest true "Set status request"
// @Success      200 {object} dto.Response{data=partnerapp.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/customers/{id}/status [put]
func (h *CustomerHandler) SetStatus(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req partnerapp.SetStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Delete godoc
// @ID           deleteCustomer
// @Summary      Delete a customer
// @Description  Delete a customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.customers.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
