package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"shipping-label-service/internal/csvimport"
	"shipping-label-service/internal/dto"
	"shipping-label-service/internal/pricing"
	"shipping-label-service/internal/repository"
	"shipping-label-service/internal/service"
)

const defaultPageSize = 50

type ShipmentController struct {
	Service *service.ShipmentService
}

func NewShipmentController(s *service.ShipmentService) *ShipmentController {
	return &ShipmentController{Service: s}
}

// RegisterRoutes wires every endpoint onto the router.
func (ctl *ShipmentController) RegisterRoutes(r *gin.Engine) {
	shipments := r.Group("/shipments")
	shipments.POST("/upload/", ctl.Upload)
	shipments.GET("/", ctl.List)
	shipments.GET("/:id/", ctl.Get)
	shipments.PATCH("/:id/", ctl.Patch)
	shipments.DELETE("/:id/", ctl.Delete)
	shipments.POST("/bulk_update/", ctl.BulkUpdate)
	shipments.POST("/bulk_delete/", ctl.BulkDelete)
	shipments.POST("/validate_addresses/", ctl.ValidateAddresses)

	addresses := r.Group("/saved-addresses")
	addresses.GET("/", ctl.ListSavedAddresses)
	addresses.POST("/", ctl.CreateSavedAddress)
	addresses.DELETE("/:id/", ctl.DeleteSavedAddress)

	packages := r.Group("/saved-packages")
	packages.GET("/", ctl.ListSavedPackages)
	packages.POST("/", ctl.CreateSavedPackage)
	packages.DELETE("/:id/", ctl.DeleteSavedPackage)

	services := r.Group("/shipping-services")
	services.GET("/", ctl.ListShippingServices)
	services.POST("/bulk_update_service/", ctl.BulkUpdateService)

	r.POST("/purchase/", ctl.Purchase)
}

// POST /shipments/upload/ — multipart CSV upload
func (ctl *ShipmentController) Upload(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	res, err := ctl.Service.Import(c.Request.Context(), content)
	if err != nil {
		if errors.Is(err, csvimport.ErrMissingHeaders) || errors.Is(err, csvimport.ErrNoRecords) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, res)
}

// GET /shipments/?status=&search=&page=&page_size=
func (ctl *ShipmentController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = defaultPageSize
	}

	filter := repository.ShipmentFilter{
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}

	shipments, total, err := ctl.Service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ShipmentListResponse{
		Count:    total,
		Page:     page,
		PageSize: pageSize,
		Results:  dto.NewShipmentResponses(shipments),
	})
}

// GET /shipments/:id/
func (ctl *ShipmentController) Get(c *gin.Context) {
	shipment, err := ctl.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewShipmentResponse(shipment))
}

// PATCH /shipments/:id/ — partial update, status re-derived
func (ctl *ShipmentController) Patch(c *gin.Context) {
	var req dto.ShipmentPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shipment, err := ctl.Service.Patch(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewShipmentResponse(shipment))
}

// DELETE /shipments/:id/
func (ctl *ShipmentController) Delete(c *gin.Context) {
	if err := ctl.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /shipments/bulk_update/
func (ctl *ShipmentController) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ctl.Service.BulkApply(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /shipments/bulk_delete/
func (ctl *ShipmentController) BulkDelete(c *gin.Context) {
	var req dto.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ctl.Service.BulkDelete(c.Request.Context(), req.ShipmentIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /shipments/validate_addresses/ — empty id list validates all
func (ctl *ShipmentController) ValidateAddresses(c *gin.Context) {
	var req dto.ValidateAddressesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ctl.Service.ValidateAddresses(c.Request.Context(), req.ShipmentIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /saved-addresses/
func (ctl *ShipmentController) ListSavedAddresses(c *gin.Context) {
	addresses, err := ctl.Service.ListSavedAddresses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, addresses)
}

// POST /saved-addresses/
func (ctl *ShipmentController) CreateSavedAddress(c *gin.Context) {
	var req dto.SavedAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	addr, err := ctl.Service.CreateSavedAddress(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, addr)
}

// DELETE /saved-addresses/:id/
func (ctl *ShipmentController) DeleteSavedAddress(c *gin.Context) {
	if err := ctl.Service.DeleteSavedAddress(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /saved-packages/
func (ctl *ShipmentController) ListSavedPackages(c *gin.Context) {
	packages, err := ctl.Service.ListSavedPackages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, packages)
}

// POST /saved-packages/
func (ctl *ShipmentController) CreateSavedPackage(c *gin.Context) {
	var req dto.SavedPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pkg, err := ctl.Service.CreateSavedPackage(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

// DELETE /saved-packages/:id/
func (ctl *ShipmentController) DeleteSavedPackage(c *gin.Context) {
	if err := ctl.Service.DeleteSavedPackage(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /shipping-services/?weight_lbs=&weight_oz=&length=&width=&height=
// Price is null for tiers that cannot be computed from the supplied
// weight.
func (ctl *ShipmentController) ListShippingServices(c *gin.Context) {
	weightLbs, ok := queryInt(c, "weight_lbs")
	if !ok {
		return
	}
	weightOz, ok := queryInt(c, "weight_oz")
	if !ok {
		return
	}
	// Dimension params are accepted for interface parity but do not
	// factor into the rate formula.
	for _, key := range []string{"length", "width", "height"} {
		if raw := c.Query(key); raw != "" {
			if _, err := decimal.NewFromString(raw); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
				return
			}
		}
	}

	quotes := pricing.AvailableServices(weightLbs, weightOz)
	c.JSON(http.StatusOK, dto.NewServiceResponses(quotes))
}

// POST /shipping-services/bulk_update_service/
func (ctl *ShipmentController) BulkUpdateService(c *gin.Context) {
	var req dto.BulkServiceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ctl.Service.BulkService(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /purchase/
func (ctl *ShipmentController) Purchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := ctl.Service.Purchase(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func queryInt(c *gin.Context, key string) (*int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return nil, false
	}
	return &v, true
}

// respondError maps service errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTermsNotAccepted),
		errors.Is(err, service.ErrUnpricedShipment),
		errors.Is(err, service.ErrNothingToApply),
		errors.Is(err, service.ErrServiceNotAssignable),
		errors.Is(err, pricing.ErrUnknownService):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
