package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/taxfocuspk/invoicing_backend/middlewares"
	"github.com/taxfocuspk/invoicing_backend/utils"
)

func registerRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", registerHandler())
		auth.POST("/login", loginHandler())
		auth.POST("/logout", middlewares.RequireSession(), logoutHandler())
		auth.POST("/change-password", middlewares.RequireSession(), changePasswordHandler())
		auth.GET("/me", middlewares.RequireSession(), meHandler())
	}

	api := r.Group("/", middlewares.RequireSession())
	{
		api.POST("/company", createCompanyHandler())
		api.GET("/company", getCompanyHandler())
		api.PUT("/company", updateCompanyHandler())
		api.DELETE("/company", deleteCompanyHandler())
		api.POST("/company/logo", uploadCompanyLogoHandler())

		api.POST("/customers", createCustomerHandler())
		api.GET("/customers", listCustomersHandler())
		api.GET("/customers/:id", getCustomerHandler())
		api.PUT("/customers/:id", updateCustomerHandler())
		api.DELETE("/customers/:id", deleteCustomerHandler())
		api.POST("/customers/:id/toggle-active", toggleActiveCustomerHandler())

		api.POST("/products", createProductHandler())
		api.GET("/products", listProductsHandler())
		api.GET("/products/by-hs-code/:hsCode", productsByHSCodeHandler())
		api.GET("/products/:id", getProductHandler())
		api.PUT("/products/:id", updateProductHandler())
		api.DELETE("/products/:id", deleteProductHandler())
		api.POST("/products/:id/toggle-active", toggleActiveProductHandler())

		api.POST("/invoices", createInvoiceHandler())
		api.GET("/invoices", listInvoicesHandler())
		api.POST("/invoices/calculate-totals", calculateInvoiceTotalsHandler())
		api.POST("/invoices/upload-excel", importInvoicesHandler())
		api.GET("/invoices/:id", getInvoiceHandler())
		api.PUT("/invoices/:id", updateInvoiceHandler())
		api.DELETE("/invoices/:id", deleteInvoiceHandler())
		api.POST("/invoices/:id/items", addInvoiceItemHandler())
		api.PUT("/invoices/:id/items/:itemId", updateInvoiceItemHandler())
		api.DELETE("/invoices/:id/items/:itemId", deleteInvoiceItemHandler())
		api.POST("/invoices/:id/submit", submitInvoiceHandler())
		api.POST("/invoices/:id/refresh-status", refreshInvoiceStatusHandler())
		api.POST("/invoices/:id/clone", cloneInvoiceHandler())
		api.GET("/invoices/:id/fbr-json", invoiceFBRJsonHandler())
		api.GET("/invoices/:id/pdf", invoicePdfHandler())
	}
}

// listResponse is the envelope every list endpoint responds with:
// the requested page plus the unpaginated total.
func listResponse(data any, count int64) gin.H {
	return gin.H{"data": data, "count": count}
}

// respondError maps model errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if errors.Is(err, utils.ErrorNotPermitted) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough permissions"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

func pathId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// paginationParams reads skip/limit query values, with a search term.
func paginationParams(c *gin.Context) (search *string, skip int, limit int) {
	if s := c.Query("search"); s != "" {
		search = &s
	}
	skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	if skip < 0 {
		skip = 0
	}
	return search, skip, limit
}
