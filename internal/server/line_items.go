package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	lineitemdomain "github.com/smallbiznis/marketplace/internal/lineitem/domain"
	listingdomain "github.com/smallbiznis/marketplace/internal/listing/domain"
	"github.com/smallbiznis/marketplace/internal/observability/tracing"
	"github.com/smallbiznis/marketplace/pkg/money"
)

type transactionLineItemsRequest struct {
	Listing   *listingdomain.Listing    `json:"listing"`
	OrderData *lineitemdomain.OrderData `json:"orderData"`
}

// TransactionLineItems prices an order for the checkout and order breakdown.
func (s *Server) TransactionLineItems(c *gin.Context) {
	var req transactionLineItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Listing == nil {
		AbortWithError(c, newValidationError("listing", "required", "listing is required"))
		return
	}

	quote := lineitemdomain.QuoteRequest{Listing: *req.Listing}
	if req.OrderData != nil {
		quote.OrderData = *req.OrderData
	}
	c.Set(tracing.KeyUnitType, req.Listing.UnitType().String())

	resp, err := s.lineItemSvc.Quote(c.Request.Context(), quote)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(tracing.KeyLineItemCount, len(resp.LineItems))
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isLineItemValidationError(err error) bool {
	switch {
	case errors.Is(err, lineitemdomain.ErrMissingQuantity),
		errors.Is(err, lineitemdomain.ErrInvalidListingPrice),
		errors.Is(err, money.ErrAmountOverflow):
		return true
	default:
		return false
	}
}
