// Market-data HTTP handlers.
//
// Exposes read-only quote lookups relayed from the upstream market-data API:
//   - GET /market/quotes/latest?symbols=AAPL,MSFT
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandhd/coinage-backend/internal/domain"
	"github.com/nandhd/coinage-backend/internal/services"
)

// LatestQuotes godoc
// @ID          latestQuotes
// @Summary     Latest quotes
// @Description Relays the latest quote per symbol from the upstream market-data API.
// @Tags        Market
// @Produce     json
//
// @Param       symbols  query  string  true  "Comma-separated symbols (max 100)"  example(AAPL,MSFT)
//
// @Success     200  {object}  object                            "Upstream quotes, verbatim"
// @Failure     400  {object}  handlers.ValidationErrorResponse  "Validation failure"
// @Failure     502  {object}  object                            "Upstream failure, verbatim"
// @Router      /market/quotes/latest [get]
func (h *Handlers) LatestQuotes(c *gin.Context) {
	symbols, issues := ValidateSymbols(c.Query("symbols"))
	if !issues.Empty() {
		failValidation(c, "invalid symbols", issues)
		return
	}

	out, err := h.marketSvc.LatestQuotes(c.Request.Context(), symbols)
	if err != nil {
		if errors.Is(err, services.ErrNoSymbols) {
			iss := domain.Issues{}
			iss.Add("symbols", "required")
			failValidation(c, "invalid symbols", iss)
			return
		}
		relayResult(c, "latest_quotes", http.StatusOK, nil, err, true)
		return
	}
	relayResult(c, "latest_quotes", http.StatusOK, out, nil, true)
}
