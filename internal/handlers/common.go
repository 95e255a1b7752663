package handlers

import (
	"math/big"
	"net/http"
	"strings"

	"dexledger/internal/handlers/business"

	"github.com/gin-gonic/gin"
)

// parseAmount parses a non-negative decimal-string token amount.
func parseAmount(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, false
	}
	return v, true
}

// respondError maps business error codes onto HTTP statuses. Invalid
// arguments and failed preconditions both answer 400; the code field lets
// clients tell them apart.
func respondError(c *gin.Context, err error) {
	if be, ok := business.AsError(err); ok {
		status := http.StatusInternalServerError
		switch be.Code {
		case business.CodeInvalidArgument, business.CodeFailedPrecondition:
			status = http.StatusBadRequest
		case business.CodeNotFound:
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": be.Message, "code": string(be.Code)})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
