package api

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) listTransactions(c *gin.Context) {
	list, err := s.svc.Transactions.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": nonNil(list)})
}

func (s *Server) createTransaction(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.fail(c, err)
		return
	}

	in, err := services.DecodeNewTransaction(body)
	if err != nil {
		s.fail(c, err)
		return
	}

	tx, err := s.svc.Transactions.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "transaction": tx})
}

func (s *Server) updateTransaction(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.fail(c, err)
		return
	}

	patch, err := services.DecodeTransactionPatch(body)
	if err != nil {
		s.fail(c, err)
		return
	}

	tx, err := s.svc.Transactions.Update(c.Request.Context(), currentUser(c), c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "transaction": tx})
}

func (s *Server) deleteTransaction(c *gin.Context) {
	if err := s.svc.Transactions.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) transactionHistory(c *gin.Context) {
	page, err := queryInt(c, "page")
	if err != nil {
		s.fail(c, err)
		return
	}
	perPage, err := queryInt(c, "perPage")
	if err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.svc.Transactions.History(c.Request.Context(), currentUser(c), page, perPage)
	if err != nil {
		s.fail(c, err)
		return
	}
	result.Transactions = nonNil(result.Transactions)
	c.JSON(http.StatusOK, result)
}

func (s *Server) screenshotUpload(c *gin.Context) {
	up, err := s.svc.Transactions.ScreenshotUploadURL(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "key": up.Key, "uploadUrl": up.URL})
}

func (s *Server) screenshotURL(c *gin.Context) {
	url, err := s.svc.Transactions.ScreenshotURL(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.NewValidationError(common.CodeInvalidPaging, name+" must be an integer")
	}
	return v, nil
}
