package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/dew-13/solestyle/internal/apperr"
	"github.com/dew-13/solestyle/internal/models"
	"github.com/dew-13/solestyle/internal/orders"
)

const dateLayout = "2006-01-02"

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logger.WarnContext(c.Request.Context(), "health_check_failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		Fail(c, apperr.FieldErr("id", "invalid order id"))
		return 0, false
	}
	return id, true
}

func itemType(c *gin.Context) models.ItemType {
	return models.ItemType(c.Param("type"))
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

// Checkout

func (s *Server) checkout(c *gin.Context) {
	var req orders.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, bindErr(err))
		return
	}

	res, err := s.composer.Checkout(c.Request.Context(), req, credential(c))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Catalog

func (s *Server) listCatalog(c *gin.Context) {
	page, err := s.service.ListCatalog(c.Request.Context(), itemType(c), queryInt(c, "page"), queryInt(c, "page_size"))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) getCatalogItem(c *gin.Context) {
	item, err := s.service.GetCatalogItem(c.Request.Context(), itemType(c), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) adminCreateCatalogItem(c *gin.Context) {
	var in orders.CatalogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Fail(c, bindErr(err))
		return
	}
	item, err := s.service.CreateCatalogItem(c.Request.Context(), itemType(c), in)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) adminUpdateCatalogItem(c *gin.Context) {
	var in orders.CatalogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Fail(c, bindErr(err))
		return
	}
	item, err := s.service.UpdateCatalogItem(c.Request.Context(), itemType(c), c.Param("id"), in)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) adminDeleteCatalogItem(c *gin.Context) {
	if err := s.service.DeleteCatalogItem(c.Request.Context(), itemType(c), c.Param("id")); err != nil {
		Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Account

func (s *Server) myOrders(c *gin.Context) {
	user, _ := CurrentUser(c)
	list, err := s.service.OrdersForUser(c.Request.Context(), user.ID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (s *Server) mergeShipping(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, _ := CurrentUser(c)
	order, err := s.service.MergeShippingFromProfile(c.Request.Context(), id, user.ID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Admin orders

// parseFilter reads status, from, to and q. A date-only "to" includes that
// whole day.
func parseFilter(c *gin.Context) (orders.Filter, error) {
	f := orders.Filter{Search: c.Query("q")}

	if v := c.Query("status"); v != "" {
		st, err := orders.ParseStatus(v)
		if err != nil {
			return f, apperr.FieldErr("status", "unknown status")
		}
		f.Status = st
	}
	if v := c.Query("from"); v != "" {
		t, _, err := parseTime(v)
		if err != nil {
			return f, apperr.FieldErr("from", "use YYYY-MM-DD or RFC 3339")
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, dateOnly, err := parseTime(v)
		if err != nil {
			return f, apperr.FieldErr("to", "use YYYY-MM-DD or RFC 3339")
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		f.To = &t
	}
	return f, nil
}

func parseTime(v string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	return t, false, err
}

func (s *Server) adminListOrders(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		Fail(c, err)
		return
	}
	page, err := s.service.ListOrders(c.Request.Context(), f, c.Query("cursor"), queryInt(c, "limit"))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) adminGetOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	detail, err := s.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type statusUpdate struct {
	Status string `json:"status" binding:"required"`
}

// adminUpdateStatus accepts {"status"} only; any other field is rejected.
func (s *Server) adminUpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req statusUpdate
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		Fail(c, decodeErr(err))
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		Fail(c, bindErr(err))
		return
	}

	user, _ := CurrentUser(c)
	view, err := s.service.UpdateStatus(c.Request.Context(), id, req.Status, user.ID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// decodeErr separates a body carrying fields other than status from one that
// is empty or not JSON.
func decodeErr(err error) error {
	switch {
	case errors.Is(err, io.EOF):
		return apperr.FieldErr("status", "this field is required")
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		return apperr.InvalidErr("only the order status can be changed", nil)
	default:
		return apperr.InvalidErr("request body is not valid JSON", nil)
	}
}

func (s *Server) adminStats(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		Fail(c, err)
		return
	}
	summary, err := s.service.Stats(c.Request.Context(), f)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
