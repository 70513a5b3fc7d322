package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docuvault/docrisk/internal/application/retrieval"
	"github.com/docuvault/docrisk/internal/domain/entity"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docuvault/docrisk/pkg/errors"
	"github.com/docuvault/docrisk/pkg/types/common"
)

// EntitiesHandler serves the entity query endpoint.
type EntitiesHandler struct {
	service *retrieval.Service
	logger  logging.Logger
}

// NewEntitiesHandler constructs an EntitiesHandler.
func NewEntitiesHandler(service *retrieval.Service, logger logging.Logger) *EntitiesHandler {
	return &EntitiesHandler{service: service, logger: logger.Named("entities_handler")}
}

// List handles GET /api/v1/entities.
//
// Query parameters: search, risk_band (comma-separated), tags
// (comma-separated), min_score, max_score, sort_by, sort_order, page,
// page_size.
func (h *EntitiesHandler) List(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		writeError(c, err)
		return
	}

	page, err := h.service.Query(c.Request.Context(), criteria)
	if err != nil {
		h.logger.Error("entity query failed", logging.Err(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func parseCriteria(c *gin.Context) (entity.SearchCriteria, error) {
	var criteria entity.SearchCriteria

	criteria.Search = strings.TrimSpace(c.Query("search"))

	if raw := c.Query("risk_band"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			band, err := entity.ParseRiskBand(name)
			if err != nil {
				return criteria, apperrors.InvalidParam("invalid risk_band").
					WithDetail("value=" + name)
			}
			criteria.RiskBands = append(criteria.RiskBands, band)
		}
	}

	if raw := c.Query("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				criteria.Tags = append(criteria.Tags, tag)
			}
		}
	}

	var err error
	if criteria.MinScore, err = intParam(c, "min_score"); err != nil {
		return criteria, err
	}
	if criteria.MaxScore, err = intParam(c, "max_score"); err != nil {
		return criteria, err
	}
	if criteria.MinScore != nil && criteria.MaxScore != nil &&
		*criteria.MinScore > *criteria.MaxScore {
		return criteria, apperrors.InvalidParam("min_score exceeds max_score")
	}

	switch sortBy := c.Query("sort_by"); sortBy {
	case "", entity.SortByName, entity.SortByMentions, entity.SortByScore, entity.SortByRisk:
		criteria.SortBy = sortBy
	default:
		return criteria, apperrors.InvalidParam("invalid sort_by").
			WithDetail("value=" + sortBy)
	}

	switch order := common.SortOrder(c.Query("sort_order")); {
	case order == "":
	case order.Valid():
		criteria.SortOrder = order
	default:
		return criteria, apperrors.InvalidParam("invalid sort_order").
			WithDetail("value=" + string(order))
	}

	page, err := intParam(c, "page")
	if err != nil {
		return criteria, err
	}
	if page != nil {
		criteria.Page = *page
	}
	size, err := intParam(c, "page_size")
	if err != nil {
		return criteria, err
	}
	if size != nil {
		criteria.PageSize = *size
	}

	return criteria, nil
}

func intParam(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.InvalidParam("invalid " + name).WithDetail("value=" + raw)
	}
	return &v, nil
}
