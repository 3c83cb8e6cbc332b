package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	catalogService service.ICatalogService
}

func NewCatalogHandler(catalogService service.ICatalogService) *CatalogHandler {
	if catalogService == nil {
		panic("catalogService cannot be nil")
	}
	return &CatalogHandler{catalogService: catalogService}
}

// @Summary list products
// @Description active products, filterable and paged
// @Tags catalog
// @Produce json
// @Param search query string false "matches title, slug, team or category name"
// @Param category query string false "category slug"
// @Param team query int false "team id"
// @Param league query int false "league id"
// @Param price_min query number false "minimum price"
// @Param price_max query number false "maximum price"
// @Param ordering query string false "price, -price, created, -created, title, -title"
// @Param page query int false "page number"
// @Success 200 {object} response.Response{data=dto.ProductPageDTO} "success"
// @Failure 400 {object} response.ResponseError "invalid filter"
// @Failure 404 {object} response.ResponseError "invalid page"
// @Router /products [get]
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, detail := parseProductFilter(r.URL.Query())
	if detail != "" {
		response.BadRequest(w, detail)
		return
	}
	if p := r.URL.Query().Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil || page < 1 {
			response.ErrorJSON(w, http.StatusNotFound, "Invalid page.", nil)
			return
		}
		filter.Page = page
	}

	page, err := h.catalogService.ListProducts(r.Context(), filter)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if page.Page > 1 && len(page.Results) == 0 {
		response.ErrorJSON(w, http.StatusNotFound, "Invalid page.", nil)
		return
	}

	out := dto.ProductPageDTO{
		Count:   page.Count,
		Results: make([]dto.ProductDTO, 0, len(page.Results)),
	}
	for i := range page.Results {
		out.Results = append(out.Results, dto.NewProductDTO(&page.Results[i]))
	}
	if page.HasNext() {
		next := pageURL(r, page.Page+1)
		out.Next = &next
	}
	if page.HasPrevious() {
		prev := pageURL(r, page.Page-1)
		out.Previous = &prev
	}
	response.SuccessJSON(w, out)
}

// @Summary product detail
// @Tags catalog
// @Produce json
// @Param slug path string true "product slug"
// @Success 200 {object} response.Response{data=dto.ProductDTO} "success"
// @Failure 404 {object} response.ResponseError "not found"
// @Router /products/{slug} [get]
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogService.GetProduct(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.NewProductDTO(product))
}

// @Summary list categories
// @Tags catalog
// @Produce json
// @Success 200 {object} response.Response{data=[]dto.CategoryDTO} "success"
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.SuccessJSON(w, dto.NewCategoryDTOs(categories))
}

// parseProductFilter returns a non empty detail when a filter value is malformed.
func parseProductFilter(q url.Values) (model.ProductFilter, string) {
	filter := model.ProductFilter{
		Search:       strings.TrimSpace(q.Get("search")),
		CategorySlug: strings.TrimSpace(q.Get("category")),
		Ordering:     q.Get("ordering"),
	}

	var ok bool
	if filter.TeamID, ok = parseUintParam(q.Get("team")); !ok {
		return filter, "team: Enter a number."
	}
	if filter.LeagueID, ok = parseUintParam(q.Get("league")); !ok {
		return filter, "league: Enter a number."
	}
	if filter.PriceMin, ok = parseDecimalParam(q.Get("price_min")); !ok {
		return filter, "price_min: Enter a number."
	}
	if filter.PriceMax, ok = parseDecimalParam(q.Get("price_max")); !ok {
		return filter, "price_max: Enter a number."
	}
	return filter, ""
}

func parseUintParam(v string) (*uint, bool) {
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil, false
	}
	id := uint(n)
	return &id, true
}

func parseDecimalParam(v string) (*decimal.Decimal, bool) {
	if v == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, false
	}
	return &d, true
}

// pageURL keeps every query parameter and only swaps page, page 1 drops it entirely.
func pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := strings.TrimSuffix(util.AbsoluteRoot(r), "/") + r.URL.Path
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}
