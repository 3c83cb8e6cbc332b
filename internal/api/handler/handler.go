package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

const maxBodyBytes = 1 << 20

// decodeJSON writes a 400 and returns false when the body is not valid json.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "JSON parse error")
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON that also accepts an empty body.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "JSON parse error")
		return false
	}
	return true
}

func cartOwner(r *http.Request) service.CartOwner {
	ctx := r.Context()
	return service.CartOwner{
		UserID:    util.GetUserIDFromContext(ctx),
		SessionID: util.GetSessionIDFromContext(ctx),
	}
}

// pathID writes a 404 and returns false when the path parameter is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request, key string) (uint, bool) {
	id, ok := util.URLParamUint(r, key)
	if !ok {
		response.ErrorJSON(w, http.StatusNotFound, "Not found.", nil)
	}
	return id, ok
}
