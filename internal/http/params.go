package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fjod/go_shop/internal/apperr"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func objectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid " + name + ": " + raw)
	}
	return id, nil
}

func parseObjectID(field, raw string) (primitive.ObjectID, error) {
	if raw == "" {
		return primitive.NilObjectID, apperr.Validation(field + " is required")
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid " + field + ": " + raw)
	}
	return id, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(name + " must be an integer")
	}
	return n, nil
}

type addressRequest struct {
	Details    string `json:"details"`
	Phone      string `json:"phone"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

func (a addressRequest) toDomain() (domain.ShippingAddress, error) {
	addr := domain.ShippingAddress{
		Details:    strings.TrimSpace(a.Details),
		Phone:      strings.TrimSpace(a.Phone),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
	}
	if addr.Details == "" || addr.Phone == "" || addr.City == "" {
		return addr, apperr.Validation("shipping address requires details, phone and city")
	}
	return addr, nil
}

func addressFromQuery(r *http.Request) (domain.ShippingAddress, error) {
	q := r.URL.Query()
	return addressRequest{
		Details:    q.Get("details"),
		Phone:      q.Get("phone"),
		City:       q.Get("city"),
		PostalCode: q.Get("postalCode"),
	}.toDomain()
}
