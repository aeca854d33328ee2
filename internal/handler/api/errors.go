package api

import (
	"errors"

	"github.com/uranium24/Fresh-Price/internal/domain/models"
	xhttp "github.com/uranium24/Fresh-Price/pkg/http"
)

// toAppError maps domain errors onto the HTTP envelope. Anything that is not
// a validation or not-found error becomes an opaque 500.
func toAppError(err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return xhttp.ValidationFailed(verr.Field, verr.Reason).WithError(err)
	}
	var nerr *models.NotFoundError
	if errors.As(err, &nerr) {
		return xhttp.NotFound(nerr.Error()).
			WithParam("commodity", nerr.Query).
			WithError(err)
	}
	return err
}
