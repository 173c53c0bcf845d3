package service

import (
	"net/http"

	"github.com/files-coaching/contact-relay/internal/dto"
	"github.com/files-coaching/contact-relay/internal/models"
)

// AssembleResponse maps the two outcomes to an HTTP status and body. Only the client outcome
// decides the status; an admin failure is reported in the body alone.
func AssembleResponse(test bool, client, admin models.DispatchOutcome) (int, dto.RelayResponse) {
	response := dto.RelayResponse{
		OK:   client.OK(),
		Test: test,
	}

	if client.OK() {
		response.ClientID = client.ID
	} else {
		response.ClientError = client.Detail
	}

	if admin.OK() {
		response.AdminID = admin.ID
	} else {
		response.AdminError = admin.Detail
	}

	if !client.OK() {
		return http.StatusInternalServerError, response
	}
	return http.StatusOK, response
}
