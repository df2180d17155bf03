package echoapi

import (
	"github.com/go-playground/validator/v10"

	"vlogvalidator/core"
	"vlogvalidator/core/submission"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	// RankingsResponse pairs the ranked set with its score statistics.
	RankingsResponse struct {
		Rankings []submission.Submission `json:"rankings"`
		Stats    submission.Stats        `json:"stats"`
	}
)

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}
