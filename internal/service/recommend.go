// Package service orchestrates the sleep math, time parsing, and the log
// store into the compute -> confirm lifecycle behind the API.
package service

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/yourname/sleepcycle/internal"
	"github.com/yourname/sleepcycle/internal/sleep"
)

var validate = validator.New()

type RecommendRequest struct {
	Mode              string `json:"mode" validate:"required,oneof=bedtime alarm"`
	AnchorTime        string `json:"anchorTime" validate:"required"`
	FallAsleepMinutes int    `json:"fallAsleepMinutes" validate:"gte=0,lte=180"`
	Age               int    `json:"age" validate:"required,gte=1,lte=120"`
}

func ValidateRecommendRequest(req *RecommendRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrInvalidInput, err)
	}
	return nil
}

// Recommendation is an ordered candidate list plus the index of the
// emphasized ("central") candidate.
type Recommendation struct {
	Times            []string `json:"times"`
	RecommendedIndex int      `json:"recommended_index"`
}

func ComputeRecommendations(req *RecommendRequest, toddlerMin float64) (*Recommendation, error) {
	if err := ValidateRecommendRequest(req); err != nil {
		return nil, err
	}
	times, err := sleep.Recommend(internal.Mode(req.Mode), req.AnchorTime, req.FallAsleepMinutes, req.Age, toddlerMin)
	if err != nil {
		return nil, err
	}
	return &Recommendation{Times: times, RecommendedIndex: sleep.CentralIndex(len(times))}, nil
}
