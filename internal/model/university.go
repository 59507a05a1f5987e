package model

import "time"

type University struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Country            *string            `json:"country,omitempty"`
	Website            *string            `json:"website,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
