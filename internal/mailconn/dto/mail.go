package dto

import "jobpulse-backend/pkg/mailprovider"

type CallbackRequest struct {
	Provider     string `json:"provider" binding:"required"`
	Email        string `json:"email" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type StatusResponse struct {
	Connected bool   `json:"connected"`
	Provider  string `json:"provider,omitempty"`
	Email     string `json:"email,omitempty"`
}

type LatestMailsResponse struct {
	Mails []mailprovider.RawMail `json:"mails"`
	Count int                    `json:"count"`
}

type ValidateRangeRequest struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}
