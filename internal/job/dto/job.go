package dto

import "jobpulse-backend/internal/job/domain"

type MergeApplicationsRequest struct {
	TargetID string `json:"targetId" binding:"required"`
	SourceID string `json:"sourceId" binding:"required"`
}

type ReassignEmailRequest struct {
	// ApplicationID null detaches the email from its application
	ApplicationID *string `json:"applicationId"`
}

type ArchiveRequest struct {
	Archived *bool `json:"archived" binding:"required"`
}

type ApplicationsResponse struct {
	Applications []*domain.JobApplication `json:"applications"`
	Count        int                      `json:"count"`
}

type ApplicationDetailResponse struct {
	Application *domain.JobApplication `json:"application"`
	Emails      []*domain.JobEmail     `json:"emails"`
}

type EmailsResponse struct {
	Emails []*domain.JobEmail `json:"emails"`
	Count  int                `json:"count"`
}
