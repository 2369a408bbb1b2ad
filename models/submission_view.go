package models

import "time"

// SubmissionType values as stored in submissions.submission_type.
type SubmissionType string

const (
	SubmissionTypeFundApplication   SubmissionType = "fund_application"
	SubmissionTypePublicationReward SubmissionType = "publication_reward"
)

// Placeholder is shown for display text that could not be resolved.
const Placeholder = "-"

// BankInfo groups the payee fields of a fund application.
type BankInfo struct {
	AccountNumber *string `json:"account_number"`
	AccountName   *string `json:"account_name"`
	BankName      *string `json:"bank_name"`
}

// AnnouncementRefs are the announcement ids a submission was filed against.
type AnnouncementRefs struct {
	Main            *int `json:"main_annoucement"`
	ActivitySupport *int `json:"activity_support_announcement"`
	Reward          *int `json:"reward_announcement"`
	Conference      *int `json:"conference_announcement"`
	Service         *int `json:"service_announcement"`
}

// AmountPair holds the requested and approved variant of one amount.
type AmountPair struct {
	Requested *float64 `json:"requested"`
	Approved  *float64 `json:"approved"`
}

// PublicationView is the publication_reward specific part of a submission.
type PublicationView struct {
	PaperTitle            *string    `json:"paper_title"`
	JournalName           *string    `json:"journal_name"`
	DOI                   *string    `json:"doi"`
	Quartile              *string    `json:"quartile"`
	ImpactFactor          *float64   `json:"impact_factor"`
	Reward                AmountPair `json:"reward"`
	RevisionFee           AmountPair `json:"revision_fee"`
	PublicationFee        AmountPair `json:"publication_fee"`
	ExternalFundingAmount *float64   `json:"external_funding_amount"`
	TotalRequested        *float64   `json:"total_requested"`
	TotalApproved         *float64   `json:"total_approved"`
}

// SubmissionView is the canonical view model presentation code consumes.
type SubmissionView struct {
	SubmissionID            *int             `json:"submission_id"`
	SubmissionNumber        *string          `json:"submission_number"`
	SubmissionType          SubmissionType   `json:"submission_type"`
	Title                   string           `json:"title"`
	SubcategoryID           *int             `json:"subcategory_id"`
	SubcategoryName         string           `json:"subcategory_name"`
	RequestedAmount         *float64         `json:"requested_amount"`
	RequestedAmountText     string           `json:"requested_amount_text"`
	ApprovedAmount          *float64         `json:"approved_amount"`
	ApprovedAmountText      string           `json:"approved_amount_text"`
	ShowApprovedAmount      bool             `json:"show_approved_amount"`
	Status                  StatusView       `json:"status"`
	ContactPhone            *string          `json:"contact_phone"`
	Bank                    BankInfo         `json:"bank"`
	Announcements           AnnouncementRefs `json:"announcements"`
	AnnounceReferenceNumber *string          `json:"announce_reference_number"`
	YearID                  *int             `json:"year_id"`
	SubmittedAt             *time.Time       `json:"submitted_at"`
	SubmittedAtText         string           `json:"submitted_at_text"`
	Publication             *PublicationView `json:"publication,omitempty"`
	Attachments             []Attachment     `json:"attachments"`
}
