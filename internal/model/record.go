package model

import "time"

type ApplicationStatus string

const (
	StatusDraft        ApplicationStatus = "DRAFT"
	StatusSent         ApplicationStatus = "SENT"
	StatusInterviewing ApplicationStatus = "INTERVIEWING"
	StatusOffer        ApplicationStatus = "OFFER"
	StatusRejected     ApplicationStatus = "REJECTED"
	StatusWithdrawn    ApplicationStatus = "WITHDRAWN"
	StatusGhosted      ApplicationStatus = "GHOSTED"
)

type EmailType string

const (
	EmailCold              EmailType = "COLD"
	EmailReferral          EmailType = "REFERRAL"
	EmailFollowUp          EmailType = "FOLLOW_UP"
	EmailRecruiter         EmailType = "RECRUITER"
	EmailDirectApplication EmailType = "DIRECT_APPLICATION"
)

// Attachment is an embedded binary-as-text blob owned exclusively by its
// record and deleted with it.
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"` // MIME type
	Size       int64     `json:"size"` // bytes
	Data       string    `json:"data"` // base64 data URI
	UploadedAt time.Time `json:"uploadedAt"`
}

// TrackingRecord is one tracked job-application/outreach event, owned by
// exactly one user. ContactID is a non-owning reference: deleting the
// contact does not cascade here.
type TrackingRecord struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	ContactID  string `json:"contactId,omitempty"`
	ReminderID string `json:"reminderId,omitempty"`

	DateSent         string    `json:"dateSent"` // YYYY-MM-DD
	Name             string    `json:"name"`
	EmailAddress     string    `json:"emailAddress"`
	Company          string    `json:"company"`
	RoleTitle        string    `json:"roleTitle"`
	LinkedInOrSource string    `json:"linkedInOrSource,omitempty"`
	EmailType        EmailType `json:"emailType"`

	Location          string `json:"location,omitempty"`
	JobID             string `json:"jobId,omitempty"`
	ApplicationSource string `json:"applicationSource,omitempty"`
	ResumeVersion     string `json:"resumeVersion,omitempty"`
	CoverLetterUsed   bool   `json:"coverLetterUsed,omitempty"`

	OutreachChannel      string `json:"outreachChannel,omitempty"`
	SubjectLineUsed      string `json:"subjectLineUsed"`
	PersonalizationNotes string `json:"personalizationNotes,omitempty"`
	ValuePitchSummary    string `json:"valuePitchSummary"`

	ReferralRelationship string `json:"referralRelationship,omitempty"`
	RecruiterType        string `json:"recruiterType,omitempty"`
	ScreeningDate        string `json:"screeningDate,omitempty"`

	ReplyReceived   bool              `json:"replyReceived"`
	ReplyDate       string            `json:"replyDate,omitempty"`
	ResponseSummary string            `json:"responseSummary,omitempty"`
	Status          ApplicationStatus `json:"status"`

	NextFollowUpDate    string `json:"nextFollowUpDate,omitempty"`
	FollowUpSent        bool   `json:"followUpSent"`
	ResultAfterFollowUp string `json:"resultAfterFollowUp,omitempty"`

	Notes       string       `json:"notes,omitempty"`
	Attachments []Attachment `json:"attachments"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordPatch is the explicit partial-update shape for TrackingRecord.
// A nil field means unchanged; a set pointer overwrites, including to the
// zero value. ID, UserID, CreatedAt and UpdatedAt are never patchable.
type RecordPatch struct {
	ID string `json:"id,omitempty"`

	ContactID  *string `json:"contactId,omitempty"`
	ReminderID *string `json:"reminderId,omitempty"`

	DateSent         *string    `json:"dateSent,omitempty"`
	Name             *string    `json:"name,omitempty"`
	EmailAddress     *string    `json:"emailAddress,omitempty"`
	Company          *string    `json:"company,omitempty"`
	RoleTitle        *string    `json:"roleTitle,omitempty"`
	LinkedInOrSource *string    `json:"linkedInOrSource,omitempty"`
	EmailType        *EmailType `json:"emailType,omitempty"`

	Location          *string `json:"location,omitempty"`
	JobID             *string `json:"jobId,omitempty"`
	ApplicationSource *string `json:"applicationSource,omitempty"`
	ResumeVersion     *string `json:"resumeVersion,omitempty"`
	CoverLetterUsed   *bool   `json:"coverLetterUsed,omitempty"`

	OutreachChannel      *string `json:"outreachChannel,omitempty"`
	SubjectLineUsed      *string `json:"subjectLineUsed,omitempty"`
	PersonalizationNotes *string `json:"personalizationNotes,omitempty"`
	ValuePitchSummary    *string `json:"valuePitchSummary,omitempty"`

	ReferralRelationship *string `json:"referralRelationship,omitempty"`
	RecruiterType        *string `json:"recruiterType,omitempty"`
	ScreeningDate        *string `json:"screeningDate,omitempty"`

	ReplyReceived   *bool              `json:"replyReceived,omitempty"`
	ReplyDate       *string            `json:"replyDate,omitempty"`
	ResponseSummary *string            `json:"responseSummary,omitempty"`
	Status          *ApplicationStatus `json:"status,omitempty"`

	NextFollowUpDate    *string `json:"nextFollowUpDate,omitempty"`
	FollowUpSent        *bool   `json:"followUpSent,omitempty"`
	ResultAfterFollowUp *string `json:"resultAfterFollowUp,omitempty"`

	Notes *string `json:"notes,omitempty"`

	// Omitted attachments always preserve the stored list; an update on an
	// unrelated field must never implicitly clear uploads.
	Attachments *[]Attachment `json:"attachments,omitempty"`
}

// Apply merges the patch onto r.
func (p RecordPatch) Apply(r *TrackingRecord) {
	setStr(&r.ContactID, p.ContactID)
	setStr(&r.ReminderID, p.ReminderID)
	setStr(&r.DateSent, p.DateSent)
	setStr(&r.Name, p.Name)
	setStr(&r.EmailAddress, p.EmailAddress)
	setStr(&r.Company, p.Company)
	setStr(&r.RoleTitle, p.RoleTitle)
	setStr(&r.LinkedInOrSource, p.LinkedInOrSource)
	if p.EmailType != nil {
		r.EmailType = *p.EmailType
	}
	setStr(&r.Location, p.Location)
	setStr(&r.JobID, p.JobID)
	setStr(&r.ApplicationSource, p.ApplicationSource)
	setStr(&r.ResumeVersion, p.ResumeVersion)
	setBool(&r.CoverLetterUsed, p.CoverLetterUsed)
	setStr(&r.OutreachChannel, p.OutreachChannel)
	setStr(&r.SubjectLineUsed, p.SubjectLineUsed)
	setStr(&r.PersonalizationNotes, p.PersonalizationNotes)
	setStr(&r.ValuePitchSummary, p.ValuePitchSummary)
	setStr(&r.ReferralRelationship, p.ReferralRelationship)
	setStr(&r.RecruiterType, p.RecruiterType)
	setStr(&r.ScreeningDate, p.ScreeningDate)
	setBool(&r.ReplyReceived, p.ReplyReceived)
	setStr(&r.ReplyDate, p.ReplyDate)
	setStr(&r.ResponseSummary, p.ResponseSummary)
	if p.Status != nil {
		r.Status = *p.Status
	}
	setStr(&r.NextFollowUpDate, p.NextFollowUpDate)
	setBool(&r.FollowUpSent, p.FollowUpSent)
	setStr(&r.ResultAfterFollowUp, p.ResultAfterFollowUp)
	setStr(&r.Notes, p.Notes)
	if p.Attachments != nil {
		r.Attachments = *p.Attachments
	}
	if r.Attachments == nil {
		r.Attachments = []Attachment{}
	}
}

func setStr(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
