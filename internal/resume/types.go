package resume

import (
	"fmt"
	"strings"
)

// DocType 标识生成的文档种类。
type DocType string

const (
	DocTypeResume      DocType = "resume"
	DocTypeCoverLetter DocType = "cover-letter"
)

// ParseDocType accepts the canonical names only.
func ParseDocType(s string) (DocType, error) {
	switch DocType(strings.TrimSpace(s)) {
	case DocTypeResume:
		return DocTypeResume, nil
	case DocTypeCoverLetter:
		return DocTypeCoverLetter, nil
	default:
		return "", fmt.Errorf("unknown document type %q", s)
	}
}

// FilenamePrefix is the export file name prefix for the document type.
func (d DocType) FilenamePrefix() string {
	switch d {
	case DocTypeCoverLetter:
		return "cover_letter"
	default:
		return "resume"
	}
}

// Label is the human readable name used in response messages.
func (d DocType) Label() string {
	switch d {
	case DocTypeCoverLetter:
		return "Cover letter"
	default:
		return "Resume"
	}
}

// PersonalInfo holds the candidate's form fields. Values are opaque text.
type PersonalInfo struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	LinkedIn   string `json:"linkedin,omitempty"`
	Summary    string `json:"summary,omitempty"`
	Education  string `json:"education,omitempty"`
	Skills     string `json:"skills,omitempty"`
	Experience string `json:"experience,omitempty"`
	Projects   string `json:"projects,omitempty"`
}

// CompanyInfo describes the employer addressed by a cover letter.
type CompanyInfo struct {
	CompanyName    string `json:"companyName"`
	HiringManager  string `json:"hiringManager,omitempty"`
	CompanyDetails string `json:"companyDetails,omitempty"`
}

// GenerationRequest is the body of both generation endpoints.
type GenerationRequest struct {
	PersonalInfo       PersonalInfo `json:"personalInfo"`
	JobRequirements    string       `json:"jobRequirements"`
	Template           string       `json:"template"`
	CompanyInfo        *CompanyInfo `json:"companyInfo,omitempty"`
	RelevantExperience string       `json:"relevantExperience,omitempty"`
}

// Fields flattens the request into the field name → value mapping used by validation.
func (r GenerationRequest) Fields() map[string]string {
	fields := map[string]string{
		"fullName":           r.PersonalInfo.FullName,
		"email":              r.PersonalInfo.Email,
		"phone":              r.PersonalInfo.Phone,
		"location":           r.PersonalInfo.Location,
		"linkedin":           r.PersonalInfo.LinkedIn,
		"summary":            r.PersonalInfo.Summary,
		"education":          r.PersonalInfo.Education,
		"skills":             r.PersonalInfo.Skills,
		"experience":         r.PersonalInfo.Experience,
		"projects":           r.PersonalInfo.Projects,
		"jobRequirements":    r.JobRequirements,
		"relevantExperience": r.RelevantExperience,
	}
	if r.CompanyInfo != nil {
		fields["companyName"] = r.CompanyInfo.CompanyName
		fields["hiringManager"] = r.CompanyInfo.HiringManager
		fields["companyDetails"] = r.CompanyInfo.CompanyDetails
	}
	return fields
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (r GenerationRequest) Trimmed() GenerationRequest {
	out := r
	p := &out.PersonalInfo
	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Location = strings.TrimSpace(p.Location)
	p.LinkedIn = strings.TrimSpace(p.LinkedIn)
	p.Summary = strings.TrimSpace(p.Summary)
	p.Education = strings.TrimSpace(p.Education)
	p.Skills = strings.TrimSpace(p.Skills)
	p.Experience = strings.TrimSpace(p.Experience)
	p.Projects = strings.TrimSpace(p.Projects)
	out.JobRequirements = strings.TrimSpace(r.JobRequirements)
	out.Template = strings.TrimSpace(r.Template)
	out.RelevantExperience = strings.TrimSpace(r.RelevantExperience)
	if r.CompanyInfo != nil {
		c := *r.CompanyInfo
		c.CompanyName = strings.TrimSpace(c.CompanyName)
		c.HiringManager = strings.TrimSpace(c.HiringManager)
		c.CompanyDetails = strings.TrimSpace(c.CompanyDetails)
		out.CompanyInfo = &c
	}
	return out
}
