package resume

import (
	"encoding/json"
	"fmt"
	"strings"
)

const defaultTemplateStyle = "professional"

// BuildPrompt renders the generation prompt for docType. The output depends only on its inputs.
func BuildPrompt(docType DocType, req GenerationRequest) (string, error) {
	req = req.Trimmed()

	personal, err := json.MarshalIndent(req.PersonalInfo, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal personal info: %w", err)
	}

	style := req.Template
	if style == "" {
		style = defaultTemplateStyle
	}

	switch docType {
	case DocTypeResume:
		return buildResumePrompt(string(personal), req.JobRequirements, style), nil
	case DocTypeCoverLetter:
		company := CompanyInfo{}
		if req.CompanyInfo != nil {
			company = *req.CompanyInfo
		}
		companyJSON, err := json.MarshalIndent(company, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal company info: %w", err)
		}
		return buildCoverLetterPrompt(string(personal), req.JobRequirements, string(companyJSON), req.RelevantExperience, style), nil
	default:
		return "", fmt.Errorf("unknown document type %q", docType)
	}
}

func buildResumePrompt(personal, jobRequirements, style string) string {
	var b strings.Builder
	b.WriteString("Create a professional resume based on the following information:\n\n")
	fmt.Fprintf(&b, "Personal Information:\n%s\n\n", personal)
	fmt.Fprintf(&b, "Job Requirements:\n%s\n\n", jobRequirements)
	fmt.Fprintf(&b, "Template Style: %s\n\n", style)
	b.WriteString(`Generate a well-structured, professional resume that:
1. Highlights relevant skills and experience
2. Uses action verbs and quantifiable achievements
3. Is tailored to the job requirements
4. Follows modern resume best practices
5. Is concise and impactful

Format the response as clean HTML that can be styled with CSS.
`)
	return b.String()
}

func buildCoverLetterPrompt(personal, jobRequirements, company, relevantExperience, style string) string {
	var b strings.Builder
	b.WriteString("Create a compelling cover letter based on the following information:\n\n")
	fmt.Fprintf(&b, "Personal Information:\n%s\n\n", personal)
	fmt.Fprintf(&b, "Job Requirements:\n%s\n\n", jobRequirements)
	fmt.Fprintf(&b, "Company Information:\n%s\n\n", company)
	fmt.Fprintf(&b, "Relevant Experience:\n%s\n\n", relevantExperience)
	fmt.Fprintf(&b, "Template Style: %s\n\n", style)
	b.WriteString(`Generate a professional cover letter that:
1. Shows enthusiasm for the position
2. Connects personal experience to job requirements
3. Demonstrates understanding of the company
4. Includes a clear call to action
5. Is personalized and authentic
6. Uses action verbs and quantifies achievements where possible

Format the response as clean HTML that can be styled with CSS.
`)
	return b.String()
}
