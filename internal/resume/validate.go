package resume

import (
	"fmt"
	"strings"
)

var requiredFields = map[DocType][]string{
	DocTypeResume: {
		"fullName",
		"email",
		"phone",
		"location",
		"summary",
		"education",
		"skills",
		"experience",
		"jobRequirements",
	},
	DocTypeCoverLetter: {
		"fullName",
		"email",
		"phone",
		"location",
		"companyName",
		"jobRequirements",
		"relevantExperience",
	},
}

// RequiredFields returns the required field names for docType in report order.
func RequiredFields(docType DocType) []string {
	fields := requiredFields[docType]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// MissingFields returns every required field whose trimmed value is empty.
// A nil result means the fields are valid for docType.
func MissingFields(docType DocType, fields map[string]string) ([]string, error) {
	required, ok := requiredFields[docType]
	if !ok {
		return nil, fmt.Errorf("unknown document type %q", docType)
	}
	var missing []string
	for _, name := range required {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// MissingFieldsError reports all missing fields at once.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Please fill in all required fields: " + strings.Join(e.Fields, ", ")
}

// Validate checks req against the required set of docType.
func Validate(docType DocType, req GenerationRequest) error {
	missing, err := MissingFields(docType, req.Fields())
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}
