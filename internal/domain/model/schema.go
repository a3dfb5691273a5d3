package model

// Analysis type options accepted by the input schema.
const (
	AnalysisTypeSpending = "spending_analysis"
	AnalysisTypeIncome   = "income_analysis"
	AnalysisTypeFull     = "full_report"
)

// Free-text length bounds for the document field.
const (
	HTMLContentMinLength = 10
	HTMLContentMaxLength = 500000
)

// FieldValidation describes one validation rule attached to an input field.
type FieldValidation struct {
	Validation string `json:"validation"`
	Value      string `json:"value,omitempty"`
}

// FieldData carries the presentation hints for an input field.
type FieldData struct {
	Description string   `json:"description,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Values      []string `json:"values,omitempty"`
}

// InputField is one entry of the MIP-003 input schema.
type InputField struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Data        FieldData         `json:"data"`
	Validations []FieldValidation `json:"validations,omitempty"`
}

// InputSchemaResponse is the static schema descriptor returned from input_schema.
type InputSchemaResponse struct {
	InputData []InputField `json:"input_data"`
}

// DefaultInputSchema returns the input schema advertised by this agent.
// The descriptor is pure static data and identical across calls.
func DefaultInputSchema() InputSchemaResponse {
	return InputSchemaResponse{
		InputData: []InputField{
			{
				ID:   "html_content",
				Type: "textarea",
				Name: "Transaction document",
				Data: FieldData{
					Description: "HTML export of the transaction history to analyze",
					Placeholder: "<html>...</html>",
				},
				Validations: []FieldValidation{
					{Validation: "required", Value: "true"},
					{Validation: "min", Value: "10"},
					{Validation: "max", Value: "500000"},
				},
			},
			{
				ID:   "analysis_type",
				Type: "option",
				Name: "Analysis type",
				Data: FieldData{
					Description: "Which analysis to run over the document",
					Values: []string{
						AnalysisTypeSpending,
						AnalysisTypeIncome,
						AnalysisTypeFull,
					},
				},
				Validations: []FieldValidation{
					{Validation: "required", Value: "true"},
				},
			},
		},
	}
}
