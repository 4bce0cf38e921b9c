package llm

// ProxyResponse mirrors the Gemini generateContent envelope so the website can
// read candidates[0].content.parts[0].text regardless of the backing provider.
type ProxyResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one generated response option.
type Candidate struct {
	Content CandidateContent `json:"content"`
}

// CandidateContent holds the ordered parts of a candidate.
type CandidateContent struct {
	Parts []Part `json:"parts"`
}

// Part is a single text fragment.
type Part struct {
	Text string `json:"text"`
}

// NewTextResponse wraps text into a response carrying exactly one candidate
// with exactly one part.
func NewTextResponse(text string) *ProxyResponse {
	return &ProxyResponse{
		Candidates: []Candidate{
			{Content: CandidateContent{Parts: []Part{{Text: text}}}},
		},
	}
}

// Text returns the first part of the first candidate, or "" if there is none.
func (r *ProxyResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}

// ErrorResponse is the body returned on any failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
