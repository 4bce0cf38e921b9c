package gemini

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"google.golang.org/genai"

	"github.com/lokallens/lokallens/pkg/llm"
)

type stubModels struct {
	resp *genai.GenerateContentResponse
	err  error

	calls       int
	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
	gotDeadline bool
}

func (s *stubModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.calls++
	s.gotModel = model
	s.gotContents = contents
	s.gotConfig = cfg
	_, s.gotDeadline = ctx.Deadline()
	return s.resp, s.err
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}},
		},
	}
}

var _ = Describe("Gemini Provider", func() {
	var (
		stub *stubModels
		p    *Provider
		ctx  context.Context
	)

	BeforeEach(func() {
		stub = &stubModels{resp: textResponse(&genai.Part{Text: "Batik adalah kain bergambar."})}
		p = &Provider{models: stub}
		ctx = context.Background()
	})

	Describe("New", func() {
		var origNewClient func(context.Context, *genai.ClientConfig) (*genai.Client, error)

		BeforeEach(func() {
			origNewClient = newClient
		})

		AfterEach(func() {
			newClient = origNewClient
		})

		It("requires an API key", func() {
			_, err := New(Config{APIKey: "  "})
			Expect(err).To(MatchError(ContainSubstring("api key is required")))
		})

		It("forwards the key and base URL to the SDK", func() {
			var gotCfg *genai.ClientConfig
			newClient = func(_ context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
				gotCfg = cfg
				return &genai.Client{}, nil
			}

			created, err := New(Config{APIKey: "test-key", BaseURL: "http://localhost:9999", Timeout: time.Second})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Name()).To(Equal("gemini"))
			Expect(created.timeout).To(Equal(time.Second))
			Expect(gotCfg.APIKey).To(Equal("test-key"))
			Expect(gotCfg.Backend).To(Equal(genai.BackendGeminiAPI))
			Expect(gotCfg.HTTPOptions.BaseURL).To(Equal("http://localhost:9999"))
		})

		It("wraps client construction failures", func() {
			newClient = func(context.Context, *genai.ClientConfig) (*genai.Client, error) {
				return nil, errors.New("no network")
			}

			_, err := New(Config{APIKey: "test-key"})
			Expect(err).To(MatchError(ContainSubstring("create gemini client: no network")))
		})
	})

	Describe("Generate", func() {
		It("sends the system instruction, turns and model", func() {
			turns := []llm.ProviderTurn{
				{Role: llm.ProviderRoleUser, Text: "Apa itu batik?"},
				{Role: llm.ProviderRoleModel, Text: "Kain tradisional."},
			}

			text, err := p.Generate(ctx, "persona", turns, "gemini-2.0-flash")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Batik adalah kain bergambar."))

			Expect(stub.calls).To(Equal(1))
			Expect(stub.gotModel).To(Equal("gemini-2.0-flash"))
			Expect(stub.gotConfig.SystemInstruction.Parts).To(HaveLen(1))
			Expect(stub.gotConfig.SystemInstruction.Parts[0].Text).To(Equal("persona"))

			Expect(stub.gotContents).To(HaveLen(2))
			Expect(stub.gotContents[0].Role).To(BeEquivalentTo(genai.RoleUser))
			Expect(stub.gotContents[0].Parts[0].Text).To(Equal("Apa itu batik?"))
			Expect(stub.gotContents[1].Role).To(BeEquivalentTo(genai.RoleModel))
		})

		It("sends no contents for an empty conversation", func() {
			_, err := p.Generate(ctx, "persona", nil, "gemini-2.0-flash")
			Expect(err).NotTo(HaveOccurred())
			Expect(stub.gotContents).To(BeEmpty())
			Expect(stub.gotConfig.SystemInstruction).NotTo(BeNil())
		})

		It("returns only the first text fragment", func() {
			stub.resp = textResponse(
				&genai.Part{Text: "thinking", Thought: true},
				&genai.Part{Text: "pertama"},
				&genai.Part{Text: "kedua"},
			)

			text, err := p.Generate(ctx, "persona", nil, "m")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("pertama"))
		})

		It("fails when there are no candidates", func() {
			stub.resp = &genai.GenerateContentResponse{}

			_, err := p.Generate(ctx, "persona", nil, "m")
			Expect(err).To(MatchError(ErrEmptyResponse))
		})

		It("fails when the candidate has no parts", func() {
			stub.resp = textResponse()

			_, err := p.Generate(ctx, "persona", nil, "m")
			Expect(err).To(MatchError(ErrEmptyResponse))
		})

		It("passes an empty first fragment through", func() {
			stub.resp = textResponse(
				&genai.Part{Text: ""},
				&genai.Part{Text: "kedua"},
			)

			text, err := p.Generate(ctx, "persona", nil, "m")
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(BeEmpty())
		})

		It("propagates SDK errors", func() {
			stub.err = errors.New("quota exceeded")

			_, err := p.Generate(ctx, "persona", nil, "m")
			Expect(err).To(MatchError("quota exceeded"))
		})

		It("applies the configured timeout", func() {
			p.timeout = time.Minute

			_, err := p.Generate(ctx, "persona", nil, "m")
			Expect(err).NotTo(HaveOccurred())
			Expect(stub.gotDeadline).To(BeTrue())
		})

		It("leaves the context alone without a timeout", func() {
			_, err := p.Generate(ctx, "persona", nil, "m")
			Expect(err).NotTo(HaveOccurred())
			Expect(stub.gotDeadline).To(BeFalse())
		})
	})
})
