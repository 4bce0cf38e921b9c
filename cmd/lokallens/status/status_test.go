package statuscmder_test

import (
	"bytes"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	statuscmder "github.com/lokallens/lokallens/cmd/lokallens/status"
	"github.com/lokallens/lokallens/pkg/dotdir"
	"github.com/lokallens/lokallens/pkg/llm"
)

var _ = Describe("NewStatusCmd", func() {
	It("creates a command with the correct use string", func() {
		Expect(statuscmder.NewStatusCmd().Use).To(Equal("status"))
	})

	It("rejects any arguments", func() {
		cmd := statuscmder.NewStatusCmd()
		Expect(cmd.Args(cmd, []string{"extra"})).To(HaveOccurred())
	})
})

var _ = Describe("Status command execution", func() {
	var tmpDir string

	run := func() string {
		var out bytes.Buffer
		cmd := statuscmder.NewStatusCmd()
		cmd.Flags().String("config-dir", tmpDir, "")
		cmd.SetOut(&out)
		cmd.SetArgs([]string{})
		Expect(cmd.Execute()).To(Succeed())
		return out.String()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("reports when no session is saved", func() {
		Expect(run()).To(ContainSubstring("No saved session"))
	})

	It("lists the saved messages with previews", func() {
		long := strings.Repeat("wayang ", 30)
		Expect(dotdir.NewManager().SaveSession(&dotdir.ChatSession{
			Messages: []llm.ConversationTurn{
				llm.NewUserTurn("Apa itu wayang?"),
				llm.NewAssistantTurn(long),
			},
			UpdatedAt: time.Now(),
		}, tmpDir)).To(Succeed())

		out := run()
		Expect(out).To(ContainSubstring("Apa itu wayang?"))
		Expect(out).To(ContainSubstring("[assistant]"))
		Expect(out).NotTo(ContainSubstring(long))
	})
})
