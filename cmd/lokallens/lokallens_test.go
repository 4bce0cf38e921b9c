package lokallenscmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	lokallenscmder "github.com/lokallens/lokallens/cmd/lokallens"
)

var _ = Describe("NewLokallensCmd", func() {
	It("wires every subcommand", func() {
		cmd := lokallenscmder.NewLokallensCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("serve", "chat", "config", "init", "status", "version"))
	})

	It("exposes the global flags to subcommands", func() {
		cmd := lokallenscmder.NewLokallensCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("passes --config-dir through to config commands", func() {
		tmpDir := GinkgoT().TempDir()

		var out bytes.Buffer
		cmd := lokallenscmder.NewLokallensCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--config-dir", tmpDir, "config", "list"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring(tmpDir))
	})
})
