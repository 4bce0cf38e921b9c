package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/lokallens/lokallens/pkg/config"
)

// clearCredentialEnv unsets the credential variables for the duration of a spec.
func clearCredentialEnv() {
	for _, name := range []string{config.APIKeyEnv, config.GeminiAPIKeyEnv} {
		if prev, ok := os.LookupEnv(name); ok {
			DeferCleanup(os.Setenv, name, prev)
		}
		os.Unsetenv(name)
	}
}

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		clearCredentialEnv()
	})

	It("returns viper with defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		defaults := config.NewDefaultConfig()
		Expect(v.GetString("server.listen")).To(Equal(defaults.Server.Listen))
		Expect(v.GetString("provider.type")).To(Equal(defaults.Provider.Type))
		Expect(v.GetString("provider.model")).To(Equal(defaults.Provider.Model))
		Expect(v.GetString("client.proxy_target")).To(Equal(defaults.Client.ProxyTarget))
	})

	It("reads config file values over defaults", func() {
		data := `[provider]
type = "openai"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("provider.type")).To(Equal("openai"))
		Expect(v.GetString("server.listen")).To(Equal(config.NewDefaultConfig().Server.Listen))
	})

	It("env vars take precedence over config file values", func() {
		data := `[provider]
model = "from-file"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		os.Setenv("LOKALLENS_PROVIDER_MODEL", "from-env")
		defer os.Unsetenv("LOKALLENS_PROVIDER_MODEL")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("provider.model")).To(Equal("from-env"))
	})
})

var _ = Describe("FromViper", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		clearCredentialEnv()
	})

	It("resolves no upstream timeout from defaults", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Provider.Timeout).To(BeEmpty())

		d, err := cfg.UpstreamTimeout()
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeZero())
	})

	It("leaves the credential empty when no env var is set", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Provider.APIKey).To(BeEmpty())
		Expect(cfg.Server.Listen).To(Equal(":3000"))
	})

	It("reads the credential from GEMINI_API_KEY", func() {
		os.Setenv(config.GeminiAPIKeyEnv, "gemini-key")
		defer os.Unsetenv(config.GeminiAPIKeyEnv)

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Provider.APIKey).To(Equal("gemini-key"))
	})

	It("prefers LOKALLENS_PROVIDER_API_KEY over GEMINI_API_KEY", func() {
		os.Setenv(config.GeminiAPIKeyEnv, "gemini-key")
		defer os.Unsetenv(config.GeminiAPIKeyEnv)
		os.Setenv(config.APIKeyEnv, "lokallens-key")
		defer os.Unsetenv(config.APIKeyEnv)

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Provider.APIKey).To(Equal("lokallens-key"))
	})

	It("splits comma separated lists from the environment", func() {
		os.Setenv("LOKALLENS_EVENTS_BROKERS", "kafka-1:9092,kafka-2:9092")
		defer os.Unsetenv("LOKALLENS_EVENTS_BROKERS")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Events.Brokers).To(Equal([]string{"kafka-1:9092", "kafka-2:9092"}))
	})

	It("rejects an invalid timeout", func() {
		os.Setenv("LOKALLENS_PROVIDER_TIMEOUT", "eventually")
		defer os.Unsetenv("LOKALLENS_PROVIDER_TIMEOUT")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		_, err = config.FromViper(v)
		Expect(err).To(MatchError(ContainSubstring("provider.timeout")))
	})
})

var _ = Describe("BindFlags", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("binds cobra flags to viper keys via registry", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)

		Expect(cmd.Flags().Set("listen", ":7777")).To(Succeed())
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen})

		Expect(v.GetString("server.listen")).To(Equal(":7777"))
	})

	It("falls through to config when flag not set", func() {
		data := `[server]
listen = ":5555"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		var listen string
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen})

		Expect(v.GetString("server.listen")).To(Equal(":5555"))
	})

	It("skips bindings for nonexistent registry keys", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cmd := &cobra.Command{Use: "test"}
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{"nonexistent"})

		Expect(v.GetString("server.listen")).To(Equal(config.NewDefaultConfig().Server.Listen))
	})

	It("takes names, shorthands and defaults from the registry", func() {
		cmd := &cobra.Command{Use: "test"}
		var target string
		var workers uint
		var rateLimit int
		var mcp bool
		var brokers []string
		config.AddStringFlag(cmd, config.Flags, config.FlagProxyTarget, &target)
		config.AddUintFlag(cmd, config.Flags, config.FlagWorkers, &workers)
		config.AddIntFlag(cmd, config.Flags, config.FlagRateLimit, &rateLimit)
		config.AddBoolFlag(cmd, config.Flags, config.FlagMCP, &mcp)
		config.AddStringSliceFlag(cmd, config.Flags, config.FlagEventsBrokers, &brokers)

		f := cmd.Flags().Lookup("proxy-target")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("t"))
		Expect(f.DefValue).To(Equal("http://localhost:3000"))

		Expect(cmd.Flags().Lookup("workers").DefValue).To(Equal("3"))
		Expect(cmd.Flags().Lookup("rate-limit").DefValue).To(Equal("0"))
		Expect(cmd.Flags().Lookup("mcp").DefValue).To(Equal("false"))
		Expect(cmd.Flags().Lookup("events-brokers")).NotTo(BeNil())
	})
})
