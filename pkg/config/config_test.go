package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lokallens/lokallens/pkg/config"
	"github.com/lokallens/lokallens/pkg/llm"
)

var _ = Describe("Configer config", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	writeConfig := func(data string) {
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
	}

	Describe("LoadConfig", func() {
		It("returns default config when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("loads all config fields", func() {
			writeConfig(`version = 0

[server]
listen = ":9090"
allowed_origins = ["https://lokallens.id"]
rate_limit = 30

[provider]
type = "openai"
model = "gpt-4o-mini"
base_url = "http://localhost:8000/v1"
timeout = "15s"

[api]
listen = ":9091"

[client]
proxy_target = "http://myhost:9090"

[transcripts]
enabled = true
driver = "sqlite"
dsn = "/tmp/lokallens.sqlite"
workers = 5
queue_size = 64

[events]
publisher = "kafka"
brokers = ["kafka-1:9092", "kafka-2:9092"]
topic = "chat.transcripts"

[mcp]
enabled = true
path = "/tools/mcp"

[log]
debug = true
json = true
file = "/var/log/lokallens.log"
`)

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server).To(Equal(config.ServerConfig{
				Listen:         ":9090",
				AllowedOrigins: []string{"https://lokallens.id"},
				RateLimit:      30,
			}))
			Expect(cfg.Provider).To(Equal(config.ProviderConfig{
				Type:    "openai",
				Model:   "gpt-4o-mini",
				BaseURL: "http://localhost:8000/v1",
				Timeout: "15s",
			}))
			Expect(cfg.API.Listen).To(Equal(":9091"))
			Expect(cfg.Client.ProxyTarget).To(Equal("http://myhost:9090"))
			Expect(cfg.Transcripts).To(Equal(config.TranscriptsConfig{
				Enabled:   true,
				Driver:    "sqlite",
				DSN:       "/tmp/lokallens.sqlite",
				Workers:   5,
				QueueSize: 64,
			}))
			Expect(cfg.Events.Brokers).To(Equal([]string{"kafka-1:9092", "kafka-2:9092"}))
			Expect(cfg.Events.Topic).To(Equal("chat.transcripts"))
			Expect(cfg.MCP.Path).To(Equal("/tools/mcp"))
			Expect(cfg.Log.File).To(Equal("/var/log/lokallens.log"))
		})

		It("never reads the credential from the file", func() {
			writeConfig(`[provider]
api_key = "leaked"
`)

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Provider.APIKey).To(BeEmpty())
		})

		It("returns error for malformed TOML", func() {
			writeConfig("not valid toml [[[")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).To(HaveOccurred())
			Expect(cfg).To(BeNil())
		})

		It("returns error for unsupported config version", func() {
			writeConfig("version = 99\n")

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("unsupported config version")))
			Expect(cfg).To(BeNil())
		})

		It("fills in defaults for unset fields in a partial config", func() {
			writeConfig(`[provider]
type = "openai"
`)

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())

			defaults := config.NewDefaultConfig()
			Expect(cfg.Provider.Type).To(Equal("openai"))
			Expect(cfg.Provider.Model).To(Equal(defaults.Provider.Model))
			Expect(cfg.Provider.Timeout).To(Equal(defaults.Provider.Timeout))
			Expect(cfg.Server.Listen).To(Equal(defaults.Server.Listen))
			Expect(cfg.Transcripts.Driver).To(Equal(defaults.Transcripts.Driver))
			Expect(cfg.Transcripts.Workers).To(Equal(defaults.Transcripts.Workers))
			Expect(cfg.Events.Topic).To(Equal(defaults.Events.Topic))
			Expect(cfg.MCP.Path).To(Equal(defaults.MCP.Path))
		})
	})

	Describe("SaveConfig", func() {
		It("round-trips a fully populated config", func() {
			cfg := &config.Config{
				Version: config.CurrentV,
				Server: config.ServerConfig{
					Listen:         ":9090",
					AllowedOrigins: []string{"https://lokallens.id", "http://localhost:5173"},
					RateLimit:      10,
				},
				Provider: config.ProviderConfig{
					Type:    "gemini",
					Model:   "gemini-2.5-flash",
					BaseURL: "http://localhost:8080",
					Timeout: "30s",
				},
				API:    config.APIConfig{Listen: ":9091"},
				Client: config.ClientConfig{ProxyTarget: "http://myhost:9090"},
				Transcripts: config.TranscriptsConfig{
					Enabled:   true,
					Driver:    "postgres",
					DSN:       "postgres://localhost/lokallens",
					Workers:   2,
					QueueSize: 32,
				},
				Events: config.EventsConfig{
					Publisher: "kafka",
					Brokers:   []string{"localhost:9092"},
					Topic:     "lokallens.transcripts",
				},
				MCP: config.MCPConfig{Enabled: true, Path: "/mcp"},
				Log: config.LogConfig{Debug: true, JSON: true, File: "/tmp/lokallens.log"},
			}

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(cfg)).To(Succeed())

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("does not write the credential to disk", func() {
			cfg := config.NewDefaultConfig()
			cfg.Provider.APIKey = "super-secret"

			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(cfg)).To(Succeed())

			data, err := os.ReadFile(c.GetTarget())
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).NotTo(ContainSubstring("super-secret"))
			Expect(string(data)).NotTo(ContainSubstring("api_key"))
		})

		It("writes the file owner-readable only", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(config.NewDefaultConfig())).To(Succeed())

			info, err := os.Stat(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("returns error for nil config", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.SaveConfig(nil)).To(HaveOccurred())
		})
	})

	Describe("SetConfigValue", func() {
		var c *config.Configer

		BeforeEach(func() {
			var err error
			c, err = config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("sets a string config key", func() {
			Expect(c.SetConfigValue("provider.model", "gemini-2.5-pro")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Provider.Model).To(Equal("gemini-2.5-pro"))
		})

		It("sets a list config key from a comma separated value", func() {
			Expect(c.SetConfigValue("server.allowed_origins", "https://a.id, https://b.id,")).To(Succeed())

			value, err := c.GetConfigValue("server.allowed_origins")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("https://a.id,https://b.id"))
		})

		It("sets bool and uint keys", func() {
			Expect(c.SetConfigValue("transcripts.enabled", "true")).To(Succeed())
			Expect(c.SetConfigValue("transcripts.workers", "8")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Transcripts.Enabled).To(BeTrue())
			Expect(cfg.Transcripts.Workers).To(Equal(uint(8)))
		})

		It("preserves existing values when setting a new key", func() {
			Expect(c.SetConfigValue("provider.type", "openai")).To(Succeed())
			Expect(c.SetConfigValue("server.listen", ":4000")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Provider.Type).To(Equal("openai"))
			Expect(cfg.Server.Listen).To(Equal(":4000"))
		})

		DescribeTable("rejects invalid values",
			func(key, value string) {
				Expect(c.SetConfigValue(key, value)).To(MatchError(ContainSubstring(key)))
			},
			Entry("rate limit not a number", "server.rate_limit", "fast"),
			Entry("negative rate limit", "server.rate_limit", "-1"),
			Entry("bad timeout", "provider.timeout", "soon"),
			Entry("bad bool", "mcp.enabled", "maybe"),
			Entry("bad uint", "transcripts.queue_size", "-3"),
		)

		It("returns error for unknown key", func() {
			Expect(c.SetConfigValue("nonexistent.key", "value")).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("refuses to store the credential", func() {
			Expect(c.SetConfigValue("provider.api_key", "secret")).To(MatchError(ContainSubstring("unknown config key")))
		})
	})

	Describe("GetConfigValue", func() {
		It("returns default values when no config file exists", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			value, err := c.GetConfigValue("provider.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(llm.DefaultModel))

			value, err = c.GetConfigValue("client.proxy_target")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("http://localhost:3000"))
		})

		It("returns empty string for key with no default", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			value, err := c.GetConfigValue("transcripts.dsn")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(BeEmpty())
		})

		It("returns error for unknown key", func() {
			c, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			_, err = c.GetConfigValue("nonexistent.key")
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("ValidConfigKeys", func() {
	It("returns every key in layout order", func() {
		keys := config.ValidConfigKeys()
		Expect(keys[0]).To(Equal("server.listen"))
		Expect(keys).To(ContainElements(
			"provider.type",
			"provider.timeout",
			"transcripts.driver",
			"events.brokers",
			"mcp.enabled",
			"log.file",
		))
		Expect(keys).NotTo(ContainElement("provider.api_key"))
	})

	It("returns keys in stable order", func() {
		Expect(config.ValidConfigKeys()).To(Equal(config.ValidConfigKeys()))
	})
})

var _ = Describe("IsValidConfigKey", func() {
	It("recognizes dotted keys only", func() {
		Expect(config.IsValidConfigKey("provider.model")).To(BeTrue())
		Expect(config.IsValidConfigKey("model")).To(BeFalse())
		Expect(config.IsValidConfigKey("")).To(BeFalse())
	})
})

var _ = Describe("PresetConfig", func() {
	It("returns the gemini preset as the defaults", func() {
		cfg, err := config.PresetConfig("gemini")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(config.NewDefaultConfig()))
	})

	It("returns the openai preset", func() {
		cfg, err := config.PresetConfig("OpenAI")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Provider.Type).To(Equal("openai"))
		Expect(cfg.Provider.BaseURL).To(Equal("https://api.openai.com/v1"))
		Expect(cfg.Server.Listen).To(Equal(":3000"))
	})

	It("returns error for unknown preset", func() {
		_, err := config.PresetConfig("anthropic")
		Expect(err).To(MatchError(ContainSubstring("gemini, openai")))
	})
})

var _ = Describe("Config.UpstreamTimeout", func() {
	It("parses a duration", func() {
		cfg := &config.Config{Provider: config.ProviderConfig{Timeout: "1m30s"}}
		d, err := cfg.UpstreamTimeout()
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(90 * time.Second))
	})

	It("treats empty as no timeout", func() {
		d, err := (&config.Config{}).UpstreamTimeout()
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeZero())
	})

	It("defaults to no timeout", func() {
		d, err := config.NewDefaultConfig().UpstreamTimeout()
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeZero())
	})

	It("rejects negative durations", func() {
		cfg := &config.Config{Provider: config.ProviderConfig{Timeout: "-5s"}}
		_, err := cfg.UpstreamTimeout()
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("SplitList", func() {
	It("trims and drops empty entries", func() {
		Expect(config.SplitList(" a , ,b,")).To(Equal([]string{"a", "b"}))
		Expect(config.SplitList("")).To(BeEmpty())
	})
})
