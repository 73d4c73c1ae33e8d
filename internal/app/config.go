package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (NANOU_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:4242" usage:"HTTP server listen address"`
	BaseURL     string `default:"https://lescrepesdenanou.onrender.com" usage:"Public base URL for payment redirect pages" flag:"base-url"`
	FrontendDir string `default:"frontend" usage:"Directory with the static frontend pages" flag:"frontend-dir"`
	Stripe      StripeConfig
	Mail        MailConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// StripeConfig holds the payment provider credentials. Neither key is checked
// at startup: a bad key fails on first use, as the site has always done.
type StripeConfig struct {
	SecretKey     string `usage:"Stripe API secret key (NANOU_STRIPE_SECRET_KEY or STRIPE_SECRET_KEY)" flag:"stripe-secret-key"`
	WebhookSecret string `usage:"Stripe webhook signing secret (NANOU_STRIPE_WEBHOOK_SECRET or STRIPE_WEBHOOK_SECRET)" flag:"stripe-webhook-secret"`
}

// MailConfig holds the SMTP account used for order notifications. Username
// and password are mandatory: the server refuses to start without them.
type MailConfig struct {
	Host      string `default:"smtp.mail.me.com" usage:"SMTP host"`
	Port      int    `default:"587" usage:"SMTP port"`
	Username  string `usage:"SMTP account (NANOU_MAIL_USERNAME or EMAIL_USER)"`
	Password  string `usage:"SMTP password (NANOU_MAIL_PASSWORD or EMAIL_PASS)"`
	AdminAddr string `default:"commandes@lescrepesdenanou.fr" usage:"Recipient of new-order alerts" flag:"admin-addr"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, applies platform defaults, and validates it.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "NANOU",
		Files:     []string{"config.yaml", "/etc/nanou/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the environment variable names the site has used
// since its first deployment (STRIPE_SECRET_KEY, EMAIL_USER, PORT, ...) onto
// the NANOU_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Stripe.SecretKey == "" {
		c.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
	}
	if c.Stripe.WebhookSecret == "" {
		c.Stripe.WebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	}
	if c.Mail.Username == "" {
		c.Mail.Username = os.Getenv("EMAIL_USER")
	}
	if c.Mail.Password == "" {
		c.Mail.Password = os.Getenv("EMAIL_PASS")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:4242" {
		c.Addr = "0.0.0.0:" + port
	}
}

// validate enforces the invariants the process cannot run without. Only the
// mail account is mandatory; payment keys fail at first use instead.
func (c *Config) validate() error {
	if c.Mail.Username == "" || c.Mail.Password == "" {
		return errors.New("mail credentials are required: set NANOU_MAIL_USERNAME/NANOU_MAIL_PASSWORD or EMAIL_USER/EMAIL_PASS")
	}
	return nil
}
