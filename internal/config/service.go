package config

type ServiceConfig struct {
	Name                string        `yaml:"name"`
	Environment         string        `yaml:"environment"`
	Version             string        `yaml:"version"`
	ClientURL           string        `yaml:"client_url"`
	StripeSecretKey     string        `yaml:"stripe_secret_key"`
	StripeWebhookSecret string        `yaml:"stripe_webhook_secret"`
	Backend             BackendConfig `yaml:"backend"`
}

// BackendConfig points at the hosted backend (profiles, auth) REST API.
type BackendConfig struct {
	ProjectURL string `yaml:"project_url"`
	APIKey     string `yaml:"api_key"`
}
