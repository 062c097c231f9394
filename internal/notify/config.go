package notify

// Config holds SMTP transport configuration for the facility's local mail
// relay — there is no API key here, just a host, since the facility's mail
// goes out over plain local SMTP rather than a hosted provider. Populated
// by internal/config from the smtp.* section of the control plane's
// configuration file/environment.
type Config struct {
	Host       string   `koanf:"host"`
	FromEmail  string   `koanf:"from_email"`
	FromName   string   `koanf:"from_name"`
	Sysadmins  []string `koanf:"sysadmins"`
	FooterText string   `koanf:"footer"`
}

// DefaultConfig returns the fallback values used when the configuration
// file and environment leave a field unset.
func DefaultConfig() Config {
	return Config{
		Host:       "localhost:25",
		FromEmail:  "sysadmins@srcf.net",
		FromName:   "SRCF Sysadmins",
		FooterText: "This is an automated message from the Student-Run Computing Facility.",
	}
}
