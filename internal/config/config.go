package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	LedgerDriverSheets   = "sheets"
	LedgerDriverPostgres = "postgres"

	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"

	MailDriverGmail  = "gmail"
	MailDriverSMTP   = "smtp"
	MailDriverResend = "resend"
	MailDriverNone   = "none"
)

type AppConfig struct {
	API      *APIConfig
	Gin      *GinConfig
	Postgres *PostgresConfig
	Intake   *IntakeConfig
	Storage  *StorageConfig
	Ledger   *LedgerConfig
	Mail     *MailConfig
	Event    *EventConfig
}

type APIConfig struct {
	Environment        string
	Port               string
	BaseURL            string
	AllowedCORSDomains []string
	AllowedMethods     []string
}

type GinConfig struct {
	Mode string
}

type PostgresConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
}

type IntakeConfig struct {
	ReceiptRequired bool
	ReceiptField    string
	MaxUploadMB     int64
	MaxBodyMB       int64
	RequiredFields  []string
}

type StorageConfig struct {
	Driver        string
	Dir           string
	PublicPath    string
	PublicBaseURL string
	S3            *S3Config
}

type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Prefix        string
	PublicBaseURL string
}

type LedgerConfig struct {
	Driver        string
	SpreadsheetID string
	Range         string
	Schema        string
	Columns       []ColumnConfig
	Timezone      string
	ClientEmail   string
	PrivateKey    string
}

type ColumnConfig struct {
	Key     string
	Default string
}

type MailConfig struct {
	Driver   string
	From     string
	FromName string
	Gmail    *GmailConfig
	SMTP     *SMTPConfig
	Resend   *ResendConfig
}

type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	RefreshToken string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type ResendConfig struct {
	APIKey string
}

// EventConfig describes the festival named in client messages and emails.
type EventConfig struct {
	Name          string
	Title         string
	Host          string
	Date          string
	Time          string
	Venue         string
	ContactEmail  string
	ContactPhones []string
	CommunityLink string
}

// legacyEnv maps config keys to the environment variable names deployments
// already use.
var legacyEnv = map[string][]string{
	"api.allowed_cors_domains":   {"ALLOWED_ORIGINS"},
	"api.environment":            {"APP_ENV"},
	"api.port":                   {"PORT"},
	"event.community_link":       {"WHATSAPP_LINK"},
	"intake.receipt_required":    {"RECEIPT_REQUIRED"},
	"ledger.client_email":        {"GOOGLE_CLIENT_EMAIL"},
	"ledger.driver":              {"LEDGER_DRIVER"},
	"ledger.private_key":         {"GOOGLE_PRIVATE_KEY"},
	"ledger.schema":              {"SHEET_SCHEMA"},
	"ledger.spreadsheet_id":      {"GOOGLE_SHEET_ID"},
	"mail.driver":                {"MAIL_DRIVER"},
	"mail.from":                  {"GMAIL_SENDER", "SMTP_FROM", "MAIL_FROM"},
	"mail.gmail.client_id":       {"GMAIL_CLIENT_ID"},
	"mail.gmail.client_secret":   {"GMAIL_CLIENT_SECRET"},
	"mail.gmail.redirect_url":    {"GMAIL_REDIRECT_URI"},
	"mail.gmail.refresh_token":   {"GMAIL_REFRESH_TOKEN"},
	"mail.resend.api_key":        {"RESEND_API_KEY"},
	"mail.smtp.host":             {"SMTP_HOST"},
	"mail.smtp.password":         {"SMTP_PASS", "EMAIL_PASS"},
	"mail.smtp.port":             {"SMTP_PORT"},
	"mail.smtp.username":         {"SMTP_USER", "EMAIL_USER"},
	"postgres.url":               {"DATABASE_URL"},
	"storage.driver":             {"STORAGE_DRIVER"},
	"storage.public_base_url":    {"PUBLIC_BASE_URL"},
	"storage.s3.access_key":      {"S3_ACCESS_KEY"},
	"storage.s3.bucket":          {"S3_BUCKET"},
	"storage.s3.endpoint":        {"S3_ENDPOINT"},
	"storage.s3.public_base_url": {"S3_PUBLIC_BASE_URL"},
	"storage.s3.region":          {"S3_REGION"},
	"storage.s3.secret_key":      {"S3_SECRET_KEY"},
}

func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, envs := range legacyEnv {
		if err := v.BindEnv(append([]string{key, strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, envs...)...); err != nil {
			return nil, fmt.Errorf("v.BindEnv(%v) -> %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		zap.L().Warn("config file changed, restart the server to apply it",
			zap.String("file", e.Name), zap.String("op", e.Op.String()))
	})
	v.WatchConfig()

	return conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "production")
	v.SetDefault("api.port", "5000")
	v.SetDefault("api.allowed_methods", []string{"GET", "POST"})
	v.SetDefault("gin.mode", "release")
	v.SetDefault("intake.receipt_required", true)
	v.SetDefault("intake.receipt_field", "paymentReceipt")
	v.SetDefault("intake.max_upload_mb", 10)
	v.SetDefault("intake.max_body_mb", 10)
	v.SetDefault("storage.driver", StorageDriverLocal)
	v.SetDefault("storage.dir", "./uploads")
	v.SetDefault("storage.public_path", "/uploads")
	v.SetDefault("ledger.driver", LedgerDriverSheets)
	v.SetDefault("ledger.schema", "team")
	v.SetDefault("ledger.timezone", "Asia/Kolkata")
	v.SetDefault("mail.driver", MailDriverGmail)
	v.SetDefault("mail.smtp.port", 587)
	v.SetDefault("postgres.sslmode", "disable")
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{
		API: &APIConfig{
			Environment:        v.GetString("api.environment"),
			Port:               v.GetString("api.port"),
			BaseURL:            v.GetString("api.base_url"),
			AllowedCORSDomains: splitList(v.GetStringSlice("api.allowed_cors_domains")),
			AllowedMethods:     splitList(v.GetStringSlice("api.allowed_methods")),
		},
		Gin: &GinConfig{
			Mode: v.GetString("gin.mode"),
		},
		Postgres: &PostgresConfig{
			URL:      v.GetString("postgres.url"),
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			DB:       v.GetString("postgres.db"),
			SSLMode:  v.GetString("postgres.sslmode"),
		},
		Intake: &IntakeConfig{
			ReceiptRequired: v.GetBool("intake.receipt_required"),
			ReceiptField:    v.GetString("intake.receipt_field"),
			MaxUploadMB:     v.GetInt64("intake.max_upload_mb"),
			MaxBodyMB:       v.GetInt64("intake.max_body_mb"),
			RequiredFields:  splitList(v.GetStringSlice("intake.required_fields")),
		},
		Storage: &StorageConfig{
			Driver:        v.GetString("storage.driver"),
			Dir:           v.GetString("storage.dir"),
			PublicPath:    v.GetString("storage.public_path"),
			PublicBaseURL: strings.TrimRight(v.GetString("storage.public_base_url"), "/"),
			S3: &S3Config{
				Bucket:        v.GetString("storage.s3.bucket"),
				Region:        v.GetString("storage.s3.region"),
				Endpoint:      v.GetString("storage.s3.endpoint"),
				AccessKey:     v.GetString("storage.s3.access_key"),
				SecretKey:     v.GetString("storage.s3.secret_key"),
				Prefix:        v.GetString("storage.s3.prefix"),
				PublicBaseURL: strings.TrimRight(v.GetString("storage.s3.public_base_url"), "/"),
			},
		},
		Ledger: &LedgerConfig{
			Driver:        v.GetString("ledger.driver"),
			SpreadsheetID: v.GetString("ledger.spreadsheet_id"),
			Range:         v.GetString("ledger.range"),
			Schema:        v.GetString("ledger.schema"),
			Timezone:      v.GetString("ledger.timezone"),
			ClientEmail:   v.GetString("ledger.client_email"),
			// Keys pasted into a single env line carry literal \n sequences.
			PrivateKey: strings.ReplaceAll(v.GetString("ledger.private_key"), `\n`, "\n"),
		},
		Mail: &MailConfig{
			Driver:   v.GetString("mail.driver"),
			From:     v.GetString("mail.from"),
			FromName: v.GetString("mail.from_name"),
			Gmail: &GmailConfig{
				ClientID:     v.GetString("mail.gmail.client_id"),
				ClientSecret: v.GetString("mail.gmail.client_secret"),
				RedirectURL:  v.GetString("mail.gmail.redirect_url"),
				RefreshToken: v.GetString("mail.gmail.refresh_token"),
			},
			SMTP: &SMTPConfig{
				Host:     v.GetString("mail.smtp.host"),
				Port:     v.GetInt("mail.smtp.port"),
				Username: v.GetString("mail.smtp.username"),
				Password: v.GetString("mail.smtp.password"),
			},
			Resend: &ResendConfig{
				APIKey: v.GetString("mail.resend.api_key"),
			},
		},
		Event: &EventConfig{
			Name:          v.GetString("event.name"),
			Title:         v.GetString("event.title"),
			Host:          v.GetString("event.host"),
			Date:          v.GetString("event.date"),
			Time:          v.GetString("event.time"),
			Venue:         v.GetString("event.venue"),
			ContactEmail:  v.GetString("event.contact_email"),
			ContactPhones: splitList(v.GetStringSlice("event.contact_phones")),
			CommunityLink: v.GetString("event.community_link"),
		},
	}

	if err := v.UnmarshalKey("ledger.columns", &conf.Ledger.Columns); err != nil {
		return nil, fmt.Errorf("v.UnmarshalKey(ledger.columns) -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("conf.Validate -> %w", err)
	}

	return conf, nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

// Validate fails when a collaborator selected by the config is missing its
// credentials, so the server never starts half-configured.
func (c *AppConfig) Validate() error {
	err := validation.ValidateStruct(c.API,
		validation.Field(&c.API.Port, validation.Required),
		validation.Field(&c.API.AllowedCORSDomains, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}

	err = validation.ValidateStruct(c.Intake,
		validation.Field(&c.Intake.ReceiptField, validation.Required),
		validation.Field(&c.Intake.MaxUploadMB, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.Intake.MaxBodyMB, validation.Required, validation.Min(int64(1))),
	)
	if err != nil {
		return fmt.Errorf("intake: %w", err)
	}

	if err = c.Ledger.validate(); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}

	if err = c.Mail.validate(); err != nil {
		return fmt.Errorf("mail: %w", err)
	}

	if err = c.Storage.validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	return nil
}

func (c *LedgerConfig) validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(LedgerDriverSheets, LedgerDriverPostgres)),
	)
	if err != nil || c.Driver != LedgerDriverSheets {
		return err
	}

	return validation.ValidateStruct(c,
		validation.Field(&c.SpreadsheetID, validation.Required),
		validation.Field(&c.ClientEmail, validation.Required),
		validation.Field(&c.PrivateKey, validation.Required),
	)
}

func (c *MailConfig) validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(MailDriverGmail, MailDriverSMTP, MailDriverResend, MailDriverNone)),
	)
	if err != nil || c.Driver == MailDriverNone {
		return err
	}

	if err = validation.ValidateStruct(c, validation.Field(&c.From, validation.Required)); err != nil {
		return err
	}

	switch c.Driver {
	case MailDriverGmail:
		return validation.ValidateStruct(c.Gmail,
			validation.Field(&c.Gmail.ClientID, validation.Required),
			validation.Field(&c.Gmail.ClientSecret, validation.Required),
			validation.Field(&c.Gmail.RefreshToken, validation.Required),
		)
	case MailDriverSMTP:
		return validation.ValidateStruct(c.SMTP,
			validation.Field(&c.SMTP.Host, validation.Required),
			validation.Field(&c.SMTP.Port, validation.Required),
			validation.Field(&c.SMTP.Username, validation.Required),
			validation.Field(&c.SMTP.Password, validation.Required),
		)
	default:
		return validation.ValidateStruct(c.Resend,
			validation.Field(&c.Resend.APIKey, validation.Required),
		)
	}
}

func (c *StorageConfig) validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(StorageDriverLocal, StorageDriverS3)),
	)
	if err != nil {
		return err
	}

	if c.Driver == StorageDriverLocal {
		return validation.ValidateStruct(c,
			validation.Field(&c.Dir, validation.Required),
			validation.Field(&c.PublicPath, validation.Required),
		)
	}

	return validation.ValidateStruct(c.S3,
		validation.Field(&c.S3.Bucket, validation.Required),
		validation.Field(&c.S3.Region, validation.Required),
		validation.Field(&c.S3.PublicBaseURL, validation.Required),
	)
}
